package bot

// Flows a chat can be in. The empty flow is the main menu.
const (
	flowCost         = "cost"
	flowConfigurator = "configurator"
	flowProject      = "project"
	flowConsult      = "consult"
)

// Stages inside a flow.
const (
	stageWizard      = "wizard"
	stageAttractions = "attractions"
	stageQuote       = "quote"
	stageContacts    = "contacts"
	stageChoice      = "choice"
	stageField       = "field"
	stageReview      = "review"
)

const (
	msgInternalError  = "Ошибка при обработке запроса. Попробуйте ещё раз."
	msgUnknownCommand = "Неизвестная команда. Пожалуйста, используйте /start для начала работы."
	msgFallback       = "Пожалуйста, выберите раздел из меню ниже."
	msgUseButtons     = "Пожалуйста, используйте кнопки."
	msgStaleButton    = "Эта кнопка уже неактуальна. Начните заново из меню."
	msgCancelled      = "Действие отменено."

	msgCostCancelled = "Конфигуратор отменен. Вы можете начать заново из меню."
	msgEscalated     = "Запрос отправлен. Инженер свяжется с вами в ближайшее время."

	msgAttractions  = "🎢 <b>Выберите количество аттракционов (до %d):</b>"
	msgQuoteSent    = "✅ Заявка отправлена.\nНаш специалист свяжется с вами."
	msgEmailSkipped = "Не указан"

	msgDraftResume    = "У вас есть незавершенный проект. Что сделать?"
	msgDraftNew       = "Создан новый проект."
	msgEditGeneral    = "Редактирование общей информации."
	msgEditGeometry   = "Редактирование геометрии."
	msgDraftConfirmed = "Проект подтвержден и завершен ✅"
	msgDraftNotFound  = "Проект не найден. Начните заново командой /project."
	msgEmptyAnswer    = "Ответ не может быть пустым."

	msgConsult         = "Оставьте номер телефона для консультации инженера."
	msgLeadThanks      = "Спасибо! Наш инженер свяжется с вами в ближайшее время."
	msgFileUnavailable = "Файл временно недоступен."
	msgTZCaption       = "Техническое задание для проектирования бассейна.\n\n" +
		"Передайте архитектору или проектной организации."
	msgTZFollowUp = "Если требуется индивидуальная версия ТЗ — " +
		"оставьте номер телефона для консультации инженера."
	msgPortfolio = "Раздел с реализованными проектами скоро будет доступен."

	msgNotAdmin     = "Команда доступна только администраторам."
	msgJournalEmpty = "Журнал заявок пока пуст."
	msgJournalCap   = "📊 Журнал заявок"

	helpText = "Доступные команды:\n" +
		"/start - Главное меню\n" +
		"/project - Проектирование бассейна\n" +
		"/cancel - Прервать текущее действие\n" +
		"/help - Показать эту справку\n\n" +
		"Если у вас возникли проблемы, свяжитесь с нами через раздел «📍 Контакты»."
)

const companyContacts = "ALpools — проектирование и строительство бассейнов\n\n" +
	"📍 Москва\n" +
	"📞 +7 (495) 644-66-54\n" +
	"📧 aanufriev@list.ru\n" +
	"🌐 %s"

const (
	officeLatitude  = 55.669903
	officeLongitude = 37.552876
)
