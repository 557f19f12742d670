// Package keyboards builds the bot's reply and inline keyboards and the
// callback data they carry.
package keyboards

import (
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"alpools-bot/internal/wizard"
)

// Main menu buttons.
const (
	BtnCostEstimate = "💰 Предварительная стоимость бассейна"
	BtnDownloadTZ   = "📥 Скачать техническое задание"
	BtnProject      = "📐 Проектирование бассейна"
	BtnPortfolio    = "🏗 Реализованные проекты"
	BtnConfigurator = "🧠 Виртуальный конфигуратор"
	BtnConsultation = "📞 Консультация"
	BtnContacts     = "📍 Контакты"

	BtnSendPhone  = "📱 Отправить номер"
	BtnBackToMenu = "⬅ Назад в меню"
)

const (
	selectedMark = "✅ "

	btnDone     = "✔ Готово"
	btnClear    = "🧹 Очистить"
	btnBack     = "⬅ Назад"
	btnCancel   = "❌ Отменить"
	btnEngineer = "👨‍🔧 Консультация инженера"
)

func MainMenu() tgbotapi.ReplyKeyboardMarkup {
	var rows [][]tgbotapi.KeyboardButton
	for _, text := range []string{
		BtnCostEstimate, BtnDownloadTZ, BtnProject, BtnPortfolio,
		BtnConfigurator, BtnConsultation, BtnContacts,
	} {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(text)))
	}
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	return kb
}

func ContactRequest() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButtonContact(BtnSendPhone),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnBackToMenu),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

// RenderStep turns a step presentation into an inline keyboard. Options go
// one per row; selected options carry a check mark.
func RenderStep(scope string, p wizard.Presentation) tgbotapi.InlineKeyboardMarkup {
	action := ActionSelect
	if p.MultiSelect {
		action = ActionToggle
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, o := range p.Options {
		label := o.Label
		if o.Selected {
			label = selectedMark + label
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, Data(scope, action, o.Key)),
		))
	}

	if p.MultiSelect {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(btnDone, Data(scope, ActionNext)),
			tgbotapi.NewInlineKeyboardButtonData(btnClear, Data(scope, ActionClear)),
		))
	}

	var nav []tgbotapi.InlineKeyboardButton
	if p.ShowBack {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData(btnBack, Data(scope, ActionBack)))
	}
	if p.ShowCancel {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData(btnCancel, Data(scope, ActionCancel)))
	}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}

	if p.ShowEscalate {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(btnEngineer, Data(scope, ActionEngineer)),
		))
	}

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// Attractions is the ➖ n ➕ counter shown after the configurator steps.
func Attractions(count int) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➖", Data(ScopeConfig, ActionMinus)),
			tgbotapi.NewInlineKeyboardButtonData(strconv.Itoa(count), Data(ScopeConfig, ActionNoop)),
			tgbotapi.NewInlineKeyboardButtonData("➕", Data(ScopeConfig, ActionPlus)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💰 Рассчитать", Data(ScopeConfig, ActionCalc)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(btnBack, Data(ScopeConfig, ActionBack)),
			tgbotapi.NewInlineKeyboardButtonData(btnCancel, Data(ScopeConfig, ActionCancel)),
		),
	)
}

func QuoteActions() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📨 Отправить заявку", Data(ScopeConfig, ActionSend)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(btnCancel, Data(ScopeConfig, ActionCancel)),
		),
	)
}

func DraftResume() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Продолжить", Data(ScopeDraft, ActionContinue)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Создать новый", Data(ScopeDraft, ActionNew)),
		),
	)
}

func Review() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✏ Редактировать общую информацию", Data(ScopeDraft, ActionEditGeneral)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📐 Редактировать геометрию", Data(ScopeDraft, ActionEditGeometry)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Подтвердить", Data(ScopeDraft, ActionConfirm)),
		),
	)
}

// Contacts links the site and offers the company card and a consultation.
func Contacts(siteURL string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	if siteURL != "" {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("🌐 Перейти на сайт", siteURL),
		))
	}
	rows = append(rows,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📄 Реквизиты", Data(ScopeMenu, ActionCard)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(BtnConsultation, Data(ScopeMenu, ActionConsult)),
		),
	)
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
