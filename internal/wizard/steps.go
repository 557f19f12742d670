package wizard

import (
	"fmt"
	"strconv"
	"strings"
)

// Step keys referenced outside of the catalogs.
const (
	StepDimensions = "dimensions"
	StepPhone      = "phone"
	StepEmail      = "email"

	StepSections  = "sections"
	StepPoolType  = "pool_type"
	StepPlacement = "placement"

	PoolTypePrivate  = "private"
	PoolTypePublic   = "public"
	PlacementIndoor  = "indoor"
	PlacementOutdoor = "outdoor"
)

// CostEstimateCatalog is the pool cost estimate questionnaire.
func CostEstimateCatalog() *Catalog {
	return MustCatalog(
		StepDefinition{
			Key:              StepDimensions,
			Title:            "Размеры бассейна",
			Prompt:           "Укажите размеры чаши в формате <b>длина x ширина x глубина</b> (например, 10x4x1.6).",
			Kind:             KindFreeText,
			Validator:        ValidateDimensions,
			Comment:          "Можно использовать x, х или * как разделитель.",
			AllowsEscalation: true,
		},
		choice("private_or_public", "Частный/общественный", "Объект частный или общественный?",
			Option{PoolTypePrivate, "Частный"}, Option{PoolTypePublic, "Общественный"}),
		choice("project_need", "Что нужно", "Что требуется?",
			Option{"new", "Новый бассейн"}, Option{"reconstruction", "Реконструкция"}),
		choice("indoor_outdoor", "Размещение", "Где расположен бассейн?",
			Option{PlacementIndoor, "В помещении"}, Option{PlacementOutdoor, "На улице"}),
		choice("equipment_location", "Расположение оборудования", "Где будет расположено оборудование?",
			Option{"plant_room", "Техпомещение"}, Option{"near_pool", "Рядом с чашей"}),
		choice("pool_type", "Тип бассейна", "Выберите тип бассейна.",
			Option{"skimmer", "Скиммерный"}, Option{"overflow", "Переливной"}),
		choice("embedded_material", "Материал чаши", "Какой материал чаши?",
			Option{"concrete", "Бетон"}, Option{"composite", "Композит"}, Option{"polypropylene", "Полипропилен"}),
		choice("water_type", "Тип воды", "Какая вода в бассейне?",
			Option{"fresh", "Пресная"}, Option{"salt", "Солевая"}),
		choice("purpose", "Назначение", "Основное назначение бассейна?",
			Option{"family", "Семейный"}, Option{"sports", "Спортивный"}, Option{"spa", "SPA/релакс"}),
		choice("finish", "Отделка", "Выберите отделку чаши.",
			Option{"tile", "Плитка"}, Option{"mosaic", "Мозаика"}, Option{"liner", "Лайнер"}),
		choice("heating", "Подогрев", "Нужен подогрев воды?",
			Option{"yes", "Да"}, Option{"no", "Нет"}),
		choice("disinfection", "Дезинфекция", "Основной способ дезинфекции?",
			Option{"chlorine", "Хлор"}, Option{"electrolysis", "Электролиз"}, Option{"oxygen", "Активный кислород"}),
		multi("extra_disinfection", "Доп. дезинфекция", "Выберите дополнительную дезинфекцию.",
			Option{"uv", "УФ"}, Option{"ozone", "Озон"}, Option{"none", "Не требуется"}),
		choice("lighting", "Освещение", "Нужна подсветка?",
			Option{"basic", "Базовая"}, Option{"rgb", "RGB"}, Option{"no", "Без подсветки"}),
		choice("music", "Музыка", "Планируется музыкальная система?",
			Option{"yes", "Да"}, Option{"no", "Нет"}),
		multi("attractions", "Аттракционы", "Выберите аттракционы.",
			Option{"counterflow", "Противоток"}, Option{"hydromassage", "Гидромассаж"}, Option{"waterfall", "Водопад"}),
		choice("cover", "Покрытие", "Нужно покрытие бассейна?",
			Option{"roller", "Роллетное"}, Option{"bubble", "Пузырьковое"}, Option{"no", "Не требуется"}),
		StepDefinition{
			Key:              StepPhone,
			Title:            "Телефон",
			Prompt:           "Укажите телефон для связи.",
			Kind:             KindFreeText,
			Validator:        ValidatePhone,
			AllowsEscalation: true,
		},
		StepDefinition{
			Key:              StepEmail,
			Title:            "Email",
			Prompt:           "Укажите email для отправки результата.",
			Kind:             KindFreeText,
			Validator:        ValidateEmail,
			AllowsEscalation: true,
		},
	)
}

// ConfiguratorCatalog is the design configurator questionnaire. Section
// options come from the pricing config.
func ConfiguratorCatalog(cfg PricingConfig) *Catalog {
	sections := make([]Option, 0, len(cfg.Sections))
	for _, s := range cfg.Sections {
		sections = append(sections, Option{
			Key:   s.Key,
			Label: fmt.Sprintf("%s (%s ₽)", s.Label, FormatRoubles(s.BasePrice)),
		})
	}

	return MustCatalog(
		StepDefinition{
			Key:     StepSections,
			Title:   "Разделы",
			Prompt:  "📐 <b>Выберите разделы проектирования:</b>",
			Kind:    KindMultiSelect,
			Options: sections,
		},
		StepDefinition{
			Key:    StepPoolType,
			Title:  "Тип бассейна",
			Prompt: "🏊 <b>Выберите тип бассейна:</b>",
			Kind:   KindSingleSelect,
			Options: []Option{
				{PoolTypePrivate, "Частный"},
				{PoolTypePublic, "Общественный"},
			},
		},
		StepDefinition{
			Key:    StepPlacement,
			Title:  "Размещение",
			Prompt: "📍 <b>Размещение бассейна:</b>",
			Kind:   KindSingleSelect,
			Options: []Option{
				{PlacementIndoor, "Внутри здания"},
				{PlacementOutdoor, "Отдельно стоящий"},
			},
		},
	)
}

// ContactCatalog collects contacts after a configurator quote. The email may
// be skipped with "-".
func ContactCatalog() *Catalog {
	return MustCatalog(
		StepDefinition{
			Key:       StepPhone,
			Title:     "Телефон",
			Prompt:    "📱 <b>Введите ваш номер телефона:</b>",
			Kind:      KindFreeText,
			Validator: ValidatePhone,
			Comment:   "Например: +7 999 123 45 67",
		},
		StepDefinition{
			Key:       StepEmail,
			Title:     "Email",
			Prompt:    "📧 <b>Введите email (или напишите - если не хотите указывать):</b>",
			Kind:      KindFreeText,
			Validator: OptionalEmail,
		},
	)
}

func choice(key, title, prompt string, options ...Option) StepDefinition {
	return StepDefinition{
		Key:              key,
		Title:            title,
		Prompt:           prompt,
		Kind:             KindSingleSelect,
		Options:          options,
		AllowsEscalation: true,
	}
}

func multi(key, title, prompt string, options ...Option) StepDefinition {
	step := choice(key, title, prompt, options...)
	step.Kind = KindMultiSelect
	return step
}

// FormatRoubles renders 120000 as "120 000".
func FormatRoubles(v int64) string {
	s := strconv.FormatInt(v, 10)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
