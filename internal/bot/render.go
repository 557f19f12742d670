package bot

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"alpools-bot/internal/draft"
	"alpools-bot/internal/notify"
	"alpools-bot/internal/wizard"
)

func stepText(p wizard.Presentation) string {
	text := fmt.Sprintf("<i>Шаг %d из %d</i>\n\n%s", p.Position, p.Total, p.Prompt)
	if p.Comment != "" {
		text += "\n\n💬 " + html.EscapeString(p.Comment)
	}
	return text
}

func formatEstimate(est wizard.Estimate) string {
	var sb strings.Builder
	sb.WriteString("📋 <b>Предварительные параметры бассейна</b>\n\n")
	sb.WriteString(notify.FormatSummary(est.Lines))
	if est.Volume != nil {
		fmt.Fprintf(&sb, "• <b>Ориентировочный объём:</b> %s м³\n", formatNumber(*est.Volume))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// estimateSummary is the estimate as summary lines, volume included.
func estimateSummary(est wizard.Estimate) []wizard.SummaryLine {
	lines := append([]wizard.SummaryLine{}, est.Lines...)
	if est.Volume != nil {
		lines = append(lines, wizard.SummaryLine{
			Key:    "volume",
			Title:  "Ориентировочный объём",
			Values: []string{formatNumber(*est.Volume) + " м³"},
		})
	}
	return lines
}

func formatQuote(q wizard.QuoteResult) string {
	var sb strings.Builder
	sb.WriteString("💰 <b>Предварительный расчёт</b>\n\n")
	sb.WriteString("📐 <b>Выбранные разделы:</b>\n\n")

	for _, s := range q.Sections {
		fmt.Fprintf(&sb, "• <b>%s</b>\n", html.EscapeString(s.Label))
		fmt.Fprintf(&sb, "   Базовая: %s ₽\n", wizard.FormatRoubles(s.BasePrice))
		fmt.Fprintf(&sb, "   Доп. (%s%%): %s ₽\n", formatNumber(s.SurchargePercent), wizard.FormatRoubles(int64(s.Surcharge)))
		fmt.Fprintf(&sb, "   Итого: %s ₽\n", wizard.FormatRoubles(int64(s.Total)))
	}

	if q.Attractions > 0 {
		fmt.Fprintf(&sb, "\n🎢 Аттракционы: %d × %s ₽ = %s ₽\n",
			q.Attractions,
			wizard.FormatRoubles(q.AttractionPrice),
			wizard.FormatRoubles(q.AttractionsTotal))
	}

	sb.WriteString("\n━━━━━━━━━━━━━━━\n")
	fmt.Fprintf(&sb, "<b>ИТОГО: %s ₽</b>\n\n", wizard.FormatRoubles(q.Total))
	sb.WriteString("⚠ <i>Расчёт ориентировочный.</i>")
	return sb.String()
}

// quoteSummary lists the configurator choices for managers.
func quoteSummary(catalog *wizard.Catalog, choices *wizard.Answers, attractions int) []wizard.SummaryLine {
	lines := wizard.Humanize(catalog, choices)
	lines = append(lines, wizard.SummaryLine{
		Key:    "attractions",
		Title:  "Аттракционы",
		Values: []string{strconv.Itoa(attractions)},
	})
	return lines
}

var fieldPrompts = map[draft.Field]string{
	draft.FieldFullName:     "Введите ФИО:",
	draft.FieldPhone:        "Введите телефон:",
	draft.FieldEmail:        "Введите email:",
	draft.FieldAddress:      "Введите адрес:",
	draft.FieldLength:       "Введите длину чаши (м):",
	draft.FieldWidth:        "Введите ширину чаши (м):",
	draft.FieldAverageDepth: "Введите среднюю глубину (м):",
}

var fieldTitles = map[draft.Field]string{
	draft.FieldFullName:     "ФИО",
	draft.FieldPhone:        "Телефон",
	draft.FieldEmail:        "Email",
	draft.FieldAddress:      "Адрес",
	draft.FieldLength:       "Длина",
	draft.FieldWidth:        "Ширина",
	draft.FieldAverageDepth: "Средняя глубина",
}

func formatReview(d *draft.Draft) string {
	var sb strings.Builder
	sb.WriteString("<b>Проверьте данные проекта</b>\n\n")

	sb.WriteString("<b>Общая информация:</b>\n")
	for _, f := range draft.GeneralInfoFields {
		fmt.Fprintf(&sb, "%s: %s\n", fieldTitles[f], html.EscapeString(draftValue(d, f)))
	}

	sb.WriteString("\n<b>Геометрия:</b>\n")
	for _, f := range draft.GeometryFields {
		fmt.Fprintf(&sb, "%s: %s\n", fieldTitles[f], draftValue(d, f))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// draftSummary lists the answered draft fields for managers.
func draftSummary(d *draft.Draft) []wizard.SummaryLine {
	var lines []wizard.SummaryLine
	for _, group := range [][]draft.Field{draft.GeneralInfoFields, draft.GeometryFields} {
		for _, f := range group {
			if set, _ := d.IsSet(f); !set {
				continue
			}
			lines = append(lines, wizard.SummaryLine{
				Key:    string(f),
				Title:  fieldTitles[f],
				Values: []string{draftValue(d, f)},
			})
		}
	}
	return lines
}

func draftValue(d *draft.Draft, f draft.Field) string {
	str := func(s *string) string {
		if s == nil || *s == "" {
			return "—"
		}
		return *s
	}
	num := func(v *float64) string {
		if v == nil {
			return "—"
		}
		return formatNumber(*v)
	}

	switch f {
	case draft.FieldFullName:
		return str(d.FullName)
	case draft.FieldPhone:
		return str(d.Phone)
	case draft.FieldEmail:
		return str(d.Email)
	case draft.FieldAddress:
		return str(d.Address)
	case draft.FieldLength:
		return num(d.Length)
	case draft.FieldWidth:
		return num(d.Width)
	case draft.FieldAverageDepth:
		return num(d.AverageDepth)
	}
	return "—"
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func orEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
