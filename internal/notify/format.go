package notify

import (
	"fmt"
	"html"
	"strings"

	"alpools-bot/internal/wizard"
)

const dateLayout = "02.01.2006 15:04"

var titles = map[Kind]string{
	KindEscalation: "👨‍🔧 Запрос консультации инженера",
	KindLead:       "📞 Новая заявка",
	KindEstimate:   "💰 Предварительная стоимость бассейна",
	KindQuote:      "📥 Заявка на проектирование",
	KindProject:    "📐 Подтверждён проект",
}

// Format renders the admin message as Telegram HTML.
func Format(n Notification) string {
	var sb strings.Builder

	title, ok := titles[n.Kind]
	if !ok {
		title = string(n.Kind)
	}
	fmt.Fprintf(&sb, "<b>%s</b>\n\n", title)

	fmt.Fprintf(&sb, "🕒 Дата: %s\n", n.CreatedAt.Format(dateLayout))
	fmt.Fprintf(&sb, "👤 Имя: %s\n", orDash(n.DisplayName, "не указано"))
	fmt.Fprintf(&sb, "🔗 Username: %s\n", username(n.Username))
	fmt.Fprintf(&sb, "🆔 ID: %d\n", n.UserID)
	if n.Phone != "" {
		fmt.Fprintf(&sb, "📱 Телефон: %s\n", html.EscapeString(n.Phone))
	}
	if n.Email != "" {
		fmt.Fprintf(&sb, "📧 Email: %s\n", html.EscapeString(n.Email))
	}
	if n.Step != "" {
		fmt.Fprintf(&sb, "📍 Шаг: %s\n", html.EscapeString(n.Step))
	}

	if len(n.Summary) > 0 {
		sb.WriteString("\n")
		sb.WriteString(FormatSummary(n.Summary))
	}
	if n.Total != nil {
		fmt.Fprintf(&sb, "\n💰 Сумма: <b>%s ₽</b>", wizard.FormatRoubles(*n.Total))
	}

	return strings.TrimRight(sb.String(), "\n")
}

// FormatSummary lists summary lines as "• <b>Title:</b> v1, v2".
func FormatSummary(lines []wizard.SummaryLine) string {
	var sb strings.Builder
	for _, l := range lines {
		fmt.Fprintf(&sb, "• <b>%s:</b> %s\n", html.EscapeString(l.Title), html.EscapeString(strings.Join(l.Values, ", ")))
	}
	return sb.String()
}

func summaryPlain(lines []wizard.SummaryLine) string {
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		parts = append(parts, l.Title+": "+strings.Join(l.Values, ", "))
	}
	return strings.Join(parts, "; ")
}

func username(u string) string {
	if u == "" {
		return "не указан"
	}
	return "@" + html.EscapeString(u)
}

func orDash(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return html.EscapeString(s)
}
