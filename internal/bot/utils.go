package bot

import (
	"fmt"
	"strings"
	"unicode"
)

// NormalizePhoneNumber keeps the digits and brings Russian numbers to +7.
func NormalizePhoneNumber(phone string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, phone)

	switch {
	case strings.HasPrefix(cleaned, "7") && len(cleaned) == 11:
		return "+" + cleaned
	case strings.HasPrefix(cleaned, "8") && len(cleaned) == 11:
		return "+7" + cleaned[1:]
	case strings.HasPrefix(cleaned, "9") && len(cleaned) == 10:
		return "+7" + cleaned
	}

	// international numbers keep their +
	if strings.HasPrefix(strings.TrimSpace(phone), "+") {
		return "+" + cleaned
	}
	return cleaned
}

// FormatPhoneNumber renders +7XXXXXXXXXX as +7 (XXX) XXX-XX-XX.
func FormatPhoneNumber(phone string) string {
	if strings.HasPrefix(phone, "+7") && len(phone) == 12 {
		return fmt.Sprintf("%s (%s) %s-%s-%s",
			phone[:2],
			phone[2:5],
			phone[5:8],
			phone[8:10],
			phone[10:12])
	}
	return phone
}
