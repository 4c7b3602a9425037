package utils

import (
	"fmt"
	"strings"
)

// EscapeMarkdownV2 экранирует спецсимволы Telegram MarkdownV2
func EscapeMarkdownV2(text string) string {
	replacements := map[string]string{
		"_": "\\_",
		"*": "\\*",
		"[": "\\[",
		"]": "\\]",
		"~": "\\~",
		"`": "\\`",
		">": "\\>",
		"#": "\\#",
		"+": "\\+",
		"-": "\\-",
		"=": "\\=",
		"|": "\\|",
		".": "\\.",
		"!": "\\!",
	}

	var result strings.Builder
	for _, char := range text {
		// Скобки оставляем как есть, иначе ломаются ссылки
		if char == '(' || char == ')' {
			result.WriteRune(char)
			continue
		}

		if replacement, exists := replacements[string(char)]; exists {
			result.WriteString(replacement)
		} else {
			result.WriteRune(char)
		}
	}

	return result.String()
}

// FormatPrice печатает сумму в рублях для сообщений пользователю
func FormatPrice(amount float64) string {
	return fmt.Sprintf("%.2f ₽", amount)
}
