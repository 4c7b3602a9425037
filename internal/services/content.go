package services

import (
	"errors"
	"strings"
)

// ErrInvalidContentFormat - строка аккаунта не распадается на логин и пароль
var ErrInvalidContentFormat = errors.New("неверный формат: ожидается логин и пароль")

// accountSeparators - допустимые разделители логина и пароля,
// в порядке приоритета
var accountSeparators = []string{":", "|", ";", "\t"}

// NormalizeAccountContent приводит строку аккаунта к каноническому виду
// "логин:пароль". Разделителем принимается двоеточие, вертикальная черта,
// точка с запятой, табуляция или пробел; строка из менее чем двух
// непустых частей отбрасывается.
func NormalizeAccountContent(raw string) (string, error) {
	line := strings.TrimSpace(raw)
	if line == "" {
		return "", ErrInvalidContentFormat
	}

	for _, sep := range accountSeparators {
		if !strings.Contains(line, sep) {
			continue
		}
		parts := strings.SplitN(line, sep, 2)
		login := strings.TrimSpace(parts[0])
		password := strings.TrimSpace(parts[1])
		if login == "" || password == "" {
			return "", ErrInvalidContentFormat
		}
		return login + ":" + password, nil
	}

	// Разделителя нет - пробуем пробельное разбиение
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return "", ErrInvalidContentFormat
	}

	return fields[0] + ":" + strings.Join(fields[1:], " "), nil
}
