package phone

import (
	"strings"
	"unicode"
)

// Normalize приводит номер к виду +<цифры> (E.164-подобному) или возвращает "".
// Номер, начинающийся с "+", не проверяется: из него только убираются пробелы.
// 10 цифр считаются номером США/Канады и получают префикс +1.
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if strings.HasPrefix(s, "+") {
		return strings.Map(func(r rune) rune {
			if unicode.IsSpace(r) {
				return -1
			}
			return r
		}, s)
	}

	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)

	switch {
	case len(digits) == 10:
		return "+1" + digits
	case len(digits) > 10:
		return "+" + digits
	default:
		return ""
	}
}
