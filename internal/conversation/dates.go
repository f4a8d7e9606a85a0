package conversation

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

var spanishWeekdays = [...]string{"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado"}

var spanishMonths = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// FormatFecha expands "hoy" and "mañana" into "<Día>, <d> de <mes>" relative to now,
// in now's location. Any other value comes back unchanged.
func FormatFecha(fecha string, now time.Time) string {
	var target time.Time
	switch strings.ToLower(strings.TrimSpace(fecha)) {
	case "hoy":
		target = now
	case "mañana":
		target = now.AddDate(0, 0, 1)
	default:
		return fecha
	}
	return capitalizeFirst(fmt.Sprintf("%s, %d de %s",
		spanishWeekdays[target.Weekday()],
		target.Day(),
		spanishMonths[target.Month()-1],
	))
}

func capitalizeFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
