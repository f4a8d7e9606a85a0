// Package brand provides the studio's voice settings (tone, emoji palette, calls to
// action, reply length) and a TTL cache over wherever they are stored.
package brand

import (
	"math/rand"
	"strings"
)

// Style describes how replies should sound.
type Style struct {
	BrandName     string   `json:"brand"`
	Locale        string   `json:"locale"`
	Tone          string   `json:"vibe"`
	AllowedEmojis []string `json:"allowed_emojis"`
	CallToActions []string `json:"ctas"`
	MaxChars      int      `json:"max_chars"`
}

// DefaultStyle is used whenever the configured source has nothing to offer.
func DefaultStyle() Style {
	return Style{
		BrandName:     "Beauty Blossoms Studio",
		Locale:        "es-MX",
		Tone:          "warm, professional, and feminine",
		AllowedEmojis: []string{"💅", "✨", "💖", "🌸", "💄", "🧴", "💆‍♀️", "🎀"},
		CallToActions: []string{
			"¿Te gustaría agendar una cita?",
			"¿Cuándo te gustaría venir?",
			"¡Con gusto te atendemos!",
			"Estamos aquí para ti",
			"¡Será un placer atenderte!",
		},
		MaxChars: 280,
	}
}

// WithDefaults fills every empty field of s from DefaultStyle.
func (s Style) WithDefaults() Style {
	def := DefaultStyle()
	if strings.TrimSpace(s.BrandName) == "" {
		s.BrandName = def.BrandName
	}
	if strings.TrimSpace(s.Locale) == "" {
		s.Locale = def.Locale
	}
	if strings.TrimSpace(s.Tone) == "" {
		s.Tone = def.Tone
	}
	if s.AllowedEmojis = compact(s.AllowedEmojis); len(s.AllowedEmojis) == 0 {
		s.AllowedEmojis = def.AllowedEmojis
	}
	if s.CallToActions = compact(s.CallToActions); len(s.CallToActions) == 0 {
		s.CallToActions = def.CallToActions
	}
	if s.MaxChars <= 0 {
		s.MaxChars = def.MaxChars
	}
	return s
}

func compact(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// RandomCTAs returns up to n distinct calls to action in random order.
func RandomCTAs(s Style, n int, rng *rand.Rand) []string {
	values := s.CallToActions
	if len(values) == 0 {
		values = DefaultStyle().CallToActions
	}
	return pick(values, n, rng)
}

// RandomEmojis returns up to n distinct emojis from the palette in random order.
func RandomEmojis(s Style, n int, rng *rand.Rand) []string {
	values := s.AllowedEmojis
	if len(values) == 0 {
		values = DefaultStyle().AllowedEmojis
	}
	return pick(values, n, rng)
}

func pick(values []string, n int, rng *rand.Rand) []string {
	if n <= 0 {
		return nil
	}
	if n > len(values) {
		n = len(values)
	}
	var order []int
	if rng != nil {
		order = rng.Perm(len(values))
	} else {
		order = rand.Perm(len(values))
	}
	out := make([]string, 0, n)
	for _, idx := range order[:n] {
		out = append(out, values[idx])
	}
	return out
}
