package conversation

import "strings"

// Intent is the model's classification of an inbound message. Unknown tags are kept
// as-is and get the generic reply treatment.
type Intent string

const (
	IntentBookAppointment Intent = "book_appointment"
	IntentFAQPrice        Intent = "faq_price"
	IntentFAQLocation     Intent = "faq_location"
	IntentGreeting        Intent = "greeting"
	IntentGratitude       Intent = "gratitude"
	IntentFallback        Intent = "fallback"
)

// ApologyText is the reply of last resort.
const ApologyText = "Lo siento, no entendí muy bien eso 🤖 ¿Podrías decírmelo de otra forma?"

// Slots carries the booking details the model pulled out of a message. An empty
// string means the slot was not provided.
type Slots struct {
	Servicio string `json:"servicio,omitempty"`
	Fecha    string `json:"fecha,omitempty"`
	Hora     string `json:"hora,omitempty"`
}

// Complete reports whether service, date and time are all present.
func (s Slots) Complete() bool {
	return s.Servicio != "" && s.Fecha != "" && s.Hora != ""
}

// Empty reports whether no slot is set.
func (s Slots) Empty() bool {
	return s.Servicio == "" && s.Fecha == "" && s.Hora == ""
}

// Missing names the absent slots, always in servicio, fecha, hora order.
func (s Slots) Missing() []string {
	missing := make([]string, 0, 3)
	if s.Servicio == "" {
		missing = append(missing, "servicio")
	}
	if s.Fecha == "" {
		missing = append(missing, "fecha")
	}
	if s.Hora == "" {
		missing = append(missing, "hora")
	}
	return missing
}

// ExtractionResult is the typed form of the model's first answer. Narrative is never
// empty.
type ExtractionResult struct {
	Intent    Intent
	Slots     Slots
	Narrative string
}

// Studio holds the fixed business details that replies quote verbatim.
type Studio struct {
	Name   string
	MapURL string
}

// DefaultStudio returns the Beauty Blossoms location details.
func DefaultStudio() Studio {
	return Studio{
		Name:   "Beauty Blossoms",
		MapURL: "https://maps.app.goo.gl/CtavKUYUV3zyvaLU6",
	}
}

func (s Studio) withDefaults() Studio {
	def := DefaultStudio()
	if strings.TrimSpace(s.Name) == "" {
		s.Name = def.Name
	}
	if strings.TrimSpace(s.MapURL) == "" {
		s.MapURL = def.MapURL
	}
	return s
}

func normalizeIntent(raw string) Intent {
	intent := strings.ToLower(strings.TrimSpace(raw))
	if intent == "" || intent == "null" {
		return IntentFallback
	}
	return Intent(intent)
}
