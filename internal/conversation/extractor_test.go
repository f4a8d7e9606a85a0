package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/salon-bot/internal/catalog"
)

const bookingJSON = `{"intent":"book_appointment","slots":{"servicio":"uñas acrílicas","fecha":"mañana","hora":"10:00"},"response":"¡Claro! Te agendo."}`

func TestExtractMalformedInputFallsBack(t *testing.T) {
	e := NewExtractor(catalog.Default(), false)
	cases := map[string]string{
		"empty":         "",
		"whitespace":    "   \n",
		"prose":         "Hola, no tengo JSON para ti",
		"broken json":   `{"intent": "greeting", "slots": `,
		"reversed":      "} nada {",
		"not an object": `{"intent": }`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			got := e.Extract(raw)
			assert.Equal(t, IntentFallback, got.Intent)
			assert.True(t, got.Slots.Empty())
			assert.NotEmpty(t, got.Narrative)
		})
	}
}

func TestExtractEmptyInputUsesApology(t *testing.T) {
	got := NewExtractor(nil, false).Extract("")
	assert.Equal(t, ApologyText, got.Narrative)
}

func TestExtractProseBecomesNarrative(t *testing.T) {
	got := NewExtractor(nil, false).Extract("  ¡Hola! ¿En qué te ayudo?  ")
	assert.Equal(t, "¡Hola! ¿En qué te ayudo?", got.Narrative)
}

func TestExtractRecoversJSONFromNoise(t *testing.T) {
	e := NewExtractor(catalog.Default(), false)
	want := e.Extract(bookingJSON)
	require.Equal(t, IntentBookAppointment, want.Intent)

	noisy := []string{
		"```json\n" + bookingJSON + "\n```",
		"Aquí está la respuesta:\n" + bookingJSON,
		bookingJSON + "\n\nEspero que sirva.",
	}
	for _, raw := range noisy {
		assert.Equal(t, want, e.Extract(raw))
	}
}

func TestExtractNormalizesNullsAndTypes(t *testing.T) {
	raw := `{"intent":"faq_price","slots":{"servicio":"null","fecha":null,"hora":10},"response":"  Claro  "}`
	got := NewExtractor(nil, false).Extract(raw)
	assert.Equal(t, IntentFAQPrice, got.Intent)
	assert.Equal(t, "", got.Slots.Servicio)
	assert.Equal(t, "", got.Slots.Fecha)
	assert.Equal(t, "10", got.Slots.Hora)
	assert.Equal(t, "Claro", got.Narrative)
}

func TestExtractMissingIntentAndResponse(t *testing.T) {
	got := NewExtractor(nil, false).Extract(`{"slots":{}}`)
	assert.Equal(t, IntentFallback, got.Intent)
	assert.Equal(t, ApologyText, got.Narrative)
}

func TestExtractKeepsUnknownIntent(t *testing.T) {
	got := NewExtractor(nil, false).Extract(`{"intent":"Cancel_Appointment","response":"ok"}`)
	assert.Equal(t, Intent("cancel_appointment"), got.Intent)
}

func TestExtractStrictServiceValidation(t *testing.T) {
	raw := `{"intent":"book_appointment","slots":{"servicio":"masaje tailandés"},"response":"ok"}`

	lenient := NewExtractor(catalog.Default(), false).Extract(raw)
	assert.Equal(t, "masaje tailandés", lenient.Slots.Servicio)

	strict := NewExtractor(catalog.Default(), true).Extract(raw)
	assert.Equal(t, "", strict.Slots.Servicio)

	known := NewExtractor(catalog.Default(), true).Extract(bookingJSON)
	assert.Equal(t, "uñas acrílicas", known.Slots.Servicio)
}

func TestExtractOutcomes(t *testing.T) {
	e := NewExtractor(nil, false)
	_, outcome := e.extract("sin json")
	assert.Equal(t, outcomeNoJSON, outcome)
	_, outcome = e.extract("{no es json}")
	assert.Equal(t, outcomeInvalidJSON, outcome)
	_, outcome = e.extract(bookingJSON)
	assert.Equal(t, outcomeParsed, outcome)
}

func TestBuildExtractionPrompt(t *testing.T) {
	wrapped := BuildExtractionPrompt("  quiero uñas  ", false)
	assert.Contains(t, wrapped, "BeautyBot")
	assert.Contains(t, wrapped, "\"intent\"")
	assert.Contains(t, wrapped, "quiero uñas")

	assert.Equal(t, "quiero uñas", BuildExtractionPrompt("  quiero uñas  ", true))
}
