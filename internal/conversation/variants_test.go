package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/salon-bot/internal/brand"
	"github.com/wolfman30/salon-bot/internal/catalog"
	"github.com/wolfman30/salon-bot/internal/llm"
	"github.com/wolfman30/salon-bot/pkg/logging"
)

type fixedStyles struct {
	style brand.Style
}

func (f fixedStyles) Get(context.Context) brand.Style { return f.style }

func variantsJSON(texts ...string) string {
	parts := make([]string, len(texts))
	for i, text := range texts {
		parts[i] = fmt.Sprintf(`{"text":%q}`, text)
	}
	return `{"variants":[` + strings.Join(parts, ",") + `]}`
}

func staticTransport(resp string, err error) llm.Transport {
	return llm.TransportFunc(func(context.Context, string) (string, error) {
		return resp, err
	})
}

func newTestSynthesizer(transport llm.Transport) *Synthesizer {
	return NewSynthesizer(transport, fixedStyles{style: brand.DefaultStyle()}, catalog.Default(), DefaultStudio(), logging.Discard())
}

func TestSynthesizeAlwaysReturnsThree(t *testing.T) {
	intents := []Intent{
		IntentBookAppointment, IntentFAQPrice, IntentFAQLocation,
		IntentGreeting, IntentGratitude, IntentFallback, Intent("reagendar_cita"),
	}
	slotSets := []Slots{
		{},
		{Servicio: "gelish"},
		{Servicio: "gelish", Fecha: "hoy", Hora: "5pm"},
	}
	transports := map[string]llm.Transport{
		"error":   staticTransport("", errors.New("timeout")),
		"garbage": staticTransport("no json here", nil),
		"two":     staticTransport(variantsJSON("uno", "dos"), nil),
		"blank":   staticTransport(variantsJSON("a", " ", "c"), nil),
	}

	for name, transport := range transports {
		s := newTestSynthesizer(transport)
		for _, intent := range intents {
			for _, slots := range slotSets {
				got := s.Synthesize(context.Background(), intent, slots)
				require.Len(t, got, VariantCount, "%s/%s/%+v", name, intent, slots)
				for _, v := range got {
					assert.NotEmpty(t, strings.TrimSpace(v))
				}
			}
		}
	}
}

func TestSynthesizeUsesModelVariants(t *testing.T) {
	model := []string{
		"¡Hola hermosa! 💖 ¿Agendamos tus uñas esta semana?",
		"¿Qué servicio te gustaría hoy? Tenemos pestañas y cejas ✨",
		"¡Bienvenida a Beauty Blossoms! Cuéntame qué necesitas 🌸",
	}
	s := newTestSynthesizer(staticTransport("```json\n"+variantsJSON(model...)+"\n```", nil))

	got, source := s.synthesize(context.Background(), IntentGreeting, Slots{})
	assert.Equal(t, model, got)
	assert.Equal(t, VariantSourceModel, source)
}

func TestSynthesizeTopsUpNearDuplicates(t *testing.T) {
	model := []string{
		"¡Tu cita de gelish está lista! 💅",
		"¡Tu cita de gelish esta lista! 💅",
		"¡Tu cita de gelish está lista!! 💅",
	}
	s := newTestSynthesizer(staticTransport(variantsJSON(model...), nil))

	got, source := s.synthesize(context.Background(), IntentGreeting, Slots{})
	require.Len(t, got, VariantCount)
	assert.Equal(t, VariantSourceMixed, source)
	assert.Equal(t, model[0], got[0])

	var distinct int
	for _, v := range got[1:] {
		if Similarity(v, got[0]) < DuplicateThreshold {
			distinct++
		}
	}
	assert.GreaterOrEqual(t, distinct, 1)
}

func TestSynthesizeFallbackOnTransportError(t *testing.T) {
	s := newTestSynthesizer(staticTransport("", errors.New("boom")))
	got, source := s.synthesize(context.Background(), IntentBookAppointment, Slots{Fecha: "hoy"})
	assert.Equal(t, VariantSourceFallback, source)
	assert.Equal(t, fallbackVariants(IntentBookAppointment, Slots{Fecha: "hoy"}, DefaultStudio()), got)
	assert.Contains(t, got[0], "servicio, hora")
}

func TestSynthesizeTruncatesToMaxChars(t *testing.T) {
	style := brand.DefaultStyle()
	style.MaxChars = 10
	s := NewSynthesizer(
		staticTransport(variantsJSON("una respuesta bastante larga", "otra cosa completamente distinta", "¿y algo más?"), nil),
		fixedStyles{style: style}, nil, DefaultStudio(), logging.Discard(),
	)
	for _, v := range s.Synthesize(context.Background(), IntentGreeting, Slots{}) {
		assert.LessOrEqual(t, len([]rune(v)), 10)
	}
}

func TestSynthesizePromptCarriesStyleAndPrice(t *testing.T) {
	var prompt string
	transport := llm.TransportFunc(func(_ context.Context, p string) (string, error) {
		prompt = p
		return "", errors.New("offline")
	})
	style := brand.DefaultStyle()
	style.Tone = "divertido"
	s := NewSynthesizer(transport, fixedStyles{style: style}, catalog.Default(), DefaultStudio(), logging.Discard())

	s.Synthesize(context.Background(), IntentBookAppointment, Slots{Servicio: "gelish", Fecha: "hoy", Hora: "5pm"})
	assert.Contains(t, prompt, "Tu estilo es: divertido.")
	assert.Contains(t, prompt, "- servicio: gelish")
	assert.Contains(t, prompt, "- precio: $180 MXN")
	assert.Contains(t, prompt, "confirmar la cita")
	assert.Contains(t, prompt, "Máximo 280 caracteres")
}

func TestBuildVariantPromptMissingSlots(t *testing.T) {
	prompt := BuildVariantPrompt(brand.Style{}, IntentBookAppointment, Slots{Servicio: "gelish"}, "")
	assert.Contains(t, prompt, "solicitar información faltante (fecha, hora)")
	assert.Contains(t, prompt, "Beauty Blossoms Studio")
	assert.NotContains(t, prompt, "precio:")

	empty := BuildVariantPrompt(brand.DefaultStyle(), IntentGreeting, Slots{}, "")
	assert.Contains(t, empty, "No hay datos específicos")
}

func TestParseVariants(t *testing.T) {
	got, ok := ParseVariants("Claro:\n" + variantsJSON(" uno ", "dos", "tres"))
	require.True(t, ok)
	assert.Equal(t, []string{"uno", "dos", "tres"}, got)

	misses := []string{
		"",
		"sin json",
		variantsJSON("uno", "dos"),
		variantsJSON("uno", "dos", "tres", "cuatro"),
		variantsJSON("uno", "", "tres"),
		`{"variants":["uno","dos","tres"]}`,
		`{"variants":[{"text":1},{"text":"dos"},{"text":"tres"}]}`,
		`{"variants":[{"texto":"uno"},{"text":"dos"},{"text":"tres"}]}`,
		`{"variantes":[]}`,
	}
	for _, raw := range misses {
		_, ok := ParseVariants(raw)
		assert.False(t, ok, "expected miss for %q", raw)
	}
}

func TestAssembleVariantsRepeatsWhenEverythingIsSimilar(t *testing.T) {
	got := assembleVariants([]string{"hola"}, []string{"hola", "hola!"}, DuplicateThreshold)
	require.Len(t, got, VariantCount)
	assert.Equal(t, "hola", got[0])
	assert.Equal(t, "hola!", got[1])
}

func TestFallbackVariantsPerIntent(t *testing.T) {
	studio := DefaultStudio()
	for _, v := range fallbackVariants(IntentFAQLocation, Slots{}, studio) {
		assert.Contains(t, v, studio.MapURL)
	}
	price := fallbackVariants(IntentFAQPrice, Slots{Servicio: "tinte"}, studio)
	assert.Contains(t, price[0], "tinte")
	generic := fallbackVariants(Intent("otro"), Slots{}, studio)
	assert.Equal(t, fallbackVariants(IntentFallback, Slots{}, studio), generic)
}
