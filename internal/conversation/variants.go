package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/wolfman30/salon-bot/internal/brand"
	"github.com/wolfman30/salon-bot/internal/llm"
	"github.com/wolfman30/salon-bot/pkg/logging"
)

// VariantCount is how many candidate replies the synthesizer always returns.
const VariantCount = 3

// Variant sources reported to metrics.
const (
	VariantSourceModel    = "model"
	VariantSourceMixed    = "mixed"
	VariantSourceFallback = "fallback"
)

type styleProvider interface {
	Get(ctx context.Context) brand.Style
}

// Synthesizer asks the model for three phrasings of a reply and guarantees three
// usable ones come back, filling gaps with templates.
type Synthesizer struct {
	transport llm.Transport
	styles    styleProvider
	catalog   serviceCatalog
	studio    Studio
	threshold float64
	logger    *logging.Logger
}

// NewSynthesizer wires the synthesizer. styles and catalog may be nil; the default
// brand style is used and price facts are skipped.
func NewSynthesizer(transport llm.Transport, styles styleProvider, catalog serviceCatalog, studio Studio, logger *logging.Logger) *Synthesizer {
	if transport == nil {
		panic("conversation: synthesizer transport cannot be nil")
	}
	if styles == nil {
		styles = brand.NewCache(nil)
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Synthesizer{
		transport: transport,
		styles:    styles,
		catalog:   catalog,
		studio:    studio.withDefaults(),
		threshold: DuplicateThreshold,
		logger:    logger,
	}
}

// Synthesize returns exactly three non-empty replies for intent and slots.
func (s *Synthesizer) Synthesize(ctx context.Context, intent Intent, slots Slots) []string {
	variants, _ := s.synthesize(ctx, intent, slots)
	return variants
}

func (s *Synthesizer) synthesize(ctx context.Context, intent Intent, slots Slots) ([]string, string) {
	style := s.styles.Get(ctx)
	price := s.priceFor(slots.Servicio)
	fallbacks := fallbackVariants(intent, slots, s.studio)

	raw, err := s.transport.SubmitPrompt(ctx, BuildVariantPrompt(style, intent, slots, price))
	if err != nil {
		s.logger.Warn("variant generation failed, using templates", "intent", string(intent), "error", err)
		return assembleVariants(fallbacks, fallbacks, s.threshold), VariantSourceFallback
	}

	model, ok := ParseVariants(raw)
	if !ok {
		s.logger.Warn("variant response unusable, using templates", "intent", string(intent))
		return assembleVariants(fallbacks, fallbacks, s.threshold), VariantSourceFallback
	}
	for i := range model {
		model[i] = truncateRunes(model[i], style.MaxChars)
	}

	variants := assembleVariants(model, fallbacks, s.threshold)
	source := VariantSourceModel
	if len(Dedupe(model, s.threshold)) < VariantCount {
		source = VariantSourceMixed
	}
	return variants, source
}

func (s *Synthesizer) priceFor(servicio string) string {
	if s.catalog == nil || servicio == "" {
		return ""
	}
	price, _ := s.catalog.PriceOf(servicio)
	return price
}

// ParseVariants validates a {"variants":[{"text":...}x3]} envelope. Anything other
// than exactly three non-empty texts is a miss.
func ParseVariants(raw string) ([]string, bool) {
	candidate, ok := ExtractJSONObject(raw)
	if !ok {
		return nil, false
	}
	var envelope struct {
		Variants []json.RawMessage `json:"variants"`
	}
	if err := json.Unmarshal([]byte(candidate), &envelope); err != nil {
		return nil, false
	}
	if len(envelope.Variants) != VariantCount {
		return nil, false
	}

	out := make([]string, 0, VariantCount)
	for _, entry := range envelope.Variants {
		var variant struct {
			Text *string `json:"text"`
		}
		if err := json.Unmarshal(entry, &variant); err != nil || variant.Text == nil {
			return nil, false
		}
		text := strings.TrimSpace(*variant.Text)
		if text == "" {
			return nil, false
		}
		out = append(out, text)
	}
	return out, true
}

// assembleVariants dedupes primary and tops it up from fallbacks: first with
// templates that are not near-duplicates, then with any unused template, and
// finally by repeating templates.
func assembleVariants(primary, fallbacks []string, threshold float64) []string {
	kept := Dedupe(primary, threshold)
	for _, candidate := range fallbacks {
		if len(kept) >= VariantCount {
			break
		}
		if !nearDuplicate(candidate, kept, threshold) {
			kept = append(kept, candidate)
		}
	}
	for _, candidate := range fallbacks {
		if len(kept) >= VariantCount {
			break
		}
		if !containsExact(kept, candidate) {
			kept = append(kept, candidate)
		}
	}
	for i := 0; len(kept) < VariantCount && len(fallbacks) > 0; i++ {
		kept = append(kept, fallbacks[i%len(fallbacks)])
	}
	if len(kept) > VariantCount {
		kept = kept[:VariantCount]
	}
	return kept
}

func containsExact(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return strings.TrimSpace(string(runes[:limit]))
}

// BuildVariantPrompt renders the Spanish instruction that asks for three phrasings.
func BuildVariantPrompt(style brand.Style, intent Intent, slots Slots, price string) string {
	style = style.WithDefaults()

	var facts []string
	if slots.Servicio != "" {
		facts = append(facts, "servicio: "+slots.Servicio)
	}
	if slots.Fecha != "" {
		facts = append(facts, "fecha: "+slots.Fecha)
	}
	if slots.Hora != "" {
		facts = append(facts, "hora: "+slots.Hora)
	}
	if price != "" {
		facts = append(facts, "precio: "+price)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Eres BeautyBot, asistente de %s.\n", style.BrandName)
	fmt.Fprintf(&b, "Tu estilo es: %s.\n", style.Tone)
	fmt.Fprintf(&b, "Idioma y región: %s.\n", style.Locale)
	fmt.Fprintf(&b, "Emojis permitidos: %s.\n", strings.Join(style.AllowedEmojis, ", "))
	fmt.Fprintf(&b, "Llamados a acción: %s.\n", strings.Join(style.CallToActions, ", "))
	fmt.Fprintf(&b, "Máximo %d caracteres por respuesta.\n\n", style.MaxChars)

	b.WriteString("Datos disponibles:\n")
	if len(facts) == 0 {
		b.WriteString("No hay datos específicos\n")
	}
	for _, fact := range facts {
		fmt.Fprintf(&b, "- %s\n", fact)
	}

	fmt.Fprintf(&b, "\nGenera exactamente 3 variantes de respuesta en español para: %s\n\n", variantAction(intent, slots))
	b.WriteString("Instrucciones específicas:\n")
	b.WriteString("- Si tienes TODOS los datos (servicio, fecha, hora): confirma la cita de forma cálida y profesional\n")
	b.WriteString("- Si faltan datos: pregunta SÓLO por la información faltante + un CTA breve\n")
	fmt.Fprintf(&b, "- Mantén un tono %s\n", style.Tone)
	b.WriteString("- Usa emojis de la lista permitida (máximo 2 por respuesta)\n")
	b.WriteString("- Incluye CTAs del listado cuando sea apropiado\n")
	fmt.Fprintf(&b, "- Respuestas cortas, máximo %d caracteres\n", style.MaxChars)
	b.WriteString("- NO incluyas precios inventados ni enlaces\n")
	if price != "" {
		fmt.Fprintf(&b, "- Incluye el precio como \"costo: %s\"\n", price)
	}
	b.WriteString(`
Respuesta en formato JSON exacto:
{
  "variants": [
    { "text": "Primera variante aquí" },
    { "text": "Segunda variante aquí" },
    { "text": "Tercera variante aquí" }
  ]
}
`)
	return b.String()
}

func variantAction(intent Intent, slots Slots) string {
	switch intent {
	case IntentBookAppointment:
		if slots.Complete() {
			return "confirmar la cita"
		}
		return "solicitar información faltante (" + strings.Join(slots.Missing(), ", ") + ")"
	case IntentFAQPrice:
		return "responder una pregunta sobre precios"
	case IntentFAQLocation:
		return "compartir la ubicación del estudio"
	case IntentGreeting:
		return "saludar a la clienta y ofrecer los servicios"
	case IntentGratitude:
		return "responder a un agradecimiento"
	default:
		return "ofrecer ayuda adicional"
	}
}
