package conversation

import (
	"encoding/json"
	"strconv"
	"strings"
)

type serviceCatalog interface {
	Canonicalize(raw string) string
	PriceOf(raw string) (string, bool)
	IsKnown(raw string) bool
}

type extractOutcome string

const (
	outcomeParsed         extractOutcome = "parsed"
	outcomeNoJSON         extractOutcome = "no_json"
	outcomeInvalidJSON    extractOutcome = "invalid_json"
	outcomeTransportError extractOutcome = "transport_error"
)

// Extractor turns raw model text into an ExtractionResult. It never fails.
type Extractor struct {
	catalog serviceCatalog
	strict  bool
}

// NewExtractor builds an extractor. With strict set, a servicio that does not resolve
// to a catalog entry is dropped; a nil catalog disables that check.
func NewExtractor(catalog serviceCatalog, strict bool) *Extractor {
	return &Extractor{catalog: catalog, strict: strict}
}

// ExtractJSONObject returns the text from the first '{' to the last '}'. Models like
// to wrap JSON in prose or code fences; this tolerates both.
func ExtractJSONObject(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	return text[start : end+1], true
}

// FallbackResult is what every unusable model answer becomes.
func FallbackResult(raw string) ExtractionResult {
	narrative := strings.TrimSpace(raw)
	if narrative == "" {
		narrative = ApologyText
	}
	return ExtractionResult{Intent: IntentFallback, Narrative: narrative}
}

// Extract parses raw model output.
func (e *Extractor) Extract(raw string) ExtractionResult {
	result, _ := e.extract(raw)
	return result
}

func (e *Extractor) extract(raw string) (ExtractionResult, extractOutcome) {
	candidate, ok := ExtractJSONObject(raw)
	if !ok {
		return FallbackResult(raw), outcomeNoJSON
	}

	var payload struct {
		Intent   any            `json:"intent"`
		Slots    map[string]any `json:"slots"`
		Response any            `json:"response"`
	}
	if err := json.Unmarshal([]byte(candidate), &payload); err != nil {
		return FallbackResult(raw), outcomeInvalidJSON
	}

	result := ExtractionResult{
		Intent: normalizeIntent(stringValue(payload.Intent)),
		Slots: Slots{
			Servicio: stringValue(payload.Slots["servicio"]),
			Fecha:    stringValue(payload.Slots["fecha"]),
			Hora:     stringValue(payload.Slots["hora"]),
		},
		Narrative: stringValue(payload.Response),
	}
	if result.Narrative == "" {
		result.Narrative = ApologyText
	}
	if e != nil && e.strict && e.catalog != nil && result.Slots.Servicio != "" && !e.catalog.IsKnown(result.Slots.Servicio) {
		result.Slots.Servicio = ""
	}
	return result, outcomeParsed
}

// stringValue reads a loosely typed JSON scalar. null, "" and the literal "null"
// all mean absent.
func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		s := strings.TrimSpace(val)
		if strings.EqualFold(s, "null") {
			return ""
		}
		return s
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return ""
	}
}
