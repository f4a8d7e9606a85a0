package conversation

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/wolfman30/salon-bot/internal/chatlog"
	"github.com/wolfman30/salon-bot/internal/llm"
	"github.com/wolfman30/salon-bot/pkg/logging"
)

// ErrMissingPhone is returned when a message arrives without a sender.
var ErrMissingPhone = errors.New("conversation: phone required")

// Outbound actions recorded with each bot reply.
const (
	ActionBookingRequested  = "booking_requested"
	ActionRequestMissing    = "request_missing_info"
	ActionQuotePrice        = "quote_price"
	ActionShareLocation     = "share_location"
	ActionManualMediaReview = "manual_media_review"
)

// Variant pick strategies.
const (
	PickFirst  = "first"
	PickRandom = "random"
)

// Deliverer sends the final reply to the customer.
type Deliverer interface {
	Deliver(ctx context.Context, phone, text string) error
}

// OperatorNotifier alerts the studio staff that a conversation needs a human.
type OperatorNotifier interface {
	NotifyOperator(ctx context.Context, phone, reason string) error
}

// DispatcherConfig carries the reply policy switches.
type DispatcherConfig struct {
	UseVariants             bool
	UseCannedGreetings      bool
	StrictServiceValidation bool
	VariantPick             string
	// RawExtractionPrompt sends the customer text without instructions. Tuned models
	// already answer in the extraction format.
	RawExtractionPrompt bool
	Studio              Studio
	Location            *time.Location
}

// Dispatcher turns one inbound message into one reply: extraction, optional variant
// synthesis, catalog reconciliation, logging and delivery.
type Dispatcher struct {
	transport   llm.Transport
	catalog     serviceCatalog
	extractor   *Extractor
	synthesizer *Synthesizer
	cfg         DispatcherConfig

	chatLog   chatlog.Logger
	deliverer Deliverer
	notifier  OperatorNotifier
	observer  PipelineObserver
	events    *EventLogger
	logger    *logging.Logger
	now       func() time.Time

	rngMu sync.Mutex
	rng   *rand.Rand
}

// DispatcherOption customizes a Dispatcher.
type DispatcherOption func(*Dispatcher)

func WithChatLogger(l chatlog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if l != nil {
			d.chatLog = l
		}
	}
}

func WithDeliverer(del Deliverer) DispatcherOption {
	return func(d *Dispatcher) {
		if del != nil {
			d.deliverer = del
		}
	}
}

func WithNotifier(n OperatorNotifier) DispatcherOption {
	return func(d *Dispatcher) {
		if n != nil {
			d.notifier = n
		}
	}
}

// WithSynthesizer replaces the synthesizer built from the dispatcher's transport.
func WithSynthesizer(s *Synthesizer) DispatcherOption {
	return func(d *Dispatcher) {
		if s != nil {
			d.synthesizer = s
		}
	}
}

// WithRand pins the source used for random variant picks.
func WithRand(rng *rand.Rand) DispatcherOption {
	return func(d *Dispatcher) {
		if rng != nil {
			d.rng = rng
		}
	}
}

func WithClock(now func() time.Time) DispatcherOption {
	return func(d *Dispatcher) {
		if now != nil {
			d.now = now
		}
	}
}

func WithLogger(logger *logging.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

func WithObserver(o PipelineObserver) DispatcherOption {
	return func(d *Dispatcher) {
		if o != nil {
			d.observer = o
		}
	}
}

func WithEventLogger(e *EventLogger) DispatcherOption {
	return func(d *Dispatcher) {
		d.events = e
	}
}

// NewDispatcher wires the reply pipeline. transport and catalog are required.
func NewDispatcher(transport llm.Transport, catalog serviceCatalog, cfg DispatcherConfig, opts ...DispatcherOption) *Dispatcher {
	if transport == nil {
		panic("conversation: llm transport cannot be nil")
	}
	if catalog == nil {
		panic("conversation: service catalog cannot be nil")
	}
	cfg.Studio = cfg.Studio.withDefaults()
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.VariantPick != PickRandom {
		cfg.VariantPick = PickFirst
	}

	d := &Dispatcher{
		transport: transport,
		catalog:   catalog,
		extractor: NewExtractor(catalog, cfg.StrictServiceValidation),
		cfg:       cfg,
		chatLog:   chatlog.Nop{},
		observer:  noopObserver{},
		logger:    logging.Default(),
		now:       time.Now,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.synthesizer == nil && cfg.UseVariants {
		d.synthesizer = NewSynthesizer(transport, nil, catalog, cfg.Studio, d.logger)
	}
	return d
}

// Handle computes, logs and delivers the reply to one inbound text message. The
// returned reply is never empty; only a missing phone is an error.
func (d *Dispatcher) Handle(ctx context.Context, phone, text string) (string, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return "", ErrMissingPhone
	}
	d.events.MessageReceived(ctx, phone, text)

	result, outcome := d.extractIntent(ctx, phone, text)
	d.observer.ObserveExtraction(string(outcome))
	d.events.IntentExtracted(ctx, phone, result, outcome)

	d.appendRecord(ctx, chatlog.Record{
		Phone:     phone,
		Text:      text,
		Sender:    chatlog.SenderUser,
		Direction: chatlog.DirectionInbound,
		Intent:    string(result.Intent),
		Slots:     recordSlots(result.Slots),
	})

	slots := d.reconcileSlots(result.Slots)
	reply := d.chooseText(ctx, phone, result, slots)
	reply, action := d.postProcess(ctx, phone, result.Intent, slots, reply)
	if strings.TrimSpace(reply) == "" {
		reply = ApologyText
	}
	d.observer.ObserveReply(string(result.Intent))

	d.appendRecord(ctx, chatlog.Record{
		Phone:     phone,
		Text:      reply,
		Sender:    chatlog.SenderBot,
		Direction: chatlog.DirectionOutbound,
		Intent:    string(result.Intent),
		Slots:     recordSlots(slots),
		Action:    action,
	})

	delivered := d.deliver(ctx, phone, reply)
	d.events.ReplySent(ctx, phone, result.Intent, action, len([]rune(reply)), delivered)
	return reply, nil
}

// HandleMedia answers a message the bot cannot read (audio, images, stickers) and
// hands the conversation to the operator.
func (d *Dispatcher) HandleMedia(ctx context.Context, phone, mediaType string) (string, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return "", ErrMissingPhone
	}
	mediaType = strings.TrimSpace(mediaType)
	if mediaType == "" {
		mediaType = "media"
	}
	d.events.MessageReceived(ctx, phone, "["+mediaType+"]")

	d.appendRecord(ctx, chatlog.Record{
		Phone:     phone,
		Text:      "[" + mediaType + "]",
		Sender:    chatlog.SenderUser,
		Direction: chatlog.DirectionInbound,
		Action:    ActionManualMediaReview,
	})
	d.notifyOperator(ctx, phone, "Mensaje multimedia recibido: "+mediaType)

	reply := mediaReviewReply
	d.appendRecord(ctx, chatlog.Record{
		Phone:     phone,
		Text:      reply,
		Sender:    chatlog.SenderBot,
		Direction: chatlog.DirectionOutbound,
		Action:    ActionManualMediaReview,
	})
	delivered := d.deliver(ctx, phone, reply)
	d.events.ReplySent(ctx, phone, "", ActionManualMediaReview, len([]rune(reply)), delivered)
	return reply, nil
}

func (d *Dispatcher) extractIntent(ctx context.Context, phone, text string) (ExtractionResult, extractOutcome) {
	raw, err := d.transport.SubmitPrompt(ctx, BuildExtractionPrompt(text, d.cfg.RawExtractionPrompt))
	if err != nil {
		d.logger.Warn("intent extraction failed", "phone", phone, "error", err)
		d.events.ErrorOccurred(ctx, phone, "extract", err)
		return FallbackResult(""), outcomeTransportError
	}
	return d.extractor.extract(raw)
}

// reconcileSlots swaps the service for its canonical catalog name and expands
// relative dates.
func (d *Dispatcher) reconcileSlots(slots Slots) Slots {
	if slots.Servicio != "" && d.catalog.IsKnown(slots.Servicio) {
		slots.Servicio = d.catalog.Canonicalize(slots.Servicio)
	}
	if slots.Fecha != "" {
		slots.Fecha = FormatFecha(slots.Fecha, d.now().In(d.cfg.Location))
	}
	return slots
}

func (d *Dispatcher) chooseText(ctx context.Context, phone string, result ExtractionResult, slots Slots) string {
	if !d.cfg.UseVariants || d.synthesizer == nil || result.Intent == IntentFallback {
		return result.Narrative
	}
	variants, source := d.synthesizer.synthesize(ctx, result.Intent, slots)
	d.observer.ObserveVariants(source)
	if len(variants) == 0 {
		return result.Narrative
	}
	idx := d.pick(len(variants))
	d.events.VariantsGenerated(ctx, phone, result.Intent, source, idx)
	return variants[idx]
}

func (d *Dispatcher) pick(n int) int {
	if d.cfg.VariantPick != PickRandom || n <= 1 {
		return 0
	}
	d.rngMu.Lock()
	defer d.rngMu.Unlock()
	return d.rng.Intn(n)
}

func (d *Dispatcher) postProcess(ctx context.Context, phone string, intent Intent, slots Slots, text string) (string, string) {
	switch intent {
	case IntentBookAppointment:
		price, _ := d.catalog.PriceOf(slots.Servicio)
		d.notifyOperator(ctx, phone, operatorBookingReason(slots.Fecha, slots.Hora, slots.Servicio))
		if !slots.Complete() {
			return missingInfoReply(slots.Missing()), ActionRequestMissing
		}
		if d.cfg.UseVariants && mentionsBooking(text, slots) {
			if price != "" && !strings.Contains(text, price) {
				text = strings.TrimSpace(text) + costClause(price)
			}
			return text, ActionBookingRequested
		}
		return bookingConfirmation(slots.Servicio, slots.Fecha, slots.Hora, price), ActionBookingRequested

	case IntentFAQPrice:
		if slots.Servicio == "" {
			return text, ""
		}
		if price, ok := d.catalog.PriceOf(slots.Servicio); ok {
			return priceReply(slots.Servicio, price), ActionQuotePrice
		}
		return variablePriceReply, ActionQuotePrice

	case IntentFAQLocation:
		return locationReply(d.cfg.Studio), ActionShareLocation

	case IntentGreeting:
		if d.cfg.UseCannedGreetings {
			return greetingReply(), ""
		}
	case IntentGratitude:
		if d.cfg.UseCannedGreetings {
			return gratitudeReply(d.cfg.Studio), ""
		}
	}
	return text, ""
}

// mentionsBooking reports whether a variant already carries every booking detail.
func mentionsBooking(text string, slots Slots) bool {
	lower := strings.ToLower(text)
	for _, v := range []string{slots.Servicio, slots.Fecha, slots.Hora} {
		if !strings.Contains(lower, strings.ToLower(v)) {
			return false
		}
	}
	return true
}

func (d *Dispatcher) appendRecord(ctx context.Context, rec chatlog.Record) {
	if err := d.chatLog.Append(ctx, rec); err != nil {
		d.observer.ObserveChatLogFailure(string(rec.Direction))
		d.logger.Error("failed to log chat message", "phone", rec.Phone, "direction", string(rec.Direction), "error", err)
		d.events.ErrorOccurred(ctx, rec.Phone, "chat_log", err)
	}
}

func (d *Dispatcher) notifyOperator(ctx context.Context, phone, reason string) {
	if d.notifier == nil {
		return
	}
	err := d.notifier.NotifyOperator(ctx, phone, reason)
	d.observer.ObserveNotification(err)
	if err != nil {
		d.logger.Warn("operator notification failed", "phone", phone, "error", err)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, phone, text string) bool {
	if d.deliverer == nil {
		return false
	}
	err := d.deliverer.Deliver(ctx, phone, text)
	d.observer.ObserveDelivery(err)
	if err != nil {
		d.logger.Error("reply delivery failed", "phone", phone, "error", err)
		d.events.ErrorOccurred(ctx, phone, "deliver", err)
		return false
	}
	return true
}

func recordSlots(s Slots) *chatlog.Slots {
	if s.Empty() {
		return nil
	}
	return &chatlog.Slots{Servicio: s.Servicio, Fecha: s.Fecha, Hora: s.Hora}
}
