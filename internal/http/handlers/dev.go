package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	httpmiddleware "github.com/wolfman30/salon-bot/internal/http/middleware"
	"github.com/wolfman30/salon-bot/internal/observability/metrics"
	"github.com/wolfman30/salon-bot/pkg/logging"
)

const maxSimulateBody = 64 << 10

// Replier computes the bot's reply for a customer message.
type Replier interface {
	Handle(ctx context.Context, phone, text string) (string, error)
	HandleMedia(ctx context.Context, phone, mediaType string) (string, error)
}

// DevHandler lets testers talk to the reply pipeline without WhatsApp.
type DevHandler struct {
	replier  Replier
	gatherer prometheus.Gatherer
	logger   *logging.Logger
}

// NewDevHandler creates the development handler. gatherer may be nil to use the
// default registry.
func NewDevHandler(replier Replier, gatherer prometheus.Gatherer, logger *logging.Logger) *DevHandler {
	if replier == nil {
		panic("handlers: replier cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &DevHandler{replier: replier, gatherer: gatherer, logger: logger}
}

// SimulateRequest is a fake inbound message. MediaType marks a media message.
type SimulateRequest struct {
	Phone     string `json:"phone"`
	Text      string `json:"text"`
	MediaType string `json:"media_type,omitempty"`
}

// SimulateResponse carries the reply the customer would have received.
type SimulateResponse struct {
	Phone string `json:"phone"`
	Reply string `json:"reply"`
}

// Simulate runs one message through the pipeline synchronously.
// POST /dev/simulate
func (h *DevHandler) Simulate(w http.ResponseWriter, r *http.Request) {
	var req SimulateRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxSimulateBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.Phone = strings.TrimSpace(req.Phone)
	if req.Phone == "" {
		writeError(w, http.StatusBadRequest, "phone is required")
		return
	}

	tester, _ := httpmiddleware.TesterFromContext(r.Context())
	h.logger.Info("dev: simulating message", "phone", req.Phone, "tester", tester, "media", req.MediaType != "")

	var (
		reply string
		err   error
	)
	if mediaType := strings.TrimSpace(req.MediaType); mediaType != "" {
		reply, err = h.replier.HandleMedia(r.Context(), req.Phone, mediaType)
	} else {
		reply, err = h.replier.Handle(r.Context(), req.Phone, req.Text)
	}
	if err != nil {
		h.logger.Error("dev: simulate failed", "error", err, "phone", req.Phone)
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, SimulateResponse{Phone: req.Phone, Reply: reply})
}

// Stats summarizes the pipeline counters.
// GET /dev/stats
func (h *DevHandler) Stats(w http.ResponseWriter, r *http.Request) {
	summary, err := metrics.Summarize(h.gatherer)
	if err != nil {
		h.logger.Error("dev: stats failed", "error", err)
		writeError(w, http.StatusInternalServerError, "stats unavailable")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
