package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	common "github.com/example/d7-messaging/internal/adapters/common"
	"github.com/example/d7-messaging/internal/composer"
	"github.com/example/d7-messaging/internal/models"
	"github.com/example/d7-messaging/internal/util"
)

const defaultBodyMaxBytes = 64 * 1024

// Sender is the composer capability the handler needs.
type Sender interface {
	Send(ctx context.Context, req *models.ComposeRequest) (*models.Row, error)
}

// Handler serves the HTTP routes.
type Handler struct {
	logger       zerolog.Logger
	sender       Sender
	bodyMaxBytes int
}

// NewHandler constructs a handler. A non-positive bodyMaxBytes uses 64KiB.
func NewHandler(sender Sender, bodyMaxBytes int, logger zerolog.Logger) (*Handler, error) {
	if sender == nil {
		return nil, errors.New("httpapi: sender is required")
	}
	if reflect.ValueOf(logger).IsZero() {
		logger = zerolog.Nop()
	}
	if bodyMaxBytes <= 0 {
		bodyMaxBytes = defaultBodyMaxBytes
	}
	return &Handler{logger: logger, sender: sender, bodyMaxBytes: bodyMaxBytes}, nil
}

type shapeResponse struct {
	Shape          string   `json:"shape"`
	RequiredFields []string `json:"requiredFields"`
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
	Field string `json:"field,omitempty"`
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListShapes returns the required form fields of every payload shape.
func (h *Handler) ListShapes(w http.ResponseWriter, _ *http.Request) {
	shapes := composer.Shapes()
	out := make([]shapeResponse, 0, len(shapes))
	for _, kind := range shapes {
		out = append(out, shapeResponse{Shape: kind.String(), RequiredFields: composer.RequiredFields(kind)})
	}
	respondJSON(w, http.StatusOK, out)
}

// SendMessage decodes a ComposeRequest, sends it and writes the output row.
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, int64(h.bodyMaxBytes)+1))
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, models.ErrorKindDecode, fmt.Errorf("read body: %w", err))
		return
	}
	if err := util.EnsureMaxBytes("request body", raw, h.bodyMaxBytes); err != nil {
		h.respondError(w, r, http.StatusRequestEntityTooLarge, models.ErrorKindDecode, err)
		return
	}

	var req models.ComposeRequest
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		h.respondError(w, r, http.StatusBadRequest, models.ErrorKindDecode, fmt.Errorf("decode request: %w", err))
		return
	}
	if req.RequestID == "" {
		req.RequestID = util.RequestIDOr(middleware.GetReqID(r.Context()))
	}

	row, err := h.sender.Send(r.Context(), &req)
	if err != nil {
		kind := common.Classify(err)
		h.respondError(w, r, statusFor(kind), kind, err)
		return
	}
	respondJSON(w, http.StatusOK, row)
}

func statusFor(kind string) int {
	switch kind {
	case models.ErrorKindMissingField, models.ErrorKindInvalidParameter, models.ErrorKindDecode:
		return http.StatusBadRequest
	case models.ErrorKindTransport:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, status int, kind string, err error) {
	h.logger.Warn().
		Err(err).
		Str("path", r.URL.Path).
		Str("kind", kind).
		Int("status", status).
		Msg("http request failed")

	respondJSON(w, status, errorResponse{
		Error: err.Error(),
		Kind:  kind,
		Field: common.FieldOf(err),
	})
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
