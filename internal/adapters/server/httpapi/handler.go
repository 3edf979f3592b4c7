// Package httpapi provides the REST HTTP adapter for the server surfaces.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/hylla/zukai/internal/adapters/server/common"
)

// maxRequestBodyBytes limits decoded JSON payload size for fail-closed request handling.
const maxRequestBodyBytes int64 = 1 << 20

// Handler serves the versioned API subrouter mounted under `/api/v1`.
type Handler struct {
	service common.Service
}

// APIError represents one structured API failure response.
type APIError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Hint    string         `json:"hint,omitempty"`
	Context map[string]any `json:"context,omitempty"`
}

// ErrorEnvelope wraps one structured API error.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// NewHandler constructs one HTTP API adapter over the shared command surface.
func NewHandler(service common.Service) *Handler {
	return &Handler{service: service}
}

// ServeHTTP routes one versioned API request to the matching handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		writeJSONError(w, http.StatusServiceUnavailable, APIError{
			Code:    "service_unavailable",
			Message: "diagram service is not configured",
		})
		return
	}
	path := normalizePath(r.URL.Path)
	head, rest, _ := strings.Cut(path, "/")
	switch head {
	case "logic":
		h.routeLogic(w, r, rest)
	case "purpose":
		h.routePurpose(w, r, rest)
	case "history":
		if rest != "" {
			writeNotFound(w)
			return
		}
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w, http.MethodGet)
			return
		}
		h.handleHistory(w, r)
	default:
		writeNotFound(w)
	}
}

// routeLogic dispatches `/logic/...` routes.
func (h *Handler) routeLogic(w http.ResponseWriter, r *http.Request, path string) {
	resource, id, _ := strings.Cut(path, "/")
	switch {
	case path == "":
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w, http.MethodGet)
			return
		}
		state, err := h.service.LogicState(r.Context())
		respond(w, http.StatusOK, state, err)
	case path == "items":
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w, http.MethodPost)
			return
		}
		var req common.AddItemRequest
		if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
			writeErrorFrom(w, err)
			return
		}
		item, err := h.service.AddItem(r.Context(), req)
		respond(w, http.StatusCreated, item, err)
	case resource == "items" && validID(id):
		switch r.Method {
		case http.MethodPatch:
			var req common.UpdateItemRequest
			if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
				writeErrorFrom(w, err)
				return
			}
			req.ID = id
			out, err := h.service.UpdateItem(r.Context(), req)
			respond(w, http.StatusOK, out, err)
		case http.MethodDelete:
			out, err := h.service.RemoveItem(r.Context(), common.DeleteRequest{Actor: actorFromQuery(r), ID: id})
			respond(w, http.StatusOK, out, err)
		default:
			writeMethodNotAllowed(w, http.MethodPatch, http.MethodDelete)
		}
	case path == "connections":
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w, http.MethodPost)
			return
		}
		var req common.ConnectRequest
		if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
			writeErrorFrom(w, err)
			return
		}
		conn, err := h.service.Connect(r.Context(), req)
		respond(w, http.StatusCreated, conn, err)
	case resource == "connections" && validID(id):
		if r.Method != http.MethodDelete {
			writeMethodNotAllowed(w, http.MethodDelete)
			return
		}
		conn, err := h.service.Disconnect(r.Context(), common.DeleteRequest{Actor: actorFromQuery(r), ID: id})
		respond(w, http.StatusOK, conn, err)
	case path == "reset":
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w, http.MethodPost)
			return
		}
		var req common.ResetRequest
		if err := decodeOptionalJSONBody(r.Context(), w, r, &req); err != nil {
			writeErrorFrom(w, err)
			return
		}
		state, err := h.service.ResetLogic(r.Context(), req)
		respond(w, http.StatusOK, state, err)
	case path == "document":
		switch r.Method {
		case http.MethodGet:
			doc, err := h.service.ExportLogic(r.Context())
			respond(w, http.StatusOK, doc, err)
		case http.MethodPut:
			raw, err := readRawBody(r.Context(), w, r)
			if err != nil {
				writeErrorFrom(w, err)
				return
			}
			state, err := h.service.ImportLogic(r.Context(), common.ImportRequest{Actor: actorFromQuery(r), Document: raw})
			respond(w, http.StatusOK, state, err)
		default:
			writeMethodNotAllowed(w, http.MethodGet, http.MethodPut)
		}
	case path == "image":
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w, http.MethodGet)
			return
		}
		img, err := h.service.ExportLogicImage(r.Context(), common.ExportImageRequest{Format: r.URL.Query().Get("format")})
		writeImage(w, img, err)
	default:
		writeNotFound(w)
	}
}

// routePurpose dispatches `/purpose/...` routes.
func (h *Handler) routePurpose(w http.ResponseWriter, r *http.Request, path string) {
	resource, id, _ := strings.Cut(path, "/")
	switch {
	case path == "":
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w, http.MethodGet)
			return
		}
		state, err := h.service.PurposeState(r.Context())
		respond(w, http.StatusOK, state, err)
	case path == "mode":
		h.handleSelect(w, r, h.service.SetMode)
	case path == "timeline":
		h.handleSelect(w, r, h.service.SelectTimeline)
	case path == "comparison":
		h.handleSelect(w, r, h.service.SelectComparison)
	case path == "comparisons":
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w, http.MethodPost)
			return
		}
		var req common.SelectRequest
		if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
			writeErrorFrom(w, err)
			return
		}
		state, err := h.service.AddComparison(r.Context(), req)
		respond(w, http.StatusCreated, state, err)
	case resource == "comparisons" && validID(id):
		if r.Method != http.MethodDelete {
			writeMethodNotAllowed(w, http.MethodDelete)
			return
		}
		state, err := h.service.RemoveComparison(r.Context(), common.SelectRequest{Actor: actorFromQuery(r), Value: id})
		respond(w, http.StatusOK, state, err)
	case path == "stakeholders":
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w, http.MethodPost)
			return
		}
		var req common.AddStakeholderRequest
		if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
			writeErrorFrom(w, err)
			return
		}
		s, err := h.service.AddStakeholder(r.Context(), req)
		respond(w, http.StatusCreated, s, err)
	case resource == "stakeholders" && validID(id):
		switch r.Method {
		case http.MethodPatch:
			var req common.UpdateStakeholderRequest
			if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
				writeErrorFrom(w, err)
				return
			}
			req.ID = id
			s, err := h.service.UpdateStakeholder(r.Context(), req)
			respond(w, http.StatusOK, s, err)
		case http.MethodDelete:
			s, err := h.service.RemoveStakeholder(r.Context(), common.DeleteRequest{Actor: actorFromQuery(r), ID: id})
			respond(w, http.StatusOK, s, err)
		default:
			writeMethodNotAllowed(w, http.MethodPatch, http.MethodDelete)
		}
	case path == "text":
		if r.Method != http.MethodPatch {
			writeMethodNotAllowed(w, http.MethodPatch)
			return
		}
		var req common.UpdatePurposeRequest
		if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
			writeErrorFrom(w, err)
			return
		}
		text, err := h.service.UpdatePurpose(r.Context(), req)
		respond(w, http.StatusOK, text, err)
	case path == "reset":
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w, http.MethodPost)
			return
		}
		var req common.ResetRequest
		if err := decodeOptionalJSONBody(r.Context(), w, r, &req); err != nil {
			writeErrorFrom(w, err)
			return
		}
		state, err := h.service.ResetPurpose(r.Context(), req)
		respond(w, http.StatusOK, state, err)
	case path == "document":
		switch r.Method {
		case http.MethodGet:
			doc, err := h.service.ExportPurpose(r.Context())
			respond(w, http.StatusOK, doc, err)
		case http.MethodPut:
			raw, err := readRawBody(r.Context(), w, r)
			if err != nil {
				writeErrorFrom(w, err)
				return
			}
			state, err := h.service.ImportPurpose(r.Context(), common.ImportRequest{Actor: actorFromQuery(r), Document: raw})
			respond(w, http.StatusOK, state, err)
		default:
			writeMethodNotAllowed(w, http.MethodGet, http.MethodPut)
		}
	case path == "image":
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w, http.MethodGet)
			return
		}
		img, err := h.service.ExportPurposeImage(r.Context(), common.ExportImageRequest{Format: r.URL.Query().Get("format")})
		writeImage(w, img, err)
	default:
		writeNotFound(w)
	}
}

// handleSelect serves PUT routes that take one `value`.
func (h *Handler) handleSelect(w http.ResponseWriter, r *http.Request, fn func(context.Context, common.SelectRequest) (common.PurposeState, error)) {
	if r.Method != http.MethodPut {
		writeMethodNotAllowed(w, http.MethodPut)
		return
	}
	var req common.SelectRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	state, err := fn(r.Context(), req)
	respond(w, http.StatusOK, state, err)
}

// handleHistory serves GET `/history?diagram=logic&limit=20`.
func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeJSONError(w, http.StatusBadRequest, APIError{
				Code:    "invalid_request",
				Message: "limit must be a non-negative integer",
			})
			return
		}
		limit = n
	}
	entries, err := h.service.History(r.Context(), r.URL.Query().Get("diagram"), limit)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"events": entries,
	})
}

// actorFromQuery reads actor attribution for bodyless requests.
func actorFromQuery(r *http.Request) common.Actor {
	return common.Actor{
		ActorID:   strings.TrimSpace(r.URL.Query().Get("actor_id")),
		ActorType: strings.TrimSpace(r.URL.Query().Get("actor_type")),
	}
}

// validID reports whether one trailing path segment names a single entity.
func validID(id string) bool {
	id = strings.TrimSpace(id)
	return id != "" && !strings.Contains(id, "/")
}

// normalizePath canonicalizes one request path for route matching.
func normalizePath(path string) string {
	path = strings.TrimSpace(path)
	path = strings.Trim(path, "/")
	return path
}

// respond writes payload on success or the mapped error.
func respond(w http.ResponseWriter, statusCode int, payload any, err error) {
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, statusCode, payload)
}

// writeImage writes rendered image bytes with a download file name.
func writeImage(w http.ResponseWriter, img common.ImageResult, err error) {
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	w.Header().Set("Content-Type", img.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", img.FileName))
	if img.FellBack {
		w.Header().Set("X-Export-Fallback", img.FallbackReason)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img.Data)
}

// writeErrorFrom maps adapter errors into structured HTTP responses.
func writeErrorFrom(w http.ResponseWriter, err error) {
	switch {
	case err == nil:
		writeJSONError(w, http.StatusInternalServerError, APIError{
			Code:    "internal_error",
			Message: "unknown error",
		})
	case errors.Is(err, common.ErrInvalidRequest):
		writeJSONError(w, http.StatusBadRequest, APIError{
			Code:    "invalid_request",
			Message: err.Error(),
		})
	case errors.Is(err, common.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, APIError{
			Code:    "not_found",
			Message: err.Error(),
		})
	case errors.Is(err, common.ErrConflict):
		writeJSONError(w, http.StatusConflict, APIError{
			Code:    "conflict",
			Message: err.Error(),
			Hint:    conflictHint(err),
		})
	case errors.Is(err, common.ErrUnavailable):
		writeJSONError(w, http.StatusServiceUnavailable, APIError{
			Code:    "service_unavailable",
			Message: err.Error(),
		})
	default:
		writeJSONError(w, http.StatusInternalServerError, APIError{
			Code:    "internal_error",
			Message: err.Error(),
		})
	}
}

// conflictHint suggests a next step for recoverable conflicts.
func conflictHint(err error) string {
	if strings.Contains(err.Error(), "no comparison selected") {
		return "Select a comparison with PUT /purpose/comparison first."
	}
	return ""
}

// writeNotFound writes the structured unknown-endpoint response.
func writeNotFound(w http.ResponseWriter) {
	writeJSONError(w, http.StatusNotFound, APIError{
		Code:    "not_found",
		Message: "endpoint not found",
	})
}

// writeMethodNotAllowed writes a structured 405 response with `Allow` headers.
func writeMethodNotAllowed(w http.ResponseWriter, methods ...string) {
	if len(methods) > 0 {
		w.Header().Set("Allow", strings.Join(methods, ", "))
	}
	writeJSONError(w, http.StatusMethodNotAllowed, APIError{
		Code:    "method_not_allowed",
		Message: "method not allowed",
	})
}

// writeJSONError writes one structured error envelope.
func writeJSONError(w http.ResponseWriter, statusCode int, apiErr APIError) {
	writeJSON(w, statusCode, ErrorEnvelope{Error: apiErr})
}

// writeJSON writes one JSON response envelope.
func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, fmt.Sprintf(`{"error":{"code":"encode_error","message":"%s"}}`, err.Error()), http.StatusInternalServerError)
	}
}

// decodeJSONBody decodes one required JSON request body with strict shape checks.
func decodeJSONBody(ctx context.Context, w http.ResponseWriter, r *http.Request, out any) error {
	reader := http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	defer reader.Close()

	decoder := json.NewDecoder(reader)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("decode request body: %w", errors.Join(common.ErrInvalidRequest, err))
	}
	// Reject trailing payloads so malformed JSON bodies fail closed.
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode request body: trailing content: %w", common.ErrInvalidRequest)
	}
	select {
	case <-ctx.Done():
		return fmt.Errorf("request canceled: %w", ctx.Err())
	default:
		return nil
	}
}

// decodeOptionalJSONBody decodes one optional JSON body and ignores empty payloads.
func decodeOptionalJSONBody(ctx context.Context, w http.ResponseWriter, r *http.Request, out any) error {
	reader := http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	defer reader.Close()

	decoder := json.NewDecoder(reader)
	decoder.DisallowUnknownFields()
	err := decoder.Decode(out)
	if err == nil {
		select {
		case <-ctx.Done():
			return fmt.Errorf("request canceled: %w", ctx.Err())
		default:
			return nil
		}
	}
	if errors.Is(err, io.EOF) {
		return nil
	}
	return fmt.Errorf("decode request body: %w", errors.Join(common.ErrInvalidRequest, err))
}

// readRawBody reads one JSON document body without decoding it.
func readRawBody(ctx context.Context, w http.ResponseWriter, r *http.Request) (json.RawMessage, error) {
	reader := http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read request body: %w", errors.Join(common.ErrInvalidRequest, err))
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("read request body: malformed json: %w", common.ErrInvalidRequest)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("request canceled: %w", err)
	}
	return raw, nil
}
