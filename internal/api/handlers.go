package api

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/huangsam/watchlist/internal/contract"
	"github.com/huangsam/watchlist/schema"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Handler serves the list endpoints on top of a ListService.
type Handler struct {
	svc contract.ListService
}

// NewHandler wraps the list service.
func NewHandler(svc contract.ListService) *Handler {
	return &Handler{svc: svc}
}

// userID validates the user-id header.
func userID(r *http.Request) (string, error) {
	return contract.ValidateUserID(r.Header.Get(UserIDHeader))
}

// AddToList handles POST /my-list.
func (h *Handler) AddToList(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req AddToListRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if err := validateStruct(&req); err != nil {
		respondError(w, r, err)
		return
	}

	entry, err := h.svc.AddToList(r.Context(), user, req.ContentID, schema.ContentType(req.ContentType))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, entry)
}

// RemoveFromList handles DELETE /my-list/{contentId}.
func (h *Handler) RemoveFromList(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	contentID, err := contentIDParam(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	result, err := h.svc.RemoveFromList(r.Context(), user, contentID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// contentIDParam returns the decoded {contentId} segment.
// chi routes on the escaped path when one is present, so the segment may still carry escapes like %2F.
func contentIDParam(r *http.Request) (string, error) {
	contentID := chi.URLParam(r, "contentId")
	if r.URL.RawPath == "" {
		return contentID, nil
	}
	decoded, err := url.PathUnescape(contentID)
	if err != nil {
		return "", schema.InvalidInput(schema.MsgContentIDInvalid)
	}
	return decoded, nil
}

// GetMyList handles GET /my-list?page=N&size=M.
func (h *Handler) GetMyList(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	query := r.URL.Query()
	page, size, err := contract.ParsePagination(query.Get("page"), query.Get("size"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	result, err := h.svc.GetMyList(r.Context(), user, page, size)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	report := h.svc.Health(r.Context())
	status := http.StatusOK
	if report.Status == schema.Unhealthy {
		status = http.StatusServiceUnavailable
	}
	respondJSON(w, status, report)
}

// decodeBody decodes a single JSON object and rejects unknown fields.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "application/json") {
		return schema.InvalidInput("Content-Type must be application/json")
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return schema.InvalidInput("Request body too large")
		}
		return schema.NewError(schema.KindInvalidInput, "Invalid request body", err)
	}
	if dec.More() {
		return schema.InvalidInput("Request body must contain a single JSON object")
	}
	return nil
}
