package cart

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-headunit/internal/common"
	"github.com/noah-isme/backend-headunit/internal/lock"
	"github.com/noah-isme/backend-headunit/internal/pricing"
)

// Handler wires cart services to HTTP.
type Handler struct {
	Svc *Service
}

type addItemRequest struct {
	CatalogID *int            `json:"catalogId" validate:"required,gte=0"`
	Options   pricing.Options `json:"options"`
}

type updateItemRequest struct {
	Options pricing.Options `json:"options"`
}

type contextRequest struct {
	Postcode *string `json:"postcode"`
	Currency *string `json:"currency"`
}

type lineView struct {
	Index     int             `json:"index"`
	CatalogID int             `json:"catalogId"`
	Options   pricing.Options `json:"options"`
}

type cartView struct {
	Lines     []lineView      `json:"lines"`
	ItemCount int             `json:"itemCount"`
	Context   pricing.Context `json:"context"`
}

func view(c Cart) cartView {
	lines := make([]lineView, 0, len(c.Lines))
	for i, l := range c.Lines {
		lines = append(lines, lineView{Index: i, CatalogID: l.CatalogID, Options: l.Options})
	}
	return cartView{Lines: lines, ItemCount: len(lines), Context: c.Context}
}

// Get returns the session cart.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	c, err := h.Svc.Get(r.Context(), session)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	common.Data(w, http.StatusOK, view(c))
}

// AddItem appends a configured unit to the cart.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	var req addItemRequest
	if appErr := common.DecodeJSON(r, &req); appErr != nil {
		common.WriteAppError(w, appErr)
		return
	}
	c, err := h.Svc.AddLine(r.Context(), session, pricing.Line{CatalogID: *req.CatalogID, Options: req.Options})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	common.Data(w, http.StatusCreated, view(c))
}

// UpdateItem replaces the options on one line.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	index, ok := lineIndex(w, r)
	if !ok {
		return
	}
	var req updateItemRequest
	if appErr := common.DecodeJSON(r, &req); appErr != nil {
		common.WriteAppError(w, appErr)
		return
	}
	c, err := h.Svc.UpdateLine(r.Context(), session, index, req.Options)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	common.Data(w, http.StatusOK, view(c))
}

// RemoveItem deletes one line.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	index, ok := lineIndex(w, r)
	if !ok {
		return
	}
	c, err := h.Svc.RemoveLine(r.Context(), session, index)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	common.Data(w, http.StatusOK, view(c))
}

// SetContext updates the order postcode and display currency.
func (h *Handler) SetContext(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	var req contextRequest
	if appErr := common.DecodeJSON(r, &req); appErr != nil {
		common.WriteAppError(w, appErr)
		return
	}
	c, err := h.Svc.SetContext(r.Context(), session, ContextUpdate{Postcode: req.Postcode, Currency: req.Currency})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	common.Data(w, http.StatusOK, view(c))
}

// Clear empties the cart.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := h.Svc.Clear(r.Context(), session); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (string, bool) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return "", false
	}
	id, ok := common.SessionID(r.Context())
	if !ok {
		common.JSONError(w, http.StatusBadRequest, "SESSION_REQUIRED", "session is required", nil)
		return "", false
	}
	return id, true
}

func lineIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "cart line not found", nil)
		return 0, false
	}
	return index, true
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		common.WriteAppError(w, appErr)
		return
	}
	if errors.Is(err, lock.ErrBusy) {
		common.JSONError(w, http.StatusConflict, "CART_BUSY", "cart is being updated, retry shortly", nil)
		return
	}
	zerolog.Ctx(r.Context()).Error().Err(err).Msg("cart_store_error")
	common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to update cart", nil)
}
