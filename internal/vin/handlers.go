package vin

import (
	"errors"
	"net/http"

	"github.com/noah-isme/backend-headunit/internal/common"
)

// Handler exposes VIN decoding over HTTP.
type Handler struct {
	Svc *Service
}

type decodeRequest struct {
	VIN string `json:"vin" validate:"required"`
}

// Decode handles POST /vin/decode.
func (h *Handler) Decode(w http.ResponseWriter, r *http.Request) {
	var req decodeRequest
	if appErr := common.DecodeJSON(r, &req); appErr != nil {
		common.WriteAppError(w, appErr)
		return
	}
	res, err := h.Svc.Decode(r.Context(), req.VIN)
	switch {
	case err == nil:
		common.Data(w, http.StatusOK, res)
	case errors.Is(err, ErrInvalidVIN):
		common.JSONError(w, http.StatusBadRequest, "INVALID_VIN", "VIN must be 17 characters and cannot contain I, O or Q", nil)
	default:
		common.JSONError(w, http.StatusBadGateway, "VIN_LOOKUP_FAILED", "We couldn't decode that VIN right now. Please choose your vehicle manually.", nil)
	}
}
