package shipping

import (
	"net/http"

	"github.com/noah-isme/backend-headunit/internal/common"
	"github.com/noah-isme/backend-headunit/internal/geo"
	"github.com/noah-isme/backend-headunit/internal/money"
)

// Handler quotes shipping for a postcode and item count.
type Handler struct {
	Geo       *geo.Classifier
	Estimator *Estimator
}

type quoteRequest struct {
	Postcode string `json:"postcode" validate:"required"`
	Items    int    `json:"items" validate:"gte=1,lte=50"`
}

type quoteResponse struct {
	geo.Classification
	Items    int         `json:"items"`
	BaseRate money.Money `json:"baseRate"`
	Shipping money.Money `json:"shipping"`
}

// Quote handles POST /shipping/quote.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	if h.Geo == nil || h.Estimator == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "shipping not configured", nil)
		return
	}
	var req quoteRequest
	if appErr := common.DecodeJSON(r, &req); appErr != nil {
		common.WriteAppError(w, appErr)
		return
	}
	where := h.Geo.Classify(req.Postcode)
	common.Data(w, http.StatusOK, quoteResponse{
		Classification: where,
		Items:          req.Items,
		BaseRate:       h.Estimator.BaseRate(where.Zone),
		Shipping:       h.Estimator.Quote(where.Postcode, where.Zone, req.Items),
	})
}
