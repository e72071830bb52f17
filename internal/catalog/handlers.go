package catalog

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-headunit/internal/common"
)

// Handler exposes public catalog endpoints.
type Handler struct {
	service *Service
}

// HandlerConfig configures the Handler dependencies.
type HandlerConfig struct {
	Service *Service
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{service: cfg.Service}
}

type unitView struct {
	Item
	Years string `json:"years"`
}

func view(it Item) unitView {
	return unitView{Item: it, Years: it.Years()}
}

type pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalItems int `json:"total_items"`
}

type unitPage struct {
	Data       []unitView `json:"data"`
	Pagination pagination `json:"pagination"`
}

// Units handles GET /api/v1/units with brand/year filters and pagination.
func (h *Handler) Units(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog service not configured", nil)
		return
	}
	params, err := h.service.ParseListParams(r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}
	result := h.service.List(params)
	data := make([]unitView, 0, len(result.Items))
	for _, it := range result.Items {
		data = append(data, view(it))
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(result.Total))
	common.JSON(w, http.StatusOK, unitPage{
		Data:       data,
		Pagination: pagination{Page: result.Page, PerPage: result.Limit, TotalItems: result.Total},
	})
}

// Unit handles GET /api/v1/units/{id}.
func (h *Handler) Unit(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog service not configured", nil)
		return
	}
	id, err := strconv.Atoi(strings.TrimSpace(chi.URLParam(r, "id")))
	if err != nil {
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "unit not found", nil)
		return
	}
	it, err := h.service.Get(id)
	if err != nil {
		writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, view(it))
}

func writeError(w http.ResponseWriter, err error) {
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		common.WriteAppError(w, appErr)
		return
	}
	common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
}
