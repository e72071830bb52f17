package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/noah-isme/backend-headunit/internal/common"
)

// ErrNotFound indicates the requested unit does not exist.
var ErrNotFound = errors.New("catalog: unit not found")

// Service serves the read-only catalog loaded at startup.
type Service struct {
	items        []Item
	byID         map[int]int
	defaultPage  int
	defaultLimit int
	maxLimit     int
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Items        []Item
	DefaultPage  int
	DefaultLimit int
	MaxLimit     int
}

// ListParams captures filters for unit listing.
type ListParams struct {
	Brand string
	Year  int
	Page  int
	Limit int
}

// ListResult contains list data and pagination metadata.
type ListResult struct {
	Items []Item
	Total int
	Page  int
	Limit int
}

// NewService validates the catalog and builds the id index.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := Validate(cfg.Items); err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	defaultPage := cfg.DefaultPage
	if defaultPage < 1 {
		defaultPage = 1
	}
	defaultLimit := cfg.DefaultLimit
	if defaultLimit < 1 {
		defaultLimit = 20
	}
	maxLimit := cfg.MaxLimit
	if maxLimit < 1 {
		maxLimit = 100
	}
	if defaultLimit > maxLimit {
		defaultLimit = maxLimit
	}
	items := append([]Item(nil), cfg.Items...)
	byID := make(map[int]int, len(items))
	for idx, it := range items {
		byID[it.ID] = idx
	}
	return &Service{
		items:        items,
		byID:         byID,
		defaultPage:  defaultPage,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}, nil
}

// Load builds a Service from the provided source.
func Load(ctx context.Context, src Source, cfg ServiceConfig) (*Service, error) {
	if src == nil {
		return nil, errors.New("catalog: source is required")
	}
	items, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	cfg.Items = items
	return NewService(cfg)
}

// Lookup returns the unit with the given id.
func (s *Service) Lookup(id int) (Item, bool) {
	if s == nil {
		return Item{}, false
	}
	idx, ok := s.byID[id]
	if !ok {
		return Item{}, false
	}
	return s.items[idx], true
}

// Get returns the unit with the given id or ErrNotFound.
func (s *Service) Get(id int) (Item, error) {
	it, ok := s.Lookup(id)
	if !ok {
		return Item{}, &common.AppError{Code: "NOT_FOUND", Message: "unit not found", HTTPStatus: http.StatusNotFound, Err: ErrNotFound}
	}
	return it, nil
}

// All returns a copy of the catalog in source order.
func (s *Service) All() []Item {
	return append([]Item(nil), s.items...)
}

// Compatible returns the units fitting the given vehicle make and year.
func (s *Service) Compatible(brand string, year int) []Item {
	out := []Item{}
	if strings.TrimSpace(brand) == "" {
		return out
	}
	for _, it := range s.items {
		if it.Fits(brand, year) {
			out = append(out, it)
		}
	}
	return out
}

// ParseListParams normalises raw query values into typed filters.
func (s *Service) ParseListParams(values url.Values) (ListParams, error) {
	params := ListParams{Page: s.defaultPage, Limit: s.defaultLimit}
	params.Brand = strings.TrimSpace(values.Get("brand"))

	if v := strings.TrimSpace(values.Get("page")); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			return params, badRequest("page", "page must be a positive integer", err)
		}
		params.Page = page
	}
	if v := strings.TrimSpace(values.Get("limit")); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			return params, badRequest("limit", "limit must be a positive integer", err)
		}
		params.Limit = limit
	}
	if params.Limit > s.maxLimit {
		params.Limit = s.maxLimit
	}
	if v := strings.TrimSpace(values.Get("year")); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil || year < 1 {
			return params, badRequest("year", "year must be a positive integer", err)
		}
		params.Year = year
	}
	return params, nil
}

// List filters and paginates the catalog preserving source order.
func (s *Service) List(params ListParams) ListResult {
	filtered := make([]Item, 0, len(s.items))
	for _, it := range s.items {
		if params.Brand != "" && !strings.EqualFold(it.Brand, params.Brand) {
			continue
		}
		if params.Year != 0 && !it.FitsYear(params.Year) {
			continue
		}
		filtered = append(filtered, it)
	}
	page := params.Page
	if page < 1 {
		page = s.defaultPage
	}
	limit := params.Limit
	if limit < 1 {
		limit = s.defaultLimit
	}
	// Compare before multiplying so huge page or limit values cannot overflow.
	start := len(filtered)
	if page-1 < len(filtered)/limit+1 {
		start = min((page-1)*limit, len(filtered))
	}
	end := len(filtered)
	if limit < end-start {
		end = start + limit
	}
	return ListResult{Items: filtered[start:end], Total: len(filtered), Page: page, Limit: limit}
}

func badRequest(field, message string, err error) *common.AppError {
	appErr := common.BadRequest(message, map[string]any{"field": field})
	appErr.Err = err
	return appErr
}
