package vin_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-headunit/internal/vin"
)

func postDecode(h *vin.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/vin/decode", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Decode(rec, req)
	return rec
}

func TestHandlerDecode(t *testing.T) {
	var calls atomic.Int32
	srv := vpicServer(t, &calls, http.StatusOK)
	svc, _ := newVINService(t, srv.URL)
	h := &vin.Handler{Svc: svc}

	rec := postDecode(h, `{"vin":"`+bmwVIN+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"premiumAudio":"Harman Kardon"`)
	require.Contains(t, rec.Body.String(), `"compatible":[{"id":1`)
}

func TestHandlerDecodeErrors(t *testing.T) {
	var calls atomic.Int32
	srv := vpicServer(t, &calls, http.StatusInternalServerError)
	svc, _ := newVINService(t, srv.URL)
	h := &vin.Handler{Svc: svc}

	rec := postDecode(h, `{"vin":"SHORT"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "INVALID_VIN")

	rec = postDecode(h, `{}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "VALIDATION_FAILED")

	rec = postDecode(h, `{"vin":"`+bmwVIN+`"}`)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.Contains(t, rec.Body.String(), "VIN_LOOKUP_FAILED")
}
