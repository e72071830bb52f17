package vin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/noah-isme/backend-headunit/internal/resilience"
)

// Decoder resolves a normalised VIN into vehicle attributes.
type Decoder interface {
	Decode(ctx context.Context, vin string) (Vehicle, error)
}

// NHTSAClient calls the vPIC DecodeVinValues endpoint.
type NHTSAClient struct {
	BaseURL string
	HTTP    resilience.HTTPClient
}

// NewNHTSAClient builds a client with tracing, retries and a breaker targeted
// at "nhtsa".
func NewNHTSAClient(baseURL string, timeout time.Duration) *NHTSAClient {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &NHTSAClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: resilience.HTTPClient{
			Client:      &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
			Breaker:     resilience.NewBreaker(5, 0.5, 30*time.Second).WithTarget("nhtsa"),
			BaseBackoff: 200 * time.Millisecond,
			MaxAttempts: 2,
			Jitter:      0.2,
			Timeout:     timeout,
		},
	}
}

type vpicResponse struct {
	Count   int                 `json:"Count"`
	Message string              `json:"Message"`
	Results []map[string]string `json:"Results"`
}

// Decode implements Decoder.
func (c *NHTSAClient) Decode(ctx context.Context, vin string) (Vehicle, error) {
	endpoint := fmt.Sprintf("%s/vehicles/DecodeVinValues/%s?format=json", c.BaseURL, url.PathEscape(vin))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Vehicle{}, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.HTTP.Do(ctx, req)
	if err != nil {
		return Vehicle{}, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return Vehicle{}, fmt.Errorf("%w: upstream status %d", ErrLookupFailed, resp.StatusCode)
	}
	var body vpicResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&body); err != nil {
		return Vehicle{}, fmt.Errorf("%w: decode response: %v", ErrLookupFailed, err)
	}
	if len(body.Results) == 0 {
		return Vehicle{}, fmt.Errorf("%w: empty result", ErrLookupFailed)
	}
	v := vehicleFromAttributes(vin, body.Results[0])
	if v.Make == "" {
		return Vehicle{}, fmt.Errorf("%w: vin not recognised", ErrLookupFailed)
	}
	return v, nil
}

// vehicleFromAttributes flattens a vPIC result row, dropping empty values.
func vehicleFromAttributes(vin string, raw map[string]string) Vehicle {
	attrs := make(map[string]string, len(raw))
	for k, v := range raw {
		v = strings.TrimSpace(v)
		if v == "" || v == "Not Applicable" {
			continue
		}
		attrs[k] = v
	}
	year, _ := strconv.Atoi(attrs["ModelYear"])
	return Vehicle{
		VIN:        vin,
		Year:       year,
		Make:       attrs["Make"],
		Model:      attrs["Model"],
		Trim:       attrs["Trim"],
		Series:     attrs["Series"],
		Attributes: attrs,
	}
}
