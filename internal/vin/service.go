package vin

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/noah-isme/backend-headunit/internal/cache"
	"github.com/noah-isme/backend-headunit/internal/catalog"
	"github.com/noah-isme/backend-headunit/internal/obs"
)

// Catalog finds kits that fit a vehicle.
type Catalog interface {
	Compatible(brand string, year int) []catalog.Item
}

// Result is a decoded vehicle plus the kits that fit it.
type Result struct {
	Vehicle    Vehicle        `json:"vehicle"`
	Compatible []catalog.Item `json:"compatible"`
	Cached     bool           `json:"cached"`
}

// Service decodes VINs through a cache in front of the upstream decoder.
type Service struct {
	Decoder Decoder
	Cache   *cache.JSON
	Catalog Catalog
	Audio   *AudioMatcher
}

// Decode validates raw, resolves the vehicle and lists compatible kits.
// Upstream failures are returned wrapped in ErrLookupFailed and never cached.
func (s *Service) Decode(ctx context.Context, raw string) (Result, error) {
	ctx, span := otel.Tracer("vin.Service").Start(ctx, "VINService.Decode")
	defer span.End()

	vin, err := Normalize(raw)
	if err != nil {
		obs.ObserveVINDecode(obs.VINResultInvalid)
		return Result{}, err
	}
	span.SetAttributes(attribute.String("vin.wmi", vin[:3]))
	logger := zerolog.Ctx(ctx)

	var vehicle Vehicle
	hit, err := s.Cache.Get(ctx, cache.KeyVIN(vin), &vehicle)
	if err != nil {
		logger.Warn().Err(err).Str("vin", vin).Msg("vin_cache_read_failed")
		hit = false
	}
	if !hit {
		if s.Decoder == nil {
			obs.ObserveVINDecode(obs.VINResultFailed)
			return Result{}, fmt.Errorf("%w: decoder not configured", ErrLookupFailed)
		}
		vehicle, err = s.Decoder.Decode(ctx, vin)
		if err != nil {
			if !errors.Is(err, ErrLookupFailed) {
				err = fmt.Errorf("%w: %v", ErrLookupFailed, err)
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, "lookup failed")
			obs.ObserveVINDecode(obs.VINResultFailed)
			logger.Warn().Err(err).Str("vin", vin).Msg("vin_lookup_failed")
			return Result{}, err
		}
		vehicle.PremiumAudio = s.Audio.Match(vehicle.Make, vehicle.FreeText())
		if err := s.Cache.Set(ctx, cache.KeyVIN(vin), vehicle); err != nil {
			logger.Warn().Err(err).Str("vin", vin).Msg("vin_cache_write_failed")
		}
		obs.ObserveVINDecode(obs.VINResultOK)
	} else {
		obs.ObserveVINDecode(obs.VINResultCached)
	}
	span.SetAttributes(attribute.Bool("vin.cached", hit), attribute.String("vehicle.make", vehicle.Make))

	compatible := []catalog.Item{}
	if s.Catalog != nil {
		if items := s.Catalog.Compatible(vehicle.Make, vehicle.Year); len(items) > 0 {
			compatible = items
		}
	}
	return Result{Vehicle: vehicle, Compatible: compatible, Cached: hit}, nil
}
