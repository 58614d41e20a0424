package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"carrental/internal/config"
	"carrental/internal/models"
	"carrental/internal/utils"
	"carrental/pkg/logger"
	"carrental/pkg/maps"
)

// GeocodingService turns a free-text address into a point. Every failure
// past input validation is reported as a geocoding error.
type GeocodingService interface {
	Resolve(ctx context.Context, address string) (models.GeoPoint, error)
}

type geocodingService struct {
	geocoder maps.Geocoder
	cache    CacheService
	timeout  time.Duration
	cacheTTL time.Duration
	logger   *logger.Logger
}

// NewGeocoder builds the provider selected by configuration. A missing key is
// an error here so the service can report it per request.
func NewGeocoder(cfg *config.MapsConfig) (maps.Geocoder, error) {
	switch cfg.Provider {
	case config.GeocoderLocationIQ, "":
		provider, err := maps.NewLocationIQProvider(cfg.LocationIQ.APIKey, cfg.LocationIQ.BaseURL)
		if err != nil {
			return nil, err
		}
		return provider, nil
	case config.GeocoderGoogle:
		if cfg.GoogleMaps.APIKey == "" {
			return nil, errors.New("Google Maps API key is not configured")
		}
		provider, err := maps.NewGoogleMapsProvider(cfg.GoogleMaps.APIKey)
		if err != nil {
			return nil, err
		}
		return provider, nil
	case config.GeocoderMapbox:
		if cfg.Mapbox.AccessToken == "" {
			return nil, errors.New("Mapbox access token is not configured")
		}
		return maps.NewMapboxProvider(cfg.Mapbox.AccessToken), nil
	default:
		return nil, fmt.Errorf("unknown geocoder provider %q", cfg.Provider)
	}
}

// NewGeocodingService wires the geocoder. geocoder may be nil when no provider
// is configured; cache may be nil to disable caching.
func NewGeocodingService(geocoder maps.Geocoder, cache CacheService, cfg *config.MapsConfig, log *logger.Logger) GeocodingService {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = utils.GeocodeCacheTTL
	}

	return &geocodingService{
		geocoder: geocoder,
		cache:    cache,
		timeout:  timeout,
		cacheTTL: ttl,
		logger:   log,
	}
}

func (s *geocodingService) Resolve(ctx context.Context, address string) (models.GeoPoint, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return models.GeoPoint{}, utils.NewValidationError("address is required")
	}

	if s.geocoder == nil {
		return models.GeoPoint{}, utils.NewGeocodingError("geocoding provider is not configured", nil)
	}

	key := geocodeCacheKey(address)
	if point, ok := s.fromCache(ctx, key); ok {
		return point, nil
	}

	lookupCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.geocoder.Geocode(lookupCtx, address)
	if err != nil {
		return models.GeoPoint{}, s.geocodingError(lookupCtx, address, err)
	}

	first, err := resp.First()
	if err != nil {
		return models.GeoPoint{}, s.geocodingError(lookupCtx, address, err)
	}

	point := models.NewGeoPoint(first.Coordinates.Longitude, first.Coordinates.Latitude)
	if !point.IsValid() {
		return models.GeoPoint{}, utils.NewGeocodingError(fmt.Sprintf("geocoder returned invalid coordinates for address: %s", address), nil)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, point, s.cacheTTL); err != nil {
			s.logger.WithError(err).WithField("address", address).Warn("Failed to cache geocoding result")
		}
	}

	return point, nil
}

func (s *geocodingService) fromCache(ctx context.Context, key string) (models.GeoPoint, bool) {
	if s.cache == nil {
		return models.GeoPoint{}, false
	}

	var point models.GeoPoint
	if err := s.cache.Get(ctx, key, &point); err != nil || !point.IsValid() {
		return models.GeoPoint{}, false
	}
	return point, true
}

func (s *geocodingService) geocodingError(ctx context.Context, address string, err error) error {
	switch {
	case errors.Is(err, maps.ErrNoResults):
		return utils.NewGeocodingError(fmt.Sprintf("could not find coordinates for address: %s", address), err)
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		s.logger.WithField("provider", s.geocoder.Name()).Warn("Geocoding timed out")
		return utils.NewGeocodingError("geocoding timed out", err)
	default:
		s.logger.WithError(err).WithField("provider", s.geocoder.Name()).Error("Geocoding failed")
		return utils.NewGeocodingError("geocoding service unavailable", err)
	}
}

// geocodeCacheKey folds case and whitespace so trivially different spellings
// share an entry.
func geocodeCacheKey(address string) string {
	return utils.GeocodeKeyPrefix + strings.Join(strings.Fields(strings.ToLower(address)), " ")
}
