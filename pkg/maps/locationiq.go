package maps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// LocationIQProvider talks to the LocationIQ forward geocoding endpoint.
type LocationIQProvider struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

func NewLocationIQProvider(apiKey, baseURL string) (*LocationIQProvider, error) {
	if apiKey == "" {
		return nil, errors.New("LocationIQ API key is not configured")
	}
	if baseURL == "" {
		baseURL = "https://us1.locationiq.com"
	}

	return &LocationIQProvider{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}, nil
}

func (l *LocationIQProvider) Name() string {
	return "locationiq"
}

func (l *LocationIQProvider) Geocode(ctx context.Context, address string) (*GeocodeResponse, error) {
	query := url.Values{}
	query.Set("key", l.apiKey)
	query.Set("q", address)
	query.Set("format", "json")
	query.Set("limit", "1")

	apiURL := fmt.Sprintf("%s/v1/search?%s", l.baseURL, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	// LocationIQ answers 404 with {"error":"Unable to geocode"} for unknown
	// addresses.
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNoResults
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("LocationIQ API error: status %d: %s", resp.StatusCode, string(body))
	}

	var places []struct {
		PlaceID     string `json:"place_id"`
		DisplayName string `json:"display_name"`
		Lat         string `json:"lat"`
		Lon         string `json:"lon"`
		Type        string `json:"type"`
	}
	if err := json.Unmarshal(body, &places); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(places) == 0 {
		return nil, ErrNoResults
	}

	results := make([]GeocodeResult, 0, len(places))
	for _, place := range places {
		lat, err := strconv.ParseFloat(place.Lat, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid latitude %q: %w", place.Lat, err)
		}
		lon, err := strconv.ParseFloat(place.Lon, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid longitude %q: %w", place.Lon, err)
		}

		result := GeocodeResult{
			PlaceID:     place.PlaceID,
			Address:     place.DisplayName,
			Coordinates: Location{Latitude: lat, Longitude: lon},
		}
		if place.Type != "" {
			result.Types = []string{place.Type}
		}
		results = append(results, result)
	}

	return &GeocodeResponse{Results: results}, nil
}
