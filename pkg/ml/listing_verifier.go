package ml

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrVerifierNotConfigured is returned when no verification endpoint is set.
var ErrVerifierNotConfigured = errors.New("listing verifier is not configured")

// ListingVerifier checks that a listing's photos match its declared make,
// model and year. The model behind it is opaque to this service.
type ListingVerifier interface {
	Verify(ctx context.Context, request *VerificationRequest) (*VerificationVerdict, error)
}

type VerificationRequest struct {
	CarID       string            `json:"car_id"`
	Brand       string            `json:"brand"`
	Model       string            `json:"model"`
	Year        int               `json:"year"`
	NumberPlate string            `json:"number_plate"`
	Images      map[string]string `json:"images"`
}

type VerificationVerdict struct {
	Verified         bool     `json:"verified"`
	Issues           []string `json:"issues"`
	EstimatedMileage *float64 `json:"estimatedMileageFromOdometer"`
}

type HTTPListingVerifier struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

func NewHTTPListingVerifier(endpoint, apiKey string, timeout time.Duration) (*HTTPListingVerifier, error) {
	if strings.TrimSpace(endpoint) == "" {
		return nil, ErrVerifierNotConfigured
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &HTTPListingVerifier{
		endpoint:   endpoint,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

func (v *HTTPListingVerifier) Verify(ctx context.Context, request *VerificationRequest) (*VerificationVerdict, error) {
	payload, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal verification request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if v.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+v.apiKey)
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("verification service error: status %d: %s", resp.StatusCode, string(body))
	}

	verdict, err := ParseVerdict(body)
	if err != nil {
		return nil, err
	}
	return verdict, nil
}

// ParseVerdict decodes a verdict, tolerating markdown code fences around the
// JSON. An unparseable body yields an unverified verdict rather than an error.
func ParseVerdict(body []byte) (*VerificationVerdict, error) {
	clean := strings.TrimSpace(string(body))
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	clean = strings.TrimSpace(clean)

	if clean == "" {
		return nil, errors.New("empty verification response")
	}

	var verdict VerificationVerdict
	if err := json.Unmarshal([]byte(clean), &verdict); err != nil {
		return &VerificationVerdict{
			Verified: false,
			Issues:   []string{"AI response parsing failed"},
		}, nil
	}
	if verdict.Issues == nil {
		verdict.Issues = []string{}
	}

	return &verdict, nil
}
