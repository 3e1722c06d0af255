package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const ipLocateURL = "http://ip-api.com/json/"

// IPLocator approximates the observer position from the public IP address.
type IPLocator struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewIPLocator creates a locator backed by ip-api.com.
func NewIPLocator(logger *zap.Logger) *IPLocator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IPLocator{
		baseURL: ipLocateURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
		logger: logger,
	}
}

type ipAPIResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	City    string  `json:"city"`
	Country string  `json:"country"`
}

// Locate returns the approximate location of this machine.
// Any provider failure is reported as ErrNoLocation.
func (l *IPLocator) Locate(ctx context.Context) (*Location, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoLocation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: ip-api returned status %d", ErrNoLocation, resp.StatusCode)
	}

	var body ipAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ErrNoLocation, err)
	}
	if body.Status != "success" {
		return nil, fmt.Errorf("%w: %s", ErrNoLocation, body.Message)
	}

	var parts []string
	for _, p := range []string{body.City, body.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	name := strings.Join(parts, ", ")
	if name == "" {
		name = fmt.Sprintf("%.4f, %.4f", body.Lat, body.Lon)
	}

	l.logger.Debug("located by ip", zap.String("name", name))
	return &Location{Latitude: body.Lat, Longitude: body.Lon, Name: name}, nil
}
