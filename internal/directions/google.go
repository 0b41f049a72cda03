package directions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"fieldservice/internal/domain"
)

const (
	// directionsAPIURL is the Google Directions API JSON endpoint.
	directionsAPIURL = "https://maps.googleapis.com/maps/api/directions/json"

	// DefaultTimeout bounds a single directions call.
	DefaultTimeout = 10 * time.Second

	httpMaxIdleConns    = 10
	httpIdleConnTimeout = 30 * time.Second

	statusOK = "OK"
)

// GoogleProvider implements Provider using the Google Directions API.
type GoogleProvider struct {
	apiKey     string
	apiURL     string
	timeout    time.Duration
	httpClient *http.Client
}

// GoogleOption configures a GoogleProvider.
type GoogleOption func(*GoogleProvider)

// WithBaseURL overrides the API endpoint (tests, proxies).
func WithBaseURL(u string) GoogleOption {
	return func(g *GoogleProvider) { g.apiURL = u }
}

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) GoogleOption {
	return func(g *GoogleProvider) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// WithHTTPClient replaces the default pooled HTTP client.
func WithHTTPClient(c *http.Client) GoogleOption {
	return func(g *GoogleProvider) { g.httpClient = c }
}

// NewGoogleProvider creates a Provider backed by the Google Directions API.
func NewGoogleProvider(apiKey string, opts ...GoogleOption) *GoogleProvider {
	g := &GoogleProvider{
		apiKey:  apiKey,
		apiURL:  directionsAPIURL,
		timeout: DefaultTimeout,
	}
	for _, o := range opts {
		o(g)
	}
	if g.httpClient == nil {
		g.httpClient = &http.Client{Transport: NewTransport()}
	}
	return g
}

// NewTransport returns the pooled transport used for directions calls.
func NewTransport() *http.Transport {
	return &http.Transport{
		MaxIdleConns:        httpMaxIdleConns,
		MaxIdleConnsPerHost: httpMaxIdleConns,
		IdleConnTimeout:     httpIdleConnTimeout,
	}
}

// GetRoute requests a driving route and returns the first route's overview
// polyline with its first leg's distance and duration.
func (g *GoogleProvider) GetRoute(ctx context.Context, origin, destination domain.Coordinate) (*Result, error) {
	reqCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	q := url.Values{}
	q.Set("origin", formatLatLng(origin))
	q.Set("destination", formatLatLng(destination))
	q.Set("mode", "driving")
	q.Set("units", "metric")
	q.Set("key", g.apiKey)

	httpReq, err := http.NewRequestWithContext(reqCtx, http.MethodGet, g.apiURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, &ProviderError{Op: "google", Err: fmt.Errorf("create request: %w", err)}
	}
	httpReq.Header.Set("Accept", "application/json")

	httpResp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, &ProviderError{Op: "google", Err: fmt.Errorf("http: %w", err)}
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &ProviderError{Op: "google", Err: fmt.Errorf("read response: %w", err)}
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, &ProviderError{
			Op:     "google",
			Status: strconv.Itoa(httpResp.StatusCode),
			Err:    errors.New(string(body)),
		}
	}

	var apiResp directionsAPIResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, &ProviderError{Op: "google", Err: fmt.Errorf("unmarshal response: %w", err)}
	}

	if apiResp.Status != statusOK {
		msg := apiResp.ErrorMessage
		if msg == "" {
			msg = "request not OK"
		}
		return nil, &ProviderError{Op: "google", Status: apiResp.Status, Err: errors.New(msg)}
	}

	if len(apiResp.Routes) == 0 || apiResp.Routes[0].OverviewPolyline.Points == "" {
		return nil, &ProviderError{Op: "google", Status: apiResp.Status, Err: errors.New("no route returned")}
	}

	route := apiResp.Routes[0]
	result := &Result{EncodedPolyline: route.OverviewPolyline.Points}
	if len(route.Legs) > 0 {
		leg := route.Legs[0]
		result.DistanceText = leg.Distance.Text
		result.DistanceMeters = leg.Distance.Value
		result.DurationText = leg.Duration.Text
		result.DurationSeconds = leg.Duration.Value
	}

	return result, nil
}

func formatLatLng(c domain.Coordinate) string {
	return strconv.FormatFloat(c.Latitude, 'f', -1, 64) + "," + strconv.FormatFloat(c.Longitude, 'f', -1, 64)
}

// --- JSON types for the Google Directions API ---

type directionsAPIResponse struct {
	Status       string               `json:"status"`
	ErrorMessage string               `json:"error_message"`
	Routes       []directionsAPIRoute `json:"routes"`
}

type directionsAPIRoute struct {
	OverviewPolyline directionsAPIPolyline `json:"overview_polyline"`
	Legs             []directionsAPILeg    `json:"legs"`
}

type directionsAPIPolyline struct {
	Points string `json:"points"`
}

type directionsAPILeg struct {
	Distance directionsAPITextValue `json:"distance"`
	Duration directionsAPITextValue `json:"duration"`
}

type directionsAPITextValue struct {
	Text  string `json:"text"`
	Value int    `json:"value"`
}
