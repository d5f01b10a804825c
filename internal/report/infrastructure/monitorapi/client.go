// Package monitorapi is the HTTP client for the upstream monitoring
// platform that owns alert definitions, alert history, sensor placement,
// chart rendering and facility map rendering.
package monitorapi

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

	"alert-reporting/internal/observability/metrics"
	"alert-reporting/internal/report/domain"
)

// Client holds the connection settings shared by all sessions.
type Client struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.client = httpClient
		}
	}
}

// WithTimeout sets the per-call timeout. Applied once all options have run,
// so it composes with WithHTTPClient in either order.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// NewClient constructs a monitoring API client.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("monitorapi: empty base url")
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 && c.client.Timeout != c.timeout {
		// copy before overriding so a caller-supplied client is not mutated
		httpClient := *c.client
		httpClient.Timeout = c.timeout
		c.client = &httpClient
	}
	return c, nil
}

// Session returns a per-request view of the API that forwards the caller's
// bearer token on every upstream call.
func (c *Client) Session(token string) *Session {
	return &Session{client: c, token: token}
}

// Session is one authorized view of the monitoring API.
type Session struct {
	client *Client
	token  string
}

type alertEventResponse struct {
	MAC          int64   `json:"mac"`
	Timestamp    int64   `json:"timestamp"`
	Type         int     `json:"type"`
	Data         float64 `json:"data"`
	AlertID      string  `json:"alertId"`
	IsActive     bool    `json:"isActive"`
	EventID      int64   `json:"eventId"`
	RTNTimestamp int64   `json:"rtnTimestamp"`
}

// AlertEvent fetches one alert history record by event id.
func (s *Session) AlertEvent(ctx context.Context, eventID int64) (*domain.AlertEvent, error) {
	var resp alertEventResponse
	if err := s.doJSON(ctx, "alert_event", "/alertHistory/"+strconv.FormatInt(eventID, 10), &resp); err != nil {
		return nil, err
	}
	return &domain.AlertEvent{
		MAC:          resp.MAC,
		Timestamp:    resp.Timestamp,
		Type:         resp.Type,
		Data:         resp.Data,
		AlertID:      resp.AlertID,
		IsActive:     resp.IsActive,
		EventID:      resp.EventID,
		RTNTimestamp: resp.RTNTimestamp,
	}, nil
}

type alertDefinitionResponse struct {
	AlertID          string   `json:"alertId"`
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	SensorType       int      `json:"sensorType"`
	Threshold        float64  `json:"threshold"`
	MinimumThreshold *float64 `json:"minThreshold"`
	Duration         int      `json:"duration"`
	Owner            string   `json:"owner"`
	NotifyEmail      bool     `json:"notifyEmail"`
	NotifySMS        bool     `json:"notifySMS"`
}

// AlertDefinition fetches one alert definition from the catalog by id.
func (s *Session) AlertDefinition(ctx context.Context, alertID string) (*domain.AlertDefinition, error) {
	if alertID == "" {
		return nil, fmt.Errorf("monitorapi: empty alert id: %w", domain.ErrNotFound)
	}
	var resp alertDefinitionResponse
	if err := s.doJSON(ctx, "alert_definition", "/alerts/"+url.PathEscape(alertID), &resp); err != nil {
		return nil, err
	}
	return &domain.AlertDefinition{
		AlertID:          resp.AlertID,
		Name:             resp.Name,
		Description:      resp.Description,
		SensorType:       resp.SensorType,
		Threshold:        resp.Threshold,
		MinimumThreshold: resp.MinimumThreshold,
		Duration:         resp.Duration,
		Owner:            resp.Owner,
		NotifyEmail:      resp.NotifyEmail,
		NotifySMS:        resp.NotifySMS,
	}, nil
}

// ChartImage fetches the rendered sensor time-series chart for a device
// over the window.
func (s *Session) ChartImage(ctx context.Context, mac int64, window domain.TimeWindow, sensorTypes []int) (*domain.Artifact, error) {
	types := make([]string, 0, len(sensorTypes))
	for _, t := range sensorTypes {
		types = append(types, strconv.Itoa(t))
	}
	query := url.Values{}
	query.Set("mac", strconv.FormatInt(mac, 10))
	query.Set("start", strconv.FormatInt(window.Start, 10))
	query.Set("end", strconv.FormatInt(window.End, 10))
	query.Set("types", strings.Join(types, ","))
	return s.doImage(ctx, "chart", "/chart?"+query.Encode())
}

type sensorResponse struct {
	MAC           int64   `json:"mac"`
	Name          string  `json:"name"`
	LocationID    string  `json:"locationId"`
	BuildingMapID string  `json:"buildingMapId"`
	MapX          float64 `json:"mapX"`
	MapY          float64 `json:"mapY"`
}

type locationResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SensorPlacement resolves the sensor's facility map placement. Returns
// domain.ErrMapNotConfigured when the sensor has never been placed on a
// map. A failed location-name lookup degrades to an empty display name.
func (s *Session) SensorPlacement(ctx context.Context, mac int64) (*domain.SensorLocation, error) {
	var sensor sensorResponse
	if err := s.doJSON(ctx, "sensor", "/sensors/"+strconv.FormatInt(mac, 10), &sensor); err != nil {
		return nil, err
	}
	if sensor.BuildingMapID == "" || sensor.LocationID == "" {
		return nil, domain.ErrMapNotConfigured
	}

	placement := &domain.SensorLocation{
		LocationID: sensor.LocationID,
		MapID:      sensor.BuildingMapID,
		X:          sensor.MapX,
		Y:          sensor.MapY,
	}
	var location locationResponse
	if err := s.doJSON(ctx, "location", "/locations/"+url.PathEscape(sensor.LocationID), &location); err == nil {
		placement.LocationName = location.Name
	}
	return placement, nil
}

// MapImage fetches the facility map image annotated with marker points.
func (s *Session) MapImage(ctx context.Context, locationID, mapID string, markers []domain.MapMarker) (*domain.Artifact, error) {
	if locationID == "" || mapID == "" {
		return nil, fmt.Errorf("monitorapi: empty map reference: %w", domain.ErrNotFound)
	}
	points := make([]string, 0, len(markers))
	for _, m := range markers {
		points = append(points, fmt.Sprintf("%.0f:%.0f", m.X, m.Y))
	}
	query := url.Values{}
	query.Set("markers", strings.Join(points, ","))
	path := "/locations/" + url.PathEscape(locationID) + "/maps/" + url.PathEscape(mapID) + "/image?" + query.Encode()
	return s.doImage(ctx, "map", path)
}

func (s *Session) doJSON(ctx context.Context, endpoint, path string, out any) error {
	body, _, err := s.do(ctx, endpoint, path, "application/json")
	if err != nil {
		return err
	}
	defer body.Close()
	if err := json.NewDecoder(body).Decode(out); err != nil {
		return fmt.Errorf("monitorapi: %s: decode: %w: %w", endpoint, err, domain.ErrUpstreamUnavailable)
	}
	return nil
}

func (s *Session) doImage(ctx context.Context, endpoint, path string) (*domain.Artifact, error) {
	body, contentType, err := s.do(ctx, endpoint, path, "image/*")
	if err != nil {
		return nil, err
	}
	defer body.Close()
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("monitorapi: %s: read body: %w: %w", endpoint, err, domain.ErrUpstreamUnavailable)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("monitorapi: %s: empty image: %w", endpoint, domain.ErrUpstreamUnavailable)
	}
	mime := contentType
	if idx := strings.Index(mime, ";"); idx >= 0 {
		mime = strings.TrimSpace(mime[:idx])
	}
	if mime == "" {
		mime = "image/png"
	}
	return &domain.Artifact{Bytes: raw, MIME: mime}, nil
}

func (s *Session) do(ctx context.Context, endpoint, path, accept string) (io.ReadCloser, string, error) {
	start := time.Now()
	result := metrics.ResultSuccess

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.client.baseURL+path, nil)
	if err != nil {
		return nil, "", fmt.Errorf("monitorapi: %s: %w", endpoint, err)
	}
	req.Header.Set("Accept", accept)
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.client.Do(req)
	if err != nil {
		metrics.ObserveUpstreamRequest(endpoint, metrics.ResultError, time.Since(start))
		return nil, "", fmt.Errorf("monitorapi: %s: %w: %w", endpoint, err, domain.ErrUpstreamUnavailable)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		resp.Body.Close()
		result = metrics.ResultError
		err = fmt.Errorf("monitorapi: %s: %w", endpoint, domain.ErrNotFound)
	case resp.StatusCode >= 300:
		resp.Body.Close()
		result = metrics.ResultError
		err = fmt.Errorf("monitorapi: %s: http %d: %w", endpoint, resp.StatusCode, domain.ErrUpstreamUnavailable)
	}
	metrics.ObserveUpstreamRequest(endpoint, result, time.Since(start))
	if err != nil {
		return nil, "", err
	}
	return resp.Body, resp.Header.Get("Content-Type"), nil
}
