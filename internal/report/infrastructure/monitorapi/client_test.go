package monitorapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"alert-reporting/internal/report/domain"
)

func newTestSession(t *testing.T, handler http.Handler) (*Session, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client.Session("token-abc"), server
}

func TestAlertEventParsesRecordAndForwardsToken(t *testing.T) {
	var gotAuth, gotPath string
	session, _ := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"mac": 111222333, "timestamp": 1700000000000, "type": 1, "data": 75.5,
			"alertId": "alert-1", "isActive": false, "eventId": 42, "rtnTimestamp": 1700003600000
		}`))
	}))

	event, err := session.AlertEvent(context.Background(), 42)
	if err != nil {
		t.Fatalf("alert event: %v", err)
	}
	if gotAuth != "Bearer token-abc" {
		t.Fatalf("expected bearer forwarded, got %q", gotAuth)
	}
	if gotPath != "/alertHistory/42" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if event.MAC != 111222333 || event.AlertID != "alert-1" || event.RTNTimestamp != 1700003600000 {
		t.Fatalf("unexpected event: %+v", event)
	}
	if !event.Resolved() {
		t.Fatalf("expected resolved event")
	}
}

func TestAlertEventNotFound(t *testing.T) {
	session, _ := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "no record", http.StatusNotFound)
	}))

	_, err := session.AlertEvent(context.Background(), 99)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAlertDefinitionUpstreamError(t *testing.T) {
	session, _ := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	_, err := session.AlertDefinition(context.Background(), "alert-1")
	if !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Fatalf("expected upstream unavailable, got %v", err)
	}
}

func TestAlertDefinitionParsesOptionalFields(t *testing.T) {
	session, _ := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"alertId": "alert-1", "name": "High Temperature Alert", "sensorType": 1,
			"threshold": 70.0, "minThreshold": 10.5, "duration": 300, "owner": "facilities"
		}`))
	}))

	def, err := session.AlertDefinition(context.Background(), "alert-1")
	if err != nil {
		t.Fatalf("alert definition: %v", err)
	}
	if def.Name != "High Temperature Alert" || def.Duration != 300 {
		t.Fatalf("unexpected definition: %+v", def)
	}
	if def.MinimumThreshold == nil || *def.MinimumThreshold != 10.5 {
		t.Fatalf("expected minimum threshold 10.5, got %v", def.MinimumThreshold)
	}
}

func TestChartImageQueryAndContentType(t *testing.T) {
	var gotQuery map[string]string
	session, _ := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"mac":   r.URL.Query().Get("mac"),
			"start": r.URL.Query().Get("start"),
			"end":   r.URL.Query().Get("end"),
			"types": r.URL.Query().Get("types"),
		}
		w.Header().Set("Content-Type", "image/jpeg; charset=binary")
		_, _ = w.Write([]byte{0xff, 0xd8, 0xff})
	}))

	artifact, err := session.ChartImage(context.Background(), 111, domain.TimeWindow{Start: 100, End: 200}, []int{1, 3})
	if err != nil {
		t.Fatalf("chart image: %v", err)
	}
	if gotQuery["mac"] != "111" || gotQuery["start"] != "100" || gotQuery["end"] != "200" || gotQuery["types"] != "1,3" {
		t.Fatalf("unexpected query: %v", gotQuery)
	}
	if artifact.MIME != "image/jpeg" {
		t.Fatalf("expected image/jpeg, got %s", artifact.MIME)
	}
	if len(artifact.Bytes) != 3 {
		t.Fatalf("unexpected artifact size: %d", len(artifact.Bytes))
	}
}

func TestChartImageEmptyBodyIsUpstreamFailure(t *testing.T) {
	session, _ := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
	}))

	_, err := session.ChartImage(context.Background(), 111, domain.TimeWindow{Start: 1, End: 2}, []int{1})
	if !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Fatalf("expected upstream unavailable, got %v", err)
	}
}

func TestSensorPlacementNotConfigured(t *testing.T) {
	session, _ := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"mac": 111, "name": "sensor-111", "locationId": "loc-1"}`))
	}))

	_, err := session.SensorPlacement(context.Background(), 111)
	if !errors.Is(err, domain.ErrMapNotConfigured) {
		t.Fatalf("expected map not configured, got %v", err)
	}
}

func TestSensorPlacementResolvesLocationName(t *testing.T) {
	session, _ := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/sensors/111":
			_, _ = w.Write([]byte(`{"mac": 111, "locationId": "loc-1", "buildingMapId": "map-1", "mapX": 120, "mapY": 240}`))
		case "/locations/loc-1":
			_, _ = w.Write([]byte(`{"id": "loc-1", "name": "Building A"}`))
		default:
			http.NotFound(w, r)
		}
	}))

	placement, err := session.SensorPlacement(context.Background(), 111)
	if err != nil {
		t.Fatalf("sensor placement: %v", err)
	}
	if placement.LocationName != "Building A" || placement.MapID != "map-1" {
		t.Fatalf("unexpected placement: %+v", placement)
	}
	if placement.X != 120 || placement.Y != 240 {
		t.Fatalf("unexpected coordinates: %+v", placement)
	}
}

func TestSensorPlacementLocationLookupFailureDegrades(t *testing.T) {
	session, _ := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/sensors/111":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"mac": 111, "locationId": "loc-1", "buildingMapId": "map-1", "mapX": 1, "mapY": 2}`))
		default:
			http.Error(w, "boom", http.StatusInternalServerError)
		}
	}))

	placement, err := session.SensorPlacement(context.Background(), 111)
	if err != nil {
		t.Fatalf("expected placement despite name lookup failure, got %v", err)
	}
	if placement.LocationName != "" {
		t.Fatalf("expected empty location name, got %s", placement.LocationName)
	}
}

func TestMapImageMarkersQuery(t *testing.T) {
	var gotPath, gotMarkers string
	session, _ := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMarkers = r.URL.Query().Get("markers")
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte{0x89, 0x50})
	}))

	artifact, err := session.MapImage(context.Background(), "loc-1", "map-1", []domain.MapMarker{{X: 120, Y: 240}})
	if err != nil {
		t.Fatalf("map image: %v", err)
	}
	if gotPath != "/locations/loc-1/maps/map-1/image" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if gotMarkers != "120:240" {
		t.Fatalf("unexpected markers: %s", gotMarkers)
	}
	if artifact.MIME != "image/png" {
		t.Fatalf("expected image/png, got %s", artifact.MIME)
	}
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	if _, err := NewClient(""); err == nil {
		t.Fatalf("expected error for empty base url")
	}
}

func TestNewClientTimeoutOptionOrderIndependent(t *testing.T) {
	custom := &http.Client{Timeout: 3 * time.Second}
	orders := [][]Option{
		{WithHTTPClient(custom), WithTimeout(7 * time.Second)},
		{WithTimeout(7 * time.Second), WithHTTPClient(custom)},
	}
	for i, opts := range orders {
		client, err := NewClient("http://monitor.local", opts...)
		if err != nil {
			t.Fatalf("order %d: new client: %v", i, err)
		}
		if client.client.Timeout != 7*time.Second {
			t.Fatalf("order %d: expected 7s timeout, got %s", i, client.client.Timeout)
		}
	}
	if custom.Timeout != 3*time.Second {
		t.Fatalf("caller's http client was mutated: %s", custom.Timeout)
	}
}
