// fake_monitor_server is a standalone fake of the upstream monitoring
// platform for local development: it serves the alert history, alert
// catalog, sensor, location, chart and map endpoints with generated
// placeholder images. Env knobs inject latency and failure rate.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

type fakeMonitorServer struct {
	start    time.Time
	latency  time.Duration
	failRate float64
	mapless  bool
	rtnAfter time.Duration
}

func main() {
	addr := getenvDefault("FAKE_MONITOR_ADDR", ":18100")
	latencyMs := getenvIntDefault("FAKE_MONITOR_LATENCY_MS", 0)
	failRate := getenvFloatDefault("FAKE_MONITOR_FAIL_RATE", 0)
	mapless := getenvDefault("FAKE_MONITOR_MAPLESS", "") != ""
	rtnAfterMin := getenvIntDefault("FAKE_MONITOR_RTN_AFTER_MIN", 60)

	srv := &fakeMonitorServer{
		start:    time.Now().UTC(),
		latency:  time.Duration(latencyMs) * time.Millisecond,
		failRate: failRate,
		mapless:  mapless,
		rtnAfter: time.Duration(rtnAfterMin) * time.Minute,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", srv.handleHealth)
	mux.HandleFunc("/alertHistory/", srv.handleAlertHistory)
	mux.HandleFunc("/alerts/", srv.handleAlert)
	mux.HandleFunc("/chart", srv.handleChart)
	mux.HandleFunc("/sensors/", srv.handleSensor)
	mux.HandleFunc("/locations/", srv.handleLocation)

	log.Printf("fake monitor server listening on %s", addr)
	log.Fatal(http.ListenAndServe(addr, mux))
}

func (s *fakeMonitorServer) gate(w http.ResponseWriter, r *http.Request) bool {
	if s.latency > 0 {
		time.Sleep(s.latency)
	}
	if r.Header.Get("Authorization") == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return false
	}
	if s.failRate > 0 && rand.Float64() < s.failRate {
		http.Error(w, "injected failure", http.StatusBadGateway)
		return false
	}
	return true
}

func (s *fakeMonitorServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *fakeMonitorServer) handleAlertHistory(w http.ResponseWriter, r *http.Request) {
	if !s.gate(w, r) {
		return
	}
	eventID, err := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/alertHistory/"), 10, 64)
	if err != nil {
		http.Error(w, "bad event id", http.StatusBadRequest)
		return
	}
	trigger := s.start.Add(-2 * time.Hour)
	rtn := int64(0)
	if s.rtnAfter > 0 {
		rtn = trigger.Add(s.rtnAfter).UnixMilli()
	}
	writeJSON(w, map[string]any{
		"mac":          111222333,
		"timestamp":    trigger.UnixMilli(),
		"type":         1,
		"data":         75.5,
		"alertId":      fmt.Sprintf("alert-%d", eventID%7),
		"isActive":     rtn == 0,
		"eventId":      eventID,
		"rtnTimestamp": rtn,
	})
}

func (s *fakeMonitorServer) handleAlert(w http.ResponseWriter, r *http.Request) {
	if !s.gate(w, r) {
		return
	}
	alertID := strings.TrimPrefix(r.URL.Path, "/alerts/")
	writeJSON(w, map[string]any{
		"alertId":     alertID,
		"name":        "High Temperature Alert",
		"description": "Temperature above threshold",
		"sensorType":  1,
		"threshold":   70.0,
		"duration":    300,
		"owner":       "facilities",
		"notifyEmail": true,
	})
}

func (s *fakeMonitorServer) handleChart(w http.ResponseWriter, r *http.Request) {
	if !s.gate(w, r) {
		return
	}
	writePNG(w, 600, 400, color.RGBA{R: 230, G: 240, B: 255, A: 255})
}

func (s *fakeMonitorServer) handleSensor(w http.ResponseWriter, r *http.Request) {
	if !s.gate(w, r) {
		return
	}
	mac, err := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/sensors/"), 10, 64)
	if err != nil {
		http.Error(w, "bad mac", http.StatusBadRequest)
		return
	}
	resp := map[string]any{
		"mac":        mac,
		"name":       fmt.Sprintf("sensor-%d", mac),
		"locationId": "loc-1",
	}
	if !s.mapless {
		resp["buildingMapId"] = "map-1"
		resp["mapX"] = 120.0
		resp["mapY"] = 240.0
	}
	writeJSON(w, resp)
}

func (s *fakeMonitorServer) handleLocation(w http.ResponseWriter, r *http.Request) {
	if !s.gate(w, r) {
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/locations/")
	if strings.Contains(rest, "/maps/") && strings.HasSuffix(rest, "/image") {
		writePNG(w, 800, 600, color.RGBA{R: 240, G: 255, B: 240, A: 255})
		return
	}
	writeJSON(w, map[string]any{
		"id":   rest,
		"name": "Building A",
	})
}

func writeJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

func writePNG(w http.ResponseWriter, width, height int, fill color.RGBA) {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, fill)
		}
	}
	// Diagonal stripe so the placeholder is visibly not blank.
	for i := 0; i < width && i < height; i++ {
		img.SetRGBA(i, i, color.RGBA{A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(buf.Bytes())
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvFloatDefault(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
