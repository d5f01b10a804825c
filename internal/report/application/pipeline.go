package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"alert-reporting/internal/observability/metrics"
	"alert-reporting/internal/report/domain"
	"alert-reporting/internal/report/render"
)

// Session is one authorized view of the upstream monitoring platform.
// All calls are idempotent reads bound to the caller's bearer token.
type Session interface {
	AlertEvent(ctx context.Context, eventID int64) (*domain.AlertEvent, error)
	AlertDefinition(ctx context.Context, alertID string) (*domain.AlertDefinition, error)
	ChartImage(ctx context.Context, mac int64, window domain.TimeWindow, sensorTypes []int) (*domain.Artifact, error)
	SensorPlacement(ctx context.Context, mac int64) (*domain.SensorLocation, error)
	MapImage(ctx context.Context, locationID, mapID string, markers []domain.MapMarker) (*domain.Artifact, error)
}

// SessionFactory mints upstream sessions per request.
type SessionFactory interface {
	Session(token string) Session
}

// SessionFactoryFunc adapts a function to the SessionFactory interface.
type SessionFactoryFunc func(token string) Session

// Session mints a session for the token.
func (f SessionFactoryFunc) Session(token string) Session { return f(token) }

// GenerateRequest is one report generation request.
type GenerateRequest struct {
	EventID int64
	Token   string
	Format  string
}

// Document is a finished, stream-ready report.
type Document struct {
	Bytes       []byte
	ContentType string
	Filename    string
	ReportID    string
	HasMap      bool
}

// Pipeline sequences the report assembly stages: fetch event, fetch
// definition, compute window, fetch chart (and optionally a facility map),
// build the model, render. Event, definition and chart failures abort the
// pipeline; the map leg degrades to a report without a map section.
type Pipeline struct {
	sessions  SessionFactory
	builder   *Builder
	renderers map[string]render.Renderer
	clock     domain.Clock
	padding   time.Duration
	logger    *log.Logger
}

// NewPipeline constructs the report pipeline.
func NewPipeline(sessions SessionFactory, builder *Builder, renderers map[string]render.Renderer, clock domain.Clock, padding time.Duration, logger *log.Logger) (*Pipeline, error) {
	if sessions == nil {
		return nil, errors.New("report pipeline: nil session factory")
	}
	if builder == nil {
		return nil, errors.New("report pipeline: nil builder")
	}
	if len(renderers) == 0 {
		return nil, errors.New("report pipeline: no renderers")
	}
	if clock == nil {
		return nil, errors.New("report pipeline: nil clock")
	}
	if padding <= 0 {
		padding = time.Hour
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Pipeline{
		sessions:  sessions,
		builder:   builder,
		renderers: renderers,
		clock:     clock,
		padding:   padding,
		logger:    logger,
	}, nil
}

type mapSection struct {
	placement *domain.SensorLocation
	image     *domain.Artifact
}

// Generate runs the full pipeline for one request.
func (p *Pipeline) Generate(ctx context.Context, req GenerateRequest) (*Document, error) {
	renderer, ok := p.renderers[req.Format]
	if !ok {
		return nil, fmt.Errorf("report pipeline: unknown format %q", req.Format)
	}

	session := p.sessions.Session(req.Token)

	event, err := session.AlertEvent(ctx, req.EventID)
	if err != nil {
		return nil, fmt.Errorf("report pipeline: event %d: %w", req.EventID, err)
	}

	def, err := session.AlertDefinition(ctx, event.AlertID)
	if err != nil {
		return nil, fmt.Errorf("report pipeline: alert %s: %w", event.AlertID, err)
	}
	if def.AlertID != event.AlertID {
		return nil, fmt.Errorf("report pipeline: alert %s: definition id %s does not match: %w", event.AlertID, def.AlertID, domain.ErrUpstreamUnavailable)
	}

	window := domain.ComputeWindow(event.Timestamp, event.RTNTimestamp, p.clock.Now(), p.padding)

	// The chart and map legs are independent once the window is known;
	// run the soft map leg alongside the mandatory chart fetch.
	mapCh := make(chan mapSection, 1)
	go func() {
		mapCh <- p.fetchMapSection(ctx, session, event.MAC)
	}()

	chart, err := session.ChartImage(ctx, event.MAC, window, []int{event.Type})
	if err != nil {
		return nil, fmt.Errorf("report pipeline: chart for mac %d: %w", event.MAC, err)
	}

	section := <-mapCh

	model, err := p.builder.Build(def, event, window, chart, section.placement, section.image)
	if err != nil {
		return nil, fmt.Errorf("report pipeline: build model: %w", err)
	}

	docBytes, err := renderer.Render(model)
	if err != nil {
		return nil, fmt.Errorf("report pipeline: render %s: %w", req.Format, err)
	}

	return &Document{
		Bytes:       docBytes,
		ContentType: renderer.ContentType(),
		Filename:    renderer.Filename(),
		ReportID:    model.ReportID,
		HasMap:      model.HasMap,
	}, nil
}

// fetchMapSection resolves the sensor's placement and fetches the annotated
// facility map. Every failure here is soft: the report proceeds without a
// map section.
func (p *Pipeline) fetchMapSection(ctx context.Context, session Session, mac int64) mapSection {
	placement, err := session.SensorPlacement(ctx, mac)
	if err != nil {
		if errors.Is(err, domain.ErrMapNotConfigured) {
			metrics.IncReportMapOmitted("not_configured")
		} else {
			p.logger.Printf("report: sensor placement for mac %d: %v", mac, err)
			metrics.IncReportMapOmitted("placement_error")
		}
		return mapSection{}
	}

	image, err := session.MapImage(ctx, placement.LocationID, placement.MapID, []domain.MapMarker{placement.Marker()})
	if err != nil {
		p.logger.Printf("report: map image %s/%s: %v", placement.LocationID, placement.MapID, err)
		metrics.IncReportMapOmitted("fetch_error")
		return mapSection{}
	}

	return mapSection{placement: placement, image: image}
}
