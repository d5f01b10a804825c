package application

import (
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"alert-reporting/internal/report/domain"
)

const displayTimeLayout = "2006-01-02 15:04:05"

// Builder combines fetched artifacts into a renderer-ready ReportModel.
// Pure combination: no I/O, deterministic for fixed clock and id source.
type Builder struct {
	loc        *time.Location
	clock      domain.Clock
	title      string
	typeLabels map[int]string
	newID      func() string
}

// BuilderOption customizes a Builder.
type BuilderOption func(*Builder)

// WithTitle overrides the document title.
func WithTitle(title string) BuilderOption {
	return func(b *Builder) {
		if title != "" {
			b.title = title
		}
	}
}

// WithSensorTypeLabels overrides the sensor type display labels.
func WithSensorTypeLabels(labels map[int]string) BuilderOption {
	return func(b *Builder) { b.typeLabels = labels }
}

// WithIDSource overrides the report id generator.
func WithIDSource(newID func() string) BuilderOption {
	return func(b *Builder) {
		if newID != nil {
			b.newID = newID
		}
	}
}

// NewBuilder constructs a report model builder. Display timestamps are
// formatted in loc; the clock stamps GeneratedAt.
func NewBuilder(loc *time.Location, clock domain.Clock, opts ...BuilderOption) (*Builder, error) {
	if loc == nil {
		return nil, errors.New("report builder: nil location")
	}
	if clock == nil {
		return nil, errors.New("report builder: nil clock")
	}
	b := &Builder{
		loc:   loc,
		clock: clock,
		title: "Alert Report",
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Build assembles the report model. def, event and chart are mandatory;
// placement and mapImage together form the optional map section, which is
// populated only when both are present.
func (b *Builder) Build(def *domain.AlertDefinition, event *domain.AlertEvent, window domain.TimeWindow, chart *domain.Artifact, placement *domain.SensorLocation, mapImage *domain.Artifact) (*domain.ReportModel, error) {
	if def == nil || event == nil {
		return nil, errors.New("report builder: nil alert or event")
	}
	if chart == nil || len(chart.Bytes) == 0 {
		return nil, errors.New("report builder: missing chart artifact")
	}
	if def.AlertID != event.AlertID {
		return nil, fmt.Errorf("report builder: alert id mismatch: definition %s, event %s", def.AlertID, event.AlertID)
	}

	model := &domain.ReportModel{
		ReportID:        b.newID(),
		Title:           b.title,
		GeneratedAt:     b.clock.Now().In(b.loc).Format(displayTimeLayout),
		Alert:           *def,
		Event:           *event,
		SensorTypeLabel: domain.SensorTypeLabel(b.typeLabels, def.SensorType),
		TriggerTime:     b.formatMillis(event.Timestamp),
		Window:          window,

		ChartImageBase64: base64.StdEncoding.EncodeToString(chart.Bytes),
		ChartMIME:        chart.MIME,
	}

	if event.Resolved() {
		model.StatusLabel = "Resolved"
		model.RTNTime = b.formatMillis(event.RTNTimestamp)
	} else {
		model.StatusLabel = "Active"
	}

	if placement != nil && mapImage != nil && len(mapImage.Bytes) > 0 {
		model.HasMap = true
		model.LocationName = placement.LocationName
		model.MapID = placement.MapID
		model.MarkerX = placement.X
		model.MarkerY = placement.Y
		model.MapImageBase64 = base64.StdEncoding.EncodeToString(mapImage.Bytes)
		model.MapMIME = mapImage.MIME
	}

	return model, nil
}

func (b *Builder) formatMillis(millis int64) string {
	return time.UnixMilli(millis).In(b.loc).Format(displayTimeLayout)
}
