package render

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"alert-reporting/internal/report/domain"
)

func testPNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x), G: uint8(y), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func testModel(t *testing.T, withMap bool) *domain.ReportModel {
	t.Helper()
	minThreshold := 10.5
	model := &domain.ReportModel{
		ReportID:    "report-fixed",
		Title:       "Alert Report",
		GeneratedAt: "2026-08-23 12:00:00",
		Alert: domain.AlertDefinition{
			AlertID:          "alert-1",
			Name:             "High Temperature Alert",
			Description:      "Temperature above threshold",
			SensorType:       1,
			Threshold:        70,
			MinimumThreshold: &minThreshold,
			Duration:         300,
			Owner:            "facilities",
		},
		Event: domain.AlertEvent{
			MAC:          111222333,
			Timestamp:    1700000000000,
			Type:         1,
			Data:         75.5,
			AlertID:      "alert-1",
			EventID:      42,
			RTNTimestamp: 1700003600000,
		},
		SensorTypeLabel:  "Temperature",
		StatusLabel:      "Resolved",
		TriggerTime:      "2023-11-14 22:13:20",
		RTNTime:          "2023-11-14 23:13:20",
		Window:           domain.TimeWindow{Start: 1699996400000, End: 1700007200000},
		ChartImageBase64: base64.StdEncoding.EncodeToString(testPNG(t, 60, 40)),
		ChartMIME:        "image/png",
	}
	if withMap {
		model.HasMap = true
		model.LocationName = "Building A"
		model.MapID = "map-1"
		model.MarkerX = 120
		model.MarkerY = 240
		model.MapImageBase64 = base64.StdEncoding.EncodeToString(testPNG(t, 80, 60))
		model.MapMIME = "image/png"
	}
	return model
}

func TestPDFRenderProducesDocument(t *testing.T) {
	renderer := NewPDF("alert_report")
	doc, err := renderer.Render(testModel(t, false))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(doc) == 0 {
		t.Fatalf("expected non-empty document")
	}
	if !bytes.HasPrefix(doc, []byte("%PDF")) {
		t.Fatalf("expected PDF magic, got %q", doc[:4])
	}
	if renderer.ContentType() != "application/pdf" {
		t.Fatalf("unexpected content type: %s", renderer.ContentType())
	}
	if renderer.Filename() != "alert_report.pdf" {
		t.Fatalf("unexpected filename: %s", renderer.Filename())
	}
}

func TestPDFRenderSizeStable(t *testing.T) {
	renderer := NewPDF("alert_report")
	model := testModel(t, true)
	first, err := renderer.Render(model)
	if err != nil {
		t.Fatalf("first render: %v", err)
	}
	second, err := renderer.Render(model)
	if err != nil {
		t.Fatalf("second render: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("expected size-stable output, got %d vs %d", len(first), len(second))
	}
}

func TestPDFRenderWithMapIsLarger(t *testing.T) {
	renderer := NewPDF("alert_report")
	without, err := renderer.Render(testModel(t, false))
	if err != nil {
		t.Fatalf("render without map: %v", err)
	}
	with, err := renderer.Render(testModel(t, true))
	if err != nil {
		t.Fatalf("render with map: %v", err)
	}
	if len(with) <= len(without) {
		t.Fatalf("expected map section to grow document: %d vs %d", len(with), len(without))
	}
}

func TestPDFRenderRejectsUnsupportedImageType(t *testing.T) {
	renderer := NewPDF("alert_report")
	model := testModel(t, false)
	model.ChartMIME = "image/webp"

	_, err := renderer.Render(model)
	var renderErr *Error
	if !errors.As(err, &renderErr) {
		t.Fatalf("expected render error, got %v", err)
	}
}

func TestPDFRenderRejectsCorruptBase64(t *testing.T) {
	renderer := NewPDF("alert_report")
	model := testModel(t, false)
	model.ChartImageBase64 = "not base64!!!"

	var renderErr *Error
	if _, err := renderer.Render(model); !errors.As(err, &renderErr) {
		t.Fatalf("expected render error, got %v", err)
	}
}

func TestXLSXRenderProducesWorkbook(t *testing.T) {
	renderer := NewXLSX("alert_report")
	doc, err := renderer.Render(testModel(t, true))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(doc) == 0 {
		t.Fatalf("expected non-empty workbook")
	}
	// XLSX is a ZIP container.
	if !bytes.HasPrefix(doc, []byte{0x50, 0x4b}) {
		t.Fatalf("expected ZIP magic, got %v", doc[:2])
	}
	if renderer.Filename() != "alert_report.xlsx" {
		t.Fatalf("unexpected filename: %s", renderer.Filename())
	}
}

func TestXLSXRenderRejectsUnsupportedImageType(t *testing.T) {
	renderer := NewXLSX("alert_report")
	model := testModel(t, false)
	model.ChartMIME = "application/pdf"

	var renderErr *Error
	if _, err := renderer.Render(model); !errors.As(err, &renderErr) {
		t.Fatalf("expected render error, got %v", err)
	}
}

func TestRenderNilModel(t *testing.T) {
	var renderErr *Error
	if _, err := NewPDF("").Render(nil); !errors.As(err, &renderErr) {
		t.Fatalf("expected render error for nil model")
	}
	if _, err := NewXLSX("").Render(nil); !errors.As(err, &renderErr) {
		t.Fatalf("expected render error for nil model")
	}
}
