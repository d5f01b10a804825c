package render

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"alert-reporting/internal/report/domain"
)

// PDF layout constants (A4 portrait, millimetres).
const (
	pdfImageWidth   = 170.0
	pdfLabelWidth   = 45.0
	pdfLineHeight   = 6.0
	pdfSectionSkip  = 4.0
	pdfHeaderHeight = 10.0
)

// PDF renders an alert incident report as a paginated PDF document.
type PDF struct {
	FilenameStem string
}

// NewPDF constructs a PDF renderer.
func NewPDF(filenameStem string) *PDF {
	if filenameStem == "" {
		filenameStem = "alert_report"
	}
	return &PDF{FilenameStem: filenameStem}
}

// ContentType returns the PDF media type.
func (r *PDF) ContentType() string { return "application/pdf" }

// Filename returns the download filename.
func (r *PDF) Filename() string { return r.FilenameStem + ".pdf" }

// Render produces the PDF bytes for a report model.
func (r *PDF) Render(model *domain.ReportModel) ([]byte, error) {
	if model == nil {
		return nil, renderError("pdf", fmt.Errorf("nil model"))
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, pdfHeaderHeight, model.Title, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 5, fmt.Sprintf("Report %s generated %s", model.ReportID, model.GeneratedAt), "", 1, "C", false, 0, "")
	pdf.Ln(pdfSectionSkip)

	r.sectionTitle(pdf, "Alert Details")
	r.row(pdf, "Alert ID", model.Alert.AlertID)
	r.row(pdf, "Alert Name", model.Alert.Name)
	if model.Alert.Description != "" {
		r.row(pdf, "Description", model.Alert.Description)
	}
	r.row(pdf, "Sensor Type", model.SensorTypeLabel)
	r.row(pdf, "Threshold", fmt.Sprintf("%.2f", model.Alert.Threshold))
	if model.Alert.MinimumThreshold != nil {
		r.row(pdf, "Minimum Threshold", fmt.Sprintf("%.2f", *model.Alert.MinimumThreshold))
	}
	r.row(pdf, "Duration", fmt.Sprintf("%d seconds", model.Alert.Duration))
	if model.Alert.Owner != "" {
		r.row(pdf, "Owner", model.Alert.Owner)
	}
	pdf.Ln(pdfSectionSkip)

	r.sectionTitle(pdf, "Alert Incident")
	r.row(pdf, "Device MAC", fmt.Sprintf("%d", model.Event.MAC))
	r.row(pdf, "Event ID", fmt.Sprintf("%d", model.Event.EventID))
	r.row(pdf, "Triggered", model.TriggerTime)
	r.row(pdf, "Measured Value", fmt.Sprintf("%.2f", model.Event.Data))
	r.row(pdf, "Status", model.StatusLabel)
	if model.RTNTime != "" {
		r.row(pdf, "Returned to Normal", model.RTNTime)
	}
	pdf.Ln(pdfSectionSkip)

	r.sectionTitle(pdf, "Sensor Data Chart")
	if err := r.embedImage(pdf, "chart", model.ChartImageBase64, model.ChartMIME); err != nil {
		return nil, err
	}

	if model.HasMap {
		pdf.Ln(pdfSectionSkip)
		r.sectionTitle(pdf, "Sensor Location")
		if model.LocationName != "" {
			r.row(pdf, "Facility", model.LocationName)
		}
		r.row(pdf, "Map", model.MapID)
		r.row(pdf, "Marker", fmt.Sprintf("(%.0f, %.0f)", model.MarkerX, model.MarkerY))
		if err := r.embedImage(pdf, "map", model.MapImageBase64, model.MapMIME); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, renderError("pdf", err)
	}
	return buf.Bytes(), nil
}

func (r *PDF) sectionTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Arial", "B", 12)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(0, 8, title, "", 1, "L", true, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.Ln(1)
}

func (r *PDF) row(pdf *gofpdf.Fpdf, label, value string) {
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(pdfLabelWidth, pdfLineHeight, label, "", 0, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, pdfLineHeight, value, "", 1, "L", false, 0, "")
}

func (r *PDF) embedImage(pdf *gofpdf.Fpdf, name, encoded, mime string) error {
	raw, err := decodeImage(encoded)
	if err != nil {
		return renderError("pdf", err)
	}
	imageType, err := pdfImageType(mime)
	if err != nil {
		return renderError("pdf", err)
	}
	opts := gofpdf.ImageOptions{ImageType: imageType}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(raw))
	pdf.ImageOptions(name, (210-pdfImageWidth)/2, 0, pdfImageWidth, 0, true, opts, 0, "")
	if pdf.Err() {
		return renderError("pdf", fmt.Errorf("embed %s: %v", name, pdf.Error()))
	}
	return nil
}

func pdfImageType(mime string) (string, error) {
	switch mime {
	case "image/png":
		return "PNG", nil
	case "image/jpeg", "image/jpg":
		return "JPG", nil
	case "image/gif":
		return "GIF", nil
	default:
		return "", fmt.Errorf("unsupported image type %q", mime)
	}
}
