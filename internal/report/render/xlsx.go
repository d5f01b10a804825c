package render

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"alert-reporting/internal/report/domain"
)

// XLSX renders an alert incident report as a spreadsheet with a summary
// sheet mirroring the PDF sections and the embedded chart/map images.
type XLSX struct {
	FilenameStem string
}

// NewXLSX constructs an XLSX renderer.
func NewXLSX(filenameStem string) *XLSX {
	if filenameStem == "" {
		filenameStem = "alert_report"
	}
	return &XLSX{FilenameStem: filenameStem}
}

// ContentType returns the XLSX media type.
func (r *XLSX) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Filename returns the download filename.
func (r *XLSX) Filename() string { return r.FilenameStem + ".xlsx" }

// Render produces the XLSX bytes for a report model.
func (r *XLSX) Render(model *domain.ReportModel) ([]byte, error) {
	if model == nil {
		return nil, renderError("xlsx", fmt.Errorf("nil model"))
	}

	f := excelize.NewFile()
	sheet := "report"
	f.SetSheetName("Sheet1", sheet)

	_ = f.SetCellValue(sheet, "A1", model.Title)
	_ = f.SetCellValue(sheet, "A2", fmt.Sprintf("Report %s generated %s", model.ReportID, model.GeneratedAt))

	rows := [][2]any{
		{"Alert ID", model.Alert.AlertID},
		{"Alert Name", model.Alert.Name},
		{"Sensor Type", model.SensorTypeLabel},
		{"Threshold", model.Alert.Threshold},
		{"Duration (s)", model.Alert.Duration},
		{"Device MAC", model.Event.MAC},
		{"Event ID", model.Event.EventID},
		{"Triggered", model.TriggerTime},
		{"Measured Value", model.Event.Data},
		{"Status", model.StatusLabel},
	}
	if model.RTNTime != "" {
		rows = append(rows, [2]any{"Returned to Normal", model.RTNTime})
	}
	if model.HasMap {
		rows = append(rows,
			[2]any{"Facility", model.LocationName},
			[2]any{"Map", model.MapID},
			[2]any{"Marker", fmt.Sprintf("(%.0f, %.0f)", model.MarkerX, model.MarkerY)},
		)
	}
	row := 4
	for _, pair := range rows {
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), pair[0])
		_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", row), pair[1])
		row++
	}

	row += 2
	if err := r.embedImage(f, sheet, fmt.Sprintf("A%d", row), model.ChartImageBase64, model.ChartMIME); err != nil {
		return nil, err
	}
	if model.HasMap {
		row += 22
		if err := r.embedImage(f, sheet, fmt.Sprintf("A%d", row), model.MapImageBase64, model.MapMIME); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, renderError("xlsx", err)
	}
	return buf.Bytes(), nil
}

func (r *XLSX) embedImage(f *excelize.File, sheet, cell, encoded, mime string) error {
	raw, err := decodeImage(encoded)
	if err != nil {
		return renderError("xlsx", err)
	}
	ext, err := xlsxImageExtension(mime)
	if err != nil {
		return renderError("xlsx", err)
	}
	if err := f.AddPictureFromBytes(sheet, cell, &excelize.Picture{
		Extension: ext,
		File:      raw,
	}); err != nil {
		return renderError("xlsx", err)
	}
	return nil
}

func xlsxImageExtension(mime string) (string, error) {
	switch mime {
	case "image/png":
		return ".png", nil
	case "image/jpeg", "image/jpg":
		return ".jpg", nil
	case "image/gif":
		return ".gif", nil
	default:
		return "", fmt.Errorf("unsupported image type %q", mime)
	}
}
