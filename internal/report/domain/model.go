package domain

// ReportModel is the fully assembled, renderer-ready aggregate for one
// incident report. Built once per request and never mutated after the
// renderer consumes it. Image bytes are base64-encoded so the model is
// a plain value the renderer can embed without further I/O.
type ReportModel struct {
	ReportID    string
	Title       string
	GeneratedAt string

	Alert AlertDefinition
	Event AlertEvent

	SensorTypeLabel string
	StatusLabel     string
	TriggerTime     string
	RTNTime         string // empty while the alert is still active

	Window TimeWindow

	ChartImageBase64 string
	ChartMIME        string

	HasMap           bool
	LocationName     string
	MapID            string
	MarkerX, MarkerY float64
	MapImageBase64   string
	MapMIME          string
}
