package domain

import "strconv"

// AlertDefinition is a configured alert rule fetched from the monitoring
// platform's alert catalog. Immutable once fetched.
type AlertDefinition struct {
	AlertID          string
	Name             string
	Description      string
	SensorType       int
	Threshold        float64
	MinimumThreshold *float64
	Duration         int // seconds the condition must hold before triggering
	Owner            string
	NotifyEmail      bool
	NotifySMS        bool
}

// AlertEvent is one occurrence of an alert firing, fetched from the alert
// history by event id. RTNTimestamp of 0 means the alert is still active.
type AlertEvent struct {
	MAC          int64
	Timestamp    int64 // epoch millis at trigger
	Type         int
	Data         float64
	AlertID      string
	IsActive     bool
	EventID      int64
	RTNTimestamp int64
}

// Resolved reports whether the event has returned to normal.
func (e AlertEvent) Resolved() bool { return e.RTNTimestamp > 0 }

// DefaultSensorTypeLabels maps sensor type codes to display labels.
var DefaultSensorTypeLabels = map[int]string{
	1: "Temperature",
	2: "Humidity",
	3: "Pressure",
	4: "CO2",
	5: "Door Contact",
}

// SensorTypeLabel resolves a display label for a sensor type code,
// falling back to the numeric code when unknown.
func SensorTypeLabel(labels map[int]string, code int) string {
	if labels != nil {
		if label, ok := labels[code]; ok {
			return label
		}
	}
	if label, ok := DefaultSensorTypeLabels[code]; ok {
		return label
	}
	return "Type " + strconv.Itoa(code)
}
