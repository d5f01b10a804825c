package domain

// Sensor is the monitoring platform's device record for a MAC, carrying
// its facility placement. BuildingMapID is empty when the sensor has never
// been placed on a map.
type Sensor struct {
	MAC           int64
	Name          string
	LocationID    string
	BuildingMapID string
	MapX          float64
	MapY          float64
}

// Location is a facility record, used only for its display name.
type Location struct {
	ID   string
	Name string
}

// SensorLocation is the resolved physical placement of a sensor: which
// facility map it sits on and where, in image-space pixels.
type SensorLocation struct {
	LocationID   string
	LocationName string
	MapID        string
	X            float64
	Y            float64
}

// Marker returns the placement as a single map marker point.
func (l SensorLocation) Marker() MapMarker {
	return MapMarker{X: l.X, Y: l.Y}
}

// MapMarker is one annotated point on a facility map image.
type MapMarker struct {
	X float64
	Y float64
}
