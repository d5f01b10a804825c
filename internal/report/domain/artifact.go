package domain

// Artifact is an opaque raster image fetched from an upstream rendering
// endpoint, tagged with its media type.
type Artifact struct {
	Bytes []byte
	MIME  string
}
