package api

import (
	"time"
)

// HealthResponseStatus describes the state of the service
type HealthResponseStatus string

// Defines values for HealthResponseStatus.
const (
	Healthy   HealthResponseStatus = "healthy"
	Unhealthy HealthResponseStatus = "unhealthy"
)

// Error codes used in ErrorResponse.Error.
const (
	ErrInvalidJSON     = "INVALID_JSON"
	ErrInvalidArgument = "INVALID_ARGUMENT"
	ErrOutOfRange      = "OUT_OF_RANGE"
	ErrInvalidImage    = "INVALID_IMAGE"
	ErrValidation      = "VALIDATION_ERROR"
	ErrInternal        = "INTERNAL_ERROR"
)

// HealthResponse defines model for HealthResponse.
type HealthResponse struct {
	Status    HealthResponseStatus `json:"status"`
	Timestamp time.Time            `json:"timestamp"`
	Uptime    *int                 `json:"uptime,omitempty"`
	Version   *string              `json:"version,omitempty"`
}

// Sample is a single pixel write.
type Sample struct {
	X     int `json:"x"`
	Y     int `json:"y"`
	Band  int `json:"band"`
	Value int `json:"value"`
}

// TileRequest defines model for TileRequest.
type TileRequest struct {
	OriginX   int       `json:"origin_x"`
	OriginY   int       `json:"origin_y"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	BandCount int       `json:"band_count"`
	Transform *string   `json:"transform,omitempty"`
	Samples   *[]Sample `json:"samples,omitempty"`
}

// BandSummary defines model for BandSummary.
type BandSummary struct {
	Band int     `json:"band"`
	Min  int     `json:"min"`
	Max  int     `json:"max"`
	Mean float64 `json:"mean"`
}

// TileSummary describes a tile without its samples.
type TileSummary struct {
	OriginX   int           `json:"origin_x"`
	OriginY   int           `json:"origin_y"`
	Width     int           `json:"width"`
	Height    int           `json:"height"`
	BandCount int           `json:"band_count"`
	Transform string        `json:"transform"`
	Bands     []BandSummary `json:"bands"`
}

// SplitResponse defines model for SplitResponse.
type SplitResponse struct {
	Width     int           `json:"width"`
	Height    int           `json:"height"`
	BandCount int           `json:"band_count"`
	TileSize  int           `json:"tile_size"`
	Tiles     []TileSummary `json:"tiles"`
}

// ErrorResponse defines model for ErrorResponse.
type ErrorResponse struct {
	Error     string                  `json:"error"`
	Message   string                  `json:"message"`
	RequestId *string                 `json:"request_id,omitempty"`
	Details   *map[string]interface{} `json:"details,omitempty"`
}

// SplitImageParams defines parameters for SplitImage.
type SplitImageParams struct {
	// TileSize is the edge length of the produced tiles (default 256).
	TileSize *int `form:"tile_size,omitempty" json:"tile_size,omitempty"`

	// Z, X and Y georeference the uploaded image as a slippy map tile.
	Z *int `form:"z,omitempty" json:"z,omitempty"`
	X *int `form:"x,omitempty" json:"x,omitempty"`
	Y *int `form:"y,omitempty" json:"y,omitempty"`
}
