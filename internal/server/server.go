package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/paulmach/orb/maptile"

	"github.com/kiesman99/rastertile/internal/api"
	"github.com/kiesman99/rastertile/internal/tiling"
	"github.com/kiesman99/rastertile/pkg/geo"
	"github.com/kiesman99/rastertile/pkg/tile"
)

const (
	defaultTileSize = 256
	maxTileSize     = 4096
	maxZoom         = 20

	// maxSamples bounds the memory a single request may allocate.
	maxSamples = 1 << 24
	// maxUploadBytes bounds the size of an uploaded image.
	maxUploadBytes = 32 << 20
)

// Server implements api.ServerInterface
type Server struct {
	startTime time.Time
	version   string
}

// NewServer creates a new server instance
func NewServer(version string) *Server {
	return &Server{
		startTime: time.Now(),
		version:   version,
	}
}

// GetHealth implements the health check endpoint
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	uptime := int(time.Since(s.startTime).Seconds())

	s.writeJSON(w, http.StatusOK, api.HealthResponse{
		Status:    api.Healthy,
		Timestamp: time.Now(),
		Uptime:    &uptime,
		Version:   &s.version,
	})
}

// CreateTile constructs a tile from the request, applies the requested
// sample writes and returns a per-band summary.
func (s *Server) CreateTile(w http.ResponseWriter, r *http.Request) {
	requestID := requestIDFrom(r)

	var req api.TileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, api.ErrInvalidJSON,
			"Invalid JSON in request body", &requestID, nil)
		return
	}

	if req.Width > 0 && req.Height > 0 && req.BandCount > 0 &&
		int64(req.Width)*int64(req.Height)*int64(req.BandCount) > maxSamples {
		s.writeErrorResponse(w, http.StatusBadRequest, api.ErrValidation,
			fmt.Sprintf("tile exceeds %d samples", maxSamples), &requestID, nil)
		return
	}

	t, err := tile.New(req.OriginX, req.OriginY, req.Width, req.Height, req.BandCount)
	if err != nil {
		s.handleTileError(w, err, &requestID)
		return
	}

	if req.Transform != nil {
		t.SetTransform(*req.Transform)
	}

	if req.Samples != nil {
		for _, sample := range *req.Samples {
			if err := t.SetPixel(sample.X, sample.Y, sample.Band, sample.Value); err != nil {
				s.handleTileError(w, err, &requestID)
				return
			}
		}
	}

	summary, err := summarize(t)
	if err != nil {
		s.handleTileError(w, err, &requestID)
		return
	}

	w.Header().Set("X-Request-ID", requestID)
	s.writeJSON(w, http.StatusCreated, summary)
}

// SplitImage decodes an uploaded PNG or JPEG and splits it into tiles.
func (s *Server) SplitImage(w http.ResponseWriter, r *http.Request, params api.SplitImageParams) {
	requestID := requestIDFrom(r)

	size := defaultTileSize
	if params.TileSize != nil {
		size = *params.TileSize
	}
	if size <= 0 || size > maxTileSize {
		s.writeValidationErrorResponse(w, fmt.Sprintf("tile_size must be between 1 and %d", maxTileSize), &requestID)
		return
	}

	mapTile, err := validateMapTile(params)
	if err != nil {
		s.writeValidationErrorResponse(w, err.Error(), &requestID)
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadBytes))
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			s.writeErrorResponse(w, http.StatusRequestEntityTooLarge, api.ErrValidation,
				"Request body too large", &requestID, nil)
			return
		}
		s.writeErrorResponse(w, http.StatusBadRequest, api.ErrInvalidImage,
			fmt.Sprintf("Failed to read request body: %v", err), &requestID, nil)
		return
	}

	// Decoded images always carry 4 bands.
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, api.ErrInvalidImage,
			err.Error(), &requestID, nil)
		return
	}
	if int64(cfg.Width)*int64(cfg.Height)*4 > maxSamples {
		s.writeValidationErrorResponse(w, fmt.Sprintf("image %dx%d exceeds %d samples",
			cfg.Width, cfg.Height, maxSamples), &requestID)
		return
	}

	src, err := tile.Decode(data, 0, 0)
	if err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, api.ErrInvalidImage,
			err.Error(), &requestID, nil)
		return
	}

	width, height := src.Size()
	if mapTile != nil {
		src.SetTransform(geo.ForMapTile(*mapTile, width).String())
	}

	tiles, err := tiling.SplitContext(r.Context(), src, size)
	if err != nil {
		s.handleTileError(w, err, &requestID)
		return
	}

	response := api.SplitResponse{
		Width:     width,
		Height:    height,
		BandCount: src.BandCount(),
		TileSize:  size,
		Tiles:     make([]api.TileSummary, 0, len(tiles)),
	}
	for _, t := range tiles {
		summary, err := summarize(t)
		if err != nil {
			s.handleTileError(w, err, &requestID)
			return
		}
		response.Tiles = append(response.Tiles, summary)
	}

	w.Header().Set("X-Request-ID", requestID)
	s.writeJSON(w, http.StatusOK, response)
}

// HandleParamError reports query parameters that could not be bound.
func (s *Server) HandleParamError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := requestIDFrom(r)
	s.writeValidationErrorResponse(w, err.Error(), &requestID)
}

// validateMapTile returns the slippy map tile named by z/x/y, or nil when
// none of them is set.
func validateMapTile(params api.SplitImageParams) (*maptile.Tile, error) {
	if params.Z == nil && params.X == nil && params.Y == nil {
		return nil, nil
	}
	if params.Z == nil || params.X == nil || params.Y == nil {
		return nil, fmt.Errorf("z, x and y must be given together")
	}

	if *params.Z > maxZoom {
		return nil, fmt.Errorf("z must be between 0 and %d", maxZoom)
	}

	t, err := geo.MapTile(*params.Z, *params.X, *params.Y)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func summarize(t *tile.Tile) (api.TileSummary, error) {
	ox, oy := t.Origin()
	w, h := t.Size()

	summary := api.TileSummary{
		OriginX:   ox,
		OriginY:   oy,
		Width:     w,
		Height:    h,
		BandCount: t.BandCount(),
		Transform: t.Transform(),
		Bands:     make([]api.BandSummary, t.BandCount()),
	}

	for b := range summary.Bands {
		stats, err := t.Stats(b)
		if err != nil {
			return api.TileSummary{}, err
		}
		summary.Bands[b] = api.BandSummary{Band: b, Min: stats.Min, Max: stats.Max, Mean: stats.Mean}
	}

	return summary, nil
}

// handleTileError maps tile errors onto HTTP responses
func (s *Server) handleTileError(w http.ResponseWriter, err error, requestID *string) {
	var rangeErr *tile.RangeError

	switch {
	case errors.As(err, &rangeErr):
		s.writeErrorResponse(w, http.StatusUnprocessableEntity, api.ErrOutOfRange,
			err.Error(), requestID, map[string]interface{}{
				"x":      rangeErr.X,
				"y":      rangeErr.Y,
				"band":   rangeErr.Band,
				"width":  rangeErr.Width,
				"height": rangeErr.Height,
				"bands":  rangeErr.Bands,
			})
	case errors.Is(err, tile.ErrInvalidArgument):
		s.writeErrorResponse(w, http.StatusBadRequest, api.ErrInvalidArgument,
			err.Error(), requestID, nil)
	default:
		log.Printf("request %s: %v", *requestID, err)
		s.writeErrorResponse(w, http.StatusInternalServerError, api.ErrInternal,
			"Internal server error", requestID, nil)
	}
}

// writeErrorResponse writes a standard error response
func (s *Server) writeErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string, requestID *string, details map[string]interface{}) {
	response := api.ErrorResponse{
		Error:     errorCode,
		Message:   message,
		RequestId: requestID,
	}

	if details != nil {
		response.Details = &details
	}

	s.writeJSON(w, statusCode, response)
}

// writeValidationErrorResponse writes a validation error response
func (s *Server) writeValidationErrorResponse(w http.ResponseWriter, message string, requestID *string) {
	s.writeErrorResponse(w, http.StatusBadRequest, api.ErrValidation, message, requestID, nil)
}

func (s *Server) writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// requestIDFrom returns the ID assigned by middleware.RequestID, or a new
// one when the handler runs without that middleware.
func requestIDFrom(r *http.Request) string {
	if id := middleware.GetReqID(r.Context()); id != "" {
		return id
	}
	return fmt.Sprintf("req_%d", time.Now().UnixNano())
}
