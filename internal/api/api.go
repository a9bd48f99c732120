// Package api defines the HTTP surface of the tile service: request and
// response models, the ServerInterface and its chi routing.
package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// Health check
	// (GET /health)
	GetHealth(w http.ResponseWriter, r *http.Request)
	// Construct a tile and summarise it
	// (POST /tiles)
	CreateTile(w http.ResponseWriter, r *http.Request)
	// Split an uploaded image into tiles
	// (POST /split)
	SplitImage(w http.ResponseWriter, r *http.Request, params SplitImageParams)
}

// InvalidParamFormatError is passed to the error handler when a query
// parameter cannot be bound.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("Invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error {
	return e.Err
}

// ServerInterfaceWrapper converts contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler          ServerInterface
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// GetHealth operation middleware
func (siw *ServerInterfaceWrapper) GetHealth(w http.ResponseWriter, r *http.Request) {
	siw.Handler.GetHealth(w, r)
}

// CreateTile operation middleware
func (siw *ServerInterfaceWrapper) CreateTile(w http.ResponseWriter, r *http.Request) {
	siw.Handler.CreateTile(w, r)
}

// SplitImage operation middleware
func (siw *ServerInterfaceWrapper) SplitImage(w http.ResponseWriter, r *http.Request) {
	var params SplitImageParams
	query := r.URL.Query()

	bindings := []struct {
		name string
		dest **int
	}{
		{"tile_size", &params.TileSize},
		{"z", &params.Z},
		{"x", &params.X},
		{"y", &params.Y},
	}

	for _, b := range bindings {
		if err := runtime.BindQueryParameter("form", true, false, b.name, query, b.dest); err != nil {
			siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: b.name, Err: err})
			return
		}
	}

	siw.Handler.SplitImage(w, r, params)
}

// ChiServerOptions configures HandlerWithOptions.
type ChiServerOptions struct {
	BaseURL          string
	BaseRouter       chi.Router
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// Handler creates http.Handler with routing matching the API.
func Handler(si ServerInterface) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{})
}

// HandlerWithOptions creates http.Handler with additional options
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter

	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}
	wrapper := ServerInterfaceWrapper{
		Handler:          si,
		ErrorHandlerFunc: options.ErrorHandlerFunc,
	}

	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/health", wrapper.GetHealth)
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/tiles", wrapper.CreateTile)
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/split", wrapper.SplitImage)
	})

	return r
}
