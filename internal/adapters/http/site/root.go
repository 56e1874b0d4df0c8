// Package site serves the embedded display pages.
package site

import (
	"context"
	"net/http"
)

// Register attaches the display pages to mux at the root path.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.Handle("/", http.FileServer(FS()))
}
