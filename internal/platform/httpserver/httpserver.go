package httpserver

import (
	"net/http"
	"time"
)

// New builds the registry's HTTP server. The write timeout is generous
// because transfer approvals hold a row lock across the relocation write.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
