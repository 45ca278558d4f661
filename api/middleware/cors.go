package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// The station UI is served from the same box, so only local origins are open.
var defaultCORSOrigins = []string{
	"http://localhost:3000",
	"http://localhost:8090",
	"http://127.0.0.1:8090",
}

// CORS returns middleware that applies the station's allowed origin policy.
func CORS() func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   defaultCORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
		AllowCredentials: false,
		MaxAge:           300,
	}).Handler
}
