package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// corsMaxAge is how long browsers may cache a preflight result, in seconds.
const corsMaxAge = 3600

// CORS allows cross-origin reads of the page from any origin.
// Preflight requests are passed through to next so the router keeps
// answering methods it does not serve with 405.
func CORS(next http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:     []string{"*"},
		AllowedMethods:     []string{http.MethodGet, http.MethodHead},
		AllowedHeaders:     []string{"*"},
		MaxAge:             corsMaxAge,
		OptionsPassthrough: true,
	})
	return c.Handler(next)
}
