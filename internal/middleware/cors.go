package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// Cors answers preflight requests for the game API. Tokens travel in the
// Authorization header, so no cookies are involved.
func Cors(allowOrigin func(origin string) bool) Middleware {
	options := cors.Options{
		AllowOriginFunc: allowOrigin,
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodDelete,
		},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         600,
	}
	return cors.New(options).Handler
}
