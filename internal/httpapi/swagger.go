package httpapi

import (
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"

	// registers the OpenAPI document served at /swagger/doc.json
	_ "agentd/docs"
)

// MountSwagger serves the Swagger UI and the registered document under /swagger/.
func MountSwagger(r chi.Router) {
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
}
