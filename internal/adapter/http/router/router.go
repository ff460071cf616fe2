package router

import (
	"github.com/gorilla/mux"

	"github.com/mamgad/DVBLab/internal/adapter/http/middleware"
)

// Registrar mounts a controller's routes. Public routes skip token
// resolution; protected routes see only authenticated requests.
type Registrar interface {
	RegisterRoutes(public, protected *mux.Router)
}

func New(authenticator *middleware.Authenticator, corsOrigins []string, registrars ...Registrar) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(corsOrigins))

	api := r.PathPrefix("/api").Subrouter()
	protected := api.NewRoute().Subrouter()
	protected.Use(authenticator.RequireToken)

	for _, registrar := range registrars {
		if registrar != nil {
			registrar.RegisterRoutes(api, protected)
		}
	}

	return r
}
