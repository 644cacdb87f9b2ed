package gallery

import (
	"github.com/go-chi/chi/v5"

	"github.com/eventpix/eventpix/pkg/tenant"
)

// Router mounts the gallery endpoints. Callers are expected to have the
// tenant middleware installed upstream; RequireTenant guards against
// misordered middleware chains.
//
//	r := chi.NewRouter()
//	r.Use(tenant.Middleware(resolver, provider))
//	r.Mount("/gallery", gallery.Router(svc))
func Router(svc *Service) chi.Router {
	r := chi.NewRouter()
	r.Use(tenant.RequireTenant(nil))

	r.Route("/events/{eventID}", func(ev chi.Router) {
		ev.Post("/photos", svc.UploadPhotos)
		ev.Post("/shares", svc.CreateShare)
		if svc.guard != nil {
			ev.Get("/usage", svc.EventUsage)
		}
	})

	return r
}
