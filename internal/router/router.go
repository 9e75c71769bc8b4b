package router

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/vetport/ahc-service/internal/auth"
	"github.com/vetport/ahc-service/internal/handler"
	mw "github.com/vetport/ahc-service/internal/middleware"
)

// New wires the public intake surface and the JWT-protected staff API.
func New(
	jwtSecret string,
	log *slog.Logger,
	intakeH *handler.IntakeHandler,
	subH *handler.SubmissionHandler,
	tplH *handler.TemplateHandler,
	genH *handler.GenerateHandler,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(mw.Recovery(log))
	r.Use(mw.Logger(log))
	r.Use(mw.CORS)

	// Owner wizard, scoped by the unguessable public token
	r.Route("/intake/{token}", func(r chi.Router) {
		r.Get("/", intakeH.Get)
		r.Put("/", intakeH.Save)
		r.Post("/", intakeH.Submit)
	})

	// Staff dashboard
	r.Route("/api", func(r chi.Router) {
		r.Use(auth.Middleware(jwtSecret))

		r.Post("/submissions", subH.Create)
		r.Get("/submissions", subH.List)
		r.Get("/submissions/{id}", subH.Get)
		r.Patch("/submissions/{id}/status", subH.UpdateStatus)
		r.Post("/submissions/{id}/correction", subH.RequestCorrection)
		r.Post("/submissions/{id}/template", subH.SelectTemplate)

		r.Get("/templates", tplH.List)
		r.Post("/templates", tplH.Create)
		r.Get("/templates/{id}/fields", tplH.Fields)
		r.Put("/templates/{id}", tplH.Update)
		r.Delete("/templates/{id}", tplH.Delete)

		r.Post("/generate", genH.Generate)
	})

	return r
}
