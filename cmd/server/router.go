package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/hanzi-api/internal/api"
	apiMiddleware "github.com/phrazzld/hanzi-api/internal/api/middleware"
)

// setupRouter creates the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	cardHandler := api.NewCardHandler(app.cardService, app.logger)
	folderHandler := api.NewFolderHandler(app.folderService, app.logger)
	statsHandler := api.NewStatsHandler(app.statsService, app.logger)
	practiceHandler := api.NewPracticeHandler(app.practiceService, app.logger)
	reviewHandler := api.NewReviewHandler(app.reviewManager, app.config.Review.DefaultLimit, app.logger)

	r.Route("/api", func(r chi.Router) {
		if app.config.Auth.Enabled {
			r.Use(apiMiddleware.NewAuthMiddleware(app.jwtService).Authenticate)
		}

		// Cards
		r.Get("/cards", cardHandler.ListCards)
		r.Post("/cards", cardHandler.CreateCard)
		r.Post("/cards/enrich", practiceHandler.EnrichWord)
		r.Get("/cards/{id}", cardHandler.GetCard)
		r.Patch("/cards/{id}", cardHandler.UpdateCard)
		r.Delete("/cards/{id}", cardHandler.DeleteCard)

		// Folders
		r.Get("/folders", folderHandler.ListFolders)
		r.Post("/folders", folderHandler.CreateFolder)
		r.Delete("/folders/{id}", folderHandler.DeleteFolder)

		r.Get("/stats", statsHandler.GetStats)
		r.Post("/practice/dialogue", practiceHandler.GenerateDialogue)
		r.Post("/practice/reflex", practiceHandler.RespondReflex)

		// Review session
		r.Route("/review/session", func(r chi.Router) {
			r.Post("/", reviewHandler.StartSession)
			r.Get("/", reviewHandler.GetSession)
			r.Delete("/", reviewHandler.AbortSession)
			r.Post("/attempt", reviewHandler.SubmitAttempt)
			r.Post("/reveal", reviewHandler.Reveal)
			r.Post("/grade", reviewHandler.Grade)
			r.Post("/persist", reviewHandler.RetryPersist)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", slog.String("error", err.Error()))
		}
	})

	return r
}
