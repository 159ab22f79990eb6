package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type testServices struct {
	cards    *MockCardService
	folders  *MockFolderService
	stats    *MockStatsService
	practice *MockPracticeService
	review   *MockManager
}

// newTestRouter mounts every handler the way the server does, minus auth.
func newTestRouter(t *testing.T) (http.Handler, *testServices) {
	t.Helper()

	svcs := &testServices{
		cards:    &MockCardService{},
		folders:  &MockFolderService{},
		stats:    &MockStatsService{},
		practice: &MockPracticeService{},
		review:   &MockManager{},
	}
	t.Cleanup(func() {
		svcs.cards.AssertExpectations(t)
		svcs.folders.AssertExpectations(t)
		svcs.stats.AssertExpectations(t)
		svcs.practice.AssertExpectations(t)
		svcs.review.AssertExpectations(t)
	})

	log := discardLogger()
	cardHandler := NewCardHandler(svcs.cards, log)
	folderHandler := NewFolderHandler(svcs.folders, log)
	statsHandler := NewStatsHandler(svcs.stats, log)
	statsHandler.now = func() time.Time { return fixedNow }
	practiceHandler := NewPracticeHandler(svcs.practice, log)
	reviewHandler := NewReviewHandler(svcs.review, 20, log)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Get("/cards", cardHandler.ListCards)
		r.Post("/cards", cardHandler.CreateCard)
		r.Post("/cards/enrich", practiceHandler.EnrichWord)
		r.Get("/cards/{id}", cardHandler.GetCard)
		r.Patch("/cards/{id}", cardHandler.UpdateCard)
		r.Delete("/cards/{id}", cardHandler.DeleteCard)
		r.Get("/folders", folderHandler.ListFolders)
		r.Post("/folders", folderHandler.CreateFolder)
		r.Delete("/folders/{id}", folderHandler.DeleteFolder)
		r.Get("/stats", statsHandler.GetStats)
		r.Post("/practice/dialogue", practiceHandler.GenerateDialogue)
		r.Post("/practice/reflex", practiceHandler.RespondReflex)
		r.Post("/review/session", reviewHandler.StartSession)
		r.Get("/review/session", reviewHandler.GetSession)
		r.Delete("/review/session", reviewHandler.AbortSession)
		r.Post("/review/session/attempt", reviewHandler.SubmitAttempt)
		r.Post("/review/session/reveal", reviewHandler.Reveal)
		r.Post("/review/session/grade", reviewHandler.Grade)
		r.Post("/review/session/persist", reviewHandler.RetryPersist)
	})

	return r, svcs
}

func doRequest(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}
