package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"vasset/audio-service/internal/config"
	"vasset/audio-service/internal/handler"
	"vasset/audio-service/internal/models"
)

type stubService struct{}

func (stubService) Search(ctx context.Context, query string, maxResults int) (*models.SearchResult, error) {
	return &models.SearchResult{Query: query, Videos: []models.VideoReference{}}, nil
}

func (stubService) Download(ctx context.Context, rawURL string) (*models.AudioPayload, error) {
	return &models.AudioPayload{Data: []byte("x"), Size: 1, FileName: "x", ContentType: "audio/mpeg"}, nil
}

func (stubService) Info(ctx context.Context, rawURL string) (*models.VideoReference, error) {
	return &models.VideoReference{ID: "x"}, nil
}

func TestSetupRouterRoutes(t *testing.T) {
	cfg := &config.Config{}
	cfg.ApplyDefaults()
	cfg.Server.Mode = "test"

	r := SetupRouter(&Dependencies{
		Config:  cfg,
		Service: stubService{},
		Checks:  map[string]handler.Check{},
		Logger:  zap.NewNop(),
	})

	for _, tc := range []struct {
		method, path string
		code         int
	}{
		{http.MethodGet, "/live", http.StatusOK},
		{http.MethodGet, "/ready", http.StatusOK},
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/api/v1/youtube/search?q=lofi", http.StatusOK},
		{http.MethodGet, "/api/v1/youtube/download?url=https://youtu.be/x", http.StatusOK},
		{http.MethodGet, "/api/v1/youtube/info?url=https://youtu.be/x", http.StatusOK},
		{http.MethodGet, "/api/v1/youtube/unknown", http.StatusNotFound},
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, tc.code, w.Code, tc.path)
	}
}
