package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/loopthru/internal/api/models"
)

// snapshot reads both loops' counters.
func (s *Server) snapshot() models.StatusData {
	var data models.StatusData
	if s.options.Video != nil {
		data.Video = models.NewVideoStatus(s.options.Video.Stats())
	}
	if s.options.Audio != nil {
		data.Audio = models.NewAudioStatus(s.options.Audio.Stats())
	}
	return data
}

func (s *Server) registerStatusRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-status",
		Method:      http.MethodGet,
		Path:        "/api/status",
		Summary:     "Loop Status",
		Description: "Snapshot of the video and audio loop counters and states",
		Tags:        []string{"status"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func(_ context.Context, _ *struct{}) (*models.StatusResponse, error) {
		return &models.StatusResponse{Body: s.snapshot()}, nil
	})
}
