package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/loopthru/internal/api/models"
	"github.com/smazurov/loopthru/internal/version"
)

const defaultServiceName = "loopthru.service"

// registerSystemRoutes adds health and version, both public.
func (s *Server) registerSystemRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "health-check",
		Method:      http.MethodGet,
		Path:        "/api/health",
		Summary:     "Health",
		Description: "Check API health status",
		Tags:        []string{"system"},
		Security:    public(),
	}, func(context.Context, *struct{}) (*models.HealthResponse, error) {
		return &models.HealthResponse{Body: models.HealthData{Status: "ok", Message: "API is healthy"}}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-version",
		Method:      http.MethodGet,
		Path:        "/api/version",
		Summary:     "Version",
		Description: "Get build and version information",
		Tags:        []string{"system"},
		Security:    public(),
	}, func(context.Context, *struct{}) (*models.VersionResponse, error) {
		v := version.Get()
		return &models.VersionResponse{Body: models.VersionData{
			Version:   v.Version,
			GitCommit: v.GitCommit,
			BuildDate: v.BuildDate,
			Modified:  v.Modified,
			GoVersion: v.GoVersion,
			Compiler:  v.Compiler,
			Platform:  v.Platform,
		}}, nil
	})
}

func (s *Server) registerDeviceRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-devices",
		Method:      http.MethodGet,
		Path:        "/api/devices",
		Summary:     "List Devices",
		Description: "List V4L2 capture, framebuffer and ALSA PCM devices. Categories that could not be read are empty.",
		Tags:        []string{"devices"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func(context.Context, *struct{}) (*models.DevicesResponse, error) {
		inv, err := s.options.ListDevices()
		if err != nil {
			s.logger.Warn("Device enumeration incomplete", "error", err)
		}
		return &models.DevicesResponse{Body: inv}, nil
	})
}

func (s *Server) registerSystemdRoutes() {
	units := s.options.SystemdManager
	if units == nil {
		return
	}
	unit := s.options.ServiceName
	if unit == "" {
		unit = defaultServiceName
	}

	huma.Register(s.api, huma.Operation{
		OperationID: "get-service-status",
		Method:      http.MethodGet,
		Path:        "/api/systemd/status",
		Summary:     "Service Status",
		Description: "Get the systemd state of the loopthru unit",
		Tags:        []string{"system"},
		Security:    withAuth(),
		Errors:      []int{401, 500},
	}, func(ctx context.Context, _ *struct{}) (*models.UnitStatusResponse, error) {
		st, err := units.GetServiceStatus(ctx, unit)
		if err != nil {
			return nil, huma.Error500InternalServerError("Failed to get service status", err)
		}
		return &models.UnitStatusResponse{Body: models.UnitStatusData{
			Service:  unit,
			Status:   st.ActiveState,
			SubState: st.SubState,
		}}, nil
	})
}
