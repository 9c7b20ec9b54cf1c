package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"server/internal/domain"
	"server/internal/infra"
	"server/internal/mcp"
	"server/internal/registry"
)

// TemplateGenerator is the slice of the MCP client the handlers need.
type TemplateGenerator interface {
	GenerateTemplate(ctx context.Context, payload mcp.Payload) (*mcp.Design, []byte, error)
}

// App bundles the dependencies shared by all handlers.
type App struct {
	Registry *registry.Registry
	MCP      TemplateGenerator
	Config   *infra.Config
	Logger   infra.Logger
}

func NewApp(reg *registry.Registry, client TemplateGenerator, cfg *infra.Config, logger infra.Logger) *App {
	return &App{Registry: reg, MCP: client, Config: cfg, Logger: logger}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, slug, msg string) {
	a.json(w, code, map[string]string{"error": slug, "message": msg})
}

// fail maps a domain error onto the HTTP taxonomy and writes the reply.
func (a *App) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, domain.ErrInsufficientCredits):
		a.error(w, http.StatusForbidden, "insufficient_credits", "not enough credits to queue a job")
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", err.Error())
	default:
		a.Logger.Error().Err(err).Msg("unhandled error")
		a.error(w, http.StatusInternalServerError, "internal", "internal server error")
	}
}
