package admin

import "github.com/astra-preschool/internal/provider"

// Handler serves the school-administration API.
type Handler struct {
	*provider.Container
}

// New creates the admin handler.
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
