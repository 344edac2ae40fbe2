package public

import "github.com/astra-preschool/internal/provider"

// Handler serves the public and parent-facing API.
type Handler struct {
	*provider.Container
}

// New creates the public handler.
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
