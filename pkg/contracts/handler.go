package contracts

import (
	"context"

	"github.com/julienschmidt/httprouter"
)

// Handler is implemented by every HTTP surface mounted on the application.
type Handler interface {
	RegisterRoutes(*httprouter.Router)
}

// Worker is a background job that runs alongside the HTTP server. Stop is
// called during graceful shutdown and must return once the worker is idle
// or ctx ends.
type Worker interface {
	Start()
	Stop(ctx context.Context) error
}
