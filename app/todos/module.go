// Package todos is a small todo list API backed by SQLite.
package todos

import (
	"context"

	"github.com/km-arc/go-scoped/framework/container"
	gohttp "github.com/km-arc/go-scoped/framework/http"
	"github.com/km-arc/go-scoped/framework/providers"
	"github.com/km-arc/go-scoped/framework/routing"
)

// Module registers the repository and serializer and serves /todos.
type Module struct {
	container.BaseProvider
}

func (m *Module) Register(app *container.Container) error {
	if err := app.Register(RepositoryKey, container.Service[Repository]().Singleton()); err != nil {
		return err
	}
	return app.Register(SerializerKey, container.Constant(Serializer(Serialize)))
}

func (m *Module) Routes(r *routing.Router) {
	r.Get("/todos", gohttp.Controller(List))
	r.Post("/todos", gohttp.Controller(Create))
	r.Put("/todos/{id}", gohttp.Controller(Update))
	r.Delete("/todos/{id}", gohttp.Controller(Delete))
}

// Migrate creates the todos table.
func (m *Module) Migrate(ctx context.Context, r container.Resolver) error {
	db, err := providers.DB(r)
	if err != nil {
		return err
	}
	return CreateSchema(ctx, db)
}
