// Package version serves the running application's version.
package version

import (
	"github.com/km-arc/go-scoped/framework/container"
	gohttp "github.com/km-arc/go-scoped/framework/http"
	"github.com/km-arc/go-scoped/framework/providers"
	"github.com/km-arc/go-scoped/framework/routing"
)

// Module serves GET /version.
type Module struct {
	container.BaseProvider
}

func (m *Module) Register(*container.Container) error { return nil }

func (m *Module) Routes(r *routing.Router) {
	r.Get("/version", gohttp.Controller(Read))
}

// Read returns {"version": "<app.version>"}.
func Read(r container.Resolver, _ *gohttp.Request, _ *gohttp.Response) (any, error) {
	v, err := container.Get[string](r, providers.VersionKey)
	if err != nil {
		return nil, err
	}
	return map[string]string{"version": v}, nil
}
