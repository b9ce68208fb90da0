// Package app assembles the todos service from its feature modules.
package app

import (
	"go.uber.org/zap"

	"github.com/km-arc/go-scoped/app/todos"
	"github.com/km-arc/go-scoped/app/version"
	foundation "github.com/km-arc/go-scoped/framework/app"
	"github.com/km-arc/go-scoped/framework/config"
)

// Modules returns every module this program can enable, by name. APP_MODULES
// selects which of them are loaded.
func Modules() map[string]foundation.Module {
	return map[string]foundation.Module{
		"todos":   &todos.Module{},
		"version": &version.Module{},
	}
}

// Bootstrap creates the application, loads the configured modules and boots
// the providers.
func Bootstrap(cfg *config.Config, logger *zap.Logger) (*foundation.Application, error) {
	a, err := foundation.New(cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := a.LoadModules(Modules()); err != nil {
		return nil, err
	}
	if err := a.Boot(); err != nil {
		return nil, err
	}
	return a, nil
}
