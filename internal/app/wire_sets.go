//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
)

var CoreInfraSet = wire.NewSet(
	NewProjectLoader,
	NewProjectConfig,
	NewLogging,
	NewLogger,
	NewMetricsRegistry,
	NewMetrics,
	NewHealthTracker,
	NewListChangeHub,
	NewStorage,
)

var RegistrySet = wire.NewSet(
	NewSynthesizer,
	NewScanner,
	NewFileSource,
	NewSources,
	NewRegistryStore,
)

var ServeSet = wire.NewSet(
	NewGateway,
	NewReloader,
	wire.Struct(new(ApplicationOptions), "*"),
	NewApplication,
)

var AppSet = wire.NewSet(
	CoreInfraSet,
	RegistrySet,
	ServeSet,
)
