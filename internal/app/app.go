package app

import (
	"go.uber.org/fx"

	"github.com/Additional-Code/tillpos/internal/auth"
	"github.com/Additional-Code/tillpos/internal/cache"
	"github.com/Additional-Code/tillpos/internal/config"
	"github.com/Additional-Code/tillpos/internal/database"
	"github.com/Additional-Code/tillpos/internal/logger"
	"github.com/Additional-Code/tillpos/internal/messaging"
	"github.com/Additional-Code/tillpos/internal/observability"
	"github.com/Additional-Code/tillpos/internal/pricing"
	repositoryloyalty "github.com/Additional-Code/tillpos/internal/repository/loyalty"
	repositoryorder "github.com/Additional-Code/tillpos/internal/repository/order"
	repositorysetting "github.com/Additional-Code/tillpos/internal/repository/setting"
	grpcserver "github.com/Additional-Code/tillpos/internal/server/grpc"
	httpserver "github.com/Additional-Code/tillpos/internal/server/http"
	serviceanalytics "github.com/Additional-Code/tillpos/internal/service/analytics"
	serviceloyalty "github.com/Additional-Code/tillpos/internal/service/loyalty"
	serviceorder "github.com/Additional-Code/tillpos/internal/service/order"
	servicesetting "github.com/Additional-Code/tillpos/internal/service/setting"
	transporthttp "github.com/Additional-Code/tillpos/internal/transport/http"
	"github.com/Additional-Code/tillpos/internal/worker"
	workerorder "github.com/Additional-Code/tillpos/internal/worker/order"
)

// Core provides the foundational modules shared across executables.
var Core = fx.Options(
	config.Module,
	cache.Module,
	database.Module,
	logger.Module,
	messaging.Module,
	observability.Module,
	auth.Module,
	pricing.Module,
	repositoryorder.Module,
	repositoryloyalty.Module,
	repositorysetting.Module,
	serviceorder.Module,
	serviceloyalty.Module,
	servicesetting.Module,
	serviceanalytics.Module,
)

// HTTP wires the HTTP and gRPC servers on top of the core modules.
var HTTP = fx.Options(
	Core,
	httpserver.Module,
	grpcserver.Module,
	transporthttp.Module,
)

// Worker exposes background worker processing.
var Worker = fx.Options(
	Core,
	worker.Module,
	workerorder.Module,
)

// Module is the default application wiring (HTTP only).
var Module = HTTP
