package di

import (
	"github.com/rigved526/master-qr-scanner/internal/bus"
	"github.com/rigved526/master-qr-scanner/internal/handler"
	"github.com/rigved526/master-qr-scanner/internal/repository"
	"github.com/rigved526/master-qr-scanner/internal/service"
	"github.com/rigved526/master-qr-scanner/internal/worker"
	"github.com/rigved526/master-qr-scanner/pkg/database"
	"github.com/rigved526/master-qr-scanner/pkg/redis"
)

// Container holds all dependencies for the check-in service
type Container struct {
	// Infrastructure
	DB       *database.PostgresDB
	Redis    *redis.Client
	EventBus *bus.CheckInBus

	// Repositories
	TicketRepo repository.TicketRepository

	// Publishers
	EventPublisher service.EventPublisher

	// Services
	CheckInService      service.CheckInService
	RegistrationService service.RegistrationService
	StatsService        *service.StatsService

	// Workers
	RelayWorker *worker.RelayWorker

	// Handlers
	HealthHandler    *handler.HealthHandler
	CheckInHandler   *handler.CheckInHandler
	AdminHandler     *handler.AdminHandler
	DashboardHandler *handler.DashboardHandler
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	DB             *database.PostgresDB
	Redis          *redis.Client
	EventBus       *bus.CheckInBus
	TicketRepo     repository.TicketRepository
	EventPublisher service.EventPublisher
	StatsConfig    *service.StatsServiceConfig
	RelayConfig    *worker.RelayWorkerConfig
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) *Container {
	c := &Container{
		DB:             cfg.DB,
		Redis:          cfg.Redis,
		EventBus:       cfg.EventBus,
		TicketRepo:     cfg.TicketRepo,
		EventPublisher: cfg.EventPublisher,
	}

	if c.EventBus == nil {
		c.EventBus = bus.New()
	}

	// Initialize services. The stats aggregator observes registrations so
	// tickets added after startup keep total = checked_in + pending.
	c.StatsService = service.NewStatsService(c.TicketRepo, c.EventBus, cfg.StatsConfig)
	c.CheckInService = service.NewCheckInService(c.TicketRepo, c.EventBus)
	c.RegistrationService = service.NewRegistrationService(c.TicketRepo, c.StatsService)

	// Workers
	c.RelayWorker = worker.NewRelayWorker(c.EventBus, c.EventPublisher, cfg.RelayConfig)

	// Handlers
	c.HealthHandler = handler.NewHealthHandler(c.DB, c.Redis)
	c.CheckInHandler = handler.NewCheckInHandler(c.CheckInService, c.StatsService)
	c.AdminHandler = handler.NewAdminHandler(c.RegistrationService)
	c.DashboardHandler = handler.NewDashboardHandler(c.StatsService, c.EventBus)

	return c
}
