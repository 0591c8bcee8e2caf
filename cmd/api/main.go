package main

import (
	"context"
	"fmt"
	"log"
	"time"

	common_api "clientdesk/internal/common/api"
	"clientdesk/internal/config"
	"clientdesk/internal/database"
	"clientdesk/internal/features/audit"
	"clientdesk/internal/features/auth"
	"clientdesk/internal/features/client"
	"clientdesk/internal/features/company"
	import_feature "clientdesk/internal/features/import"
	"clientdesk/internal/features/notification"
	"clientdesk/internal/features/reminder"
	"clientdesk/internal/features/service"
	"clientdesk/internal/features/servicerequest"
	"clientdesk/internal/features/system"
	"clientdesk/internal/features/user"
	"clientdesk/internal/logger"
	"clientdesk/internal/middleware"
	"clientdesk/pkg/utils"

	_ "clientdesk/docs" // Import swagger docs

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// NewFiberServer creates a new Fiber app instance
func NewFiberServer() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(middleware.CORSMiddleware())

	return app
}

// AsRoute is a helper function to reduce boilerplate.
// It tags the constructor so Fx knows to add it to the "routes" group.
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(common_api.Route)),
		fx.ResultTags(`group:"routes"`),
	)
}

// RegisterAllRoutes takes the group "routes" (slice of interfaces)
// and calls Setup() on each one.
func RegisterAllRoutes(app *fiber.App, routes []common_api.Route) {
	for _, route := range routes {
		route.Setup(app)
	}
	log.Printf("Registered %d routes\n", len(routes))
}

// RegisterAllRoutesWithAnnotation wraps RegisterAllRoutes with fx annotations
var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, `group:"routes"`),
)

// StartServer creates a lifecycle hook to start Fiber in a goroutine
// and shut it down when the app exits.
func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			utils.SetSecret(cfg.JWTSecret)
			go func() {
				port := fmt.Sprintf(":%s", cfg.Port)
				if err := app.Listen(port); err != nil {
					log.Fatalf("Server failed to start: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.Shutdown()
		},
	})
}

// InitializeIndexes ensures that necessary database indexes are created
func InitializeIndexes(
	lc fx.Lifecycle,
	clientRepo client.ClientRepository,
	companyRepo company.CompanyRepository,
	serviceRepo service.ServiceRepository,
	requestRepo servicerequest.ServiceRequestRepository,
	userRepo user.UserRepository,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				if err := clientRepo.EnsureIndexes(ctx); err != nil {
					log.Printf("Failed to ensure client indexes: %v", err)
				}
				if err := companyRepo.EnsureIndexes(ctx); err != nil {
					log.Printf("Failed to ensure company indexes: %v", err)
				}
				if err := serviceRepo.EnsureIndexes(ctx); err != nil {
					log.Printf("Failed to ensure service indexes: %v", err)
				}
				if err := requestRepo.EnsureIndexes(ctx); err != nil {
					log.Printf("Failed to ensure service request indexes: %v", err)
				}
				if err := userRepo.EnsureIndexes(ctx); err != nil {
					log.Printf("Failed to ensure user indexes: %v", err)
				}
			}()
			return nil
		},
	})
}

// @title           Clientdesk API
// @version         1.0
// @description     CRM backend with bulk data import

// @host            localhost:8080
// @BasePath        /
func main() {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,

			logger.NewLogger,

			NewFiberServer,

			database.NewDatabase,

			// Repositories
			client.NewClientRepository,
			company.NewCompanyRepository,
			service.NewServiceRepository,
			servicerequest.NewServiceRequestRepository,
			user.NewUserRepository,
			audit.NewAuditRepository,
			notification.NewNotificationRepository,
			import_feature.NewImportLogRepository,

			// Services
			audit.NewAuditService,
			auth.NewAuthService,
			import_feature.NewTemplateRegistry,
			import_feature.NewImportService,
			reminder.NewReminderService,

			// Interface Adapters to satisfy Fx
			func(r user.UserRepository) audit.UserFinder { return r },
			func(r client.ClientRepository) import_feature.ClientStore { return r },
			func(r company.CompanyRepository) import_feature.CompanyStore { return r },
			func(r service.ServiceRepository) import_feature.ServiceStore { return r },
			func(r servicerequest.ServiceRequestRepository) import_feature.ServiceRequestStore { return r },

			// Controllers
			auth.NewAuthController,
			audit.NewAuditController,
			client.NewClientController,
			company.NewCompanyController,
			service.NewServiceController,
			servicerequest.NewServiceRequestController,
			notification.NewNotificationController,
			reminder.NewReminderController,
			import_feature.NewImportController,

			// API Routes
			AsRoute(auth.NewAuthApi),
			AsRoute(audit.NewAuditApi),
			AsRoute(client.NewClientApi),
			AsRoute(company.NewCompanyApi),
			AsRoute(service.NewServiceApi),
			AsRoute(servicerequest.NewServiceRequestApi),
			AsRoute(notification.NewNotificationApi),
			AsRoute(reminder.NewReminderApi),
			AsRoute(import_feature.NewImportApi),
			AsRoute(system.NewHealthApi),
			AsRoute(system.NewSwaggerApi),
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(
			RegisterAllRoutesWithAnnotation,
			InitializeIndexes,
			StartServer,
			func(lc fx.Lifecycle, reminderService reminder.ReminderService) {
				lc.Append(fx.Hook{
					OnStart: func(ctx context.Context) error {
						return reminderService.InitializeScheduler(ctx)
					},
					OnStop: func(ctx context.Context) error {
						return reminderService.StopScheduler()
					},
				})
			},
		),
	)

	app.Run()
}
