package main

import (
	"context"
	"log"

	"github.com/abihavaraj/animo-sub001/config"
	"github.com/abihavaraj/animo-sub001/internal/handler"
	"github.com/abihavaraj/animo-sub001/internal/middleware"
	"github.com/abihavaraj/animo-sub001/internal/notifier"
	"github.com/abihavaraj/animo-sub001/internal/repository"
	"github.com/abihavaraj/animo-sub001/internal/scheduler"
	"github.com/abihavaraj/animo-sub001/internal/service"
	"github.com/abihavaraj/animo-sub001/pkg/database"
	"github.com/abihavaraj/animo-sub001/pkg/rabbitmq"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"
)

type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i any) error {
	return v.validate.Struct(i)
}

func main() {
	cfg := config.Load()

	var db *gorm.DB
	if cfg.DBDriver == "sqlite" {
		db = database.NewSQLiteDB(cfg.SQLitePath)
	} else {
		db = database.NewPostgresDB(cfg.DSN())
	}

	// Notification dispatch is fire-and-forget; without RabbitMQ it degrades
	// to a no-op rather than blocking bookings.
	var notify notifier.Notifier = notifier.Nop{}
	if cfg.RabbitURL != "" {
		publisher, err := rabbitmq.NewPublisher(cfg.RabbitURL)
		if err != nil {
			log.Fatalf("failed to connect to RabbitMQ: %v", err)
		}
		defer publisher.Close()
		notify = notifier.NewRabbitNotifier(publisher)
	}

	// Repositories
	classRepo := repository.NewClassRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	waitlistRepo := repository.NewWaitlistRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)

	// Services
	bookingSvc := service.NewBookingService(bookingRepo, classRepo, waitlistRepo, subRepo, notify, cfg.CancelLeadTime)
	waitlistSvc := service.NewWaitlistService(waitlistRepo, bookingRepo, classRepo, cfg.CancelLeadTime)
	scheduleSvc := service.NewScheduleService(classRepo)
	subSvc := service.NewSubscriptionService(subRepo)

	// Background waitlist pruning
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go scheduler.New(waitlistSvc, cfg.PruneInterval).Start(ctx)

	// Echo
	e := echo.New()
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Validator = &requestValidator{validate: validator.New()}
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			log.Printf("%s %s %d", v.Method, v.URI, v.Status)
			return nil
		},
	}))
	e.Use(echoMw.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok", "service": "booking-engine"})
	})

	handler.NewBookingHandler(bookingSvc, waitlistSvc).RegisterRoutes(e)
	handler.NewScheduleHandler(scheduleSvc).RegisterRoutes(e)
	handler.NewSubscriptionHandler(subSvc, subRepo).RegisterRoutes(e)

	log.Printf("Booking engine starting on :%s", cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
