// Package app wires configuration, storage, brokers and HTTP routes into a
// runnable service.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"rewear/internal/config"
	"rewear/internal/handlers"
	"rewear/internal/logger"
	"rewear/internal/mailer"
	"rewear/internal/middleware"
	"rewear/internal/repositories"
	"rewear/internal/services"
	"rewear/pkg/kafka"
	"rewear/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// Broker carries order events between the API and the notification consumer.
type Broker interface {
	services.Publisher
	Consume(ctx context.Context, handle func(ctx context.Context, routingKey string, body []byte) error) error
	Close() error
}

// App is the assembled service.
type App struct {
	cfg *config.Config

	DB    *gorm.DB
	Store *repositories.GORMStore
	Fiber *fiber.App

	Auth     *services.AuthService
	Orders   *services.OrderService
	Notifier *services.Notifier
	Tracker  *services.OrderTracker

	broker  Broker
	redis   *redis.Client
	mailer  mailer.Mailer
	general *middleware.RateLimiter
	strict  *middleware.RateLimiter
	noLimit bool
}

// Option overrides a dependency New would otherwise build from config.
type Option func(*App)

func WithMailer(m mailer.Mailer) Option { return func(a *App) { a.mailer = m } }

func WithBroker(b Broker) Option { return func(a *App) { a.broker = b } }

// WithoutRateLimits disables request throttling.
func WithoutRateLimits() Option { return func(a *App) { a.noLimit = true } }

// New opens the database, runs migrations and connects the configured broker.
func New(cfg *config.Config, opts ...Option) (*App, error) {
	a := &App{cfg: cfg}
	for _, opt := range opts {
		opt(a)
	}

	db, err := repositories.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	a.DB = db
	if err := repositories.AutoMigrate(db); err != nil {
		a.Close()
		return nil, err
	}
	a.Store = repositories.NewGORMStore(db)

	if a.mailer == nil {
		a.mailer = newMailer(cfg)
	}
	if a.broker == nil {
		broker, err := newBroker(cfg)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.broker = broker
	}

	var mfaStore repositories.MFACodeStore = repositories.NewMemoryMFACodeStore()
	if cfg.RedisAddr != "" {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		mfaStore = repositories.NewRedisMFACodeStore(a.redis)
	}

	a.routes(mfaStore)
	return a, nil
}

func newMailer(cfg *config.Config) mailer.Mailer {
	if cfg.SMTPHost == "" {
		return mailer.NewLogMailer(logger.L().Named("mail"))
	}
	return mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.MailFrom)
}

func newBroker(cfg *config.Config) (Broker, error) {
	switch cfg.EventBroker {
	case "rabbitmq":
		client, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			return nil, err
		}
		return client, nil
	case "kafka":
		client, err := kafka.NewClient(kafka.Config{Brokers: cfg.KafkaBrokerList(), Topic: cfg.KafkaTopic})
		if err != nil {
			return nil, err
		}
		return client, nil
	}
	return nil, nil
}

func (a *App) routes(mfaStore repositories.MFACodeStore) {
	store := a.Store
	a.Notifier = services.NewNotifier(a.mailer, store.Users())

	var publisher services.Publisher
	if a.broker != nil {
		publisher = a.broker
	}
	dispatcher := services.NewDispatcher(publisher, a.Notifier)

	mfa := services.NewMFAService(mfaStore, a.Notifier, a.cfg.MFACodeTTL, a.cfg.MFAMaxAttempts)
	a.Auth = services.NewAuthService(store.Users(), mfa, a.Notifier, a.cfg.JWTSecret, a.cfg.TokenTTL)
	a.Orders = services.NewOrderService(store, dispatcher)
	a.Tracker = services.NewOrderTracker(a.Orders, a.cfg.TrackingStep, a.cfg.TrackingScanInterval)
	checkout := services.NewCheckoutService(store, services.SimulatedGateway{}, dispatcher)

	app := fiber.New(fiber.Config{
		AppName:               "rewear",
		ErrorHandler:          errorHandler,
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(logger.RequestLogger())

	app.Get("/health", a.health)
	app.Static("/upload_images", a.cfg.UploadDir)

	api := app.Group("/api/v1")
	g := handlers.Guards{Auth: middleware.AuthRequired(a.Auth)}
	if !a.noLimit {
		a.general = middleware.NewRateLimiter(middleware.LimitGeneral, middleware.BurstGeneral)
		a.strict = middleware.NewRateLimiter(middleware.LimitStrict, middleware.BurstStrict)
		api.Use(a.general.Handler())
		g.Strict = a.strict.Handler()
	}
	handlers.NewAuthHandler(a.Auth).RegisterRoutes(api, g)
	handlers.NewCategoryHandler(services.NewCategoryService(store.Categories())).RegisterRoutes(api, g)
	handlers.NewProductHandler(services.NewProductService(store.Products(), store.Users(), store.Categories(), a.Notifier)).RegisterRoutes(api, g)
	handlers.NewCartHandler(services.NewCartService(store.Carts(), store.Products()), checkout).RegisterRoutes(api, g)
	handlers.NewOrderHandler(a.Orders, checkout).RegisterRoutes(api, g)
	handlers.NewPaymentMethodHandler(services.NewPaymentMethodService(store.PaymentMethods())).RegisterRoutes(api, g)
	handlers.NewCouponHandler(services.NewCouponService(store.Coupons(), store.Users(), a.Notifier)).RegisterRoutes(api, g)
	handlers.NewComplaintHandler(services.NewComplaintService(store.Complaints(), a.Notifier)).RegisterRoutes(api, g)
	handlers.NewReviewHandler(services.NewReviewService(store.Reviews(), store.Orders())).RegisterRoutes(api, g)

	a.Fiber = app
}

// errorHandler turns errors no handler answered into JSON.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		logger.FromCtx(c.UserContext()).Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
	}
	return c.Status(code).JSON(fiber.Map{
		"message": utils.StatusMessage(code),
		"error":   err.Error(),
	})
}

func (a *App) health(c *fiber.Ctx) error {
	broker := "disabled"
	if a.broker != nil {
		broker = a.cfg.EventBroker + ": connected"
		if p, ok := a.broker.(interface{ Ping() error }); ok {
			if err := p.Ping(); err != nil {
				broker = a.cfg.EventBroker + ": " + err.Error()
			}
		}
	}
	status := "healthy"
	sqlDB, err := a.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(c.UserContext())
	}
	if err != nil {
		status = "degraded"
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
		"broker": broker,
	})
}

// Run serves HTTP and runs the background workers until ctx is done, then
// shuts the server down gracefully.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.cfg.AppPort)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.cfg.AppPort, err)
	}
	g, ctx := errgroup.WithContext(ctx)
	log := logger.L()

	g.Go(func() error {
		log.Info("starting server", zap.String("addr", ln.Addr().String()))
		if err := a.Fiber.Listener(ln); err != nil && !errors.Is(err, net.ErrClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down server")
		err := a.Fiber.ShutdownWithTimeout(10 * time.Second)
		// Serve may not have registered the listener yet.
		_ = ln.Close()
		return err
	})
	g.Go(func() error { return a.Tracker.Run(ctx) })
	for _, l := range []*middleware.RateLimiter{a.general, a.strict} {
		if l == nil {
			continue
		}
		l := l
		g.Go(func() error {
			l.Cleanup(ctx)
			return nil
		})
	}
	if a.broker != nil {
		g.Go(func() error { return a.broker.Consume(ctx, a.Notifier.HandleMessage) })
	}
	return g.Wait()
}

// Close releases the broker, redis and database connections.
func (a *App) Close() error {
	var errs []error
	if a.broker != nil {
		errs = append(errs, a.broker.Close())
	}
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.DB != nil {
		errs = append(errs, repositories.Close(a.DB))
	}
	return errors.Join(errs...)
}
