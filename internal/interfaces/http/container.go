package http

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	billingUsecases "github.com/homechef-inc/mealsub/internal/application/billing/usecases"
	"github.com/homechef-inc/mealsub/internal/domain/calendar"
	"github.com/homechef-inc/mealsub/internal/infrastructure/auth"
	"github.com/homechef-inc/mealsub/internal/infrastructure/cache"
	"github.com/homechef-inc/mealsub/internal/infrastructure/config"
	"github.com/homechef-inc/mealsub/internal/infrastructure/email"
	"github.com/homechef-inc/mealsub/internal/infrastructure/payment"
	"github.com/homechef-inc/mealsub/internal/infrastructure/scheduler"
	"github.com/homechef-inc/mealsub/internal/interfaces/http/middleware"
	"github.com/homechef-inc/mealsub/internal/shared/db"
	"github.com/homechef-inc/mealsub/internal/shared/logger"
)

// Container holds all infrastructure components, repositories, use cases
// and handlers. The server uses its gin engine; the worker and the CLI use
// its scheduler and renewal runner. Everything is wired once, here.
type Container struct {
	// Core infrastructure
	engine *gin.Engine
	db     *gorm.DB
	cfg    *config.Config
	log    logger.Interface
	redis  *redis.Client

	repos *repositories
	ucs   *allUseCases
	hdlrs *allHandlers

	// Middlewares
	authMiddleware *middleware.AuthMiddleware
	rateLimiter    *middleware.RateLimiter

	// Outbound adapters
	gateway  *payment.GatewayClient
	verifier *payment.HMACVerifier
}

// NewContainer creates a new Container with all dependencies wired together.
func NewContainer(db *gorm.DB, redisClient *redis.Client, cfg *config.Config, log logger.Interface) *Container {
	c := &Container{
		engine: gin.New(),
		db:     db,
		cfg:    cfg,
		log:    log,
		redis:  redisClient,
	}

	// Section 1: Infrastructure - repositories, gateway, auth
	c.initInfrastructure()

	// Section 2: Use cases and their optional collaborators
	c.initUseCases()

	// Section 3: Handlers and middlewares
	c.initHandlers()

	return c
}

func (c *Container) initInfrastructure() {
	c.repos = newRepositories(c.db, c.cfg.Cache.CapacityTTL)
	c.gateway = payment.NewGatewayClient(c.cfg.Gateway, c.log.Named("gateway"))
	c.verifier = payment.NewHMACVerifier(c.cfg.Gateway.WebhookSecret)
}

func (c *Container) initUseCases() {
	c.ucs = newUseCases(
		c.repos,
		db.NewTransactionManager(c.db),
		c.gateway,
		c.verifier,
		c.cfg.Platform,
		c.cfg.Scheduler.WorkerLimit,
		c.log,
	)

	c.ucs.webhook.SetDeduplicator(cache.NewWebhookDeduplicator(c.redis, c.cfg.Gateway.DedupTTL, c.cfg.Gateway.DedupInFlight))
	c.ucs.finalizer.SetAlerter(c.newAlerter())
}

// newAlerter mails operators when SMTP alerts are enabled and only logs
// otherwise.
func (c *Container) newAlerter() billingUsecases.ReconciliationAlerter {
	if !c.cfg.Alert.Enabled || len(c.cfg.Alert.Recipients) == 0 {
		c.log.Infow("reconciliation alerts go to the log only")
		return email.NewLogAlerter(c.log)
	}
	alerter := email.NewSMTPAlerter(c.cfg.Alert, c.log.Named("alert"))
	alerter.SetAlertLock(cache.NewAlertDeduplicator(c.redis), cache.DefaultAlertCooldown)
	return alerter
}

func (c *Container) initHandlers() {
	c.hdlrs = newHandlers(c.ucs, c.cfg.Gateway.SignatureHeader, c.log)

	jwtService := auth.NewJWTService(c.cfg.Auth.JWT.Secret, c.cfg.Auth.JWT.Issuer)
	c.authMiddleware = middleware.NewAuthMiddleware(jwtService, c.cfg.Auth.JWT.AdminRole, c.log)
	c.rateLimiter = middleware.NewRateLimiter(c.redis, "mutations", mutationRateLimit, mutationRateWindow, c.log)
}

// Engine returns the gin engine. SetupRoutes must have been called.
func (c *Container) Engine() *gin.Engine {
	return c.engine
}

// RenewalRunner exposes the renewal batch for manual runs from the CLI.
func (c *Container) RenewalRunner() *billingUsecases.RunRenewalsUseCase {
	return c.ucs.renewals
}

// NewScheduler builds a scheduler with the renewal and maintenance jobs
// registered. The caller starts and stops it.
func (c *Container) NewScheduler() (*scheduler.SchedulerManager, error) {
	manager, err := scheduler.NewSchedulerManager(c.log.Named("scheduler"))
	if err != nil {
		return nil, err
	}

	weekly := scheduler.NewRenewalJob(c.ucs.renewals, c.ucs.settingProvider, calendar.PeriodWeekly, c.log)
	monthly := scheduler.NewRenewalJob(c.ucs.renewals, c.ucs.settingProvider, calendar.PeriodMonthly, c.log)
	if err := manager.RegisterRenewalJobs(weekly, monthly); err != nil {
		return nil, err
	}

	if err := manager.RegisterMaintenanceJobs(
		c.ucs.retryFulfillment,
		c.ucs.expireCredits,
		c.cfg.Scheduler.FulfillmentRetryPeriod,
		c.cfg.Scheduler.CreditExpiryPeriod,
	); err != nil {
		return nil, err
	}
	return manager, nil
}

// Shutdown releases the Redis connection. The database is closed by its
// owner.
func (c *Container) Shutdown(ctx context.Context) {
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			c.log.Warnw("failed to close redis client", "error", err)
		}
	}
	c.log.Infow("container shut down")
}
