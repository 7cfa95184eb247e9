// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"ridepass/internal/boarding"
	"ridepass/internal/coupons"
	"ridepass/internal/departures"
	"ridepass/internal/notifications"
	"ridepass/internal/payments"
	"ridepass/internal/reservations"
	"ridepass/internal/seats"
	"ridepass/internal/shared/config"
	"ridepass/internal/shared/database"
	"ridepass/pkg/cache"

	"github.com/gin-gonic/gin"
)

// Router holds all route dependencies
type Router struct {
	config   *config.Config
	db       *database.DB
	tokens   *boarding.TokenService
	notifier *notifications.Service

	cacheService cache.Service

	// Cross-package services kept for dependency injection
	seatService        seats.Service
	seatRepo           seats.Repository
	departureService   departures.Service
	couponService      coupons.Service
	reservationService reservations.Service
	sweeper            *reservations.Sweeper
}

// NewRouter creates a new router instance. The boarding token service and
// notifier are built in main since their construction can fail at startup.
func NewRouter(cfg *config.Config, db *database.DB, tokens *boarding.TokenService, notifier *notifications.Service) *Router {
	return &Router{
		config:   cfg,
		db:       db,
		tokens:   tokens,
		notifier: notifier,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	if r.db.Redis != nil {
		r.cacheService = cache.NewService(r.db.Redis)
	}

	// Health check and basic info endpoints
	r.setupHealthRoutes(engine)

	// API routes
	api := engine.Group(r.config.GetAPIBasePath())
	{
		// Departures before seats and reservations: both depend on the
		// departure service for fares and cache invalidation
		r.setupDepartureRoutes(api)
		r.setupSeatRoutes(api)
		r.setupCouponRoutes(api)
		r.setupReservationRoutes(api)
		r.setupPaymentRoutes(api)
		r.setupBoardingRoutes(api)
	}
}

// Sweeper returns the expiration sweeper built during route setup
func (r *Router) Sweeper() *reservations.Sweeper {
	return r.sweeper
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "ridepass-backend",
			})
			return
		}

		payload := gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "ridepass-backend",
		}
		if r.sweeper != nil {
			payload["sweeper"] = r.sweeper.Status()
		}
		c.JSON(http.StatusOK, payload)
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"timestamp":   time.Now(),
		})
	})
}

// setupDepartureRoutes configures departure management routes
func (r *Router) setupDepartureRoutes(rg *gin.RouterGroup) {
	departureRepo := departures.NewRepository(r.db.GetPostgreSQL())
	departureService := departures.NewService(departureRepo, r.config)
	if r.cacheService != nil {
		departureService.SetCacheService(r.cacheService)
	}
	departureController := departures.NewController(departureService)

	r.departureService = departureService

	departures.SetupDepartureRoutes(rg, departureController)
}

// setupSeatRoutes configures seat map routes
func (r *Router) setupSeatRoutes(rg *gin.RouterGroup) {
	seatRepo := seats.NewRepository(r.db.GetPostgreSQL())
	seatService := seats.NewService(seatRepo, r.config)
	if r.cacheService != nil {
		seatService.SetCacheService(r.cacheService)
	}
	seatController := seats.NewController(seatService)

	r.seatRepo = seatRepo
	r.seatService = seatService

	seats.SetupSeatRoutes(rg, seatController)
}

// setupCouponRoutes configures coupon management routes
func (r *Router) setupCouponRoutes(rg *gin.RouterGroup) {
	couponRepo := coupons.NewRepository(r.db.GetPostgreSQL())
	couponService := coupons.NewService(couponRepo)
	if r.cacheService != nil {
		couponService.SetCacheService(r.cacheService)
	}
	couponController := coupons.NewController(couponService)

	r.couponService = couponService

	coupons.SetupCouponRoutes(rg, couponController)
}

// setupReservationRoutes configures reservation lifecycle routes
func (r *Router) setupReservationRoutes(rg *gin.RouterGroup) {
	reservationRepo := reservations.NewRepository(r.db.GetPostgreSQL())

	deps := reservations.Deps{
		Repo:        reservationRepo,
		Ledger:      seats.NewGormLedger(r.db.GetPostgreSQL()),
		SeatRepo:    r.seatRepo,
		Fares:       r.departureService,
		Coupons:     r.couponService,
		Tokens:      r.tokens,
		Notifier:    r.notifier,
		Invalidator: r.seatService,
	}
	if r.db.Redis != nil {
		deps.Guard = seats.NewHoldGuard(r.db.Redis)
	}

	reservationService := reservations.NewService(deps, r.config)
	reservationController := reservations.NewController(reservationService)

	r.reservationService = reservationService
	r.sweeper = reservations.NewSweeper(reservationService, &reservations.SweeperConfig{
		Interval:  r.config.Reservation.SweepInterval,
		BatchSize: r.config.Reservation.SweepBatchSize,
	})

	reservations.SetupReservationRoutes(rg, reservationController)
}

// setupPaymentRoutes configures payment callback and review routes
func (r *Router) setupPaymentRoutes(rg *gin.RouterGroup) {
	paymentRepo := payments.NewRepository(r.db.GetPostgreSQL())
	paymentService := payments.NewService(paymentRepo, r.reservationService, r.notifier)
	paymentController := payments.NewController(paymentService)

	payments.SetupPaymentRoutes(rg, paymentController)
}

// setupBoardingRoutes configures boarding scan routes
func (r *Router) setupBoardingRoutes(rg *gin.RouterGroup) {
	boardingService := boarding.NewService(r.tokens, r.seatRepo, r.config)
	boardingController := boarding.NewController(boardingService)

	boarding.SetupBoardingRoutes(rg, boardingController)
}
