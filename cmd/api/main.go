package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/aryanbrs/packklite-sub001/internal/analytics"
	"github.com/aryanbrs/packklite-sub001/internal/audit"
	"github.com/aryanbrs/packklite-sub001/internal/auth"
	"github.com/aryanbrs/packklite-sub001/internal/cart"
	"github.com/aryanbrs/packklite-sub001/internal/catalog"
	"github.com/aryanbrs/packklite-sub001/internal/checkout"
	"github.com/aryanbrs/packklite-sub001/internal/common"
	"github.com/aryanbrs/packklite-sub001/internal/config"
	"github.com/aryanbrs/packklite-sub001/internal/db"
	dbgen "github.com/aryanbrs/packklite-sub001/internal/db/gen"
	"github.com/aryanbrs/packklite-sub001/internal/events"
	"github.com/aryanbrs/packklite-sub001/internal/health"
	"github.com/aryanbrs/packklite-sub001/internal/lock"
	"github.com/aryanbrs/packklite-sub001/internal/notify"
	"github.com/aryanbrs/packklite-sub001/internal/obs"
	"github.com/aryanbrs/packklite-sub001/internal/order"
	"github.com/aryanbrs/packklite-sub001/internal/quote"
	"github.com/aryanbrs/packklite-sub001/internal/ratelimit"
	"github.com/aryanbrs/packklite-sub001/internal/resilience"
	"github.com/aryanbrs/packklite-sub001/internal/security"
)

const metricsNamespace = "packklite"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel).With().Str("env", cfg.AppEnv).Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := obs.InitTracer(ctx, obs.TracingConfig{
		ServiceName:   "packklite-api",
		Endpoint:      cfg.OTelEndpoint,
		SamplingRatio: 1.0,
		Environment:   cfg.AppEnv,
	})
	if err != nil {
		logger.Error().Err(err).Msg("initialise tracing")
	} else {
		defer func() {
			if err := shutdownTracer(context.Background()); err != nil {
				logger.Error().Err(err).Msg("shutdown tracer")
			}
		}()
	}

	if cfg.MigrateOnStart {
		mustMigrate(cfg, logger)
	}

	pool := mustInitDatabase(ctx, cfg, logger)
	defer pool.Close()
	queries := dbgen.New(pool)

	redisClient := mustInitRedis(ctx, cfg, logger)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close redis")
		}
	}()

	domainMetrics := obs.NewDomainMetrics(metricsNamespace, prometheus.DefaultRegisterer)
	breakerMetrics := resilience.NewMetrics(prometheus.DefaultRegisterer)

	var enqueuer notify.Enqueuer
	if cfg.EmailQueue {
		redisOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("parse asynq redis url")
		}
		taskClient := asynq.NewClient(redisOpt)
		defer func() {
			if err := taskClient.Close(); err != nil {
				logger.Error().Err(err).Msg("close task client")
			}
		}()
		enqueuer = notify.AsynqEnqueuer{Client: taskClient}
	} else {
		enqueuer = notify.SyncEnqueuer{Sender: notify.NewSender(notify.SenderConfig{
			APIURL:  cfg.EmailAPIURL,
			APIKey:  cfg.EmailAPIKey,
			From:    cfg.EmailFrom,
			Metrics: domainMetrics,
			Breaker: breakerMetrics,
			Log:     logger,
		})}
	}
	bus := &events.Bus{Notifiers: []events.Notifier{notify.EmailNotifier{
		Queue:   enqueuer,
		AdminTo: cfg.AdminNotifyEmail,
		Log:     logger.With().Str("component", "email_notifier").Logger(),
	}}}

	catalogService, err := catalog.NewService(catalog.ServiceConfig{
		Queries: queries,
		DB:      pool,
		Cache:   catalog.NewCache(redisClient, cfg.CatalogCacheTTL),
		Logger:  logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise catalog service")
	}
	catalogHandler := catalog.NewHandler(catalogService)

	cookies := common.CookieOptions{Domain: cfg.CookieDomain, Secure: cfg.CookieSecure, SameSite: cfg.CookieSameSite}

	cartService := &cart.Service{
		Store:          cart.Store{Client: redisClient, TTL: cfg.CartTTL},
		Catalog:        catalogService,
		DeliveryCharge: cfg.DeliveryCharge,
	}
	cartHandler := &cart.Handler{Service: cartService, Cookies: cookies}

	checkoutService := checkout.NewService(checkout.ServiceConfig{
		DB:             pool,
		DeliveryCharge: cfg.DeliveryCharge,
		Events:         bus,
		Metrics:        domainMetrics,
		Logger:         logger,
	})
	checkoutHandler := &checkout.Handler{Service: checkoutService, Cart: cartService, Log: logger}

	orderHandler := order.NewHandler(order.NewService(order.ServiceConfig{
		Store:   queries,
		Events:  bus,
		Metrics: domainMetrics,
		Logger:  logger,
	}))
	quoteHandler := quote.NewHandler(quote.NewService(quote.ServiceConfig{
		Store:   queries,
		Events:  bus,
		Metrics: domainMetrics,
		Logger:  logger,
	}))

	sessions, err := auth.NewSessions(auth.SessionConfig{
		Secret: cfg.SessionSecret,
		TTL:    cfg.SessionTTL,
		Redis:  redisClient,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise sessions")
	}
	loginGuard := &ratelimit.LoginGuard{Window: ratelimit.Window{
		Client: redisClient,
		Prefix: "rl:login:",
		Max:    cfg.LoginMaxAttempts,
		Period: cfg.LoginWindow,
	}}
	authHandler := &auth.Handler{
		Service: auth.NewService(auth.ServiceConfig{Store: queries, Sessions: sessions, Guard: loginGuard, Logger: logger}),
		Cookies: cookies,
	}
	customerAuth := auth.Middleware{Sessions: sessions, Realm: auth.CustomerRealm}
	adminAuth := auth.Middleware{Sessions: sessions, Realm: auth.AdminRealm}

	analyticsHandler := &analytics.Handler{Svc: &analytics.Service{Q: queries, R: redisClient, TTL: cfg.DashboardCacheTTL, Lock: &lock.Locker{Client: redisClient}, Log: logger}}
	auditService := &audit.Service{Store: queries}
	auditHandler := audit.Handler{Service: auditService}
	recorder := audit.HTTPRecorder{Service: auditService, Log: logger}
	audited := func(action, resource, idParam string) func(http.Handler) http.Handler {
		return recorder.Middleware(audit.HTTPConfig{Action: action, ResourceType: resource, ResourceIDParam: idParam})
	}

	idem := common.Idem{R: redisClient, TTL: cfg.IdempotencyTTL, ScopeCookie: cart.CookieName}
	csrf := security.CSRF{SessionCookies: []string{auth.CustomerRealm.Cookie, auth.AdminRealm.Cookie}}
	apiLimiter, err := ratelimit.NewAPILimiter(redisClient, cfg.RateLimit, "rl:api:", logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise api limiter")
	}
	quoteLimiter := ratelimit.Handler{
		Window: ratelimit.Window{Client: redisClient, Prefix: "rl:quote:", Max: cfg.QuoteMaxPerWindow, Period: cfg.QuoteWindow},
		OnError: func(err error) {
			logger.Warn().Err(err).Msg("quote limiter unavailable")
		},
	}

	healthHandler := &health.Handler{
		Checker:      health.Probes{DB: pool, Redis: redisClient},
		DBTimeout:    500 * time.Millisecond,
		RedisTimeout: 300 * time.Millisecond,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.RoutePatternMiddleware)
	r.Use(obs.TracingMiddleware)
	if cfg.MetricsEnabled {
		r.Use(obs.HTTPObs{Metrics: obs.NewHTTPMetrics(metricsNamespace, nil, nil)}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Use(security.Headers{EnableHSTS: cfg.IsProduction()}.Middleware)
	r.Use(security.CORS(cfg.CORSAllowedOrigins))

	if cfg.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	r.Route("/api/v1", func(v chi.Router) {
		v.Use(security.BodyLimit{Max: cfg.MaxBodyBytes}.Middleware)
		v.Use(apiLimiter)
		v.Use(csrf.Middleware)

		v.Group(func(pub chi.Router) {
			pub.Use(customerAuth.Optional)

			pub.Get("/products", catalogHandler.Products)
			pub.Get("/products/{slug}", catalogHandler.ProductDetail)

			pub.Route("/cart", func(c chi.Router) {
				c.Get("/", cartHandler.Get)
				c.Delete("/", cartHandler.Clear)
				c.Post("/items", cartHandler.AddItem)
				c.Put("/items/{sku}", cartHandler.UpdateItem)
				c.Delete("/items/{sku}", cartHandler.RemoveItem)
				c.Post("/preview", cartHandler.Preview)
			})

			pub.With(idem.Middleware).Post("/orders", checkoutHandler.Create)
			pub.Get("/orders/{orderNumber}", orderHandler.GuestGet)
			pub.With(quoteLimiter.Middleware, idem.Middleware).Post("/quotes", quoteHandler.Submit)

			pub.Route("/auth", func(a chi.Router) {
				a.Post("/register", authHandler.Register)
				a.Post("/login", authHandler.Login)
				a.Post("/logout", authHandler.Logout)
				a.With(customerAuth.Require).Get("/me", authHandler.Me)
			})

			pub.Route("/account", func(acc chi.Router) {
				acc.Use(customerAuth.Require)
				acc.Get("/orders", orderHandler.AccountList)
				acc.Get("/orders/{orderNumber}", orderHandler.AccountGet)
				acc.Get("/quotes", quoteHandler.AccountList)
			})
		})

		v.Route("/admin", func(admin chi.Router) {
			admin.Post("/auth/login", authHandler.AdminLogin)
			admin.Post("/auth/logout", authHandler.AdminLogout)

			admin.Group(func(g chi.Router) {
				g.Use(adminAuth.Require)
				g.Get("/auth/me", authHandler.AdminMe)
				g.Get("/dashboard", analyticsHandler.Dashboard)
				g.Get("/audit", auditHandler.List)

				g.Get("/products", catalogHandler.AdminList)
				g.Get("/products/{id}", catalogHandler.AdminGet)
				g.With(audited("product.create", "product", "")).Post("/products", catalogHandler.AdminCreate)
				g.With(audited("product.update", "product", "id")).Put("/products/{id}", catalogHandler.AdminUpdate)
				g.With(audited("product.delete", "product", "id")).Delete("/products/{id}", catalogHandler.AdminDelete)
				g.With(audited("variant.create", "product", "id")).Post("/products/{id}/variants", catalogHandler.AdminAddVariant)
				g.With(audited("variant.update", "variant", "variantID")).Put("/products/{id}/variants/{variantID}", catalogHandler.AdminUpdateVariant)
				g.With(audited("variant.delete", "variant", "variantID")).Delete("/products/{id}/variants/{variantID}", catalogHandler.AdminDeleteVariant)

				g.Get("/orders", orderHandler.AdminList)
				g.Get("/orders/{id}", orderHandler.AdminGet)
				g.With(audited("order.status", "order", "id")).Patch("/orders/{id}/status", orderHandler.AdminUpdateStatus)
				g.With(audited("order.notes", "order", "id")).Patch("/orders/{id}/notes", orderHandler.AdminUpdateNotes)

				g.Get("/quotes", quoteHandler.AdminList)
				g.Get("/quotes/{id}", quoteHandler.AdminGet)
				g.With(audited("quote.status", "quote_request", "id")).Patch("/quotes/{id}/status", quoteHandler.AdminUpdateStatus)
				g.With(audited("quote.notes", "quote_request", "id")).Patch("/quotes/{id}/notes", quoteHandler.AdminUpdateNotes)

				g.Get("/admins", authHandler.ListAdmins)
				g.With(audited("admin.create", "admin", "")).Post("/admins", authHandler.CreateAdmin)
				g.With(audited("admin.password", "admin", "")).Put("/admins/me/password", authHandler.ChangePassword)
				g.With(audited("admin.delete", "admin", "id")).Delete("/admins/{id}", authHandler.DeleteAdmin)
			})
		})
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Fatal().Err(err).Msg("server exited unexpectedly")
		}
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	healthHandler.SetReady(false)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown")
	}
}

func mustMigrate(cfg *config.Config, logger zerolog.Logger) {
	migrator, err := db.NewMigrator(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("open migrator")
	}
	defer func() {
		if err := migrator.Close(); err != nil {
			logger.Error().Err(err).Msg("close migrator")
		}
	}()
	if err := migrator.Up(); err != nil {
		logger.Fatal().Err(err).Msg("apply migrations")
	}
	if version, dirty, err := migrator.Version(); err == nil {
		logger.Info().Uint("version", version).Bool("dirty", dirty).Msg("migrations applied")
	}
}

func mustInitDatabase(ctx context.Context, cfg *config.Config, logger zerolog.Logger) *pgxpool.Pool {
	dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse database config")
	}
	poolConfig.ConnConfig.Tracer = obs.PGXTracer{}
	if poolConfig.ConnConfig.RuntimeParams == nil {
		poolConfig.ConnConfig.RuntimeParams = map[string]string{}
	}
	poolConfig.ConnConfig.RuntimeParams["application_name"] = "packklite-api"

	pool, err := pgxpool.NewWithConfig(dialCtx, poolConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	if err := pool.Ping(dialCtx); err != nil {
		logger.Fatal().Err(err).Msg("ping database")
	}
	return pool
}

func mustInitRedis(ctx context.Context, cfg *config.Config, logger zerolog.Logger) *redis.Client {
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	client := redis.NewClient(redisOpts)
	if err := redisotel.InstrumentTracing(client); err != nil {
		logger.Error().Err(err).Msg("instrument redis tracing")
	}
	if cfg.MetricsEnabled {
		if err := redisotel.InstrumentMetrics(client); err != nil {
			logger.Error().Err(err).Msg("instrument redis metrics")
		}
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("ping redis")
	}
	return client
}
