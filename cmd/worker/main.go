package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/aryanbrs/packklite-sub001/internal/config"
	"github.com/aryanbrs/packklite-sub001/internal/notify"
	"github.com/aryanbrs/packklite-sub001/internal/obs"
	"github.com/aryanbrs/packklite-sub001/internal/resilience"
)

const metricsAddr = ":9091"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel).With().Str("component", "worker").Logger()

	shutdownTracer, err := obs.InitTracer(context.Background(), obs.TracingConfig{
		ServiceName:   "packklite-worker",
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

	redisOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}

	sender := notify.NewSender(notify.SenderConfig{
		APIURL:  cfg.EmailAPIURL,
		APIKey:  cfg.EmailAPIKey,
		From:    cfg.EmailFrom,
		Timeout: 10 * time.Second,
		Metrics: obs.NewDomainMetrics("packklite", prometheus.DefaultRegisterer),
		Breaker: resilience.NewMetrics(prometheus.DefaultRegisterer),
		Log:     logger,
	})

	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: cfg.WorkerConcurrency,
		Queues:      map[string]int{notify.QueueName: 1},
		Logger:      asynqLogger{log: logger},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			retried, _ := asynq.GetRetryCount(ctx)
			logger.Warn().Err(err).Str("task", task.Type()).Int("retried", retried).Msg("task failed")
		}),
		ShutdownTimeout: 20 * time.Second,
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(notify.TaskEmailSend, notify.EmailTaskHandler{Sender: sender}.ProcessTask)

	if cfg.MetricsEnabled {
		go func() {
			metrics := http.NewServeMux()
			metrics.Handle("/metrics", promhttp.Handler())
			server := &http.Server{Addr: metricsAddr, Handler: metrics, ReadHeaderTimeout: 5 * time.Second}
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error().Err(err).Msg("metrics listener stopped")
			}
		}()
	}

	logger.Info().Int("concurrency", cfg.WorkerConcurrency).Msg("worker starting")
	// Run blocks until SIGINT or SIGTERM, then drains in-flight tasks.
	if err := srv.Run(mux); err != nil {
		logger.Fatal().Err(err).Msg("worker stopped with error")
	}
	logger.Info().Msg("worker shutdown complete")
}

// asynqLogger adapts zerolog to asynq's logger interface.
type asynqLogger struct {
	log zerolog.Logger
}

func (l asynqLogger) Debug(args ...any) { l.log.Debug().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Info(args ...any)  { l.log.Info().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Warn(args ...any)  { l.log.Warn().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Error(args ...any) { l.log.Error().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Fatal(args ...any) { l.log.Fatal().Msg(fmt.Sprint(args...)) }
