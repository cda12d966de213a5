package mockapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/utafrali/storefront/internal/config"
	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/tracing"
)

// Server wires together all dependencies and runs the fake commerce API.
type Server struct {
	cfg            *config.MockAPIConfig
	logger         *slog.Logger
	store          *Store
	tokens         *TokenManager
	producer       *kafka.Producer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewServer creates a server seeded with SeedProducts.
func NewServer(cfg *config.MockAPIConfig, logger *slog.Logger) (*Server, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tcfg := tracing.DefaultConfig(ServiceName)
	tcfg.Environment = cfg.Environment
	tcfg.Enabled = cfg.OTELEnabled
	tcfg.OTLPEndpoint = cfg.OTELEndpoint
	tcfg.SampleRate = cfg.OTELSampleRate
	tracerShutdown, err := tracing.InitTracer(ctx, tcfg)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	store := NewStore(SeedProducts(), cfg.SeedWalletBalance)
	tokens := NewTokenManager(cfg.JWTSecret, cfg.TokenTTL())

	healthHandler := health.NewHandler(ServiceName)
	healthHandler.Register("catalog", func(context.Context) error {
		if len(store.Products()) == 0 {
			return fmt.Errorf("catalog is empty")
		}
		return nil
	})

	var (
		producer *kafka.Producer
		opts     []RouterOption
	)
	if len(cfg.KafkaBrokers) > 0 {
		producer = kafka.NewProducer(kafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		healthHandler.Register("kafka", producer.Ping)
		opts = append(opts, WithOrderPublisher(NewKafkaOrderPublisher(producer, cfg.OrderEventsTopic)))
		logger.Info("publishing order events",
			slog.Any("brokers", cfg.KafkaBrokers),
			slog.String("topic", cfg.OrderEventsTopic),
		)
	}

	router := NewRouter(store, tokens.Validate, healthHandler, logger, opts...)

	return &Server{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		tokens:   tokens,
		producer: producer,
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		tracerShutdown: tracerShutdown,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (s *Server) Run(ctx context.Context) error {
	token, err := s.tokens.Issue(s.cfg.DevUsername)
	if err != nil {
		return fmt.Errorf("issue development token: %w", err)
	}
	s.logger.Info("development token issued",
		slog.String("username", s.cfg.DevUsername),
		slog.String("token", token),
	)

	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("starting HTTP server",
			slog.String("addr", s.httpServer.Addr),
		)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return s.Shutdown()
}

// Shutdown gracefully stops the HTTP server and flushes pending spans.
func (s *Server) Shutdown() error {
	s.logger.Info("shutting down mock API...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	if s.producer != nil {
		if err := s.producer.Close(); err != nil {
			s.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
	}

	if err := s.tracerShutdown(shutdownCtx); err != nil {
		s.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
	}

	s.logger.Info("mock API shutdown complete")
	return nil
}
