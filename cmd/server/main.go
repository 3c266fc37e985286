package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	pb "clinic-schedule-api/api/schedule/v1"
	"clinic-schedule-api/internal/backend"
	"clinic-schedule-api/internal/config"
	"clinic-schedule-api/internal/events"
	gweb "clinic-schedule-api/internal/grpcweb"
	"clinic-schedule-api/internal/handler"
	"clinic-schedule-api/internal/identity"
	"clinic-schedule-api/internal/lifecycle"
	"clinic-schedule-api/internal/logger"
	"clinic-schedule-api/internal/middleware"
	"clinic-schedule-api/internal/seed"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.LogLevel, cfg.LogFormat, "clinic-schedule-api")
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// database
	st, err := backend.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	// lifecycle events
	var pub events.Publisher = events.Nop{}
	if cfg.EventsEnabled() {
		rdb := events.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("redis unreachable, events will be dropped until it recovers", zap.Error(err))
		}
		pub = events.NewRedisStream(rdb, cfg.EventStream, 0)
		log.Info("publishing events", zap.String("stream", cfg.EventStream))
	}

	dir := identity.New(st, log.Named("identity"))
	engine := lifecycle.New(st, dir, pub, log.Named("lifecycle"))
	h := handler.New(engine, dir, st, cfg.JWTSecret, log.Named("rpc")).
		WithTTL(cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	if cfg.SeedDemo {
		if _, err := seed.Run(ctx, st, dir, engine, time.Now().UTC(), log); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}

	// grpc server
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rl := middleware.NewRateLimiter(cfg.AuthRateRPS, cfg.AuthRateBurst)
	go rl.Run(ctx)

	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			middleware.NewMetrics(reg).Interceptor(),
			middleware.RateLimit(rl),
			middleware.Auth(cfg.JWTSecret),
		),
	)
	pb.RegisterScheduleServiceServer(srv, h)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)

	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	errc := make(chan error, 2)
	go func() {
		log.Info("grpc listening", zap.String("port", cfg.GRPCPort))
		errc <- srv.Serve(lis)
	}()

	// grpc-web bridge -> forwards browser requests to grpc on localhost
	bridge, err := gweb.New("localhost:"+cfg.GRPCPort, log.Named("grpcweb"))
	if err != nil {
		srv.Stop()
		return err
	}
	defer bridge.Close()

	httpSrv := &http.Server{
		Addr:              ":" + cfg.WebPort,
		Handler:           gweb.Routes(bridge, reg),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("grpc-web listening", zap.String("port", cfg.WebPort))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	// graceful shutdown
	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-errc:
		log.Error("server failed", zap.Error(err))
	}
	hs.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	srv.GracefulStop()
	return nil
}
