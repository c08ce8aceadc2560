package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cwrk-planet/presence-hub/config"
	"github.com/cwrk-planet/presence-hub/internal/clock"
	"github.com/cwrk-planet/presence-hub/internal/memory"
	"github.com/cwrk-planet/presence-hub/internal/service"
	grpcx "github.com/cwrk-planet/presence-hub/internal/transport/grpc"
	httpx "github.com/cwrk-planet/presence-hub/internal/transport/http"
	"github.com/cwrk-planet/presence-hub/internal/transport/ws"
	"github.com/cwrk-planet/presence-hub/pkg/logger"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// --- config ---
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger.Init(logger.Config{
		Env:       logger.ParseEnv(cfg.Logging.Env),
		Service:   cfg.Logging.Service,
		Version:   cfg.Logging.Version,
		Backend:   logger.Backend(cfg.Logging.Backend),
		Level:     logger.ParseLevel(cfg.Logging.Level),
		AddSource: cfg.Logging.AddSource,
		Debug:     cfg.Logging.Debug,
	})
	slog.Info("starting presence-hub",
		"env", cfg.Logging.Env, "version", cfg.Logging.Version)

	// --- tracing: span ids only, for log correlation ---
	tp := sdktrace.NewTracerProvider(sdktrace.WithSampler(sdktrace.AlwaysSample()))
	otel.SetTracerProvider(tp)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = tp.Shutdown(ctx)
	}()

	clk := clock.Real{}

	// --- repos ---
	presenceRepo := memory.NewPresenceRepository()
	chatRepo := memory.NewChatRepository(cfg.Hub.MaxMessagesPerRoom)
	deviceRepo := memory.NewDeviceRepository()

	// --- services ---
	memberSvc := service.NewMemberService(presenceRepo, clk)
	memberSvc.SetRefreshOnActivity(cfg.Presence.RefreshOnActivity)

	chatSvc := service.NewChatService(chatRepo, clk)
	chatSvc.SetReplayLimit(cfg.Hub.ReplayLimit)
	chatSvc.SetMaxMessageLen(cfg.Hub.MaxMessageLen)

	deviceSvc := service.NewDeviceService(deviceRepo, clk)
	deviceSvc.SetActiveWindow(cfg.Hub.DeviceActiveWindow)

	// --- WS Hub & Server ---
	hub := ws.NewHub()
	gateway := ws.NewGateway(hub, memberSvc, chatSvc, deviceSvc, clk)
	wsServer := ws.NewServer(gateway, ws.ServerConfig{
		PingEvery:    cfg.Hub.PingEvery,
		WriteTimeout: cfg.Hub.WriteTimeout,
		SendQueue:    cfg.Hub.SendQueue,
	})

	statusSvc := service.NewStatusService(memberSvc, chatSvc, deviceSvc, hub, clk)
	sweeper := service.NewSweeper(service.SweeperConfig{
		Interval:    cfg.Sweeper.Interval,
		PresenceTTL: cfg.Sweeper.PresenceTTL,
		DeviceTTL:   cfg.Sweeper.DeviceTTL,
	}, memberSvc, deviceSvc, clk)

	// --- HTTP ---
	handler := httpx.NewHandler(memberSvc, chatSvc, statusSvc, cfg.Logging.Version)
	router := httpx.NewRouter(handler, wsServer.HandleWS, httpx.RouterConfig{
		CORSOrigins: cfg.HTTP.CORSOrigins,
	})
	httpSrv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	// --- gRPC ---
	grpcSrv := grpcx.NewServer()

	// --- run ---
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("http listen", "addr", cfg.HTTP.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		lis, err := net.Listen("tcp", cfg.GRPC.Addr)
		if err != nil {
			return err
		}
		slog.Info("grpc listen", "addr", cfg.GRPC.Addr)
		return grpcSrv.Serve(lis)
	})

	g.Go(func() error {
		return sweeper.Run(gctx)
	})

	// --- graceful shutdown ---
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")

		ctxShutdown, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		grpcSrv.Shutdown(ctxShutdown)
		return httpSrv.Shutdown(ctxShutdown)
	})

	if err := g.Wait(); err != nil {
		slog.Error("server error", "err", err)
		os.Exit(1)
	}
	slog.Info("stopped")
}
