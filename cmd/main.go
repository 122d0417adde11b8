package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	apictx "github.com/dtroode/farmgate-identity/internal/api/context"
	grpcRouter "github.com/dtroode/farmgate-identity/internal/api/grpc/router"
	grpcServer "github.com/dtroode/farmgate-identity/internal/api/grpc/server"
	httpRouter "github.com/dtroode/farmgate-identity/internal/api/http/router"
	httpServer "github.com/dtroode/farmgate-identity/internal/api/http/server"
	"github.com/dtroode/farmgate-identity/internal/config"
	"github.com/dtroode/farmgate-identity/internal/logger"
	"github.com/dtroode/farmgate-identity/internal/model"
	"github.com/dtroode/farmgate-identity/internal/notify"
	"github.com/dtroode/farmgate-identity/internal/password"
	"github.com/dtroode/farmgate-identity/internal/repository/postgres"
	"github.com/dtroode/farmgate-identity/internal/repository/redis"
	"github.com/dtroode/farmgate-identity/internal/server"
	"github.com/dtroode/farmgate-identity/internal/service"
	"github.com/dtroode/farmgate-identity/internal/telemetry"
	"github.com/dtroode/farmgate-identity/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel, cfg.LogFormat)

	logAppVersion()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry.Endpoint, cfg.Telemetry.ServiceName)
	if err != nil {
		logger.Fatal("failed to initialize tracing", "error", err)
	}

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer db.Close()

	cache, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Fatal("failed to initialize session cache", "error", err, "address", cfg.Redis.Addr)
	}
	defer cache.Close()

	identityRepo := postgres.NewIdentityRepository(db)
	stagingRepo := postgres.NewStagingRepository(db)
	sessionRepo := redis.NewSessionRepository(cache)
	markerRepo := redis.NewVerificationRepository(cache, cfg.Verification.MaxAttempts)

	tokenManager, err := token.NewJWT(cfg.JWT.AccessSecret, cfg.JWT.RefreshSecret)
	if err != nil {
		logger.Fatal("failed to initialize token issuer", "error", err)
	}
	hasher, err := password.NewArgon2(password.Params{
		Time:   cfg.KDF.Time,
		MemKiB: cfg.KDF.MemKiB,
		Par:    cfg.KDF.Par,
	})
	if err != nil {
		logger.Fatal("failed to initialize password hasher", "error", err)
	}

	sender := newSender(cfg, logger)

	tokenService := service.NewTokenService(tokenManager, sessionRepo, logger)
	authService := service.NewAuth(identityRepo, hasher, markerRepo, tokenService, logger)
	verificationService := service.NewVerification(identityRepo, stagingRepo, markerRepo, sender, hasher, tokenService,
		service.VerificationConfig{
			StagingWindow: cfg.Verification.StagingWindow,
			CodeTTL:       cfg.Verification.CodeTTL,
			Cooldown:      cfg.Verification.Cooldown,
			CodeLength:    cfg.Verification.CodeLength,
		}, logger)
	guard := service.NewGuard(identityRepo, tokenManager, logger)
	ctxMgr := apictx.NewManager()

	if err := authService.SeedAdmin(ctx, service.AdminSeed{
		Name:     cfg.Admin.Name,
		Email:    cfg.Admin.Email,
		Password: cfg.Admin.Password,
	}); err != nil {
		logger.Fatal("failed to seed admin", "error", err)
	}

	var wg sync.WaitGroup

	sweeper := service.NewStagingSweeper(stagingRepo, cfg.Verification.SweepInterval, logger)
	wg.Add(1)
	go func() {
		defer wg.Done()
		sweeper.Run(ctx)
	}()

	httpRoutes := httpRouter.New(verificationService, authService, guard, ctxMgr, httpRouter.Options{
		Production:     cfg.IsProduction(),
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		RequestTimeout: cfg.HTTP.RequestTimeout,
	}, logger)

	grpcRoutes := grpcRouter.New(guard, ctxMgr, logger)

	servers := []struct {
		srv model.Server
		sl  model.SecurityLayer
	}{
		{
			srv: httpServer.NewHTTPServer(httpRoutes.Register(), fmt.Sprintf(":%s", cfg.HTTP.Port)),
			sl:  server.NewSecurityLayer(cfg.HTTP.EnableHTTPS, cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName),
		},
		{
			srv: grpcServer.NewGRPCServer(grpcRoutes.Register(), grpcRoutes.Health(), fmt.Sprintf(":%s", cfg.GRPC.Port)),
			sl:  server.NewSecurityLayer(cfg.GRPC.EnableHTTPS, cfg.GRPC.CertFileName, cfg.GRPC.PrivateKeyFileName),
		},
	}

	for _, s := range servers {
		wg.Add(1)
		go func(s model.Server, sl model.SecurityLayer) {
			defer wg.Done()
			logger.Info("Starting server on", "server", s.Name(), "address", s.Address())
			if err := s.Start(sl); err != nil {
				logger.Error("failed to start server", "server", s.Name(), "error", err)
				stop()
			}
		}(s.srv, s.sl)
	}

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	for _, s := range servers {
		if err := s.srv.Stop(shutdownCtx); err != nil {
			logger.Error("error during server shutdown", "server", s.srv.Name(), "error", err, "address", s.srv.Address())
		}
	}

	wg.Wait()

	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("failed to flush traces", "error", err)
	}

	logger.Info("shutdown complete")
}

// newSender delivers email codes over SMTP when a host is configured. Phone
// contacts, and every contact without SMTP, go to the log sender.
func newSender(cfg *config.Config, logger *logger.Logger) model.Sender {
	logSender := notify.NewLogSender(logger)
	if cfg.SMTP.Host == "" {
		return logSender
	}

	return notify.NewSMTPSender(notify.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	}, logSender, logger)
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
