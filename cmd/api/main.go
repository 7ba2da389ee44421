package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Gobusters/ectoenv"
	"github.com/Gobusters/ectologger/zapadapter"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rechat/reso-odata/config"
	"github.com/rechat/reso-odata/internal/gateway"
	"github.com/rechat/reso-odata/internal/oauth"
	"github.com/rechat/reso-odata/internal/odata/keycodec"
	"github.com/rechat/reso-odata/internal/odata/resources"
	"github.com/rechat/reso-odata/internal/platform/cache"
	"github.com/rechat/reso-odata/internal/platform/database"
	"github.com/rechat/reso-odata/internal/platform/startup"
	"github.com/rechat/reso-odata/internal/platform/tracing"
	"github.com/rechat/reso-odata/internal/redirect"
	httptransport "github.com/rechat/reso-odata/internal/transport/http"
)

func main() {
	var cfg config.Config
	if err := ectoenv.BindEnv(&cfg); err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	zapCfg := zap.NewProductionConfig()
	if cfg.PrettyLogs {
		zapCfg = zap.NewDevelopmentConfig()
	}
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapLogger, err := zapCfg.Build()
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer zapLogger.Sync()

	logger := zapadapter.NewZapEctoLogger(zapLogger, nil)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := tracing.NewProvider(ctx, cfg.AppName, cfg.OTELExporterOTLPEndpoint)
	if err != nil {
		log.Fatalf("set up tracing provider: %v", err)
	}
	defer tp.Shutdown(ctx)
	tracing.SetTracer(tp.Tracer(cfg.AppName))

	if err := database.MigrateUp(cfg.PGMigrationFolder, cfg.PGConnectionString, logger); err != nil {
		log.Fatalf("run postgres migrations: %v", err)
	}

	pgDB, err := database.Open("postgres", cfg.PGConnectionString, cfg.PGMaxOpenConns, cfg.PGMaxIdleConns, 30*time.Minute, logger)
	if err != nil {
		log.Fatalf("connect to postgres token store: %v", err)
	}

	tokenStore := oauth.NewStore(pgDB)
	issuer := oauth.NewIssuer(tokenStore, cfg.OAuthClientID, cfg.OAuthClientSecret, cfg.OAuthAccessTokenTTL, cfg.OAuthRefreshTokenTTL)
	sweeper := oauth.NewSweeper(tokenStore, cfg.TokenCleanupInterval, logger)

	mls := gateway.New(gateway.Config{
		Driver:        cfg.MLSDriver,
		Host:          cfg.MLSHost,
		Port:          cfg.MLSPort,
		User:          cfg.MLSUser,
		Password:      cfg.MLSPassword,
		Database:      cfg.MLSDatabase,
		MaxOpenConns:  cfg.MLSMaxOpenConns,
		MaxIdleConns:  cfg.MLSMaxIdleConns,
		QueryTimeout:  time.Duration(cfg.MLSQueryTimeoutSeconds) * time.Second,
		ReconnectWait: time.Duration(cfg.MLSReconnectWaitSeconds) * time.Second,
		Tunnel: gateway.TunnelConfig{
			Enabled:        cfg.SSHTunnelEnabled,
			Host:           cfg.SSHTunnelHost,
			Port:           cfg.SSHTunnelPort,
			User:           cfg.SSHTunnelUser,
			PrivateKeyPath: cfg.SSHTunnelPrivateKey,
			RemoteAddr:     fmt.Sprintf("%s:%d", cfg.MLSHost, cfg.MLSPort),
		},
	}, logger)

	sequencer := startup.NewSequencer(logger, cfg.StartupMaxAttempts)
	sequencer.Add(mls)
	sequencer.Add(sweeper)
	if err := sequencer.Start(ctx); err != nil {
		log.Fatalf("start dependencies: %v", err)
	}
	defer sequencer.Stop(context.Background())

	var driverOpts []resources.DriverOption
	if cfg.CacheEnabled {
		countCache, err := cache.NewTotalCountCache(cache.Config{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.CacheTTL,
		}, logger)
		if err != nil {
			logger.WithError(err).Warn("count cache unavailable, continuing without it")
		} else {
			defer countCache.Close()
			driverOpts = append(driverOpts, resources.WithCountCache(countCache))
		}
	}

	keyStore := keycodec.NewStore(pgDB)
	driver := resources.NewDriver(mls.DB(), keyStore, driverOpts...)
	redirectHandler := redirect.NewHandler(mls.DB())

	e := httptransport.New(logger, driver, tokenStore, issuer, redirectHandler)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      e,
		ReadTimeout:  time.Duration(cfg.HTTPServerReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTPServerWriteTimeoutSeconds) * time.Second,
		IdleTimeout:  time.Duration(cfg.HTTPServerIdleTimeoutSeconds) * time.Second,
	}

	go func() {
		logger.Infof("listening on %s", srv.Addr)
		if err := e.StartServer(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("graceful shutdown failed")
	}
}
