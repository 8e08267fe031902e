package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/tokensmith/internal/audit"
	"github.com/dropDatabas3/tokensmith/internal/config"
	"github.com/dropDatabas3/tokensmith/internal/domain/repository"
	httpx "github.com/dropDatabas3/tokensmith/internal/http"
	jwtx "github.com/dropDatabas3/tokensmith/internal/jwt"
	"github.com/dropDatabas3/tokensmith/internal/oauth2"
	"github.com/dropDatabas3/tokensmith/internal/observability/logger"
	"github.com/dropDatabas3/tokensmith/internal/security/secretbox"
	tokens "github.com/dropDatabas3/tokensmith/internal/security/token"
	"github.com/dropDatabas3/tokensmith/internal/store/memory"
	"github.com/dropDatabas3/tokensmith/internal/store/pg"
	redisstore "github.com/dropDatabas3/tokensmith/internal/store/redis"
)

// repos agrupa las implementaciones elegidas por driver.
type repos struct {
	clients   repository.ClientRepository
	codes     repository.AuthorizationCodeRepository
	refresh   repository.RefreshTokenRepository
	keys      repository.CryptoKeyRepository
	blacklist repository.BlacklistRepository
	close     func()
}

func main() {
	var (
		flagEnvFile = flag.String("env-file", ".env", "ruta a .env (opcional)")
		flagConfig  = flag.String("config", "", "ruta a config.yaml")
	)
	flag.Parse()

	if *flagEnvFile != "" {
		_ = godotenv.Load(*flagEnvFile)
	}

	cfg, err := config.Load(*flagConfig)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.App.LogLevel,
		ServiceName: "tokensmith",
	})
	defer func() { _ = logger.Sync() }()
	log := logger.Named("main")

	if err := run(cfg, log); err != nil {
		log.Fatal("server exited", logger.Err(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Secretos obligatorios: fallar acá, no en el primer request
	box, err := secretbox.New(cfg.Secrets.MasterKey)
	if err != nil {
		return err
	}
	hasher, err := tokens.NewHasher([]byte(cfg.Secrets.TokenHashSecret))
	if err != nil {
		return err
	}

	rp, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer rp.close()

	// Blacklist: front Redis opcional delante del persistente
	blacklist := rp.blacklist
	if cfg.Cache.Kind == "redis" {
		rdb := goredis.NewClient(&goredis.Options{
			Addr: cfg.Cache.Redis.Addr,
			DB:   cfg.Cache.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
		defer func() { _ = rdb.Close() }()
		blacklist = redisstore.NewBlacklistCache(rdb, rp.blacklist, cfg.Cache.Redis.Prefix)
		log.Info("blacklist cache enabled", logger.String("redis", cfg.Cache.Redis.Addr))
	}

	keySource := jwtx.NewKeySource(rp.keys, cfg.KeyCacheTTL())
	issuer := jwtx.NewIssuer(cfg.JWT.Issuer, keySource, box)
	issuer.AccessTTL = cfg.AccessTTL()

	sink := audit.NewZapSink()
	publisher := audit.NewSinkPublisher(sink)

	// Composition root: orden explícito de handlers, sin discovery
	dispatcher := oauth2.NewDispatcher(
		oauth2.NewAuthorizationCodeHandler(oauth2.AuthorizationCodeDeps{
			Codes:         rp.codes,
			RefreshTokens: rp.refresh,
			Hasher:        hasher,
			Issuer:        issuer,
			Publisher:     publisher,
			Audit:         sink,
			RefreshTTL:    cfg.RefreshTTL(),
		}),
		oauth2.NewClientCredentialsHandler(oauth2.ClientCredentialsDeps{
			Issuer:    issuer,
			Publisher: publisher,
		}),
		oauth2.NewRefreshTokenHandler(oauth2.RefreshTokenDeps{
			RefreshTokens: rp.refresh,
			Hasher:        hasher,
			Issuer:        issuer,
			Publisher:     publisher,
			Audit:         sink,
			RefreshTTL:    cfg.RefreshTTL(),
		}),
	)

	router := httpx.NewRouter(httpx.Deps{
		Authenticator: oauth2.NewAuthenticator(rp.clients, sink),
		Dispatcher:    dispatcher,
		Revoker: oauth2.NewRevoker(oauth2.RevokerDeps{
			RefreshTokens: rp.refresh,
			Blacklist:     blacklist,
			Hasher:        hasher,
			Issuer:        issuer,
		}),
		Audit:  sink,
		Keys:   rp.keys,
		Issuer: issuer,
	})

	srv := &nethttp.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", logger.String("addr", cfg.Server.Addr), logger.String("issuer", cfg.JWT.Issuer))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// openStore abre el backend según driver.
func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (*repos, error) {
	switch cfg.Storage.Driver {
	case "memory":
		log.Warn("using in-memory storage; todo se pierde al reiniciar")
		s := memory.New()
		return &repos{
			clients:   s.Clients(),
			codes:     s.Codes(),
			refresh:   s.RefreshTokens(),
			keys:      s.Keys(),
			blacklist: s.Blacklist(),
			close:     func() {},
		}, nil
	case "postgres":
		s, err := pg.Open(ctx, cfg.Storage.DSN, int32(cfg.Storage.MaxConns))
		if err != nil {
			return nil, err
		}
		return &repos{
			clients:   s.Clients(),
			codes:     s.Codes(),
			refresh:   s.RefreshTokens(),
			keys:      s.Keys(),
			blacklist: s.Blacklist(),
			close:     s.Close,
		}, nil
	default:
		return nil, fmt.Errorf("storage driver %q no soportado", cfg.Storage.Driver)
	}
}
