// Command server runs the passwordless authentication service: magic link
// issue and verify endpoints plus health probes. Persistence, link delivery
// and rate limiting backends are selected through environment variables.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/abg-ub/better-auth/modules/auth"
	modmagiclink "github.com/abg-ub/better-auth/modules/magiclink"
	"github.com/abg-ub/better-auth/pkg/config"
	"github.com/abg-ub/better-auth/pkg/email"
	"github.com/abg-ub/better-auth/pkg/httpserver"
	"github.com/abg-ub/better-auth/pkg/identity"
	"github.com/abg-ub/better-auth/pkg/identity/mongostore"
	"github.com/abg-ub/better-auth/pkg/identity/pgstore"
	"github.com/abg-ub/better-auth/pkg/identity/redisstore"
	"github.com/abg-ub/better-auth/pkg/logger"
	"github.com/abg-ub/better-auth/pkg/magiclink"
	"github.com/abg-ub/better-auth/pkg/mongo"
	"github.com/abg-ub/better-auth/pkg/pg"
	"github.com/abg-ub/better-auth/pkg/ratelimit"
	"github.com/abg-ub/better-auth/pkg/redis"
	"github.com/abg-ub/better-auth/pkg/session"
)

type appConfig struct {
	AppName     string `env:"APP_NAME" envDefault:"better-auth"`
	Environment string `env:"APP_ENV" envDefault:"development"`

	// Storage selects the identity store backend: memory, postgres or mongo.
	Storage string `env:"STORAGE" envDefault:"memory"`
	// MongoDatabase names the database when Storage is mongo.
	MongoDatabase string `env:"MONGODB_DATABASE" envDefault:"better_auth"`

	// UseRedis moves verification records, sessions and rate limit counters
	// to Redis. Accounts stay in the Storage backend.
	UseRedis bool `env:"USE_REDIS" envDefault:"false"`

	// EmailProvider selects link delivery: dev, postmark or smtp.
	EmailProvider string `env:"EMAIL_PROVIDER" envDefault:"dev"`
	DevEmailDir   string `env:"DEV_EMAIL_DIR" envDefault:"./tmp/emails"`

	SessionHashKey  string `env:"SESSION_HASH_KEY,required"`
	SessionBlockKey string `env:"SESSION_BLOCK_KEY"`
	SecureCookies   bool   `env:"SECURE_COOKIES" envDefault:"false"`
}

func main() {
	if err := run(context.Background()); err != nil {
		slog.Error("server exited", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var appCfg appConfig
	config.MustLoad(&appCfg)

	var httpCfg httpserver.Config
	config.MustLoad(&httpCfg)

	var linkCfg magiclink.Config
	config.MustLoad(&linkCfg)

	var logOpt logger.Option
	if appCfg.Environment == "production" {
		logOpt = logger.WithProduction(appCfg.AppName)
	} else {
		logOpt = logger.WithDevelopment(appCfg.AppName)
	}
	log := logger.New(logOpt)

	store, healthchecks, err := buildStore(ctx, appCfg, log)
	if err != nil {
		return err
	}

	limitStore := ratelimit.Store(ratelimit.NewMemoryStore())
	sessionStore := session.Store(nil) // manager defaults to memory

	if appCfg.UseRedis {
		var redisCfg redis.Config
		config.MustLoad(&redisCfg)

		client, err := redis.Connect(ctx, redisCfg)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer func() { _ = client.Close() }()

		store = identity.Split(store, redisstore.New(client))
		limitStore = ratelimit.NewRedisStore(client)
		sessionStore = session.NewRedisStore(client)
		healthchecks = append(healthchecks, redis.Healthcheck(client))
	}

	sender, err := buildSender(appCfg)
	if err != nil {
		return err
	}

	sessionCfg := session.DefaultConfig()
	sessionCfg.SecureCookies = appCfg.SecureCookies
	transport := session.NewCookieTransport(
		[]byte(appCfg.SessionHashKey),
		blockKeyOrNil(appCfg.SessionBlockKey),
		sessionCfg.CookieName,
		sessionCfg.SecureCookies,
	)

	sessionOpts := []session.Option{
		session.WithTransport(transport),
		session.WithConfig(sessionCfg),
	}
	if sessionStore != nil {
		sessionOpts = append(sessionOpts, session.WithStore(sessionStore))
	}
	sessions := session.New(sessionOpts...)

	svc := magiclink.NewService(store, sender, sessions, linkCfg, magiclink.WithLogger(log))
	module := modmagiclink.NewModule(svc, linkCfg)

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", httpserver.HealthCheckHandler(ctx, log))
	r.Get("/readyz", httpserver.HealthCheckHandler(ctx, log, healthchecks...))
	r.Mount("/", auth.Router(auth.RouterOptions{
		MagicLink:      module,
		RateLimitStore: limitStore,
	}))

	srv := httpserver.New(httpCfg, httpserver.WithLogger(log))
	return srv.Run(ctx, r)
}

// buildStore wires the account and verification store selected by config.
func buildStore(ctx context.Context, appCfg appConfig, log *slog.Logger) (identity.Store, []func(context.Context) error, error) {
	switch appCfg.Storage {
	case "postgres":
		var pgCfg pg.Config
		config.MustLoad(&pgCfg)

		pool, err := pg.Connect(ctx, pgCfg)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := pg.Migrate(ctx, pool, pgCfg, log); err != nil {
			return nil, nil, fmt.Errorf("migrate postgres: %w", err)
		}
		return pgstore.New(pool), []func(context.Context) error{pg.Healthcheck(pool)}, nil

	case "mongo":
		var mongoCfg mongo.Config
		config.MustLoad(&mongoCfg)

		db, err := mongo.NewWithDatabase(ctx, mongoCfg, appCfg.MongoDatabase)
		if err != nil {
			return nil, nil, fmt.Errorf("connect mongo: %w", err)
		}
		store := mongostore.New(db)
		if err := store.EnsureIndexes(ctx); err != nil {
			return nil, nil, fmt.Errorf("ensure mongo indexes: %w", err)
		}
		return store, []func(context.Context) error{mongo.Healthcheck(db.Client())}, nil

	case "memory":
		return identity.NewMemoryStore(), nil, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", appCfg.Storage)
	}
}

// buildSender wires link delivery: a rendered email over the selected
// transport.
func buildSender(appCfg appConfig) (magiclink.LinkSender, error) {
	var emailSender email.EmailSender

	switch appCfg.EmailProvider {
	case "postmark":
		var emailCfg email.Config
		config.MustLoad(&emailCfg)

		sender, err := email.NewPostmarkClient(emailCfg)
		if err != nil {
			return nil, fmt.Errorf("postmark client: %w", err)
		}
		emailSender = sender

	case "smtp":
		var emailCfg email.Config
		config.MustLoad(&emailCfg)

		sender, err := email.NewSMTPClient(emailCfg)
		if err != nil {
			return nil, fmt.Errorf("smtp client: %w", err)
		}
		emailSender = sender

	case "dev":
		emailSender = email.NewDevSender(appCfg.DevEmailDir)

	default:
		return nil, fmt.Errorf("unknown email provider %q", appCfg.EmailProvider)
	}

	return email.NewMagicLinkMailer(emailSender, appCfg.AppName), nil
}

func blockKeyOrNil(key string) []byte {
	if key == "" {
		return nil
	}
	return []byte(key)
}
