// package main provides a command line interface for starting the Spark! Bytes
// REST API.
package main

import (
	"context"
	"database/sql"
	"flag"
	"net/http"
	"os"
	"time"

	firebase "firebase.google.com/go/v4"
	"github.com/gorilla/handlers"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"

	"github.com/sparkbytes/sparkbytes/audit"
	"github.com/sparkbytes/sparkbytes/auth"
	"github.com/sparkbytes/sparkbytes/clock"
	"github.com/sparkbytes/sparkbytes/config"
	"github.com/sparkbytes/sparkbytes/log"
	"github.com/sparkbytes/sparkbytes/memstore"
	"github.com/sparkbytes/sparkbytes/pg"
	"github.com/sparkbytes/sparkbytes/prom"
	"github.com/sparkbytes/sparkbytes/rest"
	"github.com/sparkbytes/sparkbytes/rtdb"
	"github.com/sparkbytes/sparkbytes/service"
	"github.com/sparkbytes/sparkbytes/store"
)

// firebaseScopes are requested for service account credentials.
var firebaseScopes = []string{
	"https://www.googleapis.com/auth/cloud-platform",
	"https://www.googleapis.com/auth/firebase.database",
	"https://www.googleapis.com/auth/identitytoolkit",
	"https://www.googleapis.com/auth/userinfo.email",
}

// identity is an auth provider that can also verify sign-in tokens.
type identity interface {
	auth.Provider
	auth.Verifier
}

type backend interface {
	store.Profiles
	store.Events
}

// pgBackend joins the two postgres tables into one backend.
type pgBackend struct {
	*pg.UserStore
	*pg.EventStore
}

func main() {
	configPath := flag.String("config", os.Getenv("SPARKBYTES_CONFIG"), "path to a YAML config file")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}

	logger, err := log.New(cfg.Environment)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	loc, err := cfg.Location()
	if err != nil {
		logger.Fatal("load timezone failed", zap.Error(err))
	}

	var app *firebase.App
	if cfg.Backend == config.BackendRTDB || cfg.DevSecret == "" {
		app, err = newFirebaseApp(ctx, cfg)
		if err != nil {
			logger.Fatal("init firebase failed", zap.Error(err))
		}
	}

	db, err := openBackend(ctx, cfg, app)
	if err != nil {
		logger.Fatal("open backend failed", zap.String("backend", cfg.Backend), zap.Error(err))
	}

	var provider identity
	if cfg.DevSecret != "" {
		logger.Warn("using development tokens")
		provider = &auth.DevProvider{Secret: []byte(cfg.DevSecret)}
	} else {
		authClient, err := app.Auth(ctx)
		if err != nil {
			logger.Fatal("init firebase auth failed", zap.Error(err))
		}
		provider = &auth.FirebaseProvider{AuthClient: authClient}
	}

	profiles := &store.ProfileStore{Profiles: db}
	events := &store.EventRepository{
		Events:   db,
		Profiles: profiles,
		Clock:    clock.System(),
	}

	service := &service.Service{
		Profiles: profiles,
		Events:   events,

		Auth:   provider,
		Domain: cfg.Domain,

		Time:     clock.System(),
		Location: loc,
		BaseURL:  cfg.BaseURL,
	}

	if cfg.AuditCron != "" {
		auditor := &audit.Auditor{
			Profiles: profiles,
			Events:   events,
			Logger:   logger.With(zap.String("component", "audit")),
		}
		sched, err := auditor.Schedule(cfg.AuditCron, time.Minute)
		if err != nil {
			logger.Fatal("schedule audit failed", zap.Error(err))
		}
		defer sched.Stop()
	}

	var handler http.Handler
	handler = rest.New(service, auth.Restrict(provider, cfg.Domain), cfg.GuardWait)
	handler = log.WrapHandler(handler, logger)
	handler = handlers.CORS(
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "HEAD"}),
		handlers.AllowedOrigins(cfg.CORSOrigins),
		handlers.AllowCredentials(),
	)(handler)
	http.Handle("/", handler)

	http.Handle("/metrics", prom.Handler())

	logger.Info("listening",
		zap.String("addr", cfg.Listen),
		zap.String("backend", cfg.Backend),
		zap.String("timezone", loc.String()))
	if err := http.ListenAndServe(cfg.Listen, nil); err != nil {
		logger.Fatal("http server failed", zap.Error(err))
	}
}

func newFirebaseApp(ctx context.Context, cfg *config.Config) (*firebase.App, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		data, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, err
		}
		creds, err := google.CredentialsFromJSON(ctx, data, firebaseScopes...)
		if err != nil {
			return nil, err
		}
		opts = append(opts, option.WithCredentials(creds))
	}

	return firebase.NewApp(ctx, &firebase.Config{
		ProjectID:   cfg.FirebaseProject,
		DatabaseURL: cfg.DatabaseURL,
	}, opts...)
}

func openBackend(ctx context.Context, cfg *config.Config, app *firebase.App) (backend, error) {
	switch cfg.Backend {
	case config.BackendRTDB:
		client, err := app.Database(ctx)
		if err != nil {
			return nil, err
		}
		return &rtdb.Store{Client: client}, nil

	case config.BackendPostgres:
		db, err := sql.Open("postgres", cfg.PostgresURL)
		if err != nil {
			return nil, err
		}
		db.SetMaxOpenConns(5)

		userStore := &pg.UserStore{DB: db}
		if err := userStore.Init(ctx); err != nil {
			return nil, err
		}
		eventStore := &pg.EventStore{DB: db}
		if err := eventStore.Init(ctx); err != nil {
			return nil, err
		}
		return pgBackend{userStore, eventStore}, nil
	}

	return memstore.New(), nil
}
