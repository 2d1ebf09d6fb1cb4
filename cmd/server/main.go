package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/R3gret/TinyBackend-sub000/internal/access"
	accessmetrics "github.com/R3gret/TinyBackend-sub000/internal/access/metrics"
	"github.com/R3gret/TinyBackend-sub000/internal/ageband"
	agebandhandler "github.com/R3gret/TinyBackend-sub000/internal/ageband/handler"
	agebandstore "github.com/R3gret/TinyBackend-sub000/internal/ageband/store"
	attendancehandler "github.com/R3gret/TinyBackend-sub000/internal/attendance/handler"
	attendanceservice "github.com/R3gret/TinyBackend-sub000/internal/attendance/service"
	attendancestore "github.com/R3gret/TinyBackend-sub000/internal/attendance/store"
	"github.com/R3gret/TinyBackend-sub000/internal/audit"
	centerhandler "github.com/R3gret/TinyBackend-sub000/internal/center/handler"
	centermetrics "github.com/R3gret/TinyBackend-sub000/internal/center/metrics"
	centerservice "github.com/R3gret/TinyBackend-sub000/internal/center/service"
	centerstore "github.com/R3gret/TinyBackend-sub000/internal/center/store"
	contenthandler "github.com/R3gret/TinyBackend-sub000/internal/content/handler"
	contentmetrics "github.com/R3gret/TinyBackend-sub000/internal/content/metrics"
	contentservice "github.com/R3gret/TinyBackend-sub000/internal/content/service"
	contentstore "github.com/R3gret/TinyBackend-sub000/internal/content/store"
	jwttoken "github.com/R3gret/TinyBackend-sub000/internal/jwt_token"
	peoplehandler "github.com/R3gret/TinyBackend-sub000/internal/people/handler"
	"github.com/R3gret/TinyBackend-sub000/internal/people/secrets"
	peopleservice "github.com/R3gret/TinyBackend-sub000/internal/people/service"
	peoplestore "github.com/R3gret/TinyBackend-sub000/internal/people/store"
	"github.com/R3gret/TinyBackend-sub000/internal/platform/config"
	"github.com/R3gret/TinyBackend-sub000/internal/platform/database"
	"github.com/R3gret/TinyBackend-sub000/internal/platform/httpserver"
	"github.com/R3gret/TinyBackend-sub000/internal/platform/logger"
	platformmetrics "github.com/R3gret/TinyBackend-sub000/internal/platform/metrics"
	platformredis "github.com/R3gret/TinyBackend-sub000/internal/platform/redis"
	httptransport "github.com/R3gret/TinyBackend-sub000/internal/transport/http"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	ctx := context.Background()

	// Postgres is optional in development; without it every store runs
	// in memory and data lives only as long as the process.
	var db *sql.DB
	if cfg.DatabaseURL != "" {
		var err error
		db, err = database.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("postgres connection failed", "error", err)
			os.Exit(1)
		}
		defer db.Close()
	} else {
		log.Warn("no database configured, using in-memory stores")
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Audit events go to Kafka when brokers are configured, otherwise to a
	// process-local ring that at least keeps tests and dev honest.
	var auditStore audit.Store
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaStore, err := audit.NewKafkaStore(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			log.Error("kafka connection failed", "error", err)
			os.Exit(1)
		}
		defer kafkaStore.Close()
		auditStore = kafkaStore
	} else if db != nil {
		auditStore = audit.NewPostgresStore(db)
	} else {
		log.Warn("no kafka brokers or database configured, audit events stay in memory")
		auditStore = audit.NewInMemoryStore()
	}
	auditor := audit.NewPublisher(auditStore)

	// Stores.
	var (
		centers    centerservice.CenterStore
		users      peopleservice.UserStore
		children   peopleservice.ChildStore
		content    contentservice.Store
		attendance attendanceservice.Store
		bandRows   agebandstore.Store
	)
	if db != nil {
		centers = centerstore.NewPostgres(db)
		users = peoplestore.NewPostgresUsers(db)
		children = peoplestore.NewPostgresChildren(db)
		content = contentstore.NewPostgres(db)
		attendance = attendancestore.NewPostgres(db)
		bandRows = agebandstore.NewPostgres(db)
	} else {
		centers = centerstore.NewInMemory()
		users = peoplestore.NewInMemoryUsers()
		children = peoplestore.NewInMemoryChildren()
		content = contentstore.NewInMemory()
		attendance = attendancestore.NewInMemory()
	}
	if redisClient != nil && bandRows != nil {
		bandRows = agebandstore.NewRedisCache(bandRows, redisClient.Client, config.BandCacheTTL, log)
	}

	// Services. Each metrics set registers once and is shared with the
	// handler that also observes it.
	centerMetrics := centermetrics.New()
	directory := centerservice.New(centers,
		centerservice.WithLogger(log),
		centerservice.WithMetrics(centerMetrics),
		centerservice.WithAuditPublisher(auditor),
	)
	registry := peopleservice.New(users, children, directory,
		secrets.NewBcryptHasher(cfg.BcryptCost),
		peopleservice.WithLogger(log),
		peopleservice.WithAuditPublisher(auditor),
	)
	authorizer := access.New(directory, registry,
		access.WithLogger(log),
		access.WithMetrics(accessmetrics.New()),
		access.WithAuditPublisher(auditor),
	)
	catalog := ageband.NewCatalog(bandRows, ageband.WithLogger(log))
	contentSvc := contentservice.New(content, authorizer, directory, registry, catalog,
		contentservice.WithLogger(log),
		contentservice.WithMetrics(contentmetrics.New()),
		contentservice.WithAuditPublisher(auditor),
	)
	attendanceSvc := attendanceservice.New(attendance, authorizer, registry, directory,
		attendanceservice.WithLogger(log),
		attendanceservice.WithAuditPublisher(auditor),
	)

	tokens := jwttoken.NewJWTService(cfg.JWTSigningKey, "cdc-admin", "cdc-clients")

	// Handlers.
	peopleH := peoplehandler.New(registry, authorizer, tokens, log)
	router := httptransport.NewRouter(httptransport.Deps{
		Logger:    log,
		Metrics:   platformmetrics.New(),
		Validator: jwttoken.NewMiddlewareAdapter(tokens),
		Public: []httptransport.Registrar{
			httptransport.RegistrarFunc(peopleH.RegisterPublic),
		},
		Protected: []httptransport.Registrar{
			peopleH,
			centerhandler.New(directory, authorizer, log, centerMetrics),
			contenthandler.New(contentSvc, log),
			attendancehandler.New(attendanceSvc, log),
			agebandhandler.New(catalog, log),
		},
		DB:    db,
		Redis: redisClient,
	})

	srv := httpserver.New(cfg.Addr, router)

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		log.Info("starting cdc admin server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

	if err := g.Wait(); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}
