package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/segmentio/kafka-go"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	config "github.com/davicafu/metamood/internal/config"
	sharedEvents "github.com/davicafu/metamood/internal/shared/infra/events"
	sharedBus "github.com/davicafu/metamood/internal/shared/infra/platform/bus"
	"github.com/davicafu/metamood/internal/shared/infra/platform/metrics"
	sharedUtils "github.com/davicafu/metamood/internal/shared/infra/utils"
	trackApp "github.com/davicafu/metamood/internal/track/application"
	trackDomain "github.com/davicafu/metamood/internal/track/domain"
	trackEvents "github.com/davicafu/metamood/internal/track/infra/inbound/events"
	trackHttp "github.com/davicafu/metamood/internal/track/infra/inbound/http"
	trackAnalytics "github.com/davicafu/metamood/internal/track/infra/outbound/analytics/clickhouse"
	trackMemory "github.com/davicafu/metamood/internal/track/infra/outbound/db/memory"
	trackMongo "github.com/davicafu/metamood/internal/track/infra/outbound/db/mongodb"
	trackPostgres "github.com/davicafu/metamood/internal/track/infra/outbound/db/postgre"
	trackRedis "github.com/davicafu/metamood/internal/track/infra/outbound/db/redisstore"
	trackSQLite "github.com/davicafu/metamood/internal/track/infra/outbound/db/sqlite"
	trackPublisher "github.com/davicafu/metamood/internal/track/infra/outbound/events"
	trackFiles "github.com/davicafu/metamood/internal/track/infra/outbound/filesystem"
	"github.com/davicafu/metamood/pkg/logger"

	// _ "github.com/mattn/go-sqlite3" // requires gcc
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// trackStore agrupa lo que cada backend de almacenamiento ofrece.
type trackStore interface {
	trackDomain.TrackRepository
	trackDomain.TrackStatsRepository
}

const (
	pingAttempts = 5
	pingDelay    = 2 * time.Second
)

// ---------------- Main ----------------
func main() {
	cfg := config.LoadConfig()

	logger.Init(cfg.LogLevel) // inicializa zap
	log := logger.Logger()    // obtiene logger estructurado
	defer log.Sync()          // flush buffers al salir

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ---------------- Storage ----------------
	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to open track storage", zap.String("backend", cfg.StorageBackend), zap.Error(err))
	}
	defer closeStore()
	log.Info("✅ Track storage ready", zap.String("backend", cfg.StorageBackend))

	// --------------- Servicio --------------
	opts := []trackApp.Option{trackApp.WithQueryTimeout(cfg.QueryTimeout)}

	var queryMetrics *metrics.QueryMetrics
	if cfg.MetricsEnabled {
		queryMetrics = metrics.NewQueryMetrics(prometheus.NewRegistry())
		opts = append(opts, trackApp.WithMetrics(queryMetrics))
	}

	if cfg.ClickHouseAddr != "" {
		analytics, err := trackAnalytics.NewTrackAnalyticsRepo(cfg.ClickHouseAddr, cfg.ClickHouseDatabase)
		if err == nil {
			if err = analytics.InitSchema(); err != nil {
				analytics.Close()
			}
		}
		if err != nil {
			log.Warn("⚠️ ClickHouse no disponible, estadísticas desde el almacenamiento", zap.Error(err))
		} else {
			defer analytics.Close()
			opts = append(opts, trackApp.WithAnalytics(analytics))
			log.Info("✅ ClickHouse conectado, analítica habilitada")
		}
	}

	fields := trackDomain.NewTrackFieldRegistry()
	trackService := trackApp.NewTrackService(store, store, fields, log, opts...)
	trackConsumer := trackEvents.NewTrackConsumer(trackService, log)

	// ---------------- Events ---------------
	var eventTrackPublisher sharedBus.EventBus

	if cfg.UseKafka {
		log.Info("🚀 Usando Kafka como bus de eventos")

		trackWriter := &kafka.Writer{
			Addr:     kafka.TCP(cfg.KafkaBrokers...),
			Topic:    cfg.KafkaTopic,
			Balancer: &kafka.Hash{},
		}
		defer trackWriter.Close()
		eventTrackPublisher = sharedEvents.NewKafkaPublisher(trackWriter, log)

		trackKafkaReader := kafka.NewReader(kafka.ReaderConfig{
			Brokers:  cfg.KafkaBrokers,
			Topic:    cfg.KafkaTopic,
			GroupID:  "metamood-track-service",
			MinBytes: 10e3, // 10KB
			MaxBytes: 10e6, // 10MB
		})
		defer trackKafkaReader.Close()

		sharedEvents.NewConsumerAdapter(trackKafkaReader, trackConsumer, log).Start(ctx)
	} else {
		log.Info("⚡️Usando bus de eventos en memoria (canales de Go)")

		inMemoryTrackBus := sharedEvents.NewInMemoryEventBus(trackDomain.TrackTopic)
		eventTrackPublisher = inMemoryTrackBus

		log.Info("🎧 Iniciando listener en memoria para eventos de pista")
		trackEvents.BackgroundConsumerChan(ctx, inMemoryTrackBus.Subscribe(100), trackConsumer)
	}

	// ---------------- Seed ----------------
	if cfg.SeedFile != "" {
		go seedTracks(ctx, cfg.SeedFile, trackPublisher.NewTrackPublisher(eventTrackPublisher, log), log)
	}

	// ---------------- HTTP ----------------
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	trackHandler := trackHttp.NewTrackHandler(trackService, log)
	trackHttp.RegisterTrackRoutes(router, trackHandler)

	var metricsHandler http.Handler
	if queryMetrics != nil {
		metricsHandler = queryMetrics.Handler()
	}
	trackHttp.RegisterOpsRoutes(router, metricsHandler)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("🚀 Server running", zap.String("url", "http://localhost:"+cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}

// openStore construye el backend elegido, con esquema inicializado y ping con reintentos.
func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (trackStore, func(), error) {
	fields := trackDomain.NewTrackFieldRegistry()
	noop := func() {}

	switch cfg.StorageBackend {
	case config.BackendMemory:
		return trackMemory.NewTrackRepoInMemory(), noop, nil

	case config.BackendSQLite:
		db, err := sql.Open("sqlite", cfg.SQLitePath)
		if err != nil {
			return nil, noop, err
		}
		// SQLite serializa escrituras; una conexión evita SQLITE_BUSY.
		db.SetMaxOpenConns(1)
		if err := pingWithRetry(ctx, log, "sqlite", func() error { return db.PingContext(ctx) }); err != nil {
			db.Close()
			return nil, noop, err
		}
		if err := trackSQLite.InitSQLite(db); err != nil {
			db.Close()
			return nil, noop, err
		}
		return trackSQLite.NewTrackRepoSQLite(db, fields), func() { db.Close() }, nil

	case config.BackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, noop, errors.New("DATABASE_URL is required for the postgres backend")
		}
		db, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			return nil, noop, err
		}
		if err := pingWithRetry(ctx, log, "postgres", func() error { return db.PingContext(ctx) }); err != nil {
			db.Close()
			return nil, noop, err
		}
		if err := trackPostgres.InitPostgresTrackSchema(db); err != nil {
			db.Close()
			return nil, noop, err
		}
		return trackPostgres.NewTrackRepoPostgres(db, fields), func() { db.Close() }, nil

	case config.BackendMongoDB:
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, noop, err
		}
		closeClient := func() { _ = client.Disconnect(context.Background()) }

		var repo *trackMongo.TrackRepoMongoDB
		err = pingWithRetry(ctx, log, "mongodb", func() error {
			var err error
			repo, err = trackMongo.NewTrackRepoMongoDB(ctx, client, cfg.MongoDatabase, fields)
			return err
		})
		if err != nil {
			closeClient()
			return nil, noop, err
		}
		return repo, closeClient, nil

	case config.BackendRedis:
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := pingWithRetry(ctx, log, "redis", func() error { return rdb.Ping(ctx).Err() }); err != nil {
			rdb.Close()
			return nil, noop, err
		}
		return trackRedis.NewTrackRepoRedis(rdb), func() { rdb.Close() }, nil

	default:
		return nil, noop, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.StorageBackend)
	}
}

func pingWithRetry(ctx context.Context, log *zap.Logger, backend string, ping func() error) error {
	return sharedUtils.Retry(ctx, pingAttempts, pingDelay, func() error {
		err := ping()
		if err != nil {
			log.Warn("⚠️ Storage ping failed, retrying", zap.String("backend", backend), zap.Error(err))
		}
		return err
	})
}

// seedTracks carga el fichero semilla y lo publica como eventos track.upserted.
func seedTracks(ctx context.Context, path string, publisher *trackPublisher.TrackPublisher, log *zap.Logger) {
	tracks, err := trackFiles.NewJSONTrackStorage(path).GetAll(ctx)
	if err != nil {
		log.Error("failed to load seed file", zap.String("path", path), zap.Error(err))
		return
	}
	if err := publisher.PublishUpserted(ctx, tracks); err != nil {
		log.Error("failed to publish seed tracks", zap.Error(err))
		return
	}
	log.Info("🌱 Seed published", zap.String("path", path), zap.Int("tracks", len(tracks)))
}
