package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/DRSN-tech/product-intelligence/internal/cfg"
	v1Grpc "github.com/DRSN-tech/product-intelligence/internal/delivery/v1/grpc"
	v1Http "github.com/DRSN-tech/product-intelligence/internal/delivery/v1/http"
	"github.com/DRSN-tech/product-intelligence/internal/infrastructure/kafka"
	"github.com/DRSN-tech/product-intelligence/internal/infrastructure/metrics"
	ml_service "github.com/DRSN-tech/product-intelligence/internal/infrastructure/ml-service"
	fsRepo "github.com/DRSN-tech/product-intelligence/internal/repository/fs"
	s3Repo "github.com/DRSN-tech/product-intelligence/internal/repository/minio"
	"github.com/DRSN-tech/product-intelligence/internal/repository/pgdb"
	pgdbConv "github.com/DRSN-tech/product-intelligence/internal/repository/pgdb/converter"
	qdrantRepo "github.com/DRSN-tech/product-intelligence/internal/repository/qdrant"
	"github.com/DRSN-tech/product-intelligence/internal/repository/redis"
	redisConv "github.com/DRSN-tech/product-intelligence/internal/repository/redis/converter"
	"github.com/DRSN-tech/product-intelligence/internal/usecase"
	"github.com/DRSN-tech/product-intelligence/pkg/clients"
	"github.com/DRSN-tech/product-intelligence/pkg/closer"
	"github.com/DRSN-tech/product-intelligence/pkg/e"
	"github.com/DRSN-tech/product-intelligence/pkg/logger"
	"github.com/DRSN-tech/product-intelligence/pkg/postgres"
	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	kafkago "github.com/segmentio/kafka-go"
)

const (
	startupTimeout  = 10 * time.Second
	shutdownTimeout = 15 * time.Second
)

type App struct {
	cfg    *config.Config
	logger logger.Logger
	closer *closer.Closer

	engine  *usecase.EngineUseCase
	worker  *kafka.RebuildWorker
	httpSrv *v1Http.Server
	grpcSrv *v1Grpc.GRPCServer
}

// NewApp собирает зависимости. Необязательные подсистемы (Redis, Qdrant, Kafka) подключаются по конфигурации.
func NewApp(cfg *config.Config, log logger.Logger) (*App, error) {
	a := &App{
		cfg:    cfg,
		logger: log,
		closer: closer.NewCloser(0),
	}

	if err := a.init(); err != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if closeErr := a.closer.Close(ctx); closeErr != nil {
			log.Warnf("%v", closeErr)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return a, nil
}

func (a *App) init() error {
	cfg := a.cfg
	log := a.logger

	db, err := initPGDB(log, cfg)
	if err != nil {
		return err
	}
	a.closer.AddSimple("postgres", func() error {
		db.Close()
		return nil
	})

	productRepo := pgdb.NewProductRepo(db.Pool, pgdbConv.NewProductConverter())
	categoryRepo := pgdb.NewCategoryRepo(db.Pool, pgdbConv.NewCategoryConverter())
	orderRepo := pgdb.NewOrderRepo(db.Pool)
	snapshotter := pgdb.NewSnapshotter(db.Pool, log)

	artifactRepo, err := a.initArtifactRepo()
	if err != nil {
		return err
	}

	var cacheRepo usecase.CacheRepository
	if cfg.Redis.Enabled {
		redisClient := clients.NewRedisClient(cfg.Redis)
		a.closer.AddSimple("redis", redisClient.Close)

		ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
		defer cancel()
		if err := redisClient.Ping(ctx); err != nil {
			log.Warnf("redis is unavailable, result cache disabled: %v", err)
		} else {
			cacheRepo = redis.NewCacheRepo(redisClient, redisConv.NewRecommendationConverter(),
				cfg.Redis.ResultTTL, cfg.Redis.KeyNamespace, log)
		}
	}

	var embeddingRepo usecase.EmbeddingRepository
	if cfg.Qdrant.Enabled {
		qdrantClient, err := clients.NewQdrantClient(cfg.Qdrant)
		if err != nil {
			return err
		}
		a.closer.AddSimple("qdrant", qdrantClient.Close)
		embeddingRepo = qdrantRepo.NewEmbeddingRepo(qdrantClient.Client, cfg.Qdrant.QdrantCollectionName, log)
	}

	var embedder usecase.EmbeddingInfra
	switch cfg.Embedding.Provider {
	case config.EmbeddingProviderOpenAI:
		embedder = ml_service.NewOpenAIEmbedder(cfg.Embedding, log)
	default:
		embedder = ml_service.NewHashingEmbedder(cfg.Embedding.VectorSize)
	}

	m := metrics.New()

	indexUC := usecase.NewIndexUC(productRepo, snapshotter, artifactRepo, embeddingRepo, embedder, m, log,
		cfg.Embedding.BatchSize, cfg.Embedding.MaxConcurrent)
	classificationUC := usecase.NewClassificationUC(productRepo, categoryRepo, snapshotter, artifactRepo, m, log,
		cfg.Engine.DefaultCategoryID)
	recommendationUC := usecase.NewRecommendationUC(indexUC, productRepo, orderRepo, cacheRepo, m, log)

	var producer usecase.EventProducer
	var catalogReader *kafkago.Reader
	if cfg.Kafka.Enabled {
		for _, topic := range []string{cfg.Kafka.Topic, cfg.Kafka.CatalogTopic} {
			if err := kafka.EnsureTopic(cfg.Kafka, topic, startupTimeout); err != nil {
				log.Warnf("failed to ensure kafka topic %s: %v", topic, err)
			}
		}

		p := kafka.NewProducer(log, cfg.Kafka)
		a.closer.AddSimple("kafka producer", p.Close)
		producer = p
		catalogReader = kafka.NewCatalogReader(cfg.Kafka)
	}

	a.engine = usecase.NewEngineUC(indexUC, classificationUC, producer, log, cfg.Engine.RebuildTimeout)

	if catalogReader != nil || cfg.Engine.RebuildInterval > 0 {
		a.worker = kafka.NewRebuildWorker(a.engine, catalogReader, cfg.Engine, log)
	}

	r := chi.NewRouter()
	v1Http.NewRouter(r, log).Init(recommendationUC, classificationUC, a.engine,
		promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{}))
	a.httpSrv = v1Http.NewServer(r, cfg.Http)

	a.grpcSrv = v1Grpc.NewGRPCServer(cfg.Grpc, log)
	a.grpcSrv.RegisterServices(recommendationUC, classificationUC, a.engine)

	return nil
}

func (a *App) initArtifactRepo() (usecase.ArtifactRepository, error) {
	cfg := a.cfg

	switch cfg.Engine.ArtifactBackend {
	case config.ArtifactBackendMinio:
		minioClient, err := clients.NewMinIOClient(cfg.Minio)
		if err != nil {
			return nil, err
		}

		ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
		defer cancel()
		if err := clients.EnsureBucket(ctx, minioClient, cfg.Engine.ArtifactBucket); err != nil {
			return nil, err
		}

		return s3Repo.NewArtifactRepo(minioClient, cfg.Engine.ArtifactBucket, cfg.Engine.ArtifactRoot), nil
	default:
		return fsRepo.NewArtifactRepo(cfg.Engine.ArtifactRoot)
	}
}

// Run загружает или собирает движок, запускает серверы и воркер и ждёт сигнала остановки.
func (a *App) Run() error {
	log := a.logger

	initCtx, initCancel := context.WithTimeout(context.Background(), a.cfg.Engine.RebuildTimeout)
	err := a.engine.Init(initCtx)
	initCancel()
	if err != nil {
		log.Errorf(err, "failed to initialize engine")
		return a.shutdown(err)
	}

	st := a.engine.Status()
	log.Infof("engine ready: generation=%s products=%d classes=%d",
		st.Index.Generation, st.Index.Products, st.Classifier.Classes)

	if a.worker != nil {
		a.worker.Start(context.Background())
		a.closer.AddSimple("rebuild worker", a.worker.Stop)
	}

	errCh := make(chan error, 2)

	go func() {
		log.Infof("gRPC server starting on %s:%s", a.cfg.Grpc.NetworkMode, a.cfg.Grpc.Port)
		if err := a.grpcSrv.Start(); err != nil {
			errCh <- fmt.Errorf("gRPC server: %w", err)
		}
	}()
	a.closer.Add("grpc server", a.grpcSrv.Stop)

	go func() {
		log.Infof("HTTP server started on port %s", a.cfg.Http.Port)
		if err := a.httpSrv.Run(); err != nil {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()
	a.closer.Add("http server", a.httpSrv.Stop)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	var appErr error
	select {
	case appErr = <-errCh:
		log.Errorf(appErr, "server fatal error")
	case <-shutdown:
		log.Infof("Received shutdown signal, stopping gracefully...")
	}

	return a.shutdown(appErr)
}

func (a *App) shutdown(appErr error) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.closer.Close(ctx); err != nil {
		a.logger.Warnf("%v", err)
	}

	a.logger.Infof("Application shutdown complete")
	return appErr
}

func initPGDB(logger logger.Logger, cfg *config.Config) (*postgres.PgDatabase, error) {
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.Db)
	if err != nil {
		logger.Errorf(err, "failed to connect to database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.RunMigrations(logger); err != nil {
		db.Close()
		logger.Errorf(err, "failed to run migrations")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return db, nil
}
