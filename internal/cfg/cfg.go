package cfg

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/DRSN-tech/product-intelligence/pkg/e"
	"github.com/DRSN-tech/product-intelligence/pkg/logger"
	"github.com/jimlawless/whereami"
	"github.com/joho/godotenv"
)

const (
	EmbeddingProviderHashing = "hashing"
	EmbeddingProviderOpenAI  = "openai"

	ArtifactBackendFS    = "fs"
	ArtifactBackendMinio = "minio"
)

type Config struct {
	Http      *HTTPConfig
	Grpc      *GRPCConfig
	Db        *PGDBCfg
	Redis     *RedisCfg
	Qdrant    *QdrantCfg
	Minio     *MinIOCfg
	Kafka     *KafkaCfg
	Embedding *EmbeddingCfg
	Engine    *EngineCfg
}

type HTTPConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type GRPCConfig struct {
	Port        string
	NetworkMode string
}

type PGDBCfg struct {
	Host          string
	Port          string
	User          string
	Password      string
	DBName        string
	SSLMode       string
	RunMigrations bool // применять миграции из db/migrations при старте (только для разработки)
}

type RedisCfg struct {
	Enabled      bool
	Addr         string
	Password     string
	User         string
	DB           int
	MaxRetries   int
	DialTimeout  time.Duration
	Timeout      time.Duration
	ResultTTL    time.Duration // время жизни закэшированных списков рекомендаций
	KeyNamespace string
}

type QdrantCfg struct {
	Enabled              bool // зеркалирование векторов включено, если задан QDRANT_HOST
	Port                 int
	Host                 string
	ApiKey               string
	QdrantCollectionName string
	UseTLS               bool
}

type MinIOCfg struct {
	MinioEndpoint     string
	MinioRootUser     string
	MinioRootPassword string
	MinioUseSSL       bool
}

type KafkaCfg struct {
	Enabled           bool // без KAFKA_BROKERS воркер пересборки и продюсер событий не запускаются
	Brokers           []string
	Topic             string // топик событий движка
	CatalogTopic      string // топик изменений каталога
	GroupID           string
	NetworkMode       string
	Partitions        int
	ReplicationFactor int
}

type EmbeddingCfg struct {
	Provider      string
	VectorSize    int
	Model         string
	APIKey        string
	BaseURL       string
	BatchSize     int
	MaxConcurrent int
	MaxRetries    int
}

type EngineCfg struct {
	ArtifactBackend   string
	ArtifactRoot      string // каталог для fs или префикс ключей для minio
	ArtifactBucket    string
	DefaultCategoryID int64
	RebuildInterval   time.Duration // 0 — периодическая пересборка выключена
	RebuildDebounce   time.Duration
	RebuildTimeout    time.Duration
	RebuildMaxRetries int
}

// Load безопасно загружает конфигурацию и возвращает ошибку в случае неудачи.
// Переменные из файла .env, если он есть, не перекрывают уже заданные в окружении.
func Load(log logger.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warnf("failed to read .env file: %v", err)
	}

	db, err := loadPGDBCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	http, err := loadHTTPConfig(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	redis, err := loadRedisCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	qdrant, err := loadQdrantCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	minio, err := loadMinIOCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	kafka, err := loadKafkaCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	embedding, err := loadEmbeddingCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	engine, err := loadEngineCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &Config{
		Http:      http,
		Grpc:      loadGRPCConfig(),
		Db:        db,
		Redis:     redis,
		Qdrant:    qdrant,
		Minio:     minio,
		Kafka:     kafka,
		Embedding: embedding,
		Engine:    engine,
	}, nil
}

func loadHTTPConfig(log logger.Logger) (*HTTPConfig, error) {
	const (
		defaultPort         = "8080"
		defaultReadTimeout  = 5 * time.Second
		defaultWriteTimeout = 30 * time.Second
		defaultIdleTimeout  = 60 * time.Second
	)

	readTimeout, err := parseDurationEnv("HTTP_READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("HTTP_WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_WRITE_TIMEOUT")
		return nil, err
	}

	idleTimeout, err := parseDurationEnv("KEEP_ALIVE", defaultIdleTimeout)
	if err != nil {
		log.Errorf(err, "invalid KEEP_ALIVE")
		return nil, err
	}

	return &HTTPConfig{
		Port:         getEnvOrDefault("HTTP_PORT", defaultPort),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}, nil
}

func loadGRPCConfig() *GRPCConfig {
	const (
		defaultPort        = "8091"
		defaultNetworkMode = "tcp"
	)

	return &GRPCConfig{
		Port:        getEnvOrDefault("GRPC_PORT", defaultPort),
		NetworkMode: getEnvOrDefault("GRPC_NETWORK_MODE", defaultNetworkMode),
	}
}

func loadPGDBCfg(log logger.Logger) (*PGDBCfg, error) {
	const (
		defaultHost    = "localhost"
		defaultPort    = "5432"
		defaultSSLMode = "disable"
	)

	user := getEnv("POSTGRES_USER")
	if user == "" {
		err := fmt.Errorf("POSTGRES_USER is required")
		log.Errorf(err, "missing POSTGRES_USER")
		return nil, err
	}

	password := getEnv("POSTGRES_PASSWORD")
	if password == "" {
		err := fmt.Errorf("POSTGRES_PASSWORD is required")
		log.Errorf(err, "missing POSTGRES_PASSWORD")
		return nil, err
	}

	dbName := getEnv("POSTGRES_DB")
	if dbName == "" {
		err := fmt.Errorf("POSTGRES_DB is required")
		log.Errorf(err, "missing POSTGRES_DB")
		return nil, err
	}

	runMigrations, err := parseBoolEnv("RUN_MIGRATIONS", false)
	if err != nil {
		log.Errorf(err, "invalid RUN_MIGRATIONS")
		return nil, err
	}

	return &PGDBCfg{
		Host:          getEnvOrDefault("POSTGRES_HOST", defaultHost),
		Port:          getEnvOrDefault("POSTGRES_PORT", defaultPort),
		User:          user,
		Password:      password,
		DBName:        dbName,
		SSLMode:       getEnvOrDefault("SSL_MODE", defaultSSLMode),
		RunMigrations: runMigrations,
	}, nil
}

func loadRedisCfg(log logger.Logger) (*RedisCfg, error) {
	const (
		defaultAddr         = "localhost:6379"
		defaultDB           = 0
		defaultMaxRetries   = 3
		defaultDialTimeout  = 5 * time.Second
		defaultReadTimeout  = 3 * time.Second
		defaultWriteTimeout = 3 * time.Second
		defaultResultTTL    = 5 * time.Minute
		defaultNamespace    = "pie"
	)

	enabled, err := parseBoolEnv("REDIS_ENABLED", true)
	if err != nil {
		log.Errorf(err, "invalid REDIS_ENABLED")
		return nil, err
	}

	db, err := parseIntEnv("REDIS_DB_ID", defaultDB)
	if err != nil {
		log.Errorf(err, "invalid REDIS_DB_ID")
		return nil, err
	}

	maxRetries, err := parseIntEnv("MAX_RETRIES", defaultMaxRetries)
	if err != nil {
		log.Errorf(err, "invalid MAX_RETRIES")
		return nil, err
	}

	dialTimeout, err := parseDurationEnv("DIAL_TIMEOUT", defaultDialTimeout)
	if err != nil {
		log.Errorf(err, "invalid DIAL_TIMEOUT")
		return nil, err
	}

	readTimeout, err := parseDurationEnv("READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid WRITE_TIMEOUT")
		return nil, err
	}

	resultTTL, err := parseDurationEnv("RESULT_CACHE_TTL", defaultResultTTL)
	if err != nil {
		log.Errorf(err, "invalid RESULT_CACHE_TTL")
		return nil, err
	}

	return &RedisCfg{
		Enabled:      enabled,
		Addr:         getEnvOrDefault("REDIS_ADDR", defaultAddr),
		Password:     getEnv("REDIS_PASSWORD"),
		User:         getEnv("REDIS_USER"),
		DB:           db,
		MaxRetries:   maxRetries,
		DialTimeout:  dialTimeout,
		Timeout:      max(readTimeout, writeTimeout),
		ResultTTL:    resultTTL,
		KeyNamespace: getEnvOrDefault("REDIS_NAMESPACE", defaultNamespace),
	}, nil
}

func loadQdrantCfg(log logger.Logger) (*QdrantCfg, error) {
	const (
		defaultQdrantGRPCPort = 6334
		defaultUseTLS         = false
		defaultCollection     = "product_embeddings"
	)

	port, err := parseIntEnv("QDRANT_GRPC_PORT", defaultQdrantGRPCPort)
	if err != nil {
		log.Errorf(err, "invalid QDRANT_GRPC_PORT")
		return nil, err
	}

	useTLS, err := parseBoolEnv("QDRANT_USE_TLS", defaultUseTLS)
	if err != nil {
		log.Errorf(err, "invalid QDRANT_USE_TLS")
		return nil, err
	}

	host := getEnv("QDRANT_HOST")

	return &QdrantCfg{
		Enabled:              host != "",
		Host:                 host,
		Port:                 port,
		ApiKey:               getEnv("QDRANT__SERVICE__API_KEY"),
		QdrantCollectionName: getEnvOrDefault("COLLECTION_NAME", defaultCollection),
		UseTLS:               useTLS,
	}, nil
}

func loadMinIOCfg(log logger.Logger) (*MinIOCfg, error) {
	const (
		defaultUseSSL   = false
		defaultEndpoint = "minio:9000"
	)

	useSSL, err := parseBoolEnv("MINIO_USE_SSL", defaultUseSSL)
	if err != nil {
		log.Errorf(err, "invalid MINIO_USE_SSL")
		return nil, err
	}

	return &MinIOCfg{
		MinioEndpoint:     getEnvOrDefault("MINIO_ENDPOINT", defaultEndpoint),
		MinioRootUser:     getEnv("MINIO_ROOT_USER"),
		MinioRootPassword: getEnv("MINIO_ROOT_PASSWORD"),
		MinioUseSSL:       useSSL,
	}, nil
}

func loadKafkaCfg() (*KafkaCfg, error) {
	const (
		defaultPartitions        = 3
		defaultReplicationFactor = 1
		defaultNetworkMode       = "tcp"
		defaultTopic             = "engine-events"
		defaultCatalogTopic      = "catalog-changes"
		defaultGroupID           = "product-intelligence"
	)

	var brokers []string
	if brokerStr := getEnv("KAFKA_BROKERS"); brokerStr != "" {
		for _, b := range strings.Split(brokerStr, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}

	partitions, err := parseIntEnv("KAFKA_PARTITIONS", defaultPartitions)
	if err != nil {
		return nil, e.Wrap("KAFKA_PARTITIONS", err)
	}

	replicationFactor, err := parseIntEnv("REPLICATION_FACTOR", defaultReplicationFactor)
	if err != nil {
		return nil, e.Wrap("REPLICATION_FACTOR", err)
	}

	return &KafkaCfg{
		Enabled:           len(brokers) > 0,
		Brokers:           brokers,
		Topic:             getEnvOrDefault("KAFKA_TOPIC", defaultTopic),
		CatalogTopic:      getEnvOrDefault("CATALOG_TOPIC", defaultCatalogTopic),
		GroupID:           getEnvOrDefault("KAFKA_GROUP_ID", defaultGroupID),
		NetworkMode:       getEnvOrDefault("KAFKA_NETWORK_MODE", defaultNetworkMode),
		Partitions:        partitions,
		ReplicationFactor: replicationFactor,
	}, nil
}

func loadEmbeddingCfg(log logger.Logger) (*EmbeddingCfg, error) {
	const (
		defaultVectorSize    = 384
		defaultModel         = "text-embedding-3-small"
		defaultBatchSize     = 64
		defaultMaxConcurrent = 4
		defaultMaxRetries    = 3
	)

	provider := strings.ToLower(getEnvOrDefault("EMBEDDING_PROVIDER", EmbeddingProviderHashing))
	if provider != EmbeddingProviderHashing && provider != EmbeddingProviderOpenAI {
		err := fmt.Errorf("%w: %q", e.ErrUnknownEmbedder, provider)
		log.Errorf(err, "invalid EMBEDDING_PROVIDER")
		return nil, err
	}

	vectorSize, err := parseIntEnv("VECTOR_SIZE", defaultVectorSize)
	if err != nil || vectorSize <= 0 {
		err = fmt.Errorf("%w: VECTOR_SIZE", e.ErrIncorrectEnvVariable)
		log.Errorf(err, "invalid VECTOR_SIZE")
		return nil, err
	}

	batchSize, err := parseIntEnv("EMBEDDING_BATCH_SIZE", defaultBatchSize)
	if err != nil {
		log.Errorf(err, "invalid EMBEDDING_BATCH_SIZE")
		return nil, err
	}

	maxConcurrent, err := parseIntEnv("EMBEDDING_MAX_CONCURRENT", defaultMaxConcurrent)
	if err != nil {
		log.Errorf(err, "invalid EMBEDDING_MAX_CONCURRENT")
		return nil, err
	}

	maxRetries, err := parseIntEnv("EMBEDDING_MAX_RETRIES", defaultMaxRetries)
	if err != nil {
		log.Errorf(err, "invalid EMBEDDING_MAX_RETRIES")
		return nil, err
	}

	apiKey := getEnv("OPENAI_API_KEY")
	if provider == EmbeddingProviderOpenAI && apiKey == "" {
		log.Errorf(e.ErrMissingAPIKey, "missing OPENAI_API_KEY")
		return nil, e.ErrMissingAPIKey
	}

	return &EmbeddingCfg{
		Provider:      provider,
		VectorSize:    vectorSize,
		Model:         getEnvOrDefault("OPENAI_EMBEDDING_MODEL", defaultModel),
		APIKey:        apiKey,
		BaseURL:       getEnv("OPENAI_BASE_URL"),
		BatchSize:     batchSize,
		MaxConcurrent: maxConcurrent,
		MaxRetries:    maxRetries,
	}, nil
}

func loadEngineCfg(log logger.Logger) (*EngineCfg, error) {
	const (
		defaultRoot              = "./artifacts"
		defaultBucket            = "pie-artifacts"
		defaultCategoryID        = 1
		defaultRebuildDebounce   = 5 * time.Second
		defaultRebuildTimeout    = 10 * time.Minute
		defaultRebuildMaxRetries = 5
	)

	backend := strings.ToLower(getEnvOrDefault("ARTIFACT_BACKEND", ArtifactBackendFS))
	if backend != ArtifactBackendFS && backend != ArtifactBackendMinio {
		err := fmt.Errorf("%w: ARTIFACT_BACKEND=%q", e.ErrIncorrectEnvVariable, backend)
		log.Errorf(err, "invalid ARTIFACT_BACKEND")
		return nil, err
	}

	categoryID, err := parseIntEnv("DEFAULT_CATEGORY_ID", defaultCategoryID)
	if err != nil {
		log.Errorf(err, "invalid DEFAULT_CATEGORY_ID")
		return nil, err
	}

	interval, err := parseDurationEnv("REBUILD_INTERVAL", 0)
	if err != nil {
		log.Errorf(err, "invalid REBUILD_INTERVAL")
		return nil, err
	}

	debounce, err := parseDurationEnv("REBUILD_DEBOUNCE", defaultRebuildDebounce)
	if err != nil {
		log.Errorf(err, "invalid REBUILD_DEBOUNCE")
		return nil, err
	}

	timeout, err := parseDurationEnv("REBUILD_TIMEOUT", defaultRebuildTimeout)
	if err != nil {
		log.Errorf(err, "invalid REBUILD_TIMEOUT")
		return nil, err
	}

	maxRetries, err := parseIntEnv("REBUILD_MAX_RETRIES", defaultRebuildMaxRetries)
	if err != nil {
		log.Errorf(err, "invalid REBUILD_MAX_RETRIES")
		return nil, err
	}

	return &EngineCfg{
		ArtifactBackend:   backend,
		ArtifactRoot:      getEnvOrDefault("ARTIFACT_ROOT", defaultRoot),
		ArtifactBucket:    getEnvOrDefault("ARTIFACT_BUCKET", defaultBucket),
		DefaultCategoryID: int64(categoryID),
		RebuildInterval:   interval,
		RebuildDebounce:   debounce,
		RebuildTimeout:    timeout,
		RebuildMaxRetries: maxRetries,
	}, nil
}

// getEnv возвращает значение переменной окружения.
// Возвращает пустую строку, если переменная не задана.
func getEnv(key string) string {
	return os.Getenv(key)
}

// getEnvOrDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

// parseDurationEnv считывает длительность или возвращает значение по умолчанию.
func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	if v := os.Getenv(key); v != "" {
		return time.ParseDuration(v)
	}

	return defaultValue, nil
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}

	intValue, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue, e.ErrIncorrectEnvVariable
	}

	return intValue, nil
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}

	boolValue, err := strconv.ParseBool(v)
	if err != nil {
		return defaultValue, e.ErrIncorrectEnvVariable
	}

	return boolValue, nil
}
