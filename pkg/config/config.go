package config

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"

	"rentals/pkg/client"
	"rentals/pkg/logger"
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port string

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	LockBackend       string
	LockTTL           time.Duration
	LockSweepSchedule string

	EtcdEndpoints   []string
	EtcdDialTimeout time.Duration

	DefaultCleaningBuffer time.Duration
	HoldTokenKey          []byte
	MaxStay               time.Duration

	KafkaEnabled           bool
	ReservationEventsTopic string

	TracingEnabled bool

	LogLevel  string
	LogFormat string

	Log    *logger.Logger
	Client *client.Client
}

// Load reads the environment, validates it and exits on invalid settings.
func Load(serviceName string) *Config {
	cfg := Read(NewViper())
	cfg.Log = logger.New(logger.Config{
		Level:     cfg.LogLevel,
		Format:    cfg.LogFormat,
		AddSource: true,
		Service:   serviceName,
	})
	cfg.Client = client.NewClient()

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

// NewViper returns a viper instance bound to the environment with every
// default registered.
func NewViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault(EnvMongoURI, DefaultMongoURI)
	v.SetDefault(EnvMongoDatabaseName, DefaultMongoDatabaseName)
	v.SetDefault(EnvMongoConnTimeout, DefaultMongoConnTimeout)

	v.SetDefault(EnvPort, DefaultPort)
	v.SetDefault(EnvLogLevel, DefaultLogLevel)
	v.SetDefault(EnvLogFormat, DefaultLogFormat)

	v.SetDefault(EnvRequestTimeout, DefaultRequestTimeout)
	v.SetDefault(EnvIdempotencyTTL, DefaultIdempotencyTTL)
	v.SetDefault(EnvMaxRequestSize, DefaultMaxRequestSize)

	v.SetDefault(EnvReadTimeout, DefaultReadTimeout)
	v.SetDefault(EnvWriteTimeout, DefaultWriteTimeout)
	v.SetDefault(EnvIdleTimeout, DefaultIdleTimeout)
	v.SetDefault(EnvShutdownTimeout, DefaultShutdownTimeout)

	v.SetDefault(EnvLockBackend, DefaultLockBackend)
	v.SetDefault(EnvLockTTL, DefaultLockTTL)
	v.SetDefault(EnvLockSweepSchedule, DefaultLockSweepSchedule)

	v.SetDefault(EnvEtcdEndpoints, DefaultEtcdEndpoints)
	v.SetDefault(EnvEtcdDialTimeout, DefaultEtcdDialTimeout)

	v.SetDefault(EnvDefaultCleaningBuffer, DefaultCleaningBuffer)
	v.SetDefault(EnvHoldTokenKey, DefaultHoldTokenKey)
	v.SetDefault(EnvMaxStay, DefaultMaxStay)

	v.SetDefault(EnvKafkaEnabled, DefaultKafkaEnabled)
	v.SetDefault(EnvReservationEventsTopic, DefaultReservationEventsTopic)

	v.SetDefault(EnvTracingEnabled, DefaultTracingEnabled)
	return v
}

// Read builds a Config from v without validating it. An undecodable
// HOLD_TOKEN_KEY leaves HoldTokenKey empty, which Validate reports.
func Read(v *viper.Viper) *Config {
	key, _ := base64.StdEncoding.DecodeString(v.GetString(EnvHoldTokenKey))

	return &Config{
		MongoURI:          v.GetString(EnvMongoURI),
		MongoDatabaseName: v.GetString(EnvMongoDatabaseName),
		MongoConnTimeout:  v.GetDuration(EnvMongoConnTimeout),

		Port: v.GetString(EnvPort),

		RequestTimeout: v.GetDuration(EnvRequestTimeout),
		IdempotencyTTL: v.GetDuration(EnvIdempotencyTTL),
		MaxRequestSize: v.GetInt(EnvMaxRequestSize),

		ReadTimeout:     v.GetDuration(EnvReadTimeout),
		WriteTimeout:    v.GetDuration(EnvWriteTimeout),
		IdleTimeout:     v.GetDuration(EnvIdleTimeout),
		ShutdownTimeout: v.GetDuration(EnvShutdownTimeout),

		LockBackend:       strings.ToLower(v.GetString(EnvLockBackend)),
		LockTTL:           v.GetDuration(EnvLockTTL),
		LockSweepSchedule: v.GetString(EnvLockSweepSchedule),

		EtcdEndpoints:   splitList(v.GetString(EnvEtcdEndpoints)),
		EtcdDialTimeout: v.GetDuration(EnvEtcdDialTimeout),

		DefaultCleaningBuffer: v.GetDuration(EnvDefaultCleaningBuffer),
		HoldTokenKey:          key,
		MaxStay:               v.GetDuration(EnvMaxStay),

		KafkaEnabled:           v.GetBool(EnvKafkaEnabled),
		ReservationEventsTopic: v.GetString(EnvReservationEventsTopic),

		TracingEnabled: v.GetBool(EnvTracingEnabled),

		LogLevel:  v.GetString(EnvLogLevel),
		LogFormat: v.GetString(EnvLogFormat),
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) SetEtcd() {
	cfg.Client.SetEtcd(cfg.Log, cfg.EtcdEndpoints, cfg.EtcdDialTimeout)
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errors = append(errors, "MongoURI cannot be empty")
	} else if !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
	}
	if cfg.MongoDatabaseName == "" {
		errors = append(errors, "MongoDatabaseName cannot be empty")
	}
	if cfg.MongoConnTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
	}

	for name, d := range map[string]time.Duration{
		"RequestTimeout":  cfg.RequestTimeout,
		"IdempotencyTTL":  cfg.IdempotencyTTL,
		"ReadTimeout":     cfg.ReadTimeout,
		"WriteTimeout":    cfg.WriteTimeout,
		"IdleTimeout":     cfg.IdleTimeout,
		"ShutdownTimeout": cfg.ShutdownTimeout,
		"LockTTL":         cfg.LockTTL,
		"MaxStay":         cfg.MaxStay,
	} {
		if d <= 0 {
			errors = append(errors, fmt.Sprintf("%s must be positive, got: %s", name, d))
		}
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}

	switch cfg.LockBackend {
	case LockBackendMemory, LockBackendMongo:
	case LockBackendEtcd:
		if len(cfg.EtcdEndpoints) == 0 {
			errors = append(errors, "EtcdEndpoints cannot be empty when LockBackend is etcd")
		}
		if cfg.EtcdDialTimeout <= 0 {
			errors = append(errors, fmt.Sprintf("EtcdDialTimeout must be positive, got: %s", cfg.EtcdDialTimeout))
		}
	default:
		errors = append(errors, fmt.Sprintf("LockBackend must be one of [memory, mongo, etcd], got: %s", cfg.LockBackend))
	}

	switch strings.ToLower(cfg.LogFormat) {
	case logger.JSON, logger.TEXT:
	default:
		errors = append(errors, fmt.Sprintf("LogFormat must be one of [json, text], got: %s", cfg.LogFormat))
	}

	if _, err := cron.ParseStandard(cfg.LockSweepSchedule); err != nil {
		errors = append(errors, fmt.Sprintf("LockSweepSchedule is not a valid schedule: %s", cfg.LockSweepSchedule))
	}

	if cfg.DefaultCleaningBuffer < 0 {
		errors = append(errors, fmt.Sprintf("DefaultCleaningBuffer cannot be negative, got: %s", cfg.DefaultCleaningBuffer))
	}
	if len(cfg.HoldTokenKey) != 32 {
		errors = append(errors, "HoldTokenKey must be a base64 encoded 32 byte key")
	}

	if cfg.KafkaEnabled && cfg.ReservationEventsTopic == "" {
		errors = append(errors, "ReservationEventsTopic cannot be empty when Kafka is enabled")
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"port", cfg.Port,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"lock_backend", cfg.LockBackend,
		"lock_ttl", cfg.LockTTL,
		"lock_sweep_schedule", cfg.LockSweepSchedule,
		"etcd_endpoints", cfg.EtcdEndpoints,
		"default_cleaning_buffer", cfg.DefaultCleaningBuffer,
		"hold_token_key_set", len(cfg.HoldTokenKey) > 0,
		"max_stay", cfg.MaxStay,
		"kafka_enabled", cfg.KafkaEnabled,
		"reservation_events_topic", cfg.ReservationEventsTopic,
		"tracing_enabled", cfg.TracingEnabled,
	)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown(cfg.Log, cfg.ShutdownTimeout)
}

func NormalizePaginationLimit(limit int) int {
	if limit <= 0 {
		limit = 10
	} else if limit > DefaultPaginationLimit {
		limit = DefaultPaginationLimit
	}
	return limit
}

func NormalizeOffset(offset int64) int64 {
	return max(0, offset)
}
