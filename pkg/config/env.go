package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort      = "PORT"
	EnvLogLevel  = "LOG_LEVEL"
	EnvLogFormat = "LOG_FORMAT"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvLockBackend       = "LOCK_BACKEND"
	EnvLockTTL           = "LOCK_TTL"
	EnvLockSweepSchedule = "LOCK_SWEEP_SCHEDULE"

	EnvEtcdEndpoints   = "ETCD_ENDPOINTS"
	EnvEtcdDialTimeout = "ETCD_DIAL_TIMEOUT"

	EnvDefaultCleaningBuffer = "DEFAULT_CLEANING_BUFFER"
	EnvHoldTokenKey          = "HOLD_TOKEN_KEY"
	EnvMaxStay               = "MAX_STAY"

	EnvKafkaEnabled           = "KAFKA_ENABLED"
	EnvReservationEventsTopic = "RESERVATION_EVENTS_TOPIC"

	EnvTracingEnabled = "TRACING_ENABLED"
)
