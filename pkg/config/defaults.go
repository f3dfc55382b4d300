package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "rentals"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort      = "8080"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	LockBackendMemory = "memory"
	LockBackendMongo  = "mongo"
	LockBackendEtcd   = "etcd"

	DefaultLockBackend       = LockBackendMemory
	DefaultLockTTL           = 15 * time.Minute
	DefaultLockSweepSchedule = "@every 1m"

	DefaultEtcdEndpoints   = "localhost:2379"
	DefaultEtcdDialTimeout = 5 * time.Second

	DefaultCleaningBuffer = 24 * time.Hour
	DefaultMaxStay        = 366 * 24 * time.Hour

	// base64 of a 32 byte AES key; override in every deployed environment.
	DefaultHoldTokenKey = "cmVudGFscy1ob2xkLXRva2VuLWtleS0wMDAwMDAwMDA="

	DefaultKafkaEnabled           = false
	DefaultReservationEventsTopic = "reservation-events"

	DefaultTracingEnabled = false

	DefaultPaginationLimit = 100
)
