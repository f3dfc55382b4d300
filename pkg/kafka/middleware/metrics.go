package kafka_middleware

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"rentals/pkg/kafka"
)

var (
	messagesPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kafka_messages_published_total",
		Help: "Messages published to Kafka by topic and result.",
	}, []string{"topic", "result"})

	publishDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "kafka_publish_duration_seconds",
		Help:    "Time spent publishing a message to Kafka.",
		Buckets: prometheus.DefBuckets,
	}, []string{"topic"})
)

// MetricsProducerMiddleware records publish counts and latency.
func MetricsProducerMiddleware() kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()
		err := next(ctx, msg)
		publishDuration.WithLabelValues(msg.Topic).Observe(time.Since(start).Seconds())

		result := "ok"
		if err != nil {
			result = "error"
		}
		messagesPublished.WithLabelValues(msg.Topic, result).Inc()
		return err
	}
}
