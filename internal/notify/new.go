package notify

import (
	"fmt"

	"github.com/IBM/sarama"

	"github.com/nguyentantai21042004/storycut/internal/config"
	"github.com/nguyentantai21042004/storycut/internal/logger"
)

type implKafka struct {
	producer sarama.SyncProducer
	topic    string
	folder   string
	logger   logger.Logger
}

// New connects a synchronous Kafka producer to cfg.Brokers. folder is the
// input folder reported in every event.
func New(cfg config.KafkaConfig, folder string, log logger.Logger) (Publisher, error) {
	producer, err := sarama.NewSyncProducer(cfg.Brokers, producerConfig())
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	return NewWithProducer(producer, cfg.Topic, folder, log), nil
}

// NewWithProducer wraps an existing producer.
func NewWithProducer(producer sarama.SyncProducer, topic, folder string, log logger.Logger) Publisher {
	return &implKafka{
		producer: producer,
		topic:    topic,
		folder:   folder,
		logger:   log,
	}
}

func producerConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V3_6_0_0
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3
	cfg.Producer.Return.Successes = true
	return cfg
}
