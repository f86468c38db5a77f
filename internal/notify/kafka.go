package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"

	"github.com/nguyentantai21042004/storycut/internal/models"
)

// Publish sends one event keyed by clip name, so events of a clip keep
// their order within a partition.
func (k *implKafka) Publish(ctx context.Context, runID string, result models.ClipResult) error {
	body, err := json.Marshal(ClipEvent{RunID: runID, Folder: k.folder, Result: result})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	partition, offset, err := k.producer.SendMessage(&sarama.ProducerMessage{
		Topic: k.topic,
		Key:   sarama.StringEncoder(result.Clip),
		Value: sarama.ByteEncoder(body),
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", result.Clip, err)
	}

	k.logger.Debug(ctx, "Published %s result to %s (partition=%d, offset=%d)", result.Clip, k.topic, partition, offset)
	return nil
}

func (k *implKafka) Close() error {
	return k.producer.Close()
}
