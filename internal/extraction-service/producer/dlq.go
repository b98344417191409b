package producer

import (
	"context"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/smartstake/smartstake-core/internal/shared/kafka"
)

// KafkaDLQ publica requisições de extração com retries esgotados
type KafkaDLQ struct {
	Writer *kafkago.Writer
}

func (d *KafkaDLQ) Publish(ctx context.Context, key string, payload []byte) error {
	return kafka.WriteJSON(ctx, d.Writer, key, payload)
}
