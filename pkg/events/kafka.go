package events

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/example/storefront/pkg/config"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Kafka produces events to one topic, keyed by entity id so updates to one
// order or product stay ordered within a partition.
type Kafka struct {
	client *kgo.Client
}

func NewKafka(cfg config.KafkaConfig) (*Kafka, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.Topic),
		kgo.ClientID("storefront"),
	)
	if err != nil {
		return nil, err
	}
	return &Kafka{client: client}, nil
}

func (k *Kafka) Publish(ctx context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}

	record := &kgo.Record{
		Key:   []byte(event.EntityType() + ":" + strconv.FormatInt(event.EntityID, 10)),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "type", Value: []byte(event.Type)},
		},
	}
	return k.client.ProduceSync(ctx, record).FirstErr()
}

func (k *Kafka) Close() error {
	k.client.Close()
	return nil
}
