package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/DRSN-tech/product-intelligence/internal/cfg"
	"github.com/DRSN-tech/product-intelligence/internal/usecase"
	"github.com/DRSN-tech/product-intelligence/pkg/e"
	"github.com/DRSN-tech/product-intelligence/pkg/logger"
	"github.com/jimlawless/whereami"
	"github.com/segmentio/kafka-go"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	eventTypeHeader    = "event-type"
	EventEngineRebuilt = "engine.rebuilt"
)

// Producer публикует события движка в KAFKA_TOPIC.
type Producer struct {
	writer *kafka.Writer
	logger logger.Logger
	cfg    *cfg.KafkaCfg
}

func NewProducer(logger logger.Logger, cfg *cfg.KafkaCfg) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchSize:    1,
		WriteTimeout: 10 * time.Second,
	}

	return &Producer{
		writer: writer,
		logger: logger,
		cfg:    cfg,
	}
}

// PublishRebuilt отправляет событие engine.rebuilt с ключом = поколение индекса.
func (p *Producer) PublishRebuilt(ctx context.Context, event *usecase.RebuiltEvent) error {
	value, err := RebuiltPayload(event)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Generation),
		Value: value,
		Headers: []kafka.Header{
			{Key: eventTypeHeader, Value: []byte(EventEngineRebuilt)},
		},
	}); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	p.logger.Debugf("published %s for generation %s", EventEngineRebuilt, event.Generation)

	return nil
}

// RebuiltPayload кодирует событие как google.protobuf.Struct в бинарном protobuf.
func RebuiltPayload(event *usecase.RebuiltEvent) ([]byte, error) {
	payload, err := structpb.NewStruct(map[string]any{
		"event_id":   event.EventID,
		"type":       EventEngineRebuilt,
		"generation": event.Generation,
		"products":   event.Products,
		"classes":    event.Classes,
		"tags":       event.Tags,
		"built_at":   event.BuiltAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, err
	}

	return proto.Marshal(payload)
}

// EnsureTopic создаёт топик, если его ещё нет.
func EnsureTopic(cfg *cfg.KafkaCfg, topic string, timeout time.Duration) error {
	conn, err := kafka.Dial(cfg.NetworkMode, cfg.Brokers[0])
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	defer conn.Close()

	partitions, err := conn.ReadPartitions(topic)
	if err == nil && len(partitions) > 0 {
		return nil
	}

	done := make(chan error, 1)
	go func() {
		done <- conn.CreateTopics(kafka.TopicConfig{
			Topic:             topic,
			NumPartitions:     cfg.Partitions,
			ReplicationFactor: cfg.ReplicationFactor,
		})
	}()

	select {
	case err := <-done:
		if err != nil {
			return e.Wrap(whereami.WhereAmI(), fmt.Errorf("failed to create topic %s: %w", topic, err))
		}
		return nil
	case <-time.After(timeout):
		_ = conn.Close()
		return e.Wrap(whereami.WhereAmI(), fmt.Errorf("timeout: %v, topic: %s", timeout, topic))
	}
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
