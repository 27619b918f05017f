// Package events publishes executed buys to Kafka so downstream consumers
// can build activity feeds or aggregates. Publishing is best-effort and
// never fails the originating operation.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Trade is the JSON schema written to the topic.
type Trade struct {
	TradeID   string          `json:"trade_id"`
	Handle    string          `json:"handle"`
	Portfolio string          `json:"portfolio"`
	Symbol    string          `json:"symbol"`
	Quantity  decimal.Decimal `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Spent     decimal.Decimal `json:"spent"`
	TS        time.Time       `json:"ts"`
}

type Publisher struct {
	Writer *kafka.Writer
	Logger *zap.Logger
}

func NewPublisher(brokers []string, topic string, logger *zap.Logger) *Publisher {
	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}
	w := kafka.NewWriter(kafka.WriterConfig{
		Brokers:      brokers,
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		Dialer:       dialer,
		BatchTimeout: 200 * time.Millisecond,
		RequiredAcks: int(kafka.RequireOne),
	})
	return &Publisher{Writer: w, Logger: logger}
}

// PublishBuy writes one trade event keyed by handle. Errors are logged and
// swallowed; the buy has already committed.
func (p *Publisher) PublishBuy(ctx context.Context, t Trade) error {
	b, err := json.Marshal(t)
	if err != nil {
		p.Logger.Error("encode trade event", zap.Error(err))
		return err
	}
	err = p.Writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(t.Handle),
		Value: b,
	})
	if err != nil {
		p.Logger.Error("publish trade event", zap.String("trade_id", t.TradeID), zap.Error(err))
		return err
	}
	p.Logger.Debug("trade event published", zap.String("trade_id", t.TradeID))
	return nil
}

func (p *Publisher) Close() error { return p.Writer.Close() }
