package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/hpglow/storefront-backend/internal/modules/order"
)

const publishTimeout = 5 * time.Second

// MessageWriter is the subset of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewWriter builds a writer for the order-events topic.
func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
	}
}

// Publisher emits an OrderInserted message per placed order. Publishing runs
// off the request path; failures are logged and never reach the customer.
type Publisher struct {
	w   MessageWriter
	log *zap.Logger
	wg  sync.WaitGroup
}

func NewPublisher(w MessageWriter, log *zap.Logger) *Publisher {
	return &Publisher{w: w, log: log}
}

func (p *Publisher) OrderInserted(ctx context.Context, o *order.Order) {
	payload, err := json.Marshal(orderInserted(o))
	if err != nil {
		p.log.Error("encode order event", zap.Error(err))
		return
	}
	msg := kafka.Message{Key: []byte(o.ID.String()), Value: payload, Time: o.CreatedAt}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
		defer cancel()
		if err := p.w.WriteMessages(ctx, msg); err != nil {
			p.log.Warn("publish order event failed", zap.String("order_id", o.ID.String()), zap.Error(err))
		}
	}()
}

// Close waits for in-flight publishes and closes the writer.
func (p *Publisher) Close() error {
	p.wg.Wait()
	return p.w.Close()
}
