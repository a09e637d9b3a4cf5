package kafka

import (
	"context"
	"fmt"
	"sync"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

// Message represents a Kafka message.
type Message struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

func (m Message) toKafka() kafkago.Message {
	km := kafkago.Message{Key: m.Key, Value: m.Value}
	for k, v := range m.Headers {
		km.Headers = append(km.Headers, kafkago.Header{Key: k, Value: []byte(v)})
	}
	return km
}

func fromKafka(km kafkago.Message) Message {
	msg := Message{
		Key:     km.Key,
		Value:   km.Value,
		Headers: make(map[string]string, len(km.Headers)),
	}
	for _, h := range km.Headers {
		msg.Headers[h.Key] = string(h.Value)
	}
	return msg
}

// Producer publishes messages, keeping one writer per topic.
type Producer struct {
	mu         sync.Mutex
	writers    map[string]*kafkago.Writer
	brokers    []string
	transport  *kafkago.Transport
	autoCreate bool
}

// NewProducer creates a Producer. It fails only on an invalid SASL setup;
// brokers are not contacted until the first publish.
func NewProducer(cfg Config) (*Producer, error) {
	mechanism, err := cfg.saslMechanism()
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return &Producer{
		writers:    make(map[string]*kafkago.Writer),
		brokers:    cfg.Brokers,
		autoCreate: cfg.AutoCreateTopics,
		transport: &kafkago.Transport{
			ClientID: cfg.ClientID,
			TLS:      cfg.tlsConfig(),
			SASL:     mechanism,
		},
	}, nil
}

// Publish sends messages to the specified topic and waits for all in-sync
// replicas to acknowledge them.
func (p *Producer) Publish(ctx context.Context, topic string, messages ...Message) error {
	if len(messages) == 0 {
		return nil
	}

	kafkaMessages := make([]kafkago.Message, 0, len(messages))
	for _, msg := range messages {
		kafkaMessages = append(kafkaMessages, msg.toKafka())
	}

	if err := p.writer(topic).WriteMessages(ctx, kafkaMessages...); err != nil {
		return fmt.Errorf("kafka publish to %s: %w", topic, err)
	}
	return nil
}

// Close closes all writers.
func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	for topic, w := range p.writers {
		if err := w.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing writer for topic %s: %w", topic, err)
		}
	}
	p.writers = make(map[string]*kafkago.Writer)
	return firstErr
}

func (p *Producer) writer(topic string) *kafkago.Writer {
	p.mu.Lock()
	defer p.mu.Unlock()

	if w, ok := p.writers[topic]; ok {
		return w
	}

	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(p.brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafkago.RequireAll,
		Transport:              p.transport,
		AllowAutoTopicCreation: p.autoCreate,
	}
	p.writers[topic] = w
	return w
}
