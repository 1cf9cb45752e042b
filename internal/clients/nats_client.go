package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"boundless-travel/internal/config"
	"boundless-travel/internal/events"
	"boundless-travel/internal/metrics"

	"github.com/nats-io/nats.go"
)

// MintStreamName JetStream stream holding mint events
const MintStreamName = "TRAVEL_MINT_EVENTS"

// NATSClient NATS client publishing mint events
type NATSClient struct {
	conn   *nats.Conn
	js     nats.JetStreamContext
	prefix string
}

// NewNATSClient connects to NATS and makes sure the mint stream exists
func NewNATSClient(cfg config.NATSConfig) (*NATSClient, error) {
	connectTimeout := time.Duration(cfg.Timeout) * time.Second
	if connectTimeout <= 0 {
		connectTimeout = 10 * time.Second
	}
	log.Printf("🔌 Connecting to NATS %s (timeout %v)", cfg.URL, connectTimeout)

	conn, err := nats.Connect(cfg.URL,
		nats.Name("boundless-travel"),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(time.Duration(cfg.ReconnectWait)*time.Second),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Printf("⚠️ NATS disconnected: %v", err)
			metrics.NATSConnectionStatus.Set(0)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("✅ NATS reconnected to %s", nc.ConnectedUrl())
			metrics.NATSConnectionStatus.Set(1)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	metrics.NATSConnectionStatus.Set(1)

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	client := &NATSClient{conn: conn, js: js, prefix: cfg.SubjectPrefix}
	if err := client.ensureStream(); err != nil {
		// plain core NATS still works for publishing
		log.Printf("⚠️ JetStream stream unavailable, publishing on core NATS: %v", err)
		client.js = nil
	}
	return client, nil
}

func (c *NATSClient) ensureStream() error {
	if _, err := c.js.StreamInfo(MintStreamName); err == nil {
		return nil
	}

	_, err := c.js.AddStream(&nats.StreamConfig{
		Name:      MintStreamName,
		Subjects:  []string{events.MintSubjectWildcard(c.prefix)},
		Retention: nats.LimitsPolicy,
		MaxAge:    7 * 24 * time.Hour,
		Storage:   nats.FileStorage,
	})
	if err != nil {
		return fmt.Errorf("failed to create stream %s: %w", MintStreamName, err)
	}
	log.Printf("✅ Created JetStream stream %s", MintStreamName)
	return nil
}

// PublishMintEvent implements events.Publisher
func (c *NATSClient) PublishMintEvent(ctx context.Context, e events.MintEvent) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal mint event: %w", err)
	}

	subject := events.MintSubject(c.prefix, e)
	if c.js != nil {
		_, err = c.js.Publish(subject, data, nats.Context(ctx))
	} else {
		err = c.conn.Publish(subject, data)
	}
	if err != nil {
		metrics.NATSMessagesPublished.WithLabelValues(subject, "failure").Inc()
		return fmt.Errorf("failed to publish %s: %w", subject, err)
	}

	metrics.NATSMessagesPublished.WithLabelValues(subject, "success").Inc()
	log.Printf("📨 Published mint event %s (attempt %s)", subject, e.AttemptID)
	return nil
}

// SubscribeToMintEvents delivers every mint event under the configured prefix
func (c *NATSClient) SubscribeToMintEvents(handler func(events.MintEvent, string)) (*nats.Subscription, error) {
	subject := events.MintSubjectWildcard(c.prefix)
	sub, err := c.conn.Subscribe(subject, func(msg *nats.Msg) {
		var e events.MintEvent
		if err := json.Unmarshal(msg.Data, &e); err != nil {
			log.Printf("❌ Failed to decode mint event on %s: %v", msg.Subject, err)
			return
		}
		handler(e, msg.Subject)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", subject, err)
	}
	log.Printf("✅ Subscribed to %s", subject)
	return sub, nil
}

// Close drains the connection
func (c *NATSClient) Close() {
	if c.conn != nil {
		if err := c.conn.Drain(); err != nil {
			c.conn.Close()
		}
	}
}

// Healthy reports an error unless the connection is up
func (c *NATSClient) Healthy(context.Context) error {
	if c.conn == nil || !c.conn.IsConnected() {
		return fmt.Errorf("nats not connected")
	}
	return nil
}
