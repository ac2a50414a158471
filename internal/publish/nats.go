package publish

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"git.home.luguber.info/inful/docgraph/internal/graph"
	"git.home.luguber.info/inful/docgraph/internal/logfields"
	"git.home.luguber.info/inful/docgraph/internal/retry"
)

// Defaults applied by NewNATSPublisher.
const (
	DefaultSubject = "docgraph.graph.published"
	DefaultBucket  = "docgraph"
	DefaultKey     = "graph"
	DefaultTimeout = 5 * time.Second
)

// Config selects the NATS server, subject and KV location.
type Config struct {
	URL     string
	Subject string
	Bucket  string
	Key     string
	// Stream, when set, is created or updated to capture Subject.
	Stream  string
	// Timeout bounds one Publish call, retries included.
	Timeout time.Duration
	Retry   retry.Policy
}

func (c Config) withDefaults() Config {
	if c.Subject == "" {
		c.Subject = DefaultSubject
	}
	if c.Bucket == "" {
		c.Bucket = DefaultBucket
	}
	if c.Key == "" {
		c.Key = DefaultKey
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Retry.Initial <= 0 {
		c.Retry = retry.DefaultPolicy()
	}
	return c
}

// NATSPublisher stores graphs in a JetStream KV bucket and announces them on
// a subject.
type NATSPublisher struct {
	conn *nats.Conn
	js   jetstream.JetStream
	kv   jetstream.KeyValue
	cfg  Config
	now  func() time.Time
}

// NewNATSPublisher connects to cfg.URL and prepares the KV bucket.
func NewNATSPublisher(ctx context.Context, cfg Config) (*NATSPublisher, error) {
	if cfg.URL == "" {
		return nil, errors.New("publish: NATS url is required")
	}
	cfg = cfg.withDefaults()

	conn, err := nats.Connect(cfg.URL,
		nats.Name("docgraph"),
		nats.Timeout(cfg.Timeout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	p := &NATSPublisher{conn: conn, js: js, cfg: cfg, now: time.Now}

	initCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := p.initKVBucket(initCtx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize KV bucket: %w", err)
	}
	if cfg.Stream != "" {
		if _, err := js.CreateOrUpdateStream(initCtx, jetstream.StreamConfig{
			Name:     cfg.Stream,
			Subjects: []string{cfg.Subject},
		}); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to ensure stream %s: %w", cfg.Stream, err)
		}
	}

	slog.Info("NATS publisher initialized",
		slog.String("url", cfg.URL),
		logfields.Subject(cfg.Subject),
		logfields.Bucket(cfg.Bucket))
	return p, nil
}

func (p *NATSPublisher) initKVBucket(ctx context.Context) error {
	kv, err := p.js.KeyValue(ctx, p.cfg.Bucket)
	if err == nil {
		p.kv = kv
		return nil
	}
	if !errors.Is(err, jetstream.ErrBucketNotFound) {
		return err
	}

	kv, err = p.js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      p.cfg.Bucket,
		Description: "Generated documentation content graphs",
		History:     1,
	})
	if err != nil {
		return fmt.Errorf("failed to create KV bucket: %w", err)
	}
	p.kv = kv
	slog.Info("Created KV bucket for graphs", logfields.Bucket(p.cfg.Bucket))
	return nil
}

// Publish puts the serialized graph under the configured key, then publishes
// a GraphPublishedEvent carrying the new KV revision.
func (p *NATSPublisher) Publish(ctx context.Context, runID string, g *graph.Graph) (*GraphPublishedEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	var buf bytes.Buffer
	if err := graph.Encode(&buf, g, false); err != nil {
		return nil, fmt.Errorf("failed to encode graph: %w", err)
	}

	var rev uint64
	err := p.cfg.Retry.Do(ctx, "kv put", func(ctx context.Context) error {
		var putErr error
		rev, putErr = p.kv.Put(ctx, p.cfg.Key, buf.Bytes())
		return putErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to put graph: %w", err)
	}

	evt := NewGraphPublishedEvent(runID, p.cfg.Bucket, p.cfg.Key, rev, g, p.now())
	data, err := encodeEvent(evt)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	err = p.cfg.Retry.Do(ctx, "publish event", func(ctx context.Context) error {
		_, pubErr := p.js.Publish(ctx, p.cfg.Subject, data)
		return pubErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to publish event: %w", err)
	}

	slog.Debug("Published graph event", logfields.RunID(runID), logfields.Subject(p.cfg.Subject))
	return &evt, nil
}

// Close closes the NATS connection.
func (p *NATSPublisher) Close() error {
	if p.conn != nil {
		p.conn.Close()
	}
	return nil
}
