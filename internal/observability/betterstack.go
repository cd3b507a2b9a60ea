package observability

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/valyala/bytebufferpool"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/riskibarqy/tournament-api/internal/config"
	"github.com/riskibarqy/tournament-api/internal/platform/logging"
)

const (
	shipQueueSize       = 1024
	shipBatchSize       = 50
	shipFlushInterval   = time.Second
	defaultShipTimeout  = 3 * time.Second
	defaultDrainTimeout = 5 * time.Second
)

// InitBetterStackLogger tees baseLogger into a Better Stack shipping core when
// enabled. Shipped records carry the service name and environment. The
// returned flush drains queued records and syncs the logger.
func InitBetterStackLogger(cfg config.Config, baseLogger *logging.Logger) (*logging.Logger, func(context.Context) error, error) {
	if baseLogger == nil {
		baseLogger = logging.NewJSON(cfg.LogLevel)
	}

	if !cfg.BetterStackEnabled {
		baseLogger.Info("betterstack disabled", "reason", "BETTERSTACK_ENABLED=false")
		return baseLogger, func(context.Context) error { return nil }, nil
	}

	endpoint := ingestURL(cfg.BetterStackEndpoint)
	if endpoint == "" {
		return nil, nil, fmt.Errorf("betterstack endpoint cannot be empty")
	}

	shipper := newLogShipper(endpoint, strings.TrimSpace(cfg.BetterStackToken), cfg.BetterStackTimeout)
	shipCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(logging.EncoderConfig()),
		zapcore.AddSync(shipper),
		cfg.BetterStackMinLevel,
	).With([]zapcore.Field{
		zap.String("service", cfg.ServiceName),
		zap.String("environment", cfg.AppEnv),
	})

	logger := logging.FromZap(baseLogger.Zap().WithOptions(
		zap.WrapCore(func(core zapcore.Core) zapcore.Core {
			return zapcore.NewTee(core, shipCore)
		}),
	))
	logger.Info("betterstack enabled",
		"endpoint", endpoint,
		"min_level", cfg.BetterStackMinLevel.String(),
		"service_name", cfg.ServiceName,
		"environment", cfg.AppEnv,
	)

	return logger, func(ctx context.Context) error {
		if ctx == nil {
			ctx = context.Background()
		}
		if _, ok := ctx.Deadline(); !ok {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, defaultDrainTimeout)
			defer cancel()
		}
		if err := shipper.Close(ctx); err != nil {
			return fmt.Errorf("drain betterstack queue: %w", err)
		}
		if err := logger.Sync(); err != nil && !isIgnorableSyncError(err) {
			return err
		}
		return nil
	}, nil
}

// ingestURL accepts the bare host Better Stack shows for a source.
func ingestURL(raw string) string {
	value := strings.TrimSpace(raw)
	switch {
	case value == "":
		return ""
	case strings.HasPrefix(value, "http://"), strings.HasPrefix(value, "https://"):
		return value
	default:
		return "https://" + value
	}
}

type shipperStats struct {
	Shipped uint64
	Dropped uint64
	Failed  uint64
}

// logShipper batches encoded records and posts each batch to the Better Stack
// ingest endpoint as one JSON array. Write never blocks: records that find the
// queue full are dropped and counted.
type logShipper struct {
	endpoint string
	token    string
	client   *http.Client

	records   chan []byte
	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once

	shipped atomic.Uint64
	dropped atomic.Uint64
	failed  atomic.Uint64
}

func newLogShipper(endpoint, token string, timeout time.Duration) *logShipper {
	if timeout <= 0 {
		timeout = defaultShipTimeout
	}
	s := &logShipper{
		endpoint: endpoint,
		token:    token,
		client:   &http.Client{Timeout: timeout},
		records:  make(chan []byte, shipQueueSize),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *logShipper) Write(p []byte) (int, error) {
	record := bytes.TrimSpace(p)
	if len(record) == 0 {
		return len(p), nil
	}
	select {
	case <-s.stop:
		return len(p), nil
	default:
	}

	// zap reuses its buffer once Write returns.
	owned := append([]byte(nil), record...)
	select {
	case s.records <- owned:
	default:
		if n := s.dropped.Add(1); n == 1 || n%100 == 0 {
			fmt.Fprintf(os.Stderr, "betterstack queue full; dropped logs=%d\n", n)
		}
	}
	return len(p), nil
}

func (s *logShipper) Sync() error { return nil }

func (s *logShipper) run() {
	defer close(s.done)

	ticker := time.NewTicker(shipFlushInterval)
	defer ticker.Stop()

	batch := make([][]byte, 0, shipBatchSize)
	add := func(record []byte) {
		batch = append(batch, record)
		if len(batch) >= shipBatchSize {
			s.post(batch)
			batch = batch[:0]
		}
	}
	flush := func() {
		if len(batch) > 0 {
			s.post(batch)
			batch = batch[:0]
		}
	}

	for {
		select {
		case record := <-s.records:
			add(record)
		case <-ticker.C:
			flush()
		case <-s.stop:
			for {
				select {
				case record := <-s.records:
					add(record)
				default:
					flush()
					return
				}
			}
		}
	}
}

func (s *logShipper) post(batch [][]byte) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_ = buf.WriteByte('[')
	for i, record := range batch {
		if i > 0 {
			_ = buf.WriteByte(',')
		}
		_, _ = buf.Write(record)
	}
	_ = buf.WriteByte(']')

	req, err := http.NewRequest(http.MethodPost, s.endpoint, bytes.NewReader(buf.B))
	if err != nil {
		s.fail(len(batch), fmt.Sprintf("create request: %v", err))
		return
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.fail(len(batch), err.Error())
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusMultipleChoices {
		s.fail(len(batch), fmt.Sprintf("status=%d", resp.StatusCode))
		return
	}
	s.shipped.Add(uint64(len(batch)))
}

// fail reports on stderr since the logger cannot log its own sink errors.
func (s *logShipper) fail(records int, reason string) {
	s.failed.Add(uint64(records))
	fmt.Fprintf(os.Stderr, "betterstack ship %d logs failed: %s\n", records, reason)
}

// Close stops intake and waits until queued records are posted or ctx ends.
func (s *logShipper) Close(ctx context.Context) error {
	s.closeOnce.Do(func() { close(s.stop) })

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *logShipper) Stats() shipperStats {
	return shipperStats{
		Shipped: s.shipped.Load(),
		Dropped: s.dropped.Load(),
		Failed:  s.failed.Load(),
	}
}

func isIgnorableSyncError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "bad file descriptor") || strings.Contains(msg, "invalid argument")
}
