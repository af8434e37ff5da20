package loki

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// Minimal push client for Grafana Loki. Lines are buffered and shipped
// in batches so logging stays off the request path.

type Logger interface {
	Error(msg string, args ...any)
}

type Config struct {
	// Url of the loki push endpoint, e.g. https://loki.example.com/loki/api/v1/push
	Url string `validate:"required"`

	// BatchMaxSize is the maximum number of log lines sent in one request.
	BatchMaxSize int `validate:"gte=1"`

	// BatchMaxWait is the maximum time to wait before flushing a partial batch.
	BatchMaxWait time.Duration `validate:"gte=1"`

	// Labels added to every stream.
	Labels map[string]string

	// Username and Password enable basic auth when set.
	Username string
	Password string
}

func (cfg *Config) setDefaults() {
	if cfg.BatchMaxSize == 0 {
		cfg.BatchMaxSize = 500
	}
	if cfg.BatchMaxWait == 0 {
		cfg.BatchMaxWait = 5 * time.Second
	}
	if cfg.Labels == nil {
		cfg.Labels = map[string]string{}
	}
}

type LogEntry struct {
	Level   string
	Message string
	Caller  string
}

type pushStream struct {
	Stream map[string]string `json:"stream"`
	Values [][2]string       `json:"values"`
}

type pushRequest struct {
	Streams []pushStream `json:"streams"`
}

type Pusher struct {
	config  Config
	client  *http.Client
	entries chan LogEntry
	logger  Logger
	wg      sync.WaitGroup
}

func New(ctx context.Context, cfg Config, logger Logger) (*Pusher, error) {
	cfg.setDefaults()

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid loki config: %w", err)
	}

	p := &Pusher{
		config:  cfg,
		client:  &http.Client{Timeout: 10 * time.Second},
		entries: make(chan LogEntry, cfg.BatchMaxSize*2),
		logger:  logger,
	}

	p.wg.Add(1)
	go p.run(ctx)
	return p, nil
}

// Push queues an entry. A full buffer drops the entry instead of
// blocking the caller.
func (p *Pusher) Push(entry LogEntry) error {
	select {
	case p.entries <- entry:
		return nil
	default:
		return fmt.Errorf("loki buffer full, entry dropped")
	}
}

func (p *Pusher) run(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.config.BatchMaxWait)
	defer ticker.Stop()

	batch := make([]LogEntry, 0, p.config.BatchMaxSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := p.send(batch); err != nil {
			p.logger.Error("failed to push logs to loki", "error", err)
		}
		batch = batch[:0]
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			return
		case entry := <-p.entries:
			batch = append(batch, entry)
			if len(batch) >= p.config.BatchMaxSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

func (p *Pusher) send(batch []LogEntry) error {
	values := make([][2]string, 0, len(batch))
	now := strconv.FormatInt(time.Now().UnixNano(), 10)
	for _, entry := range batch {
		line, err := json.Marshal(map[string]string{
			"level":   entry.Level,
			"message": entry.Message,
			"caller":  entry.Caller,
		})
		if err != nil {
			continue
		}
		values = append(values, [2]string{now, string(line)})
	}

	body, err := json.Marshal(pushRequest{
		Streams: []pushStream{{Stream: p.config.Labels, Values: values}},
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, p.config.Url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if p.config.Username != "" {
		req.SetBasicAuth(p.config.Username, p.config.Password)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("loki returned status %d", resp.StatusCode)
	}
	return nil
}
