package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/crimson-sun/djenbridge/internal/model"
)

const (
	defaultBatchSize = 50
	defaultTimeout   = 10 * time.Second
	defaultBackoff   = time.Second
	maxRetries       = 3
)

// BatchHeader carries the batch ID so receivers can drop redelivered batches.
const BatchHeader = "X-Djen-Batch-Id"

// Option configures a webhook Output.
type Option func(*Output)

// WithHeaders sets custom HTTP headers sent with every POST.
func WithHeaders(h map[string]string) Option {
	return func(o *Output) { o.headers = h }
}

// WithBatchSize sets the number of records accumulated before a flush. Default: 50.
func WithBatchSize(n int) Option {
	return func(o *Output) { o.batchSize = n }
}

// WithTimeout sets the HTTP client timeout. Default: 10s.
func WithTimeout(d time.Duration) Option {
	return func(o *Output) { o.client.Timeout = d }
}

// WithBackoff sets the base delay between retries. Default: 1s, doubling.
func WithBackoff(d time.Duration) Option {
	return func(o *Output) { o.backoff = d }
}

// Payload is the JSON body of each POST.
type Payload struct {
	BatchID string                     `json:"batch_id"`
	Records []model.NotificationRecord `json:"records"`
}

// Output POSTs batched notification records to an HTTP endpoint. Records
// accumulate until batchSize is reached or Close is called. 5xx responses
// and transport errors are retried with exponential backoff; a retried
// batch keeps its batch ID.
type Output struct {
	client    *http.Client
	url       string
	headers   map[string]string
	batchSize int
	backoff   time.Duration
	mu        sync.Mutex
	pending   []model.NotificationRecord
}

// New creates a webhook output targeting the given URL.
func New(url string, opts ...Option) *Output {
	o := &Output{
		client:    &http.Client{Timeout: defaultTimeout},
		url:       url,
		batchSize: defaultBatchSize,
		backoff:   defaultBackoff,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.batchSize < 1 {
		o.batchSize = 1
	}
	return o
}

// Write appends a record to the batch and flushes when the batch is full.
func (o *Output) Write(ctx context.Context, rec model.NotificationRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.pending = append(o.pending, rec.Clone())
	if len(o.pending) >= o.batchSize {
		return o.flushLocked(ctx)
	}
	return nil
}

// Close flushes any remaining records.
func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.flushLocked(context.Background())
}

// flushLocked sends the pending batch. Caller must hold o.mu.
func (o *Output) flushLocked(ctx context.Context) error {
	if len(o.pending) == 0 {
		return nil
	}
	batch := o.pending
	o.pending = nil

	id := uuid.NewString()
	body, err := json.Marshal(Payload{BatchID: id, Records: batch})
	if err != nil {
		return fmt.Errorf("webhook: marshal: %w", err)
	}
	return o.postWithRetry(ctx, id, body)
}

func (o *Output) postWithRetry(ctx context.Context, batchID string, body []byte) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			delay := o.backoff * time.Duration(1<<(attempt-1))
			select {
			case <-ctx.Done():
				return fmt.Errorf("webhook: %w", ctx.Err())
			case <-time.After(delay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("webhook: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(BatchHeader, batchID)
		for k, v := range o.headers {
			req.Header.Set(k, v)
		}

		resp, err := o.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("webhook: %w", ctx.Err())
			}
			lastErr = fmt.Errorf("webhook: %w", err)
			continue
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}
		lastErr = fmt.Errorf("webhook: HTTP %d", resp.StatusCode)
		if resp.StatusCode < 500 {
			return lastErr
		}
	}
	return lastErr
}
