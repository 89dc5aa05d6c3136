// Package replicate forwards committed writes to an optional remote sync
// endpoint. Replication is strictly fire-and-forget: local writes never
// wait on it and never fail because of it.
package replicate

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/panjf2000/ants/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/clubkit/clubkit/internal/platform/logging"
)

// Op names what happened to the record.
type Op string

const (
	OpPut    Op = "put"
	OpDelete Op = "delete"
)

// Replicator receives change notifications after a local commit.
type Replicator interface {
	Replicate(ctx context.Context, collection string, op Op, recordID string, record any)
	Close()
}

// Noop drops every notification. It is the replicator of a purely local
// installation.
type Noop struct{}

func (Noop) Replicate(context.Context, string, Op, string, any) {}
func (Noop) Close()                                             {}

type event struct {
	Collection string `json:"collection"`
	Op         Op     `json:"op"`
	RecordID   string `json:"recordId"`
	Record     any    `json:"record,omitempty"`
	EmittedAt  int64  `json:"emittedAtEpochMillis"`
}

// Async posts change events to endpoint from a bounded worker pool. When
// the pool is saturated the event is dropped and logged; backpressure must
// never reach the write path.
type Async struct {
	endpoint string
	client   *http.Client
	pool     *ants.Pool
	logger   *logging.Logger
	now      func() time.Time
}

func NewAsync(endpoint string, workers int, logger *logging.Logger) (*Async, error) {
	if logger == nil {
		logger = logging.Default()
	}
	pool, err := ants.NewPool(workers, ants.WithNonblocking(true))
	if err != nil {
		return nil, fmt.Errorf("create replication pool: %w", err)
	}

	return &Async{
		endpoint: endpoint,
		client: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   10 * time.Second,
		},
		pool:   pool,
		logger: logger,
		now:    time.Now,
	}, nil
}

func (a *Async) Replicate(ctx context.Context, collection string, op Op, recordID string, record any) {
	evt := event{
		Collection: collection,
		Op:         op,
		RecordID:   recordID,
		Record:     record,
		EmittedAt:  a.now().UnixMilli(),
	}

	err := a.pool.Submit(func() {
		// Detached from the caller's context on purpose; the originating
		// request may be long gone by the time the worker runs.
		sendCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		a.send(sendCtx, evt)
	})
	if err != nil {
		a.logger.WarnContext(ctx, "replication event dropped",
			"collection", collection, "op", string(op), "record_id", recordID, "error", err)
	}
}

func (a *Async) send(ctx context.Context, evt event) {
	body, err := sonic.Marshal(evt)
	if err != nil {
		a.logger.Error("encode replication event", "record_id", evt.RecordID, "error", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(body))
	if err != nil {
		a.logger.Error("build replication request", "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		a.logger.Warn("replication send failed", "record_id", evt.RecordID, "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		a.logger.Warn("replication endpoint rejected event",
			"record_id", evt.RecordID, "status", resp.StatusCode)
	}
}

func (a *Async) Close() {
	a.pool.Release()
}
