package observability

import (
	"context"
	"time"

	"github.com/dyluth/aurora-cli/pkg/scheduler"
)

// Method names used as the method attribute.
const (
	MethodListJobs  = "listJobs"
	MethodGetStatus = "getStatus"
)

type instrumented struct {
	next    scheduler.Client
	cluster string
	metrics *Metrics
}

// Instrument wraps client so that every call is recorded in m.
// With nil metrics the client is returned unchanged.
func Instrument(client scheduler.Client, cluster string, m *Metrics) scheduler.Client {
	if m == nil {
		return client
	}
	return &instrumented{next: client, cluster: cluster, metrics: m}
}

func (c *instrumented) ListJobs(ctx context.Context, role string) (*scheduler.Response[[]scheduler.JobSummary], error) {
	start := time.Now()
	resp, err := c.next.ListJobs(ctx, role)
	c.record(ctx, MethodListJobs, codeOf(resp), err, start)
	return resp, err
}

func (c *instrumented) GetStatus(ctx context.Context, key scheduler.JobKey) (*scheduler.Response[[]scheduler.ScheduledTask], error) {
	start := time.Now()
	resp, err := c.next.GetStatus(ctx, key)
	c.record(ctx, MethodGetStatus, codeOf(resp), err, start)
	return resp, err
}

func (c *instrumented) Close() error {
	return c.next.Close()
}

func (c *instrumented) record(ctx context.Context, method string, code scheduler.ResponseCode, err error, start time.Time) {
	// Record even when the caller's context is done.
	c.metrics.RecordRPC(context.WithoutCancel(ctx), c.cluster, method, Outcome(code, err), time.Since(start))
}

func codeOf[T any](resp *scheduler.Response[T]) scheduler.ResponseCode {
	if resp == nil {
		return scheduler.ResponseError
	}
	return resp.Code
}
