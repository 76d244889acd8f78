package resolver

import (
	"context"

	"github.com/dyluth/aurora-cli/internal/clierr"
	"github.com/dyluth/aurora-cli/internal/response"
	"github.com/dyluth/aurora-cli/pkg/scheduler"
)

// Status returns the tasks of one job, or nil if the scheduler reports none.
// The key must be fully bound. A refused status query is an invalid parameter.
func (r *Resolver) Status(ctx context.Context, key scheduler.JobKey) ([]scheduler.ScheduledTask, error) {
	if err := key.Validate(); err != nil {
		return nil, clierr.InvalidParameter("invalid job key %s: %v", key, err)
	}

	h, err := r.handles.Get(ctx, key.Cluster)
	if err != nil {
		return nil, response.Transport(key.Cluster, "connect", err)
	}

	resp, err := h.GetStatus(ctx, key)
	if err != nil {
		return nil, response.Transport(key.Cluster, "getStatus", err)
	}

	tasks, err := response.Check(r.logger, key.Cluster, resp, clierr.ExitInvalidParameter)
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, nil
	}
	return tasks, nil
}
