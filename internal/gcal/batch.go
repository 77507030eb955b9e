package gcal

import (
	"context"
	"errors"

	"google.golang.org/api/googleapi"

	appLog "entsync/internal/log"
	"entsync/internal/model"
)

// operation is one pending remote mutation.
type operation struct {
	kind  model.OpKind
	id    string
	entry model.DesiredEntry // payload for insert/update
}

// Apply executes a plan against the remote calendar: deletes first, then
// inserts, then updates, submitted in batches of at most batchSize
// operations.
//
// One failed operation never aborts its siblings: failures are collected
// into the returned results and the next scheduled run retries them through
// the recomputed diff. The only hard failure is context cancellation.
func (c *Client) Apply(ctx context.Context, plan model.Plan, batchSize int) []model.OpResult {
	if batchSize <= 0 {
		batchSize = 50
	}

	ops := make([]operation, 0, plan.Total())
	for _, id := range plan.Deletes {
		ops = append(ops, operation{kind: model.OpDelete, id: id})
	}
	for _, e := range plan.Inserts {
		ops = append(ops, operation{kind: model.OpInsert, id: e.ID, entry: e})
	}
	for _, e := range plan.Updates {
		ops = append(ops, operation{kind: model.OpUpdate, id: e.ID, entry: e})
	}

	results := make([]model.OpResult, 0, len(ops))

	for start := 0; start < len(ops); start += batchSize {
		end := min(start+batchSize, len(ops))
		batch := ops[start:end]

		appLog.Debug("submitting batch", "from", start, "size", len(batch))

		for i := range batch {
			op := batch[i]
			if err := ctx.Err(); err != nil {
				// Run is being torn down; report every op not yet attempted,
				// from this one to the end of the plan, exactly once.
				for _, rest := range ops[start+i:] {
					results = append(results, model.OpResult{Kind: rest.kind, ID: rest.id, Err: err})
				}
				return results
			}

			err := c.execute(ctx, op)
			if err != nil {
				appLog.Warn("batch operation failed", "op", string(op.kind), "id", op.id, "reason", err.Error())
			}
			results = append(results, model.OpResult{Kind: op.kind, ID: op.id, Err: err})
		}
	}

	return results
}

func (c *Client) execute(ctx context.Context, op operation) error {
	switch op.kind {
	case model.OpDelete:
		err := c.api.Delete(ctx, op.id)
		if isGone(err) {
			// Someone beat us to it; the goal state is reached either way.
			return nil
		}
		return err
	case model.OpInsert:
		return c.api.Insert(ctx, eventFromDesired(op.entry))
	case model.OpUpdate:
		return c.api.Update(ctx, op.id, eventFromDesired(op.entry))
	default:
		return errors.New("unknown operation kind")
	}
}

// isGone reports whether err means the event no longer exists (404) or was
// already deleted (410).
func isGone(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == 404 || gerr.Code == 410
	}
	return false
}
