package audit

import (
	"context"
	"time"

	"securevault.org/internal/ids"
	"securevault.org/internal/obs"
)

// Recorder writes audit entries. Recording is best-effort: a failed write is
// logged and counted but never surfaces to the caller, so an unavailable
// audit store cannot take the primary operation down with it.
type Recorder struct {
	store Store
	feed  *Feed
	now   func() time.Time
}

type RecorderOption func(*Recorder)

func WithClock(now func() time.Time) RecorderOption {
	return func(r *Recorder) { r.now = now }
}

func WithFeed(feed *Feed) RecorderOption {
	return func(r *Recorder) { r.feed = feed }
}

func NewRecorder(store Store, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		store: store,
		now:   time.Now,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Record persists one entry and publishes it to the live feed.
func (r *Recorder) Record(ctx context.Context, e Entry) {
	e.ID = ids.New()
	e.CreatedAt = r.now().UTC()
	if err := r.store.Append(ctx, &e); err != nil {
		obs.CountAuditDropped()
		obs.LogError("audit write failed", map[string]any{
			"action": string(e.Action),
			"error":  err.Error(),
		})
		return
	}
	if r.feed != nil {
		r.feed.Publish(e)
	}
}

// List returns entries matching the query, newest first.
func (r *Recorder) List(ctx context.Context, q Query) ([]*Entry, error) {
	if q.Limit <= 0 {
		q.Limit = DefaultLimit
	}
	return r.store.List(ctx, q)
}

// ListByAction returns the newest entries carrying one action tag.
func (r *Recorder) ListByAction(ctx context.Context, action Action, limit int) ([]*Entry, error) {
	return r.List(ctx, Query{Action: action, Limit: limit})
}

// ListByEntity returns the trail of one entity, newest first.
func (r *Recorder) ListByEntity(ctx context.Context, entityType, entityID string) ([]*Entry, error) {
	return r.List(ctx, Query{EntityType: entityType, EntityID: entityID})
}

// Anonymize strips a user from the log while keeping the trail itself. Each
// touched entry keeps its action and entity but its details are replaced
// with an anonymization marker.
func (r *Recorder) Anonymize(ctx context.Context, userID string) (int64, error) {
	return r.store.Anonymize(ctx, userID, r.now().UTC())
}
