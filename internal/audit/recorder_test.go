package audit

import (
	"context"
	"errors"
	"testing"
	"time"
)

type failingStore struct{}

func (failingStore) Append(context.Context, *Entry) error { return errors.New("db down") }
func (failingStore) List(context.Context, Query) ([]*Entry, error) {
	return nil, errors.New("db down")
}
func (failingStore) Anonymize(context.Context, string, time.Time) (int64, error) {
	return 0, errors.New("db down")
}

func strPtr(s string) *string { return &s }

func newRecorder(store Store, at time.Time) *Recorder {
	return NewRecorder(store, WithClock(func() time.Time { return at }))
}

func TestRecordSwallowsStoreFailures(t *testing.T) {
	r := newRecorder(failingStore{}, time.Now())
	// Must not panic or surface the error.
	r.Record(context.Background(), Entry{
		UserID: strPtr("user-1"),
		Action: ActionDocumentUploaded,
	})
}

func TestRecordPublishesToFeed(t *testing.T) {
	feed := NewFeed()
	store := NewInMemory()
	r := NewRecorder(store, WithFeed(feed))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := feed.Subscribe(ctx)

	r.Record(context.Background(), Entry{Action: ActionLoginVerified, UserID: strPtr("user-1")})

	select {
	case e := <-ch:
		if e.Action != ActionLoginVerified {
			t.Fatalf("Action = %q", e.Action)
		}
		if e.ID == "" || e.CreatedAt.IsZero() {
			t.Fatalf("entry not stamped: %+v", e)
		}
	case <-time.After(time.Second):
		t.Fatal("no entry on feed")
	}
}

func TestListFiltersAndOrders(t *testing.T) {
	store := NewInMemory()
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i, action := range []Action{ActionDocumentUploaded, ActionDocumentViewed, ActionDocumentUploaded} {
		r := newRecorder(store, at.Add(time.Duration(i)*time.Minute))
		r.Record(context.Background(), Entry{
			UserID:     strPtr("user-1"),
			Action:     action,
			EntityType: EntityDocument,
			EntityID:   "doc-1",
		})
	}
	r := newRecorder(store, at.Add(time.Hour))
	r.Record(context.Background(), Entry{UserID: strPtr("user-2"), Action: ActionDocumentViewed})

	entries, err := r.List(context.Background(), Query{UserID: "user-1", Action: ActionDocumentUploaded})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len = %d, want 2", len(entries))
	}
	if !entries[0].CreatedAt.After(entries[1].CreatedAt) {
		t.Fatal("entries not ordered newest first")
	}

	entries, err = r.List(context.Background(), Query{EntityType: EntityDocument, EntityID: "doc-1", Limit: 2})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("limited len = %d, want 2", len(entries))
	}
}

func TestAnonymizeDetachesUser(t *testing.T) {
	store := NewInMemory()
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	r := newRecorder(store, at)
	r.Record(context.Background(), Entry{UserID: strPtr("user-1"), Action: ActionDocumentUploaded, Details: map[string]any{"name": "passport.pdf"}})
	r.Record(context.Background(), Entry{UserID: strPtr("user-2"), Action: ActionDocumentUploaded})

	n, err := r.Anonymize(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Anonymize: %v", err)
	}
	if n != 1 {
		t.Fatalf("n = %d, want 1", n)
	}

	entries, err := r.List(context.Background(), Query{Action: ActionDocumentUploaded})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var anonymized *Entry
	for _, e := range entries {
		if e.UserID == nil {
			anonymized = e
		}
	}
	if anonymized == nil {
		t.Fatal("no anonymized entry found")
	}
	if anonymized.Details["anonymized"] != true {
		t.Fatalf("Details = %v, want anonymization marker", anonymized.Details)
	}
	if anonymized.Details["originalUserId"] != "user-1" {
		t.Fatalf("Details = %v, want original user id in marker", anonymized.Details)
	}
}

func TestFeedDropsForSlowSubscribers(t *testing.T) {
	feed := NewFeed()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := feed.Subscribe(ctx)

	// Overflow the buffer; Publish must never block.
	for i := 0; i < 64; i++ {
		feed.Publish(Entry{Action: ActionDocumentViewed})
	}
	if got := len(ch); got != cap(ch) {
		t.Fatalf("buffered = %d, want full buffer %d", got, cap(ch))
	}
}
