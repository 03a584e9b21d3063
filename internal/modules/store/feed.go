package store

import (
	"context"
	"log/slog"
	"sync"

	"github.com/georgemunganga/pulse-backend/internal/live"
	"github.com/georgemunganga/pulse-backend/pkg/errutil"
	"github.com/google/uuid"
)

// Feed pushes live store snapshots to websocket subscribers. Every change
// reloads the store and its team and recomputes each subscriber's view.
//
// Fan-out runs off the caller's goroutine. Work for one store is serialized
// by a per-store lock, and every run reloads the latest state, so the last
// message a subscriber receives always reflects the last committed change.
type Feed struct {
	hub    *live.Hub
	repo   Repository
	team   TeamRepository
	logger *slog.Logger

	locks   sync.Map // store id -> *sync.Mutex
	pending sync.WaitGroup
}

// NewFeed creates a store feed on top of hub.
func NewFeed(hub *live.Hub, repo Repository, team TeamRepository, logger *slog.Logger) *Feed {
	if logger == nil {
		logger = slog.Default()
	}
	return &Feed{hub: hub, repo: repo, team: team, logger: logger}
}

// Serve sends viewer the current snapshot of the store, subscribes conn to
// later changes and blocks until the connection closes.
func (f *Feed) Serve(ctx context.Context, conn live.Conn, storeID string, viewer *Viewer) {
	c := live.NewClient(uuid.NewString(), viewer.ID, conn, viewer)
	defer func() { _ = c.Close() }()

	if !f.join(ctx, c, storeID) {
		return
	}
	defer f.hub.Unsubscribe(c)
	c.Wait()
}

// join sends the first snapshot and subscribes c under the store lock, so a
// concurrent change is either in that snapshot or delivered after it.
func (f *Feed) join(ctx context.Context, c *live.Client, storeID string) bool {
	unlock := f.lock(storeID)
	defer unlock()

	st, team, err := f.load(ctx, storeID)
	if errutil.Code(err) == CodeStoreNotFound {
		_ = c.Send(deletedMessage(storeID))
		return false
	}
	if err != nil {
		errutil.LogError(f.logger, "live feed: initial snapshot", err)
		_ = c.SendError("LOAD_FAILED", "could not load the store")
		return false
	}
	msg, ok := snapshotFor(c, st, team)
	if !ok {
		_ = c.Send(deletedMessage(storeID))
		return false
	}
	if err := c.Send(msg); err != nil {
		return false
	}
	f.hub.Subscribe(c, storeID)
	return true
}

// StoreChanged implements Notifier. It returns immediately; subscribers are
// updated in the background.
func (f *Feed) StoreChanged(ctx context.Context, storeID string) {
	f.async(ctx, storeID, f.publish)
}

// ProductsChanged tells subscribers of the store that its product list
// changed. Clients refetch the list.
func (f *Feed) ProductsChanged(ctx context.Context, storeID string) {
	f.async(ctx, storeID, func(_ context.Context, storeID string) {
		f.hub.Broadcast(storeID, live.Message{
			Type:    live.MessageTypeProductsChanged,
			Payload: map[string]string{"store_id": storeID},
		})
	})
}

// Drain blocks until all queued fan-outs have finished.
func (f *Feed) Drain() {
	f.pending.Wait()
}

func (f *Feed) async(ctx context.Context, storeID string, run func(context.Context, string)) {
	ctx = context.WithoutCancel(ctx)
	f.pending.Add(1)
	go func() {
		defer f.pending.Done()
		unlock := f.lock(storeID)
		defer unlock()
		if f.hub.ClientCount(storeID) == 0 {
			return
		}
		run(ctx, storeID)
	}()
}

func (f *Feed) publish(ctx context.Context, storeID string) {
	st, team, err := f.load(ctx, storeID)
	if errutil.Code(err) == CodeStoreNotFound {
		f.hub.Close(storeID, deletedMessage(storeID))
		return
	}
	if err != nil {
		errutil.LogError(f.logger, "live feed: reload store", err)
		return
	}

	// Subscribers removed from the store see it as deleted.
	for _, c := range f.hub.Clients(storeID) {
		if _, ok := snapshotFor(c, st, team); !ok {
			_ = c.Send(deletedMessage(storeID))
			f.hub.Unsubscribe(c)
			_ = c.Close()
		}
	}

	f.hub.Each(storeID, func(c *live.Client) (live.Message, bool) {
		return snapshotFor(c, st, team)
	})
}

func (f *Feed) load(ctx context.Context, storeID string) (*Store, []*TeamMember, error) {
	st, err := f.repo.GetStoreByID(ctx, storeID)
	if err != nil {
		return nil, nil, err
	}
	team, err := f.team.ListMembers(ctx, storeID)
	if err != nil {
		return nil, nil, err
	}
	return st, team, nil
}

func (f *Feed) lock(storeID string) func() {
	v, _ := f.locks.LoadOrStore(storeID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// snapshotFor renders the store for the client's viewer. It reports false
// when the viewer is no longer a member.
func snapshotFor(c *live.Client, st *Store, team []*TeamMember) (live.Message, bool) {
	viewer, _ := c.State.(*Viewer)
	if viewer == nil || (viewer.ID != st.OwnerID && !contains(st.SharedWith, viewer.ID)) {
		return live.Message{}, false
	}
	return live.Message{Type: live.MessageTypeSnapshot, Payload: Describe(st, team, viewer)}, true
}

func deletedMessage(storeID string) live.Message {
	return live.Message{Type: live.MessageTypeDeleted, Payload: map[string]string{"store_id": storeID}}
}
