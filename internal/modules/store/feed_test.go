package store_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/georgemunganga/pulse-backend/internal/live"
	"github.com/georgemunganga/pulse-backend/internal/modules/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chanConn hands every written message to a channel and blocks reads until
// closed. When hold is set, writes wait for it to be closed.
type chanConn struct {
	out    chan live.Message
	closed chan struct{}
	once   sync.Once
	hold   chan struct{}
}

func newChanConn() *chanConn {
	return &chanConn{out: make(chan live.Message, 16), closed: make(chan struct{})}
}

func (c *chanConn) WriteJSON(v any) error {
	if c.hold != nil {
		<-c.hold
	}
	msg, _ := v.(live.Message)
	c.out <- msg
	return nil
}

func (c *chanConn) ReadJSON(any) error {
	<-c.closed
	return errors.New("closed")
}

func (c *chanConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func (c *chanConn) next(t *testing.T) live.Message {
	t.Helper()
	select {
	case msg := <-c.out:
		return msg
	case <-time.After(5 * time.Second):
		t.Fatal("no live message")
		return live.Message{}
	}
}

type feedFixture struct {
	*fixture
	hub  *live.Hub
	feed *store.Feed
}

func newFeedFixture(t *testing.T) *feedFixture {
	t.Helper()
	f := newFixture(t)
	hub := live.NewHub(nil, nil)
	feed := store.NewFeed(hub, f.repo, f.repo, nil)
	f.svc = store.NewService(f.repo, f.repo, f.accounts, store.WithNotifier(feed))
	return &feedFixture{fixture: f, hub: hub, feed: feed}
}

// subscribe serves conn for viewer in the background and waits until the
// first snapshot arrives.
func (ff *feedFixture) subscribe(t *testing.T, conn *chanConn, viewer *store.Viewer) live.Message {
	t.Helper()
	go ff.feed.Serve(context.Background(), conn, ff.store.ID, viewer)
	t.Cleanup(func() { _ = conn.Close() })
	first := conn.next(t)
	require.Eventually(t, func() bool { return ff.hub.ClientCount(ff.store.ID) > 0 }, 5*time.Second, 5*time.Millisecond)
	return first
}

func TestFeed_ServeSendsCurrentState(t *testing.T) {
	ff := newFeedFixture(t)
	ctx := context.Background()

	// A change committed after the caller checked access still shows up in
	// the first snapshot.
	_, err := ff.svc.UpdateStore(ctx, ff.owner.ID.String(), ff.store.ID, store.UpdateStoreRequest{Name: strPtr("Renamed")})
	require.NoError(t, err)
	ff.feed.Drain()

	conn := newChanConn()
	first := ff.subscribe(t, conn, store.ViewerFromUser(ff.manager))
	require.Equal(t, live.MessageTypeSnapshot, first.Type)
	details, ok := first.Payload.(*store.Details)
	require.True(t, ok)
	assert.Equal(t, "Renamed", details.Store.Name)
}

func TestFeed_ServeRejectsNonMember(t *testing.T) {
	ff := newFeedFixture(t)
	conn := newChanConn()

	ff.feed.Serve(context.Background(), conn, ff.store.ID, store.ViewerFromUser(ff.outsider))

	assert.Equal(t, live.MessageTypeDeleted, conn.next(t).Type)
	assert.Equal(t, 0, ff.hub.ClientCount(ff.store.ID))
}

func TestFeed_ChangesArriveAfterInitialSnapshot(t *testing.T) {
	ff := newFeedFixture(t)
	ctx := context.Background()
	conn := newChanConn()
	ff.subscribe(t, conn, store.ViewerFromUser(ff.manager))

	_, err := ff.svc.UpdateStore(ctx, ff.owner.ID.String(), ff.store.ID, store.UpdateStoreRequest{Name: strPtr("v2")})
	require.NoError(t, err)
	_, err = ff.svc.UpdateStore(ctx, ff.owner.ID.String(), ff.store.ID, store.UpdateStoreRequest{Name: strPtr("v3")})
	require.NoError(t, err)
	ff.feed.Drain()

	var last *store.Details
	for len(conn.out) > 0 {
		msg := conn.next(t)
		require.Equal(t, live.MessageTypeSnapshot, msg.Type)
		last = msg.Payload.(*store.Details)
	}
	require.NotNil(t, last)
	assert.Equal(t, "v3", last.Store.Name)
}

func TestFeed_StalledSubscriberDoesNotBlockWrites(t *testing.T) {
	ff := newFeedFixture(t)
	ctx := context.Background()

	conn := newChanConn()
	ff.subscribe(t, conn, store.ViewerFromUser(ff.manager))
	conn.hold = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := ff.svc.UpdateStore(ctx, ff.owner.ID.String(), ff.store.ID, store.UpdateStoreRequest{Name: strPtr("Busy")})
		done <- err
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("store write waited on a stalled subscriber")
	}

	close(conn.hold)
	ff.feed.Drain()
	assert.Equal(t, "Busy", conn.next(t).Payload.(*store.Details).Store.Name)
}

func TestFeed_RemovedMemberSeesDeleted(t *testing.T) {
	ff := newFeedFixture(t)
	conn := newChanConn()
	ff.subscribe(t, conn, store.ViewerFromUser(ff.manager))

	require.NoError(t, ff.svc.RemoveTeamMember(context.Background(),
		ff.owner.ID.String(), ff.store.ID, ff.manager.ID.String()))
	ff.feed.Drain()

	assert.Equal(t, live.MessageTypeDeleted, conn.next(t).Type)
	assert.Equal(t, 0, ff.hub.ClientCount(ff.store.ID))
}

func TestFeed_ProductsChanged(t *testing.T) {
	ff := newFeedFixture(t)
	conn := newChanConn()
	ff.subscribe(t, conn, store.ViewerFromUser(ff.admin))

	ff.feed.ProductsChanged(context.Background(), ff.store.ID)
	ff.feed.Drain()

	msg := conn.next(t)
	assert.Equal(t, live.MessageTypeProductsChanged, msg.Type)
	assert.Equal(t, map[string]string{"store_id": ff.store.ID}, msg.Payload)
}

func strPtr(s string) *string { return &s }
