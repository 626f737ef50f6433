package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/synctree/synctree/internal/changes"
)

func someChanges(name string) changes.Changes {
	c := changes.Empty()
	c.AddAddition(changes.AddedSnapshot{Name: name, Class: "Folder"})
	return c
}

func TestSubscribeIsIdempotent(t *testing.T) {
	q := New(0)
	q.Subscribe("a")

	msg := someChanges("keep-me")
	require.NoError(t, q.Push(msg, strPtr("a")))

	q.Subscribe("a") // re-subscribe must not clear the pending message

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	got, err := q.Get(ctx, "a", time.Second)
	require.NoError(t, err)
	assert.Equal(t, "keep-me", got.Additions[0].Name)
}

func TestGetReturnsMessagesInFIFOOrder(t *testing.T) {
	q := New(0)
	q.Subscribe("a")

	require.NoError(t, q.Push(someChanges("first"), strPtr("a")))
	require.NoError(t, q.Push(someChanges("second"), strPtr("a")))

	ctx := context.Background()
	first, err := q.Get(ctx, "a", time.Second)
	require.NoError(t, err)
	assert.Equal(t, "first", first.Additions[0].Name)

	second, err := q.Get(ctx, "a", time.Second)
	require.NoError(t, err)
	assert.Equal(t, "second", second.Additions[0].Name)
}

func TestGetTimesOutWithEmptyChanges(t *testing.T) {
	q := New(0)
	q.Subscribe("a")

	start := time.Now()
	got, err := q.Get(context.Background(), "a", 50*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestGetUnblocksImmediatelyWhenMessageArrives(t *testing.T) {
	q := New(0)
	q.Subscribe("a")

	done := make(chan changes.Changes, 1)
	go func() {
		got, _ := q.Get(context.Background(), "a", 5*time.Second)
		done <- got
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, q.Push(someChanges("pushed"), strPtr("a")))

	select {
	case got := <-done:
		assert.Equal(t, "pushed", got.Additions[0].Name)
	case <-time.After(time.Second):
		t.Fatal("Get did not unblock after Push")
	}
}

func TestPushBroadcastClonesPerRecipient(t *testing.T) {
	q := New(0)
	q.Subscribe("a")
	q.Subscribe("b")

	require.NoError(t, q.Push(someChanges("broadcast"), nil))

	ctx := context.Background()
	gotA, err := q.Get(ctx, "a", time.Second)
	require.NoError(t, err)
	gotB, err := q.Get(ctx, "b", time.Second)
	require.NoError(t, err)

	assert.Equal(t, "broadcast", gotA.Additions[0].Name)
	assert.Equal(t, "broadcast", gotB.Additions[0].Name)

	// mutating one recipient's copy must not affect the other's
	gotA.Additions[0].Name = "mutated"
	assert.Equal(t, "broadcast", gotB.Additions[0].Name)
}

func TestPushToUnsubscribedClientIsNoOp(t *testing.T) {
	q := New(0)
	err := q.Push(someChanges("nobody-home"), strPtr("ghost"))
	require.NoError(t, err)
	assert.False(t, q.IsSubscribed("ghost"))
}

func TestUnsubscribeWakesBlockedGetWithError(t *testing.T) {
	q := New(0)
	q.Subscribe("a")

	errCh := make(chan error, 1)
	go func() {
		_, err := q.Get(context.Background(), "a", 5*time.Second)
		errCh <- err
	}()

	time.Sleep(20 * time.Millisecond)
	q.Unsubscribe("a")

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, ErrNotSubscribed)
	case <-time.After(time.Second):
		t.Fatal("Get did not unblock after Unsubscribe")
	}
}

func TestGetOnNeverSubscribedClientErrors(t *testing.T) {
	q := New(0)
	_, err := q.Get(context.Background(), "stranger", time.Second)
	assert.ErrorIs(t, err, ErrNotSubscribed)
}

func TestPushRejectsOversizedPayload(t *testing.T) {
	q := New(16) // 16 bytes is smaller than any real Changes encoding
	q.Subscribe("a")

	err := q.Push(someChanges("too-big-for-this-queue"), strPtr("a"))
	assert.ErrorIs(t, err, ErrPayloadTooLarge)
}

func strPtr(s string) *string { return &s }
