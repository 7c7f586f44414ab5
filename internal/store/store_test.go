package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/parleychat/parley/internal/chat"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "parley.db"), 1000)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func appendMessages(t *testing.T, st *Store, roomID string, n int) []chat.Message {
	t.Helper()
	ctx := context.Background()
	out := make([]chat.Message, 0, n)
	for i := 0; i < n; i++ {
		msg := chat.NewMessage(roomID, "ada", fmt.Sprintf("message %d", i+1))
		require.NoError(t, st.Append(ctx, &msg))
		out = append(out, msg)
	}
	return out
}

func seqs(msgs []chat.Message) []int64 {
	out := make([]int64, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.Seq)
	}
	return out
}

func TestAppendAssignsMonotonicSeq(t *testing.T) {
	st := openTestStore(t)

	msgs := appendMessages(t, st, "lobby", 3)
	for i := 1; i < len(msgs); i++ {
		require.Greater(t, msgs[i].Seq, msgs[i-1].Seq)
	}

	count, err := st.CountRoom(context.Background(), "lobby")
	require.NoError(t, err)
	require.EqualValues(t, 3, count)
}

func TestAppendRejectsInvalidMessage(t *testing.T) {
	st := openTestStore(t)

	require.ErrorIs(t, st.Append(context.Background(), nil), ErrInvalidMessage)

	msg := chat.NewMessage("lobby", "ada", "hi")
	msg.Sender = ""
	require.ErrorIs(t, st.Append(context.Background(), &msg), ErrInvalidMessage)
}

func TestRecentReturnsNewestAscending(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	msgs := appendMessages(t, st, "lobby", 5)
	appendMessages(t, st, "other", 2)

	got, hasOlder, err := st.Recent(ctx, "lobby", 3)
	require.NoError(t, err)
	require.True(t, hasOlder)
	require.Equal(t, seqs(msgs[2:]), seqs(got), "newest three, oldest first")

	got, hasOlder, err = st.Recent(ctx, "lobby", 10)
	require.NoError(t, err)
	require.False(t, hasOlder)
	require.Equal(t, seqs(msgs), seqs(got))
}

func TestPageBefore(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	msgs := appendMessages(t, st, "lobby", 6)

	got, hasMore, err := st.PageBefore(ctx, "lobby", msgs[4].Seq, 2)
	require.NoError(t, err)
	require.True(t, hasMore)
	require.Equal(t, seqs(msgs[2:4]), seqs(got))

	got, hasMore, err = st.PageBefore(ctx, "lobby", msgs[2].Seq, 10)
	require.NoError(t, err)
	require.False(t, hasMore)
	require.Equal(t, seqs(msgs[:2]), seqs(got))

	got, hasMore, err = st.PageBefore(ctx, "lobby", msgs[0].Seq, 2)
	require.NoError(t, err)
	require.False(t, hasMore)
	require.Empty(t, got)
}

func TestPageAfter(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	msgs := appendMessages(t, st, "lobby", 6)

	got, hasMore, err := st.PageAfter(ctx, "lobby", msgs[1].Seq, 2)
	require.NoError(t, err)
	require.True(t, hasMore)
	require.Equal(t, seqs(msgs[2:4]), seqs(got))

	got, hasMore, err = st.PageAfter(ctx, "lobby", msgs[3].Seq, 10)
	require.NoError(t, err)
	require.False(t, hasMore)
	require.Equal(t, seqs(msgs[4:]), seqs(got))
}

func TestPaginationRejectsNonPositiveLimit(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	_, _, err := st.Recent(ctx, "lobby", 0)
	require.Error(t, err)
	_, _, err = st.PageBefore(ctx, "lobby", 10, -1)
	require.Error(t, err)
	_, _, err = st.PageAfter(ctx, "lobby", 10, 0)
	require.Error(t, err)
}

func TestSubscribeDeliversRoomMessagesOnly(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	ch, cancel := st.Subscribe("lobby")
	defer cancel()

	msg := chat.NewMessage("lobby", "ada", "hello")
	require.NoError(t, st.Append(ctx, &msg))
	other := chat.NewMessage("other", "grace", "elsewhere")
	require.NoError(t, st.Append(ctx, &other))

	select {
	case got := <-ch:
		require.Equal(t, msg.ID, got.ID)
		require.Equal(t, msg.Seq, got.Seq)
	case <-time.After(time.Second):
		t.Fatal("expected a delivered message")
	}

	select {
	case got := <-ch:
		t.Fatalf("unexpected cross-room delivery: %+v", got)
	default:
	}
}

func TestSubscribeCancelClosesChannel(t *testing.T) {
	st := openTestStore(t)

	ch, cancel := st.Subscribe("lobby")
	cancel()
	cancel() // idempotent

	_, open := <-ch
	require.False(t, open)
}

func TestReadReceiptRoundTrip(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	_, err := st.ReadReceipt(ctx, "lobby")
	require.ErrorIs(t, err, ErrNoReceipt)

	require.NoError(t, st.SaveReadReceipt(ctx, "lobby", "$first"))
	require.NoError(t, st.SaveReadReceipt(ctx, "lobby", "$second"))

	got, err := st.ReadReceipt(ctx, "lobby")
	require.NoError(t, err)
	require.Equal(t, "$second", got)

	require.Error(t, st.SaveReadReceipt(ctx, "", "$x"))
	require.Error(t, st.SaveReadReceipt(ctx, "lobby", ""))
}
