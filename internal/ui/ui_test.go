package ui

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadInputCancellable(t *testing.T) {
	u := New(nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	// No program is running, so nothing drains inputReq; the call must
	// unblock via the context.
	_, err := u.ReadInput(ctx, "> ")
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestReadPermissionCancelledMeansDeny(t *testing.T) {
	u := New(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	decision, err := u.ReadPermission(ctx, "allow?")
	require.Error(t, err)
	assert.Equal(t, DecisionDeny, decision)
}

func TestReadInputRoundTrip(t *testing.T) {
	u := New(nil)

	go func() {
		req := <-u.inputReq
		assert.Equal(t, "> ", req.prompt)
		u.inputResp <- "hello"
	}()

	got, err := u.ReadInput(context.Background(), "> ")
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
}

func TestReadPermissionRoundTrip(t *testing.T) {
	u := New(nil)

	go func() {
		<-u.permReq
		u.permResp <- DecisionAllowAlways
	}()

	decision, err := u.ReadPermission(context.Background(), "allow shell?")
	require.NoError(t, err)
	assert.Equal(t, DecisionAllowAlways, decision)
}

func TestWriteStatusNeverBlocks(t *testing.T) {
	u := New(nil)

	// More writes than the channel buffer; extras are dropped.
	for i := 0; i < 100; i++ {
		u.WriteStatus("phase", "msg")
		u.WriteNotice("notice")
	}
}
