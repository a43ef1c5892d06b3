package signal

import (
	"context"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/Iaion/walkie-talkie-server-sub000/internal/core"
)

func TestHandleSignal_PingRepliesPong(t *testing.T) {
	ctl := NewController(nil, nil, 0, time.Minute)
	c := &WsSignalConn{send: make(chan core.Frame, 4)}

	ctl.handleSignal(context.Background(), "s1", c, []byte(`{"type":"ping"}`))

	require.Len(t, c.send, 1)
	var resp struct {
		Type string `json:"type"`
	}
	require.NoError(t, json.Unmarshal(<-c.send, &resp))
	require.Equal(t, "pong", resp.Type)
}

func TestSendJSON_FullChannelDoesNotBlock(t *testing.T) {
	ctl := NewController(nil, nil, 0, time.Minute)
	c := &WsSignalConn{send: make(chan core.Frame, 1)}
	require.NoError(t, c.TrySend(core.Frame(`{}`)))

	done := make(chan struct{})
	go func() {
		ctl.handlePing(c)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sendJSON blocked on a full channel")
	}
	require.Len(t, c.send, 1)
}

func TestNewController_DefaultsPingPeriod(t *testing.T) {
	ctl := NewController(nil, nil, 0, 0)
	require.Equal(t, defaultPingPeriod, ctl.PingPeriod)
}
