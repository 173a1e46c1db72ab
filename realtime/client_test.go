// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/likek/what-to-eat/models"
)

func readEvent(t *testing.T, ctx context.Context, conn *websocket.Conn) models.Event {
	t.Helper()
	_, msg, err := conn.Read(ctx)
	require.NoError(t, err)
	var evt models.Event
	require.NoError(t, json.Unmarshal(msg, &evt))
	return evt
}

func TestClient_DeliversFrames(t *testing.T) {
	hub := newTestHub(t, 10*time.Millisecond)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(conn)
		hub.Register("token-a", models.OnlineUser{ID: 7}, client)
		defer hub.Deregister("token-a", client)
		client.Run(r.Context())
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "done")

	evt := readEvent(t, ctx, conn)
	assert.Equal(t, models.EventOnlineUsersUpdate, evt.Event)

	hub.Broadcast(models.EventDeleteTodayHistory, nil, Everyone)
	evt = readEvent(t, ctx, conn)
	assert.Equal(t, models.EventDeleteTodayHistory, evt.Event)

	_ = conn.Close(websocket.StatusNormalClosure, "bye")
	require.Eventually(t, func() bool { return hub.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestClient_SendAfterClose(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(conn)
		client.Close()
		assert.ErrorIs(t, client.Send([]byte("{}")), ErrClosed)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	_, _, err = conn.Read(ctx)
	assert.Error(t, err)
}
