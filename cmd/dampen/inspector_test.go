package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspectorHelloAndBroadcast(t *testing.T) {
	ins := newInspector()
	srv := httptest.NewServer(http.HandlerFunc(ins.handleWebSocket))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	// The greeting arrives first and carries the assigned client id.
	var hello map[string]any
	require.NoError(t, conn.ReadJSON(&hello))
	assert.Equal(t, "HELLO", hello["type"])
	assert.NotEmpty(t, hello["client"])

	ins.broadcast("RELOAD", map[string]any{"path": "app.ui.json"})
	var msg map[string]any
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "RELOAD", msg["type"])
	assert.Equal(t, "app.ui.json", msg["path"])
}
