// connection_integration_test.go
package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test: a real client receives the greeting and later broadcasts
func TestServeWs_EndToEnd(t *testing.T) {
	hub := NewHub()
	hub.OnConnect = func(topic string) map[string]interface{} {
		return map[string]interface{}{"action": "zonesChanged", "reason": "connected"}
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(hub.ServeWs))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?topic=zones"
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.SetReadDeadline(time.Now().Add(2*time.Second)))
	var greeting map[string]interface{}
	require.NoError(t, client.ReadJSON(&greeting))
	assert.Equal(t, "connected", greeting["reason"])

	assert.Eventually(t, func() bool { return hub.ConnectionCount() == 1 }, time.Second, 5*time.Millisecond)
	hub.BroadcastMessage("zones", map[string]interface{}{"action": "zonesChanged", "reason": "vehicleEntered"})

	var update map[string]interface{}
	require.NoError(t, client.ReadJSON(&update))
	assert.Equal(t, "vehicleEntered", update["reason"])
}
