package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHubServer(t *testing.T) (*Hub, string) {
	t.Helper()
	hub := NewHub(func(r *http.Request) bool { return true })
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	t.Cleanup(srv.Close)
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// subscribe é assíncrono do ponto de vista do cliente; espera o hub registrar
func waitSubscribers(t *testing.T, hub *Hub, userID string, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.subscriberCount(userID) == n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("subscribers for %s never reached %d", userID, n)
}

func TestBroadcastReachesSubscribedUser(t *testing.T) {
	hub, url := newHubServer(t)

	conn := dial(t, url)
	require.NoError(t, conn.WriteJSON(ClientMsg{Type: "subscribe", UserID: "u1"}))
	waitSubscribers(t, hub, "u1", 1)

	other := dial(t, url)
	require.NoError(t, other.WriteJSON(ClientMsg{Type: "subscribe", UserID: "u2"}))
	waitSubscribers(t, hub, "u2", 1)

	hub.Broadcast(SettlementUpdate{UserID: "u1", Payload: map[string]string{"status": "WON"}})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var upd SettlementUpdate
	require.NoError(t, conn.ReadJSON(&upd))
	assert.Equal(t, "u1", upd.UserID)

	// o inscrito em outro usuário não recebe nada
	require.NoError(t, other.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	var stray SettlementUpdate
	assert.Error(t, other.ReadJSON(&stray))
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	hub, url := newHubServer(t)

	conn := dial(t, url)
	require.NoError(t, conn.WriteJSON(ClientMsg{Type: "subscribe", UserID: "u1"}))
	waitSubscribers(t, hub, "u1", 1)
	require.NoError(t, conn.WriteJSON(ClientMsg{Type: "unsubscribe", UserID: "u1"}))
	waitSubscribers(t, hub, "u1", 0)

	hub.Broadcast(SettlementUpdate{UserID: "u1", Payload: "x"})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	var upd SettlementUpdate
	assert.Error(t, conn.ReadJSON(&upd))
}

// Broadcast concorrendo com churn de subscribe/unsubscribe no mesmo userID:
// sob -race, iteração do conjunto fora do lock falhava aqui.
func TestBroadcastConcurrentWithSubscriptionChurn(t *testing.T) {
	hub, url := newHubServer(t)

	stable := dial(t, url)
	require.NoError(t, stable.WriteJSON(ClientMsg{Type: "subscribe", UserID: "u1"}))
	waitSubscribers(t, hub, "u1", 1)

	// drena o cliente estável pra escrita nunca bloquear por buffer cheio
	go func() {
		for {
			if _, _, err := stable.ReadMessage(); err != nil {
				return
			}
		}
	}()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			hub.Broadcast(SettlementUpdate{UserID: "u1", Payload: i})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			c, _, err := websocket.DefaultDialer.Dial(url, nil)
			if err != nil {
				continue
			}
			_ = c.WriteJSON(ClientMsg{Type: "subscribe", UserID: "u1"})
			_ = c.WriteJSON(ClientMsg{Type: "unsubscribe", UserID: "u1"})
			c.Close()
		}
	}()
	wg.Wait()
}

// Pong do loop de leitura e broadcast saem de goroutines diferentes na
// mesma conexão; as escritas são serializadas pelo mutex do cliente.
func TestPingInterleavedWithBroadcast(t *testing.T) {
	hub, url := newHubServer(t)

	conn := dial(t, url)
	require.NoError(t, conn.WriteJSON(ClientMsg{Type: "subscribe", UserID: "u1"}))
	waitSubscribers(t, hub, "u1", 1)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			hub.Broadcast(SettlementUpdate{UserID: "u1", Payload: i})
		}
	}()

	pongs := 0
	for i := 0; i < 10; i++ {
		require.NoError(t, conn.WriteJSON(ClientMsg{Type: "ping"}))
	}
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for pongs < 10 {
		var raw map[string]any
		require.NoError(t, conn.ReadJSON(&raw))
		if raw["type"] == "pong" {
			pongs++
		}
	}
	<-done
	assert.Equal(t, 10, pongs)
}
