package roplace

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// wsServer upgrades one connection and sends the given messages.
func wsServer(t *testing.T, messages []string) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade error: %v", err)
			return
		}
		defer conn.Close()
		for _, msg := range messages {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return
			}
		}
		// keep the connection open until the client closes it
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
}

func wsURL(ts *httptest.Server) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http")
}

func TestChannelDeliversUpdatesInOrder(t *testing.T) {
	ts := wsServer(t, []string{
		`{"itemId":1,"price":100}`,
		`{"itemId":1,"price":90}`,
	})
	defer ts.Close()

	ch, err := DialChannel(context.Background(), wsURL(ts), zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	defer ch.Close()

	first := recvUpdate(t, ch)
	second := recvUpdate(t, ch)
	if first.ItemID != 1 || first.Price == nil || *first.Price != 100 {
		t.Errorf("first = %+v", first)
	}
	if second.Price == nil || *second.Price != 90 {
		t.Errorf("second = %+v", second)
	}
}

func TestChannelDropsMalformedMessages(t *testing.T) {
	ts := wsServer(t, []string{
		`not json at all`,
		`{"price":100}`, // no itemId
		`{"itemId":2,"available":0}`,
	})
	defer ts.Close()

	ch, err := DialChannel(context.Background(), wsURL(ts), zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	defer ch.Close()

	// only the well-formed message survives
	got := recvUpdate(t, ch)
	if got.ItemID != 2 || got.Available == nil || *got.Available != 0 {
		t.Errorf("got = %+v", got)
	}
}

func TestChannelClosesUpdatesOnDisconnect(t *testing.T) {
	upgrader := websocket.Upgrader{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn.Close() // drop immediately
	}))
	defer ts.Close()

	ch, err := DialChannel(context.Background(), wsURL(ts), zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	defer ch.Close()

	select {
	case _, ok := <-ch.Updates():
		if ok {
			t.Error("got an update from a dropped connection")
		}
	case <-time.After(2 * time.Second):
		t.Error("updates channel not closed after disconnect")
	}
}

func recvUpdate(t *testing.T, ch *Channel) ItemUpdate {
	t.Helper()
	select {
	case u, ok := <-ch.Updates():
		if !ok {
			t.Fatal("updates channel closed early")
		}
		return u
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for update")
	}
	return ItemUpdate{}
}
