package infra

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/smashpoint/league/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWSHubRooms(t *testing.T) {
	hub := NewWSHub(discardLogger())
	a := NewWSConn()
	b := NewWSConn()

	hub.Join(RoomLeague, a)
	hub.Join(RoomLeague, b)
	hub.Join(SeasonRoom("S1"), a)
	assert.Equal(t, 2, hub.ConnectionCount())
	assert.Equal(t, 2, hub.RoomCount())

	hub.Publish(SeasonRoom("S1"), "ping", map[string]string{"k": "v"})
	require.Len(t, a.Send, 1)
	assert.Len(t, b.Send, 0)

	var msg WSMessage
	require.NoError(t, json.Unmarshal(<-a.Send, &msg))
	assert.Equal(t, "ping", msg.Event)

	hub.Leave(SeasonRoom("S1"), a.ID)
	assert.Equal(t, 1, hub.RoomCount())

	hub.Shutdown(context.Background())
	assert.Equal(t, 0, hub.RoomCount())
	_, open := <-b.Send
	assert.False(t, open)

	late := NewWSConn()
	hub.Join(RoomLeague, late)
	_, open = <-late.Send
	assert.False(t, open, "joins after shutdown are closed immediately")
}

func TestWSHubDropsWhenBufferFull(t *testing.T) {
	hub := NewWSHub(discardLogger())
	conn := NewWSConn()
	hub.Join(RoomLeague, conn)

	for i := 0; i < wsSendBuffer+10; i++ {
		hub.Publish(RoomLeague, "tick", i)
	}
	assert.Len(t, conn.Send, wsSendBuffer)
}

func TestWSHubServe(t *testing.T) {
	hub := NewWSHub(discardLogger())
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Serve(ws, []string{RoomLeague})
	}))
	defer srv.Close()

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer client.Close()

	require.Eventually(t, func() bool { return hub.ConnectionCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	fanout := NewEventFanout(nil, "league.events", hub, discardLogger())
	evt := domain.NewMatchEvent(domain.EventMatchRecorded, domain.Match{ID: "m_1", Season: "S1"})
	fanout.Publish(context.Background(), evt)

	require.NoError(t, client.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := client.ReadMessage()
	require.NoError(t, err)

	var msg struct {
		Event string       `json:"event"`
		Data  domain.Event `json:"data"`
	}
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, string(domain.EventMatchRecorded), msg.Event)
	assert.Equal(t, "m_1", msg.Data.AggregateID)

	require.NoError(t, client.Close())
	assert.Eventually(t, func() bool { return hub.ConnectionCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestEventFanoutSkipsDisabledSinks(t *testing.T) {
	producer := NewKafkaProducer("", false, discardLogger())
	fanout := NewEventFanout(producer, "league.events", nil, discardLogger())
	assert.NotPanics(t, func() {
		fanout.Publish(context.Background(), domain.NewEvent(domain.AggregateContent, "n_1", domain.EventNewsPublished, nil))
	})
}
