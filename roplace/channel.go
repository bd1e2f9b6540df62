package roplace

import (
	"context"
	"encoding/json"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"sync"
)

// Channel is one live push connection to the item service. The connection
// itself implies "subscribe to all"; no message is ever sent after connect.
// There is no reconnect: when the peer drops, Updates is closed and the
// channel is dead.
type Channel struct {
	conn    *websocket.Conn
	updates chan ItemUpdate

	closeOnce sync.Once

	Sugar *zap.SugaredLogger
}

// DialChannel opens the push connection and starts the read loop.
func DialChannel(ctx context.Context, url string, sugar *zap.SugaredLogger) (*Channel, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	ch := &Channel{
		conn:    conn,
		updates: make(chan ItemUpdate),
		Sugar:   sugar,
	}
	go ch.readLoop()
	sugar.Infof("live channel connected: %s", url)
	return ch, nil
}

// Updates delivers decoded partial updates in arrival order. The channel
// is closed when the connection ends.
func (c *Channel) Updates() <-chan ItemUpdate {
	return c.updates
}

// Close tears the connection down. Messages already read are still
// delivered; nothing is processed afterwards.
func (c *Channel) Close() {
	c.closeOnce.Do(func() {
		if err := c.conn.Close(); err != nil {
			c.Sugar.Errorf("channel close error: %s", err)
		}
	})
}

func (c *Channel) readLoop() {
	defer close(c.updates)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			c.Sugar.Infof("live channel read ended: %s", err)
			return
		}
		var update ItemUpdate
		if err = json.Unmarshal(data, &update); err != nil {
			// malformed message, drop and keep reading
			c.Sugar.Warnf("drop undecodable update: %s", err)
			continue
		}
		if update.ItemID == 0 {
			c.Sugar.Warnf("drop update without itemId: %s", data)
			continue
		}
		c.updates <- update
	}
}
