// Package collab's websocket_channel.go gives the ClientChannel port a
// concrete transport, grounded on presence-service/websocket.go's Gorilla
// usage. The engine only ever calls the ClientChannel interface (spec §6);
// this adapter lives outside the core engine's scope (spec §1) the same
// way the teacher keeps transport code in presence-service, separate from
// match-service's engine.
package collab

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/faforever/game-session-engine/internal/model"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// WebSocketChannel implements ClientChannel by sending JSON command
// envelopes down each connected player's socket.
type WebSocketChannel struct {
	mu      sync.RWMutex
	conns   map[int]*websocket.Conn
	logger  *zap.Logger
}

// NewWebSocketChannel constructs an empty registry of player connections.
func NewWebSocketChannel(logger *zap.Logger) *WebSocketChannel {
	return &WebSocketChannel{conns: map[int]*websocket.Conn{}, logger: logger}
}

// Upgrade promotes an HTTP connection for playerID to a websocket and
// registers it for future command delivery.
func (c *WebSocketChannel) Upgrade(w http.ResponseWriter, r *http.Request, playerID int) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("websocket upgrade: %w", err)
	}
	c.mu.Lock()
	c.conns[playerID] = conn
	c.mu.Unlock()
	return nil
}

type command struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

func (c *WebSocketChannel) send(playerID int, cmd command) error {
	c.mu.RLock()
	conn, ok := c.conns[playerID]
	c.mu.RUnlock()
	if !ok {
		c.logger.Debug("no socket for player, command dropped", zap.Int("playerId", playerID), zap.String("type", cmd.Type))
		return nil
	}
	return conn.WriteJSON(cmd)
}

func (c *WebSocketChannel) StartGameProcess(_ context.Context, game *model.Game, player *model.Player) error {
	return c.send(player.ID, command{Type: "startGameProcess", Data: map[string]int{"gameId": game.ID}})
}

func (c *WebSocketChannel) HostGame(_ context.Context, game *model.Game, host *model.Player) error {
	return c.send(host.ID, command{Type: "hostGame", Data: map[string]int{"gameId": game.ID}})
}

func (c *WebSocketChannel) ConnectToHost(_ context.Context, player *model.Player, game *model.Game) error {
	return c.send(player.ID, command{Type: "connectToHost", Data: map[string]int{"hostId": game.HostID}})
}

func (c *WebSocketChannel) ConnectToPeer(_ context.Context, from, to *model.Player, offerer bool) error {
	return c.send(to.ID, command{Type: "connectToPeer", Data: map[string]interface{}{"peerId": from.ID, "offerer": offerer}})
}

func (c *WebSocketChannel) DisconnectPlayerFromGame(_ context.Context, targetID int, receivers []*model.Player) error {
	for _, recv := range receivers {
		if err := c.send(recv.ID, command{Type: "disconnectPeer", Data: map[string]int{"targetId": targetID}}); err != nil {
			return err
		}
	}
	return nil
}

func (c *WebSocketChannel) SendGameList(_ context.Context, list []*model.Game, recipient *model.Player) error {
	ids := make([]int, 0, len(list))
	for _, g := range list {
		ids = append(ids, g.ID)
	}
	return c.send(recipient.ID, command{Type: "gameList", Data: ids})
}

func (c *WebSocketChannel) BroadcastGameResult(_ context.Context, msg GameResultMessage) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	for playerID := range msg.Results {
		if conn, ok := c.conns[playerID]; ok {
			_ = conn.WriteMessage(websocket.TextMessage, payload)
		}
	}
	return nil
}

// Drop removes a player's connection on disconnect.
func (c *WebSocketChannel) Drop(playerID int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if conn, ok := c.conns[playerID]; ok {
		_ = conn.Close()
		delete(c.conns, playerID)
	}
}
