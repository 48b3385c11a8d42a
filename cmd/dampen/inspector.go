package main

import (
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// inspector pushes reload and error notifications to connected dev clients
// over websocket, the way the browser side of a dev server listens for
// rebuild events.
type inspector struct {
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*websocket.Conn]string
}

func newInspector() *inspector {
	return &inspector{
		clients: make(map[*websocket.Conn]string),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Dev-only endpoint, any origin may connect.
				return true
			},
		},
	}
}

func (ins *inspector) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := ins.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("inspector: upgrade failed: %v", err)
		return
	}

	id := uuid.New().String()
	ins.mu.Lock()
	ins.clients[conn] = id
	ins.mu.Unlock()
	log.Printf("🔌 inspector client connected: %s", id)

	if err := conn.WriteJSON(map[string]any{"type": "HELLO", "client": id}); err != nil {
		log.Printf("inspector: send to %s failed: %v", id, err)
	}

	// Drain until the client goes away; the inspector is broadcast-only.
	go func() {
		defer func() {
			ins.mu.Lock()
			delete(ins.clients, conn)
			ins.mu.Unlock()
			conn.Close()
			log.Printf("🔌 inspector client disconnected: %s", id)
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (ins *inspector) broadcast(msgType string, data map[string]any) {
	message := map[string]any{"type": msgType}
	for k, v := range data {
		message[k] = v
	}

	ins.mu.RLock()
	defer ins.mu.RUnlock()
	for conn, id := range ins.clients {
		if err := conn.WriteJSON(message); err != nil {
			log.Printf("inspector: send to %s failed: %v", id, err)
		}
	}
}
