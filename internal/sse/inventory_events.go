package sse

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"cine-storefront/internal/models"
)

// InventoryEmitter fans inventory snapshots out to connected SSE clients.
type InventoryEmitter struct {
	clients     map[chan models.InventorySnapshot]struct{}
	clientMutex sync.RWMutex
}

func NewInventoryEmitter() *InventoryEmitter {
	return &InventoryEmitter{
		clients: make(map[chan models.InventorySnapshot]struct{}),
	}
}

// Subscribe registers a client until ctx is done; the channel is closed afterwards.
func (e *InventoryEmitter) Subscribe(ctx context.Context) <-chan models.InventorySnapshot {
	clientChan := make(chan models.InventorySnapshot, 10)

	e.clientMutex.Lock()
	e.clients[clientChan] = struct{}{}
	e.clientMutex.Unlock()

	go func() {
		<-ctx.Done()
		e.removeClient(clientChan)
	}()

	return clientChan
}

// Emit sends snap to every client without blocking on slow readers.
func (e *InventoryEmitter) Emit(snap models.InventorySnapshot) {
	e.clientMutex.RLock()
	defer e.clientMutex.RUnlock()

	for clientChan := range e.clients {
		select {
		case clientChan <- snap:
		default:
			// buffer full, the client catches up on the next snapshot
		}
	}
}

func (e *InventoryEmitter) removeClient(clientChan chan models.InventorySnapshot) {
	e.clientMutex.Lock()
	defer e.clientMutex.Unlock()

	if _, ok := e.clients[clientChan]; ok {
		delete(e.clients, clientChan)
		close(clientChan)
	}
}

func (e *InventoryEmitter) ClientCount() int {
	e.clientMutex.RLock()
	defer e.clientMutex.RUnlock()
	return len(e.clients)
}

// Stream writes initial, then every emitted snapshot, as SSE "inventory" events
// until the request ends. A comment line is sent every keepAlive.
func (e *InventoryEmitter) Stream(w http.ResponseWriter, r *http.Request, initial models.InventorySnapshot, keepAlive time.Duration) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return fmt.Errorf("streaming unsupported")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	if err := writeEvent(w, initial); err != nil {
		return err
	}
	flusher.Flush()

	updates := e.Subscribe(r.Context())
	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return nil
		case snap, ok := <-updates:
			if !ok {
				return nil
			}
			if err := writeEvent(w, snap); err != nil {
				return err
			}
			flusher.Flush()
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return err
			}
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, snap models.InventorySnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: inventory\ndata: %s\n\n", data)
	return err
}
