package progress

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"FleetRentOps/api/constants"
)

// Event is one row-level progress notification emitted by an import
// session. It replaces the toast channel of the old dashboard: the
// orchestrator publishes, interested clients subscribe per batch.
type Event struct {
	Type     string `json:"type"`
	BatchID  string `json:"batch_id"`
	RowIndex int    `json:"row_index,omitempty"`
	Outcome  string `json:"outcome,omitempty"`
	Message  string `json:"message,omitempty"`
	Time     string `json:"time"`
}

type SSEClient struct {
	batchID  string
	writer   http.ResponseWriter
	flusher  http.Flusher
	done     chan bool
	lastPing time.Time
}

// SSEServer streams import progress to at most one client per batch.
type SSEServer struct {
	mu         sync.RWMutex
	clients    map[string]*SSEClient
	pingTicker *time.Ticker
	stopCh     chan struct{}
}

func NewSSEServer() *SSEServer {
	s := &SSEServer{
		clients: make(map[string]*SSEClient),
		stopCh:  make(chan struct{}),
	}

	// Keep idle connections alive while a long batch runs
	s.pingTicker = time.NewTicker(30 * time.Second)
	go s.pingClients()

	return s
}

// HandleSSE subscribes the caller to the row events of one batch.
func (s *SSEServer) HandleSSE(batchID string, w http.ResponseWriter, r *http.Request) {
	w.Header().Set(constants.ContentTypeText, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set(constants.HeaderAccessControlAllowOrigin, "*")
	w.Header().Set(constants.HeaderAccessControlAllowHeaders, "Cache-Control")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}
	if batchID == "" {
		http.Error(w, "batch id required", http.StatusBadRequest)
		return
	}

	client := &SSEClient{
		batchID:  batchID,
		writer:   w,
		flusher:  flusher,
		done:     make(chan bool),
		lastPing: time.Now(),
	}

	s.mu.Lock()
	// A reconnect replaces the previous subscriber for this batch
	if existing, exists := s.clients[batchID]; exists {
		close(existing.done)
	}
	s.clients[batchID] = client
	s.mu.Unlock()

	s.sendToClient(client, Event{
		Type:    "connected",
		BatchID: batchID,
		Message: "progress stream established",
		Time:    time.Now().Format(time.RFC3339),
	})

	defer func() {
		s.mu.Lock()
		if s.clients[batchID] == client {
			delete(s.clients, batchID)
		}
		s.mu.Unlock()
	}()

	select {
	case <-client.done:
		return
	case <-r.Context().Done():
		return
	case <-s.stopCh:
		return
	}
}

func (s *SSEServer) sendToClient(client *SSEClient, ev Event) error {
	jsonData, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(client.writer, "data: %s\n\n", jsonData)
	if err != nil {
		return err
	}

	client.flusher.Flush()
	return nil
}

// Publish sends one event to the batch's subscriber, if any. A batch
// without a subscriber drops the event silently; the Buffer keeps the
// full history for late readers.
func (s *SSEServer) Publish(ev Event) {
	if ev.Time == "" {
		ev.Time = time.Now().Format(time.RFC3339)
	}

	s.mu.RLock()
	client, exists := s.clients[ev.BatchID]
	s.mu.RUnlock()

	if !exists {
		return
	}

	if err := s.sendToClient(client, ev); err != nil {
		s.mu.Lock()
		if s.clients[ev.BatchID] == client {
			delete(s.clients, ev.BatchID)
			close(client.done)
		}
		s.mu.Unlock()
	}
}

func (s *SSEServer) pingClients() {
	defer s.pingTicker.Stop()

	for {
		select {
		case <-s.pingTicker.C:
			s.mu.RLock()
			for batchID, client := range s.clients {
				err := s.sendToClient(client, Event{
					Type:    "ping",
					BatchID: batchID,
					Time:    time.Now().Format(time.RFC3339),
				})
				if err != nil {
					go func(id string, c *SSEClient) {
						s.mu.Lock()
						if s.clients[id] == c {
							delete(s.clients, id)
							close(c.done)
						}
						s.mu.Unlock()
					}(batchID, client)
				} else {
					client.lastPing = time.Now()
				}
			}
			s.mu.RUnlock()
		case <-s.stopCh:
			return
		}
	}
}

func (s *SSEServer) Stop() {
	close(s.stopCh)
	s.mu.Lock()
	for _, client := range s.clients {
		close(client.done)
	}
	s.clients = make(map[string]*SSEClient)
	s.mu.Unlock()
}

// ClientCount returns the number of connected subscribers.
func (s *SSEServer) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}
