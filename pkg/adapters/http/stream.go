package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/aretw0/arrayschema/pkg/observability"
)

// allSchemas is the subscription key receiving every event.
const allSchemas = ""

// EventMessage is the SSE payload for a finished validation.
type EventMessage struct {
	Timestamp time.Time `json:"timestamp"`
	Schema    string    `json:"schema"`
	Kind      string    `json:"kind,omitempty"`
	Result    string    `json:"result"`
	Facet     string    `json:"facet,omitempty"`
	Error     string    `json:"error,omitempty"`
	Duration  float64   `json:"duration_seconds"`
}

// StreamManager handles active SSE connections.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // schema name -> set of channels
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
	}
}

// Subscribe registers a channel for events of the named schema, or of all
// schemas when name is empty. The returned func unsubscribes.
func (sm *StreamManager) Subscribe(name string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[name]; !ok {
		sm.subscribers[name] = make(map[chan<- string]struct{})
	}
	sm.subscribers[name][ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			sm.mu.Lock()
			defer sm.mu.Unlock()
			if subs, ok := sm.subscribers[name]; ok {
				delete(subs, ch)
				close(ch)
				if len(subs) == 0 {
					delete(sm.subscribers, name)
				}
			}
		})
	}
}

// Broadcast sends msg to subscribers of name and of all schemas.
// Slow clients drop messages instead of blocking validation.
func (sm *StreamManager) Broadcast(name string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	keys := []string{allSchemas}
	if name != allSchemas {
		keys = append(keys, name)
	}
	for _, key := range keys {
		for ch := range sm.subscribers[key] {
			select {
			case ch <- msg:
			default:
				slog.Warn("SSE: Client buffer full, dropping message", "schema", name)
			}
		}
	}
}

// Hooks returns observability hooks broadcasting each finished validation.
func (sm *StreamManager) Hooks() observability.Hooks {
	return observability.Hooks{
		OnValidate: func(_ context.Context, e *observability.ValidationEvent) {
			msg := EventMessage{
				Timestamp: e.Timestamp,
				Schema:    e.Schema,
				Kind:      e.Kind,
				Result:    string(e.Result),
				Facet:     e.Facet,
				Duration:  e.Duration.Seconds(),
			}
			if e.Err != nil {
				msg.Error = e.Err.Error()
			}
			data, err := json.Marshal(msg)
			if err != nil {
				return
			}
			sm.Broadcast(e.Schema, string(data))
		},
	}
}

// SubscribeEvents handles GET /events (SSE). The optional schema query
// parameter restricts the stream to one schema name.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	name := r.URL.Query().Get("schema")
	s.logger.Info("SSE: Subscribing to validation events", "schema", name)

	ch, cancel := s.Streams.Subscribe(name)
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE Client Disconnected")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: validation\ndata: %s\n\n", msg)
			flusher.Flush()
		}
	}
}
