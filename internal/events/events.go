package events

import (
	"encoding/json"
	"sync"
	"time"
)

const (
	EventScrapeCompleted = "scrape_completed"
	EventScrapeFailed    = "scrape_failed"
	EventPriceRecorded   = "price_recorded"
	EventCatalogChanged  = "catalog_changed"
)

// ScrapePayload summarises one scrape run for event consumers.
type ScrapePayload struct {
	RunID         string            `json:"run_id"`
	Stores        []string          `json:"stores"`
	TotalProducts int               `json:"total_products"`
	TotalSaved    int               `json:"total_saved"`
	Failed        map[string]string `json:"failed,omitempty"`
	Mode          string            `json:"mode"`
	FinishedAt    time.Time         `json:"finished_at"`
}

// PricePayload describes a manually recorded price.
type PricePayload struct {
	ItemID  int64   `json:"item_id"`
	StoreID int64   `json:"store_id"`
	Price   float64 `json:"price"`
	Date    string  `json:"date"`
}

// CatalogPayload names a store, category or item that was added.
type CatalogPayload struct {
	Kind string `json:"kind"`
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Event represents a lightweight domain event.
type Event struct {
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// Decode unmarshals the JSON payload into out.
func (e *Event) Decode(out interface{}) error {
	return json.Unmarshal(e.Payload, out)
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// ErrorHandler receives handler failures; Publish never fails itself.
type ErrorHandler func(event *Event, err error)

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	onError     ErrorHandler
	mu          sync.RWMutex
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// OnError installs a callback for failing handlers.
func (b *EventBus) OnError(h ErrorHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onError = h
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type synchronously, in subscription order.
func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	onError := b.onError
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		if err := handler(event); err != nil && onError != nil {
			onError(event, err)
		}
	}
}

// PublishJSON serializes the payload and publishes an event. A nil bus is a no-op.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
	return nil
}
