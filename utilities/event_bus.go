package utilities

import "sync"

// Events published by the lesson engine.
const (
	EventLessonsAssigned  = "lessons_assigned"
	EventTemplateUploaded = "template_uploaded"
)

type EventHandler func(interface{})

type EventBus struct {
	handlers map[string][]EventHandler
	mu       sync.RWMutex
	inflight sync.WaitGroup
}

func NewEventBus() *EventBus {
	return &EventBus{
		handlers: make(map[string][]EventHandler),
	}
}

func (eb *EventBus) Subscribe(event string, handler EventHandler) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.handlers[event] = append(eb.handlers[event], handler)
}

// Publish runs every handler of event in its own goroutine and returns
// without waiting for them.
func (eb *EventBus) Publish(event string, data interface{}) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	for _, handler := range eb.handlers[event] {
		eb.inflight.Add(1)
		go func(h EventHandler) {
			defer eb.inflight.Done()
			h(data)
		}(handler)
	}
}

// Wait blocks until every handler started so far has returned. Shutdown and
// tests use it; request paths never do.
func (eb *EventBus) Wait() {
	eb.inflight.Wait()
}
