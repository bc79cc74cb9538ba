package eventbus

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Handler receives events for one topic. Handlers must not assume any
// ordering relative to other handlers on the same topic.
type Handler func(Event)

// Bus is a process-local publish/subscribe hub. Publish is a synchronous
// fan-out over the snapshot of handlers at call time: a handler added
// during fan-out is not invoked for that publish, and Publish returns only
// after every handler ran. There is no queueing, retry or persistence.
type Bus struct {
	mutex  sync.RWMutex
	nextID int
	topics map[string]map[int]Handler
	logger *zap.Logger
}

func NewBus() *Bus {
	return &Bus{
		topics: make(map[string]map[int]Handler),
		logger: zap.NewNop(),
	}
}

// SetLogger replaces the bus logger (a nop logger is used before the
// logging component starts).
func (b *Bus) SetLogger(l *zap.Logger) {
	if l == nil {
		return
	}
	b.mutex.Lock()
	b.logger = l
	b.mutex.Unlock()
}

// Subscribe registers handler for topic and returns the capability to
// remove it. Unsubscribing twice is harmless.
func (b *Bus) Subscribe(topic string, handler Handler) func() {
	if handler == nil {
		return func() {}
	}
	b.mutex.Lock()
	id := b.nextID
	b.nextID++
	set, ok := b.topics[topic]
	if !ok {
		set = make(map[int]Handler)
		b.topics[topic] = set
	}
	set[id] = handler
	b.mutex.Unlock()

	return func() {
		b.mutex.Lock()
		if set, ok := b.topics[topic]; ok {
			delete(set, id)
			if len(set) == 0 {
				delete(b.topics, topic)
			}
		}
		b.mutex.Unlock()
	}
}

// Publish delivers payload to every current subscriber of topic. A handler
// panic is recovered and logged; it never aborts delivery to the remaining
// handlers and never propagates to the publisher. Publishing with zero
// subscribers is a no-op.
func (b *Bus) Publish(topic string, payload Payload) {
	b.mutex.RLock()
	set := b.topics[topic]
	handlers := make([]Handler, 0, len(set))
	for _, h := range set {
		handlers = append(handlers, h)
	}
	logger := b.logger
	b.mutex.RUnlock()

	if len(handlers) == 0 {
		return
	}
	evt := Event{Topic: topic, Timestamp: time.Now().UTC(), Payload: payload}
	for _, h := range handlers {
		invoke(logger, topic, h, evt)
	}
}

func invoke(logger *zap.Logger, topic string, h Handler, evt Event) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("event handler panicked",
				zap.String("topic", topic),
				zap.Any("panic", r),
			)
		}
	}()
	h(evt)
}

// SubscriberCount returns the number of handlers currently subscribed to
// topic.
func (b *Bus) SubscriberCount(topic string) int {
	b.mutex.RLock()
	defer b.mutex.RUnlock()
	return len(b.topics[topic])
}

// Topics lists all topics with at least one subscriber, sorted.
func (b *Bus) Topics() []string {
	b.mutex.RLock()
	names := make([]string, 0, len(b.topics))
	for t := range b.topics {
		names = append(names, t)
	}
	b.mutex.RUnlock()
	sort.Strings(names)
	return names
}
