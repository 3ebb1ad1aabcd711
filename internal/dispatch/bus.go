// Package dispatch owns the per-source polling timers, the retained
// snapshots and the one-way update channel toward the presentation layer.
package dispatch

import (
	"log/slog"
	"sync"
)

// Topic identifies one update stream.
type Topic string

const (
	TopicWeather  Topic = "weather"
	TopicStocks   Topic = "stocks"
	TopicHoro     Topic = "horoscope"
	TopicVibe     Topic = "vibe"
	TopicTodos    Topic = "todos"
	TopicUsage    Topic = "usage"
	TopicActivity Topic = "activity"
	TopicSystem   Topic = "system"
	TopicClock    Topic = "clock"
	TopicNewsSet  Topic = "news-set"
	TopicNewsItem Topic = "news-item"
)

// Event is one update pushed to subscribers.
type Event struct {
	Topic   Topic
	Payload any
}

type subscriber struct {
	topics map[Topic]struct{}
	ch     chan Event
}

// Bus fans events out to subscribers. Publishing never blocks: a subscriber
// whose channel is full misses the event.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]*subscriber
	logger *slog.Logger
}

// NewBus returns an empty bus.
func NewBus(logger *slog.Logger) *Bus {
	return &Bus{subs: make(map[int]*subscriber), logger: logger}
}

// Subscribe registers interest in the given topics (all topics when none
// given). The returned cancel func closes the channel.
func (b *Bus) Subscribe(buffer int, topics ...Topic) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	sub := &subscriber{ch: make(chan Event, buffer)}
	if len(topics) > 0 {
		sub.topics = make(map[Topic]struct{}, len(topics))
		for _, t := range topics {
			sub.topics[t] = struct{}{}
		}
	}

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = sub
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if s, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(s.ch)
		}
		b.mu.Unlock()
	}
	return sub.ch, cancel
}

// Publish delivers the event to every matching subscriber, dropping it for
// any subscriber that cannot keep up.
func (b *Bus) Publish(topic Topic, payload any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, sub := range b.subs {
		if sub.topics != nil {
			if _, ok := sub.topics[topic]; !ok {
				continue
			}
		}
		select {
		case sub.ch <- Event{Topic: topic, Payload: payload}:
		default:
			if b.logger != nil {
				b.logger.Debug("dropping event for slow subscriber", "topic", string(topic))
			}
		}
	}
}
