package engine

import (
	"slices"

	"github.com/bbernstein/layerjson/internal/models"
)

type EventType string

const (
	// EventDataLoading fires before each fetch with the request URL.
	EventDataLoading EventType = "dataloading"
	// EventDataLoaded fires after a successful fetch, before the markers
	// are reconciled.
	EventDataLoaded EventType = "dataloaded"
)

type Event struct {
	Type EventType
	URL  string
	Data models.Records
}

// On registers fn for events of type t. Listeners run on the goroutine that
// produced the event and must not block.
func (l *Layer) On(t EventType, fn func(Event)) {
	l.listenersMu.Lock()
	defer l.listenersMu.Unlock()

	l.listeners[t] = append(l.listeners[t], fn)
}

func (l *Layer) emit(e Event) {
	l.listenersMu.RLock()
	listeners := slices.Clone(l.listeners[e.Type])
	l.listenersMu.RUnlock()

	for _, fn := range listeners {
		fn(e)
	}
}
