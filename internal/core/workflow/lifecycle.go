package workflow

import (
	"fmt"
	"imgtool/internal/core/domain"
	"sync"
)

var transitions = map[domain.Phase]map[domain.Event]domain.Phase{
	domain.Idle: {
		domain.Submit: domain.Uploading,
	},
	domain.Uploading: {
		domain.RequestSent:    domain.Processing,
		domain.TransportError: domain.Failed,
	},
	domain.Processing: {
		domain.ResponseOK:     domain.Succeeded,
		domain.ResponseError:  domain.Failed,
		domain.TransportError: domain.Failed,
	},
	domain.Succeeded: {
		domain.Submit: domain.Uploading,
		domain.Reset:  domain.Idle,
	},
	domain.Failed: {
		domain.Submit: domain.Uploading,
		domain.Reset:  domain.Idle,
	},
}

// Listener observes accepted transitions. Listeners run after the lifecycle is unlocked, on the goroutine
// that fired the event.
type Listener func(t domain.Transition)

// Lifecycle is the phase machine of a single workflow instance.
type Lifecycle struct {
	mu        sync.Mutex
	phase     domain.Phase
	trace     []domain.Transition
	listeners []Listener
}

func NewLifecycle(listeners ...Listener) *Lifecycle {
	return &Lifecycle{phase: domain.Idle, listeners: listeners}
}

func (l *Lifecycle) Phase() domain.Phase {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.phase
}

// Trace returns a copy of every transition accepted so far.
func (l *Lifecycle) Trace() []domain.Transition {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]domain.Transition, len(l.trace))
	copy(out, l.trace)
	return out
}

// Fire applies an event and returns the resulting phase. Rejected events leave the phase unchanged.
func (l *Lifecycle) Fire(event domain.Event) (domain.Phase, error) {
	l.mu.Lock()

	next, ok := transitions[l.phase][event]
	if !ok {
		phase := l.phase
		l.mu.Unlock()

		if event == domain.Submit && phase.Busy() {
			return phase, domain.ErrBusy
		}
		return phase, fmt.Errorf("%w: %s on %s", domain.ErrInvalidTransition, event, phase)
	}

	t := domain.Transition{From: l.phase, Event: event, To: next}
	l.phase = next
	l.trace = append(l.trace, t)
	l.mu.Unlock()

	for _, listener := range l.listeners {
		listener(t)
	}

	return next, nil
}
