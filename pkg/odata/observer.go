package odata

import (
	"context"
	"time"
)

// Outcome labels reported with every Event.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Event describes one dispatched request.
type Event struct {
	Operation string
	Method    string
	URL       string
	Start     time.Time
	Duration  time.Duration
	Err       error
}

// Outcome returns OutcomeSuccess or OutcomeError.
func (e Event) Outcome() string {
	if e.Err != nil {
		return OutcomeError
	}
	return OutcomeSuccess
}

// Observer receives an Event after every request completes.
type Observer interface {
	Observe(ctx context.Context, e Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ctx context.Context, e Event)

// Observe calls f(ctx, e).
func (f ObserverFunc) Observe(ctx context.Context, e Event) {
	f(ctx, e)
}

type multiObserver []Observer

func (m multiObserver) Observe(ctx context.Context, e Event) {
	for _, o := range m {
		o.Observe(ctx, e)
	}
}

// Observers fans events out to every non-nil observer, in order.
func Observers(obs ...Observer) Observer {
	out := make(multiObserver, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			out = append(out, o)
		}
	}
	return out
}
