package metrics

import (
	"context"

	"github.com/mariondam/Wattflex/internal/eventbus"
)

// StartCollector subscribes to the event bus and records every solve event
// on the sink. It stops when the context is canceled or the bus is closed.
// The returned channel closes once the collector has drained its
// subscription, so callers can wait for pending events to be recorded.
func StartCollector(ctx context.Context, bus *eventbus.Bus[SolveEvent], sink Sink) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
	}
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				_ = sink.RecordSolve(ev)
			}
		}
	}()
	return done
}
