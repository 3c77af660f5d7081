// Package broadcast defines the port for publishing execution-log events to
// connected observers. Broadcasting is a side effect: delivery failures never
// influence pipeline state.
package broadcast

import "context"

// Broadcaster sends typed events to all connected observers.
type Broadcaster interface {
	BroadcastEvent(ctx context.Context, eventType string, payload any)
}
