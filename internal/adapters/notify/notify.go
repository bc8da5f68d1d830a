// Package notify delivers rendered event messages to an outbound sink.
// Delivery is best-effort: events are marked seen before delivery, so a
// failed send is logged and dropped rather than retried
package notify

import "context"

// Notifier is the outbound sink for rendered event messages
type Notifier interface {
	// Deliver sends one rendered message. Implementations must be safe for
	// concurrent use; both poll loops deliver through the same sink
	Deliver(ctx context.Context, text string) error
}
