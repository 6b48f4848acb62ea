package interfaces

import "context"

// -----------------------------------------------------------------------------
// IFeedTransport is a live, path-addressed read subscription to the feed tree.
// -----------------------------------------------------------------------------

type IFeedTransport interface {

	// Name identifies the transport in logs.
	Name() string

	// -----------------------------------------------------------------------------

	// Listen opens the subscription at path. onValue receives the raw JSON of
	// the whole tree at path on every change (nil or "null" when absent).
	// onError receives transport failures; reconnection is the transport's own
	// business. The returned stop detaches synchronously: once it returns,
	// neither callback is invoked again.
	Listen(ctx context.Context, path string, onValue func(raw []byte), onError func(err error)) (stop func(), err error)
}
