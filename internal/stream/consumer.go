package stream

import "context"

// StreamConsumer is the lifecycle contract for a stream-backed evaluation
// worker: Setup creates the consumer group, Start blocks reading requests
// until the context is cancelled, Stop releases the connection.
type StreamConsumer interface {
	Setup(ctx context.Context) error
	Start(ctx context.Context) error
	Stop() error
}
