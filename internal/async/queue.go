package async

import (
	"context"
	"time"

	"github.com/aoperat/centumbob/internal/ingest"
)

// Job is one inbox image waiting to be extracted and stored.
type Job struct {
	Inbox       ingest.InboxJob
	SubmittedAt time.Time
	TraceID     string
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}

// Processor handles a single job. Implementations must honour ctx cancellation.
type Processor interface {
	Process(ctx context.Context, job ingest.InboxJob) error
}

// ProcessorFunc adapts a function to Processor.
type ProcessorFunc func(ctx context.Context, job ingest.InboxJob) error

func (f ProcessorFunc) Process(ctx context.Context, job ingest.InboxJob) error { return f(ctx, job) }
