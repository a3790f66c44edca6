package model

import "context"

type limitedClient struct {
	inner Client
	sem   chan struct{}
}

// WithLimit wraps a client so at most n invocations run concurrently across
// all callers. Waiting respects ctx cancellation. n < 1 disables the limit.
func WithLimit(inner Client, n int) Client {
	if n < 1 {
		return inner
	}
	return &limitedClient{
		inner: inner,
		sem:   make(chan struct{}, n),
	}
}

func (l *limitedClient) acquire(ctx context.Context) error {
	select {
	case l.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return WrapContextError("limiter", ctx.Err())
	}
}

func (l *limitedClient) release() {
	<-l.sem
}

func (l *limitedClient) Invoke(ctx context.Context, req Request) (*Response, error) {
	if err := l.acquire(ctx); err != nil {
		return nil, err
	}
	defer l.release()
	return l.inner.Invoke(ctx, req)
}

func (l *limitedClient) InvokeStructured(ctx context.Context, req StructuredRequest) (*Selection, error) {
	if err := l.acquire(ctx); err != nil {
		return nil, err
	}
	defer l.release()
	return l.inner.InvokeStructured(ctx, req)
}
