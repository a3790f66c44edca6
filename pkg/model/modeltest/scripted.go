// Package modeltest provides a scripted model.Client for tests. Responses are
// served from a script with dual dispatch: routed entries keyed by a substring
// of the request, for parallel flows where call order is non-deterministic,
// and a sequential fallback consumed in order.
package modeltest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/catface996/opstack-executor-sub002/pkg/model"
)

// Entry defines a single scripted response.
type Entry struct {
	// Text is returned as the response body. Ignored when Err is set.
	Text string

	// Err is returned from Invoke instead of a response.
	Err error

	// BlockUntilCancelled makes Invoke block until ctx is cancelled, then
	// return the context error.
	BlockUntilCancelled bool

	// WaitCh blocks Invoke until closed, then the entry proceeds normally.
	WaitCh <-chan struct{}

	// OnBlock is notified when Invoke enters a blocking path.
	OnBlock chan<- struct{}
}

// ScriptedClient implements model.Client from a pre-loaded script.
type ScriptedClient struct {
	mu         sync.Mutex
	sequential []Entry
	seqIndex   int
	routes     map[string][]Entry
	routeIndex map[string]int
	captured   []model.Request
}

// NewScriptedClient creates an empty scripted client.
func NewScriptedClient() *ScriptedClient {
	return &ScriptedClient{
		routes:     make(map[string][]Entry),
		routeIndex: make(map[string]int),
	}
}

// AddSequential appends an entry consumed in order by non-routed calls.
func (c *ScriptedClient) AddSequential(entry Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sequential = append(c.sequential, entry)
}

// AddText is shorthand for AddSequential with a plain text response.
func (c *ScriptedClient) AddText(text string) {
	c.AddSequential(Entry{Text: text})
}

// AddRouted appends an entry served to requests whose system prompt or prompt
// contains key. Routed entries win over sequential ones.
func (c *ScriptedClient) AddRouted(key string, entry Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.routes[key] = append(c.routes[key], entry)
}

// Invoke implements model.Client.
func (c *ScriptedClient) Invoke(ctx context.Context, req model.Request) (*model.Response, error) {
	c.mu.Lock()
	c.captured = append(c.captured, req)
	entry, err := c.nextEntry(req)
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}

	if entry.BlockUntilCancelled {
		if entry.OnBlock != nil {
			entry.OnBlock <- struct{}{}
		}
		<-ctx.Done()
		return nil, model.WrapContextError("scripted", ctx.Err())
	}

	if entry.WaitCh != nil {
		if entry.OnBlock != nil {
			entry.OnBlock <- struct{}{}
		}
		select {
		case <-entry.WaitCh:
		case <-ctx.Done():
			return nil, model.WrapContextError("scripted", ctx.Err())
		}
	}

	if entry.Err != nil {
		return nil, entry.Err
	}
	return &model.Response{
		Text:  entry.Text,
		Usage: model.TokenUsage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15},
	}, nil
}

// InvokeStructured implements model.Client by running the text selection
// protocol over the scripted Invoke, so scripts answer with choice numbers.
func (c *ScriptedClient) InvokeStructured(ctx context.Context, req model.StructuredRequest) (*model.Selection, error) {
	return model.SelectViaText(ctx, c, req)
}

// CallCount returns the number of Invoke calls made so far.
func (c *ScriptedClient) CallCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.captured)
}

// Captured returns a copy of all requests seen so far.
func (c *ScriptedClient) Captured() []model.Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.Request, len(c.captured))
	copy(out, c.captured)
	return out
}

// nextEntry selects the next script entry. Must be called with c.mu held.
func (c *ScriptedClient) nextEntry(req model.Request) (*Entry, error) {
	for key, entries := range c.routes {
		if !strings.Contains(req.System, key) && !strings.Contains(req.Prompt, key) {
			continue
		}
		idx := c.routeIndex[key]
		if idx < len(entries) {
			c.routeIndex[key] = idx + 1
			return &entries[idx], nil
		}
	}

	if c.seqIndex < len(c.sequential) {
		entry := &c.sequential[c.seqIndex]
		c.seqIndex++
		return entry, nil
	}
	return nil, fmt.Errorf("scripted client: no more entries (sequential=%d/%d)",
		c.seqIndex, len(c.sequential))
}
