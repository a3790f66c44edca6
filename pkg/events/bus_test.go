package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendAssignsMonotonicIDs(t *testing.T) {
	bus := NewBus(100)

	var ids []int64
	ids = append(ids, bus.Append(TypeTopologyCreated, nil, nil))
	ids = append(ids, bus.Append(TypeExecutionStarted, nil, nil))
	ids = append(ids, bus.Append(TypeTeamStarted, TeamStartedData{TeamName: "T1"}, &Metadata{TeamID: "team_a"}))

	for i := 1; i < len(ids); i++ {
		assert.Greater(t, ids[i], ids[i-1])
	}
}

func TestSinceReturnsDeltaAndIsIdempotent(t *testing.T) {
	bus := NewBus(100)
	bus.Append(TypeTopologyCreated, nil, nil)
	bus.Append(TypeExecutionStarted, nil, nil)

	evs, cursor, terminal := bus.Since(0)
	require.Len(t, evs, 2)
	assert.False(t, terminal)

	again, cursor2, _ := bus.Since(0)
	require.Len(t, again, 2)
	assert.Equal(t, cursor, cursor2)
	for i := range evs {
		assert.Equal(t, evs[i].ID, again[i].ID)
		assert.Equal(t, evs[i].Type, again[i].Type)
	}

	delta, _, _ := bus.Since(cursor)
	assert.Empty(t, delta)
}

func TestSinceReportsTerminal(t *testing.T) {
	bus := NewBus(100)
	bus.Append(TypeTopologyCreated, nil, nil)
	bus.AppendTerminal(TypeExecutionCompleted, ExecutionCompletedData{Result: "final"}, nil)

	evs, cursor, terminal := bus.Since(0)
	require.Len(t, evs, 2)
	assert.True(t, terminal)
	assert.Equal(t, TypeExecutionCompleted, evs[1].Type)

	// Polling after terminal returns an empty delta, still terminal.
	delta, _, terminal := bus.Since(cursor)
	assert.Empty(t, delta)
	assert.True(t, terminal)
}

func TestAppendAfterTerminalIsIgnored(t *testing.T) {
	bus := NewBus(100)
	bus.AppendTerminal(TypeError, ErrorData{Kind: "internal", Message: "boom"}, nil)

	id := bus.Append(TypeTeamStarted, nil, nil)
	assert.Zero(t, id)
	assert.Equal(t, 1, bus.Len())
}

func TestErrorEventDoesNotEndLog(t *testing.T) {
	bus := NewBus(100)
	bus.Append(TypeTopologyCreated, nil, nil)
	bus.Append(TypeError, ErrorData{Kind: "model_permanent", Message: "worker failed"}, &Metadata{TeamID: "team_b"})
	bus.Append(TypeTeamCompleted, TeamCompletedData{TeamName: "T2", Status: "failed"}, &Metadata{TeamID: "team_b"})
	id := bus.AppendTerminal(TypeExecutionCompleted, ExecutionCompletedData{Result: "final"}, nil)
	require.NotZero(t, id)

	evs, _, terminal := bus.Since(0)
	require.Len(t, evs, 4)
	assert.True(t, terminal)
	assert.Equal(t, TypeError, evs[1].Type)
	assert.Equal(t, TypeExecutionCompleted, evs[3].Type)
}

func TestOverflowDropsOldestAndEmitsMarker(t *testing.T) {
	bus := NewBus(5)
	for i := 0; i < 8; i++ {
		bus.Append(TypeWorkerCompleted, WorkerCompletedData{WorkerName: "w"}, nil)
	}

	evs, _, _ := bus.Since(0)
	require.NotEmpty(t, evs)
	assert.LessOrEqual(t, len(evs), 5)

	var marker *Event
	for i := range evs {
		if evs[i].Type == TypeEventsDropped {
			marker = &evs[i]
			break
		}
	}
	require.NotNil(t, marker, "expected an events_dropped marker after overflow")
	data, ok := marker.Data.(EventsDroppedData)
	require.True(t, ok)
	assert.Positive(t, data.DroppedCount)

	// IDs remain strictly increasing across the gap.
	for i := 1; i < len(evs); i++ {
		assert.Greater(t, evs[i].ID, evs[i-1].ID)
	}
}

func TestSubscribeDeliversUntilTerminal(t *testing.T) {
	bus := NewBus(100)
	bus.Append(TypeTopologyCreated, nil, nil)

	ch := bus.Subscribe(context.Background())

	go func() {
		bus.Append(TypeExecutionStarted, nil, nil)
		bus.AppendTerminal(TypeExecutionCompleted, ExecutionCompletedData{Result: "done"}, nil)
	}()

	var got []Type
	for ev := range ch {
		got = append(got, ev.Type)
	}
	assert.Equal(t, []Type{TypeTopologyCreated, TypeExecutionStarted, TypeExecutionCompleted}, got)
}

func TestSubscribeStopsOnContextCancel(t *testing.T) {
	bus := NewBus(100)
	bus.Append(TypeTopologyCreated, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	ch := bus.Subscribe(ctx)

	ev, ok := <-ch
	require.True(t, ok)
	assert.Equal(t, TypeTopologyCreated, ev.Type)

	cancel()
	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("subscriber channel not closed after cancel")
	}
}

func TestConcurrentAppendersKeepTotalOrder(t *testing.T) {
	bus := NewBus(10000)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				bus.Append(TypeWorkerCompleted, nil, nil)
			}
		}()
	}
	wg.Wait()

	evs, _, _ := bus.Since(0)
	require.Len(t, evs, 800)
	for i := 1; i < len(evs); i++ {
		assert.Equal(t, evs[i-1].ID+1, evs[i].ID)
	}
}

func TestSubscribeFromResumesAfterCursor(t *testing.T) {
	bus := NewBus(100)
	bus.Append(TypeTopologyCreated, nil, nil)
	id2 := bus.Append(TypeExecutionStarted, nil, nil)
	bus.AppendTerminal(TypeExecutionCompleted, nil, nil)

	var got []int64
	for ev := range bus.SubscribeFrom(context.Background(), id2) {
		got = append(got, ev.ID)
	}
	assert.Equal(t, []int64{id2 + 1}, got)
}
