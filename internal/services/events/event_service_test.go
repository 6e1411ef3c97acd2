package events

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/smartninja/priceagent/internal/interfaces"
)

func TestPublishSyncFansOut(t *testing.T) {
	svc := NewService(arbor.NewLogger())

	var count int32
	for i := 0; i < 3; i++ {
		require.NoError(t, svc.Subscribe(interfaces.EventPipelineStarted, func(ctx context.Context, e interfaces.Event) error {
			atomic.AddInt32(&count, 1)
			return nil
		}))
	}

	require.NoError(t, svc.PublishSync(context.Background(), interfaces.Event{Type: interfaces.EventPipelineStarted}))

	assert.Equal(t, int32(3), atomic.LoadInt32(&count))
}

func TestHandlerErrorIsolated(t *testing.T) {
	svc := NewService(arbor.NewLogger())

	var healthyRan bool
	var mu sync.Mutex
	require.NoError(t, svc.Subscribe(interfaces.EventStageStarted, func(ctx context.Context, e interfaces.Event) error {
		return errors.New("observer broke")
	}))
	require.NoError(t, svc.Subscribe(interfaces.EventStageStarted, func(ctx context.Context, e interfaces.Event) error {
		mu.Lock()
		healthyRan = true
		mu.Unlock()
		return nil
	}))

	require.NoError(t, svc.PublishSync(context.Background(), interfaces.Event{Type: interfaces.EventStageStarted}))

	mu.Lock()
	defer mu.Unlock()
	assert.True(t, healthyRan)
}

func TestHandlerPanicIsolated(t *testing.T) {
	svc := NewService(arbor.NewLogger())

	require.NoError(t, svc.Subscribe(interfaces.EventAlertTriggered, func(ctx context.Context, e interfaces.Event) error {
		panic("handler panicked")
	}))

	// Publishing must not propagate the panic.
	require.NoError(t, svc.PublishSync(context.Background(), interfaces.Event{Type: interfaces.EventAlertTriggered}))
}

func TestSubscribeNilHandlerRejected(t *testing.T) {
	svc := NewService(arbor.NewLogger())
	assert.Error(t, svc.Subscribe(interfaces.EventPipelineStarted, nil))
}

func TestPublishNoSubscribers(t *testing.T) {
	svc := NewService(arbor.NewLogger())
	assert.NoError(t, svc.Publish(context.Background(), interfaces.Event{Type: interfaces.EventPipelineError}))
}

func TestCloseClearsSubscribers(t *testing.T) {
	svc := NewService(arbor.NewLogger())

	var called int32
	require.NoError(t, svc.Subscribe(interfaces.EventPipelineStarted, func(ctx context.Context, e interfaces.Event) error {
		atomic.AddInt32(&called, 1)
		return nil
	}))
	require.NoError(t, svc.Close())

	require.NoError(t, svc.PublishSync(context.Background(), interfaces.Event{Type: interfaces.EventPipelineStarted}))
	assert.Equal(t, int32(0), atomic.LoadInt32(&called))
}
