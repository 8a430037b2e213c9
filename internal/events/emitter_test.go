package events_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Guliveer/twitch-helix-go/internal/events"
)

func TestEmitter_DeliversToKindSubscribersOnly(t *testing.T) {
	t.Parallel()

	em := events.New()

	var infos, warns []events.Event
	em.Subscribe(events.KindInfo, func(ev events.Event) { infos = append(infos, ev) })
	em.Subscribe(events.KindWarn, func(ev events.Event) { warns = append(warns, ev) })

	em.Info("request completed", "path", "/users", "status", 200)

	require.Len(t, infos, 1)
	assert.Empty(t, warns)
	assert.Equal(t, events.KindInfo, infos[0].Kind)
	assert.Equal(t, "request completed", infos[0].Message)
	assert.Equal(t, "/users", infos[0].Fields["path"])
	assert.Equal(t, 200, infos[0].Fields["status"])
	assert.False(t, infos[0].Time.IsZero())
}

func TestEmitter_SubscriptionOrder(t *testing.T) {
	t.Parallel()

	em := events.New()

	var got []int
	for i := range 3 {
		em.Subscribe(events.KindError, func(events.Event) { got = append(got, i) })
	}

	em.Error("boom")
	assert.Equal(t, []int{0, 1, 2}, got)
}

func TestEmitter_UnsubscribeRemovesOnlyThatHandler(t *testing.T) {
	t.Parallel()

	em := events.New()

	var first, second int
	handler := func(counter *int) events.Handler {
		return func(events.Event) { *counter++ }
	}

	unsubFirst := em.Subscribe(events.KindInfo, handler(&first))
	em.Subscribe(events.KindInfo, handler(&second))
	assert.Equal(t, 2, em.Subscribers(events.KindInfo))

	unsubFirst()
	unsubFirst()
	assert.Equal(t, 1, em.Subscribers(events.KindInfo))

	em.Info("hello")
	assert.Equal(t, 0, first)
	assert.Equal(t, 1, second)
}

func TestEmitter_PanickingHandlerDoesNotStopDelivery(t *testing.T) {
	t.Parallel()

	em := events.New()

	var delivered bool
	em.Subscribe(events.KindWarn, func(events.Event) { panic("bad subscriber") })
	em.Subscribe(events.KindWarn, func(events.Event) { delivered = true })

	assert.NotPanics(t, func() { em.Warn("retrying") })
	assert.True(t, delivered)
}

func TestEmitter_NilHandler(t *testing.T) {
	t.Parallel()

	em := events.New()
	unsub := em.Subscribe(events.KindInfo, nil)
	assert.Equal(t, 0, em.Subscribers(events.KindInfo))
	assert.NotPanics(t, unsub)
}

func TestEvent_StringAndAttrsKeepEmissionOrder(t *testing.T) {
	t.Parallel()

	em := events.New()

	var ev events.Event
	em.Subscribe(events.KindInfo, func(e events.Event) { ev = e })
	em.Info("Renewed app access token", "ttl", "1h0m0s", "attempts", 1, "dangling")

	assert.Equal(t, "Renewed app access token ttl=1h0m0s attempts=1 !BADKEY=dangling", ev.String())
	assert.Equal(t, []any{"ttl", "1h0m0s", "attempts", 1, "!BADKEY", "dangling"}, ev.Attrs())

	v, ok := ev.Field("attempts")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestEmitter_ConcurrentEmitAndSubscribe(t *testing.T) {
	t.Parallel()

	em := events.New()

	var count atomic.Int64
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			unsub := em.Subscribe(events.KindInfo, func(events.Event) { count.Add(1) })
			unsub()
		}()
		go func() {
			defer wg.Done()
			em.Info("tick")
		}()
	}
	wg.Wait()

	em.Subscribe(events.KindInfo, func(events.Event) { count.Add(1) })
	before := count.Load()
	em.Info("final")
	assert.Equal(t, before+1, count.Load())
}
