package messaging

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/presence-hub/office-presence-hub/internal/domain/shared"
)

type countingHandler struct {
	mu       sync.Mutex
	name     string
	received []shared.Event
	err      error
}

func (h *countingHandler) Handle(event shared.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.received = append(h.received, event)
	return h.err
}

func (h *countingHandler) HandlerName() string {
	return h.name
}

func (h *countingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.received)
}

func syncBus() *InMemoryEventBus {
	config := DefaultInMemoryEventBusConfig()
	config.AsyncMode = false
	return NewInMemoryEventBus(config)
}

func TestEventBus_DeliversToSubscribedHandler(t *testing.T) {
	bus := syncBus()
	defer bus.Close()

	handler := &countingHandler{name: "entered"}
	require.NoError(t, bus.Subscribe(shared.EventOfficeEntered, handler))

	event := shared.NewPresenceChangedEvent("e1", true, time.Now(), "")
	require.NoError(t, bus.Publish(event))

	require.Equal(t, 1, handler.count())
	assert.Equal(t, shared.EventOfficeEntered, handler.received[0].EventType())
}

func TestEventBus_DoesNotDeliverOtherTypes(t *testing.T) {
	bus := syncBus()
	defer bus.Close()

	handler := &countingHandler{name: "entered-only"}
	require.NoError(t, bus.Subscribe(shared.EventOfficeEntered, handler))

	exit := shared.NewPresenceChangedEvent("e1", false, time.Now(), "")
	require.NoError(t, bus.Publish(exit))

	assert.Equal(t, 0, handler.count())
}

func TestEventBus_SubscribeAllReceivesEverything(t *testing.T) {
	bus := syncBus()
	defer bus.Close()

	all := &countingHandler{name: "all"}
	require.NoError(t, bus.SubscribeAll(all))

	require.NoError(t, bus.Publish(shared.NewPresenceChangedEvent("e1", true, time.Now(), "")))
	require.NoError(t, bus.Publish(shared.NewCorrectionAppliedEvent(shared.EventCorrectionAdded, "add", "e2", "r")))

	assert.Equal(t, 2, all.count())
}

func TestEventBus_HandlerErrorDoesNotStopOthers(t *testing.T) {
	bus := syncBus()
	defer bus.Close()

	failing := &countingHandler{name: "failing", err: errors.New("boom")}
	healthy := &countingHandler{name: "healthy"}
	require.NoError(t, bus.Subscribe(shared.EventOfficeEntered, failing))
	require.NoError(t, bus.Subscribe(shared.EventOfficeEntered, healthy))

	require.NoError(t, bus.Publish(shared.NewPresenceChangedEvent("e1", true, time.Now(), "")))

	assert.Equal(t, 1, failing.count())
	assert.Equal(t, 1, healthy.count())
}

func TestEventBus_RejectsNilInput(t *testing.T) {
	bus := syncBus()
	defer bus.Close()

	assert.ErrorIs(t, bus.Subscribe(shared.EventOfficeEntered, nil), ErrNilHandler)
	assert.ErrorIs(t, bus.SubscribeAll(nil), ErrNilHandler)
	assert.ErrorIs(t, bus.Publish(nil), ErrNilEvent)
}

func TestEventBus_ClosedBusRefusesPublish(t *testing.T) {
	bus := syncBus()
	require.NoError(t, bus.Close())

	err := bus.Publish(shared.NewPresenceChangedEvent("e1", true, time.Now(), ""))
	assert.ErrorIs(t, err, ErrEventBusClosed)
}

func TestEventBus_MetricsRecordPublishes(t *testing.T) {
	bus := syncBus()
	defer bus.Close()

	handler := &countingHandler{name: "counted"}
	require.NoError(t, bus.Subscribe(shared.EventOfficeEntered, handler))
	require.NoError(t, bus.Publish(shared.NewPresenceChangedEvent("e1", true, time.Now(), "")))

	metrics := bus.Metrics()
	require.NotNil(t, metrics)
	snapshot := metrics.Snapshot()
	assert.Equal(t, int64(1), snapshot.TotalPublished)
	assert.Equal(t, int64(1), snapshot.TotalHandlerExecs)
	assert.Equal(t, 1.0, snapshot.HandlerSuccessRate)
}

func TestEventBus_AsyncModeEventuallyDelivers(t *testing.T) {
	config := DefaultInMemoryEventBusConfig()
	config.AsyncMode = true
	config.WorkerPoolSize = 2
	bus := NewInMemoryEventBus(config)

	handler := &countingHandler{name: "async"}
	require.NoError(t, bus.Subscribe(shared.EventOfficeEntered, handler))
	require.NoError(t, bus.Publish(shared.NewPresenceChangedEvent("e1", true, time.Now(), "")))

	// Close waits for in-flight handlers.
	require.NoError(t, bus.Close())
	assert.Equal(t, 1, handler.count())
}
