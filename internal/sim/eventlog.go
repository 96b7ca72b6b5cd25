package sim

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// EventType classifies an entry in the event log.
type EventType uint8

const (
	EventUnknown EventType = iota
	EventPlayerConnect
	EventPlayerDisconnect
	EventPlayerDowned
	EventPlayerRevived
	EventPlayerCursed
	EventPlayerTeleported
	EventEnemySpawned
	EventAreaReconciled
)

func (t EventType) String() string {
	switch t {
	case EventPlayerConnect:
		return "player_connect"
	case EventPlayerDisconnect:
		return "player_disconnect"
	case EventPlayerDowned:
		return "player_downed"
	case EventPlayerRevived:
		return "player_revived"
	case EventPlayerCursed:
		return "player_cursed"
	case EventPlayerTeleported:
		return "player_teleported"
	case EventEnemySpawned:
		return "enemy_spawned"
	case EventAreaReconciled:
		return "area_reconciled"
	default:
		return "unknown"
	}
}

const eventLogVersion uint8 = 1

// Event is one entry in the event log; Payload is pre-encoded JSON so
// Emit never has to reflect over an interface{} under load.
type Event struct {
	Version   uint8     `json:"version"`
	Type      EventType `json:"type"`
	Timestamp int64     `json:"timestamp"`
	Sequence  uint64    `json:"sequence"`
	Tick      uint64    `json:"tick"`
	PlayerID  string    `json:"playerId,omitempty"`
	Payload   []byte    `json:"payload,omitempty"`
}

// NewEvent builds an Event, encoding payload to JSON. Encoding
// failures drop the payload but never the event itself.
func NewEvent(eventType EventType, tick uint64, playerID string, payload interface{}) Event {
	data, _ := json.Marshal(payload)
	return Event{
		Version:   eventLogVersion,
		Type:      eventType,
		Timestamp: time.Now().UnixNano(),
		Tick:      tick,
		PlayerID:  playerID,
		Payload:   data,
	}
}

const (
	eventBufferSize      = 1024
	maxEventsPerSec      = 10000
	maxEventsPerPlayer   = 100
	batchFlushSize       = 64
	batchFlushInterval   = 100 * time.Millisecond
	playerLimiterCleanup = 5 * time.Minute
)

// EventLog provides bounded, rate-limited event logging with
// backpressure, so a misbehaving or hostile client can't force
// unbounded memory growth or disk I/O. Grounded in the teacher's
// EventLog (circular buffer + x/time/rate dual rate-limiting + async
// batched flush), repurposed here from combat events to player events.
// The simulation emits connect, disconnect and teleport events; the
// downed, revived, cursed, enemy-spawned and area-reconciled types are
// defined but not emitted.
type EventLog struct {
	buffer    [eventBufferSize]Event
	writeHead uint64
	readHead  uint64

	globalLimiter  *rate.Limiter
	playerLimiters sync.Map

	writerWg sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
	running  atomic.Bool

	filePath string
	file     *os.File
	fileMu   sync.Mutex

	droppedCount uint64
	totalCount   uint64
}

type playerLimiterEntry struct {
	limiter  *rate.Limiter
	lastUsed time.Time
}

// NewEventLog creates a bounded event log that is not yet writing to
// disk; call Start to begin the async writer.
func NewEventLog() *EventLog {
	return &EventLog{
		globalLimiter: rate.NewLimiter(maxEventsPerSec, maxEventsPerSec/10),
		stopChan:      make(chan struct{}),
	}
}

// Start opens filePath (if non-empty) for append and begins the async
// writer and stale-limiter cleanup goroutines.
func (el *EventLog) Start(filePath string) error {
	if el.running.Load() {
		return nil
	}
	el.filePath = filePath

	if filePath != "" {
		file, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("open event log: %w", err)
		}
		el.file = file
	}

	el.running.Store(true)
	el.writerWg.Add(2)
	go el.writerLoop()
	go el.cleanupLoop()
	return nil
}

// Stop flushes any pending events and closes the log file.
func (el *EventLog) Stop() {
	el.stopOnce.Do(func() {
		el.running.Store(false)
		close(el.stopChan)
		el.writerWg.Wait()

		el.fileMu.Lock()
		if el.file != nil {
			el.file.Close()
		}
		el.fileMu.Unlock()
	})
}

// Emit records event, subject to global and per-player rate limits and
// the circular buffer's backpressure (oldest events are dropped under
// sustained overload rather than growing memory unbounded). Returns
// false if the event was dropped.
func (el *EventLog) Emit(event Event) bool {
	if !el.running.Load() {
		return false
	}
	if !el.globalLimiter.Allow() {
		atomic.AddUint64(&el.droppedCount, 1)
		return false
	}
	if event.PlayerID != "" {
		if !el.getPlayerLimiter(event.PlayerID).Allow() {
			atomic.AddUint64(&el.droppedCount, 1)
			return false
		}
	}

	head := atomic.AddUint64(&el.writeHead, 1)
	tail := atomic.LoadUint64(&el.readHead)
	if head-tail >= eventBufferSize {
		atomic.AddUint64(&el.readHead, 1)
		atomic.AddUint64(&el.droppedCount, 1)
	}

	event.Sequence = head
	el.buffer[head%eventBufferSize] = event
	atomic.AddUint64(&el.totalCount, 1)
	return true
}

// EmitSimple builds and records an event in one call.
func (el *EventLog) EmitSimple(eventType EventType, tick uint64, playerID string, payload interface{}) bool {
	return el.Emit(NewEvent(eventType, tick, playerID, payload))
}

func (el *EventLog) getPlayerLimiter(playerID string) *rate.Limiter {
	if entry, ok := el.playerLimiters.Load(playerID); ok {
		e := entry.(*playerLimiterEntry)
		e.lastUsed = time.Now()
		return e.limiter
	}
	entry := &playerLimiterEntry{
		limiter:  rate.NewLimiter(maxEventsPerPlayer, maxEventsPerPlayer/10),
		lastUsed: time.Now(),
	}
	actual, _ := el.playerLimiters.LoadOrStore(playerID, entry)
	return actual.(*playerLimiterEntry).limiter
}

func (el *EventLog) writerLoop() {
	defer el.writerWg.Done()
	ticker := time.NewTicker(batchFlushInterval)
	defer ticker.Stop()

	batch := make([]Event, 0, batchFlushSize)
	for {
		select {
		case <-el.stopChan:
			batch = el.collectBatch(batch[:0])
			if len(batch) > 0 {
				el.flushBatch(batch)
			}
			return
		case <-ticker.C:
			batch = el.collectBatch(batch[:0])
			if len(batch) > 0 {
				el.flushBatch(batch)
			}
		}
	}
}

func (el *EventLog) cleanupLoop() {
	defer el.writerWg.Done()
	ticker := time.NewTicker(playerLimiterCleanup)
	defer ticker.Stop()

	for {
		select {
		case <-el.stopChan:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-playerLimiterCleanup)
			el.playerLimiters.Range(func(key, value interface{}) bool {
				if value.(*playerLimiterEntry).lastUsed.Before(cutoff) {
					el.playerLimiters.Delete(key)
				}
				return true
			})
		}
	}
}

func (el *EventLog) collectBatch(batch []Event) []Event {
	head := atomic.LoadUint64(&el.writeHead)
	tail := atomic.LoadUint64(&el.readHead)
	for i := tail; i < head && len(batch) < batchFlushSize; i++ {
		batch = append(batch, el.buffer[i%eventBufferSize])
	}
	if len(batch) > 0 {
		atomic.AddUint64(&el.readHead, uint64(len(batch)))
	}
	return batch
}

func (el *EventLog) flushBatch(batch []Event) {
	el.fileMu.Lock()
	defer el.fileMu.Unlock()
	if el.file == nil {
		return
	}
	for _, event := range batch {
		data, err := json.Marshal(event)
		if err != nil {
			continue
		}
		el.file.Write(data)
		el.file.Write([]byte("\n"))
	}
}

// Stats reports counters useful for the debug/observability surface.
func (el *EventLog) Stats() (total, dropped, pending uint64) {
	head := atomic.LoadUint64(&el.writeHead)
	tail := atomic.LoadUint64(&el.readHead)
	return atomic.LoadUint64(&el.totalCount), atomic.LoadUint64(&el.droppedCount), head - tail
}
