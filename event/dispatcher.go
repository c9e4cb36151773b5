// Package event is the change-notification layer: a FIFO queue of events
// enqueued during a store transaction and fired, in commit order, only
// after that transaction's commit succeeds. A rolled-back transaction
// fires nothing.
package event

import (
	"sync"

	"github.com/deltamsg/core/constants"
	"github.com/deltamsg/core/store"
	"github.com/hashicorp/go-hclog"
)

// Callback receives one fired event. It returns nothing; the dispatcher
// only delivers the event.
type Callback func(evt store.Event)

// Dispatcher holds the single registered callback and the wake-lock
// counter described in the concurrency model: increments from 0→1 and
// decrements from 1→0 emit WAKE_LOCK(on/off).
type Dispatcher struct {
	log hclog.Logger

	mu       sync.Mutex
	callback Callback

	wakeMu    sync.Mutex
	wakeCount int
}

// New returns a Dispatcher with no callback registered; events fired
// before SetCallback is called are dropped.
func New(log hclog.Logger) *Dispatcher {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Dispatcher{log: log.Named("event")}
}

// SetCallback installs the single delivery callback, replacing any
// previous one.
func (d *Dispatcher) SetCallback(cb Callback) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.callback = cb
}

// Fire delivers events in order, after the owning transaction's commit
// has already succeeded. It must be called with the store lock not held,
// so callbacks may re-enter the store.
func (d *Dispatcher) Fire(events []store.Event) {
	d.mu.Lock()
	cb := d.callback
	d.mu.Unlock()
	if cb == nil {
		return
	}
	for _, evt := range events {
		d.log.Debug("firing event", "id", evt.ID, "chat_id", evt.ChatID, "msg_id", evt.MsgID)
		cb(evt)
	}
}

// AcquireWakeLock increments the wake-lock counter, firing WAKE_LOCK(on)
// on the 0→1 transition.
func (d *Dispatcher) AcquireWakeLock() {
	d.wakeMu.Lock()
	d.wakeCount++
	fire := d.wakeCount == 1
	d.wakeMu.Unlock()
	if fire {
		d.Fire([]store.Event{{ID: constants.EventWakeLock, ChatID: 1, MsgID: 0}})
	}
}

// ReleaseWakeLock decrements the wake-lock counter, firing WAKE_LOCK(off)
// on the 1→0 transition.
func (d *Dispatcher) ReleaseWakeLock() {
	d.wakeMu.Lock()
	d.wakeCount--
	fire := d.wakeCount == 0
	count := d.wakeCount
	d.wakeMu.Unlock()
	if count < 0 {
		d.log.Warn("wake lock released more times than acquired")
	}
	if fire {
		d.Fire([]store.Event{{ID: constants.EventWakeLock, ChatID: 0, MsgID: 0}})
	}
}

// MsgsChanged, IncomingMsg, MsgRead and ChatModified build the typed
// event payloads named in the pipeline's external interface.
func MsgsChanged(chatID, msgID uint32) store.Event {
	return store.Event{ID: constants.EventMsgsChanged, ChatID: chatID, MsgID: msgID}
}

func IncomingMsg(chatID, msgID uint32) store.Event {
	return store.Event{ID: constants.EventIncomingMsg, ChatID: chatID, MsgID: msgID}
}

func MsgRead(chatID, msgID uint32) store.Event {
	return store.Event{ID: constants.EventMsgRead, ChatID: chatID, MsgID: msgID}
}

func ChatModified(chatID uint32) store.Event {
	return store.Event{ID: constants.EventChatModified, ChatID: chatID, MsgID: 0}
}
