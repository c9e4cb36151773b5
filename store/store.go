// Package store defines the persistence contract the ingest pipeline
// depends on. The pipeline never touches SQL directly: every lookup,
// upsert and mutation it needs goes through this interface, so a
// gorm-backed implementation and a test fake can be swapped in
// interchangeably.
package store

import (
	"context"

	"github.com/deltamsg/core/model"
)

// Store is the abstract persistence contract used by the contact
// resolver, group resolver, classifier, MDN handler and event dispatcher.
// All methods that mutate state are expected to run inside a Tx started
// by Begin; the store itself serializes concurrent access with a single
// coarse lock, matching the one-writer-thread ingest model.
type Store interface {
	// Begin starts a transaction. Commit fires any events queued with
	// Tx.Enqueue after the underlying write commits; Rollback
	// discards them.
	Begin(ctx context.Context) (Tx, error)

	GetConfig(ctx context.Context, key string) (string, bool, error)
	SetConfig(ctx context.Context, key, value string) error
}

// Tx is one atomic unit of work. Every ingest of a single message runs
// inside exactly one Tx.
type Tx interface {
	Commit() error
	Rollback() error

	// UpsertContact inserts or updates the contact with the given
	// normalized address, bumping origin to max(old, new) and updating
	// Name only when origin >= the contact's stored origin. It returns
	// the contact id.
	UpsertContact(addr, name string, origin uint32) (uint32, error)
	IsKnownContact(contactID uint32) (bool, error)

	LookupChatByGrpID(grpid string) (*model.Chat, bool, error)
	CreateGroupChat(grpid, name string) (uint32, error)
	RenameChat(chatID uint32, name string) error
	LookupSingleChat(contactID uint32) (uint32, bool, error)
	CreateSingleChat(contactID uint32) (uint32, error)

	AddMember(chatID, contactID uint32) error
	RemoveAllMembers(chatID uint32) error
	IsContactInChat(chatID, contactID uint32) (bool, error)

	IsGroupLeft(grpid string) (bool, error)
	MarkGroupLeft(grpid string, left bool) error

	InsertMessage(msg *model.Message) (uint32, error)
	RFC724MidExists(mid string) (uint32, bool, error)
	UpdateServerUID(msgID uint32, folder string, uid uint32) error
	ScaleupContactOrigin(contactID uint32, origin uint32) error

	// ResolveSentMessage looks up a message by rfc724_mid that SELF
	// sent, for MDN resolution. found is false both when the mid is
	// unknown and when it is known but was not sent by SELF.
	ResolveSentMessage(mid string) (chatID, msgID uint32, found bool, err error)

	LastTimestampInChatExcluding(chatID uint32, excludeFromID uint32) (int64, error)

	// Enqueue records an event to be fired once this Tx commits.
	Enqueue(evt Event)
}

// Event is one pending notification, queued during a Tx and delivered in
// FIFO order by the dispatcher only after the owning transaction commits.
type Event struct {
	ID     int
	ChatID uint32
	MsgID  uint32
}
