// Package model holds the chat/message/contact object model shared by the
// message-ingest pipeline, grouped the way the pipeline passes them between
// the contact resolver, group resolver, classifier and store.
package model

// Contact maps one normalized RFC 5322 address to an internal id, tracking
// the highest origin ever observed for it.
type Contact struct {
	ID      uint32
	Addr    string
	Name    string
	Origin  uint32
	Blocked bool
}

// ChatKind distinguishes a 1:1 chat from a group chat.
type ChatKind int

const (
	ChatSingle ChatKind = iota
	ChatGroup
)

// Chat is a conversation: either a 1:1 thread keyed by a contact, or a
// group keyed by an opaque grpid extracted from message headers.
type Chat struct {
	ID    uint32
	Kind  ChatKind
	Name  string
	GrpID string
}

// MsgState enumerates the lifecycle of a stored message.
type MsgState int

const (
	MsgInFresh MsgState = iota
	MsgInNoticed
	MsgInSeen
	MsgOutPending
	MsgOutDelivered
	MsgOutRead
	MsgOutError
)

// Message is one row per MIME part of an ingested mail.
type Message struct {
	ID            uint32
	Rfc724Mid     string
	ServerFolder  string
	ServerUID     uint32
	ChatID        uint32
	FromID        uint32
	ToID          uint32
	Timestamp     int64
	Type          string
	State         MsgState
	IsMsgr        bool
	Text          string
	TextRaw       string
	Param         Params
	Bytes         int
}

// GroupMembership is a (chat, contact) membership pair.
type GroupMembership struct {
	ChatID    uint32
	ContactID uint32
}
