// Package storetest is an in-memory store.Tx fake used by package tests
// across contact, group, mdn and ingest, so each package's tests can
// drive the pipeline without a real database.
package storetest

import (
	"github.com/deltamsg/core/model"
	"github.com/deltamsg/core/store"
)

// Fake is a minimal in-memory store.Tx. It is not safe for concurrent
// use; tests drive it from a single goroutine.
type Fake struct {
	NextContactID uint32
	NextChatID    uint32
	NextMsgID     uint32

	Contacts map[uint32]*model.Contact
	contactByAddr map[string]uint32

	Chats      map[uint32]*model.Chat
	chatByGrpID map[string]uint32

	Members map[uint32]map[uint32]bool // chatID -> contactID -> present

	LeftGroups map[string]bool

	Messages   map[uint32]*model.Message
	midToMsgID map[string]uint32

	Events []store.Event

	Committed  bool
	RolledBack bool
}

// New returns an empty Fake with contact id 1 reserved for SELF, matching
// constants.ContactIDSelf.
func New() *Fake {
	return &Fake{
		NextContactID: 2,
		NextChatID:    10,
		NextMsgID:     1,
		Contacts:      map[uint32]*model.Contact{},
		contactByAddr: map[string]uint32{},
		Chats:         map[uint32]*model.Chat{},
		chatByGrpID:   map[string]uint32{},
		Members:       map[uint32]map[uint32]bool{},
		LeftGroups:    map[string]bool{},
		Messages:      map[uint32]*model.Message{},
		midToMsgID:    map[string]uint32{},
	}
}

func (f *Fake) Commit() error   { f.Committed = true; return nil }
func (f *Fake) Rollback() error { f.RolledBack = true; return nil }

func (f *Fake) UpsertContact(addr, name string, origin uint32) (uint32, error) {
	if id, ok := f.contactByAddr[addr]; ok {
		c := f.Contacts[id]
		if origin > c.Origin {
			c.Origin = origin
		}
		if origin >= c.Origin && name != "" {
			c.Name = name
		}
		return id, nil
	}
	id := f.NextContactID
	f.NextContactID++
	f.Contacts[id] = &model.Contact{ID: id, Addr: addr, Name: name, Origin: origin}
	f.contactByAddr[addr] = id
	return id, nil
}

func (f *Fake) IsKnownContact(contactID uint32) (bool, error) {
	_, ok := f.Contacts[contactID]
	return ok, nil
}

func (f *Fake) LookupChatByGrpID(grpid string) (*model.Chat, bool, error) {
	id, ok := f.chatByGrpID[grpid]
	if !ok {
		return nil, false, nil
	}
	return f.Chats[id], true, nil
}

func (f *Fake) CreateGroupChat(grpid, name string) (uint32, error) {
	id := f.NextChatID
	f.NextChatID++
	f.Chats[id] = &model.Chat{ID: id, Kind: model.ChatGroup, Name: name, GrpID: grpid}
	f.chatByGrpID[grpid] = id
	f.Members[id] = map[uint32]bool{}
	return id, nil
}

func (f *Fake) RenameChat(chatID uint32, name string) error {
	chat, ok := f.Chats[chatID]
	if !ok {
		return nil
	}
	chat.Name = name
	return nil
}

func (f *Fake) LookupSingleChat(contactID uint32) (uint32, bool, error) {
	for id, members := range f.Members {
		chat := f.Chats[id]
		if chat.Kind == model.ChatSingle && members[contactID] {
			return id, true, nil
		}
	}
	return 0, false, nil
}

func (f *Fake) CreateSingleChat(contactID uint32) (uint32, error) {
	id := f.NextChatID
	f.NextChatID++
	f.Chats[id] = &model.Chat{ID: id, Kind: model.ChatSingle}
	f.Members[id] = map[uint32]bool{contactID: true}
	return id, nil
}

func (f *Fake) AddMember(chatID, contactID uint32) error {
	if f.Members[chatID] == nil {
		f.Members[chatID] = map[uint32]bool{}
	}
	f.Members[chatID][contactID] = true
	return nil
}

func (f *Fake) RemoveAllMembers(chatID uint32) error {
	f.Members[chatID] = map[uint32]bool{}
	return nil
}

func (f *Fake) IsContactInChat(chatID, contactID uint32) (bool, error) {
	return f.Members[chatID][contactID], nil
}

func (f *Fake) IsGroupLeft(grpid string) (bool, error) {
	return f.LeftGroups[grpid], nil
}

func (f *Fake) MarkGroupLeft(grpid string, left bool) error {
	f.LeftGroups[grpid] = left
	return nil
}

func (f *Fake) InsertMessage(msg *model.Message) (uint32, error) {
	id := f.NextMsgID
	f.NextMsgID++
	cp := *msg
	cp.ID = id
	f.Messages[id] = &cp
	if msg.Rfc724Mid != "" {
		f.midToMsgID[msg.Rfc724Mid] = id
	}
	return id, nil
}

func (f *Fake) RFC724MidExists(mid string) (uint32, bool, error) {
	id, ok := f.midToMsgID[mid]
	return id, ok, nil
}

func (f *Fake) UpdateServerUID(msgID uint32, folder string, uid uint32) error {
	if m, ok := f.Messages[msgID]; ok {
		m.ServerFolder = folder
		m.ServerUID = uid
	}
	return nil
}

func (f *Fake) ScaleupContactOrigin(contactID uint32, origin uint32) error {
	if c, ok := f.Contacts[contactID]; ok && origin > c.Origin {
		c.Origin = origin
	}
	return nil
}

func (f *Fake) ResolveSentMessage(mid string) (uint32, uint32, bool, error) {
	id, ok := f.midToMsgID[mid]
	if !ok {
		return 0, 0, false, nil
	}
	m := f.Messages[id]
	if m.FromID != 1 {
		return 0, 0, false, nil
	}
	return m.ChatID, m.ID, true, nil
}

func (f *Fake) LastTimestampInChatExcluding(chatID uint32, excludeFromID uint32) (int64, error) {
	var last int64
	for _, m := range f.Messages {
		if m.ChatID == chatID && m.FromID != excludeFromID && m.Timestamp > last {
			last = m.Timestamp
		}
	}
	return last, nil
}

func (f *Fake) Enqueue(evt store.Event) {
	f.Events = append(f.Events, evt)
}
