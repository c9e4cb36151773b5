// Package gormstore is a gorm-backed implementation of store.Store,
// persisting contacts, chats, memberships, messages and config to any
// gorm dialect. This package imports no database driver: Open takes a
// *gorm.DB the caller has already opened, and only gorm's portable query
// API is used.
package gormstore

import (
	"context"
	"strconv"
	"sync"

	"github.com/deltamsg/core/constants"
	"github.com/deltamsg/core/model"
	"github.com/deltamsg/core/store"
	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// contactRow, chatRow, memberRow and messageRow are the gorm row types
// backing model.Contact, model.Chat, model.GroupMembership and
// model.Message respectively; leftGroupRow holds the left-group set and
// configRow the config key/value pairs.
type contactRow struct {
	ID      uint32 `gorm:"primaryKey"`
	Addr    string `gorm:"uniqueIndex"`
	Name    string
	Origin  uint32
	Blocked bool
}

type chatRow struct {
	ID    uint32 `gorm:"primaryKey"`
	Kind  int
	Name  string
	GrpID string `gorm:"uniqueIndex"`
}

type memberRow struct {
	ChatID    uint32 `gorm:"primaryKey"`
	ContactID uint32 `gorm:"primaryKey"`
}

type messageRow struct {
	ID           uint32 `gorm:"primaryKey"`
	Rfc724Mid    string `gorm:"uniqueIndex"`
	ServerFolder string
	ServerUID    uint32
	ChatID       uint32
	FromID       uint32
	ToID         uint32
	Timestamp    int64
	Type         string
	State        int
	IsMsgr       bool
	Text         string
	TextRaw      string
	Param        string
	Bytes        int
}

type leftGroupRow struct {
	GrpID string `gorm:"primaryKey"`
	Left  bool
}

type configRow struct {
	Key   string `gorm:"primaryKey"`
	Value string
}

// Fire is called with the events queued on a Tx once its underlying
// transaction has committed successfully, and with the store's lock
// already released.
type Fire func(events []store.Event)

// Store is a gorm-backed store.Store. A single *gorm.DB connection pool
// is shared across transactions; Begin opens a gorm.DB transaction and
// wraps it in a Tx that queues events to fire after Commit.
type Store struct {
	db   *gorm.DB
	log  hclog.Logger
	fire Fire

	mu sync.Mutex
}

// Open runs AutoMigrate for the row types this store needs and returns a
// Store wrapping db.
func Open(db *gorm.DB, log hclog.Logger) (*Store, error) {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	if err := db.AutoMigrate(&contactRow{}, &chatRow{}, &memberRow{}, &messageRow{}, &leftGroupRow{}, &configRow{}); err != nil {
		return nil, errors.Wrap(err, "gormstore: automigrate failed")
	}
	return &Store{db: db, log: log.Named("gormstore")}, nil
}

// SetFire installs the callback invoked after each successful Commit,
// normally event.Dispatcher.Fire.
func (s *Store) SetFire(f Fire) {
	s.fire = f
}

// Begin acquires the store's coarse lock for the duration of the
// returned Tx, matching the single-writer-thread concurrency model.
func (s *Store) Begin(ctx context.Context) (store.Tx, error) {
	s.mu.Lock()
	gtx := s.db.WithContext(ctx).Begin()
	if gtx.Error != nil {
		s.mu.Unlock()
		return nil, errors.Wrap(gtx.Error, "gormstore: begin failed")
	}
	return &tx{db: gtx, unlock: s.mu.Unlock, log: s.log, fire: s.fire}, nil
}

func (s *Store) GetConfig(ctx context.Context, key string) (string, bool, error) {
	var row configRow
	err := s.db.WithContext(ctx).First(&row, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrap(err, "gormstore: get_config failed")
	}
	return row.Value, true, nil
}

func (s *Store) SetConfig(ctx context.Context, key, value string) error {
	row := configRow{Key: key, Value: value}
	err := s.db.WithContext(ctx).Save(&row).Error
	return errors.Wrap(err, "gormstore: set_config failed")
}

// tx implements store.Tx over one gorm transaction. Events enqueued
// during the transaction are held in memory and returned to the caller
// by Commit so the event dispatcher can fire them with the store lock
// released.
type tx struct {
	db     *gorm.DB
	unlock func()
	log    hclog.Logger
	fire   Fire

	events []store.Event
}

// Commit commits the underlying gorm transaction, releases the store's
// lock, and then — only once the commit has actually succeeded — fires
// every event queued during the transaction. Firing happens after
// unlock so a callback that itself touches the store does not deadlock.
func (t *tx) Commit() error {
	err := t.db.Commit().Error
	t.unlock()
	if err != nil {
		return errors.Wrap(err, "gormstore: commit failed")
	}
	if t.fire != nil && len(t.events) > 0 {
		t.fire(t.events)
	}
	return nil
}

func (t *tx) Rollback() error {
	defer t.unlock()
	if err := t.db.Rollback().Error; err != nil {
		return errors.Wrap(err, "gormstore: rollback failed")
	}
	t.events = nil
	return nil
}

func (t *tx) Enqueue(evt store.Event) {
	t.events = append(t.events, evt)
}

func (t *tx) UpsertContact(addr, name string, origin uint32) (uint32, error) {
	var existing contactRow
	err := t.db.First(&existing, "addr = ?", addr).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		row := contactRow{Addr: addr, Name: name, Origin: origin}
		if err := t.db.Create(&row).Error; err != nil {
			return 0, errors.Wrap(err, "gormstore: insert contact failed")
		}
		return row.ID, nil
	}
	if err != nil {
		return 0, errors.Wrap(err, "gormstore: lookup contact failed")
	}

	newOrigin := existing.Origin
	if origin > newOrigin {
		newOrigin = origin
	}
	newName := existing.Name
	if origin >= existing.Origin && name != "" {
		newName = name
	}
	if newOrigin != existing.Origin || newName != existing.Name {
		if err := t.db.Model(&existing).Updates(map[string]interface{}{
			"origin": newOrigin,
			"name":   newName,
		}).Error; err != nil {
			return 0, errors.Wrap(err, "gormstore: update contact failed")
		}
	}
	return existing.ID, nil
}

func (t *tx) IsKnownContact(contactID uint32) (bool, error) {
	var count int64
	err := t.db.Model(&contactRow{}).Where("id = ?", contactID).Count(&count).Error
	return count > 0, errors.Wrap(err, "gormstore: is_known_contact failed")
}

func (t *tx) LookupChatByGrpID(grpid string) (*model.Chat, bool, error) {
	var row chatRow
	err := t.db.First(&row, "grp_id = ?", grpid).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "gormstore: lookup_chat_by_grpid failed")
	}
	kind := model.ChatSingle
	if row.Kind == constants.ChatKindGroup {
		kind = model.ChatGroup
	}
	return &model.Chat{ID: row.ID, Kind: kind, Name: row.Name, GrpID: row.GrpID}, true, nil
}

func (t *tx) CreateGroupChat(grpid, name string) (uint32, error) {
	row := chatRow{Kind: constants.ChatKindGroup, Name: name, GrpID: grpid}
	if err := t.db.Create(&row).Error; err != nil {
		return 0, errors.Wrap(err, "gormstore: create_group_chat failed")
	}
	return row.ID, nil
}

func (t *tx) RenameChat(chatID uint32, name string) error {
	if err := t.db.Model(&chatRow{}).Where("id = ?", chatID).Update("name", name).Error; err != nil {
		return errors.Wrap(err, "gormstore: rename_chat failed")
	}
	return nil
}

func (t *tx) LookupSingleChat(contactID uint32) (uint32, bool, error) {
	var row chatRow
	grpid := singleChatGrpID(contactID)
	err := t.db.First(&row, "grp_id = ?", grpid).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, errors.Wrap(err, "gormstore: lookup_single_chat failed")
	}
	return row.ID, true, nil
}

func (t *tx) CreateSingleChat(contactID uint32) (uint32, error) {
	row := chatRow{Kind: constants.ChatKindSingle, GrpID: singleChatGrpID(contactID)}
	if err := t.db.Create(&row).Error; err != nil {
		return 0, errors.Wrap(err, "gormstore: create_single_chat failed")
	}
	if err := t.AddMember(row.ID, contactID); err != nil {
		return 0, err
	}
	return row.ID, nil
}

// singleChatGrpID derives a synthetic, unique grp_id for a 1:1 chat so
// it can share the chatRow table (and its unique index) with group
// chats without a separate lookup table.
func singleChatGrpID(contactID uint32) string {
	return "single:" + strconv.FormatUint(uint64(contactID), 10)
}

func (t *tx) AddMember(chatID, contactID uint32) error {
	row := memberRow{ChatID: chatID, ContactID: contactID}
	err := t.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
	return errors.Wrap(err, "gormstore: add_member failed")
}

func (t *tx) RemoveAllMembers(chatID uint32) error {
	err := t.db.Where("chat_id = ?", chatID).Delete(&memberRow{}).Error
	return errors.Wrap(err, "gormstore: remove_all_members failed")
}

func (t *tx) IsContactInChat(chatID, contactID uint32) (bool, error) {
	var count int64
	err := t.db.Model(&memberRow{}).Where("chat_id = ? AND contact_id = ?", chatID, contactID).Count(&count).Error
	return count > 0, errors.Wrap(err, "gormstore: is_contact_in_chat failed")
}

func (t *tx) IsGroupLeft(grpid string) (bool, error) {
	var row leftGroupRow
	err := t.db.First(&row, "grp_id = ?", grpid).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "gormstore: is_group_left failed")
	}
	return row.Left, nil
}

func (t *tx) MarkGroupLeft(grpid string, left bool) error {
	row := leftGroupRow{GrpID: grpid, Left: left}
	err := t.db.Save(&row).Error
	return errors.Wrap(err, "gormstore: mark_group_left failed")
}

func (t *tx) InsertMessage(msg *model.Message) (uint32, error) {
	row := messageRow{
		Rfc724Mid:    msg.Rfc724Mid,
		ServerFolder: msg.ServerFolder,
		ServerUID:    msg.ServerUID,
		ChatID:       msg.ChatID,
		FromID:       msg.FromID,
		ToID:         msg.ToID,
		Timestamp:    msg.Timestamp,
		Type:         msg.Type,
		State:        int(msg.State),
		IsMsgr:       msg.IsMsgr,
		Text:         msg.Text,
		TextRaw:      msg.TextRaw,
		Param:        msg.Param.Pack(),
		Bytes:        msg.Bytes,
	}
	if err := t.db.Create(&row).Error; err != nil {
		return 0, errors.Wrap(err, "gormstore: insert_message failed")
	}
	return row.ID, nil
}

func (t *tx) RFC724MidExists(mid string) (uint32, bool, error) {
	var row messageRow
	err := t.db.First(&row, "rfc724_mid = ?", mid).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, errors.Wrap(err, "gormstore: rfc724_mid_exists failed")
	}
	return row.ID, true, nil
}

func (t *tx) ResolveSentMessage(mid string) (uint32, uint32, bool, error) {
	var row messageRow
	err := t.db.First(&row, "rfc724_mid = ? AND from_id = ?", mid, constants.ContactIDSelf).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, 0, false, nil
	}
	if err != nil {
		return 0, 0, false, errors.Wrap(err, "gormstore: resolve_sent_message failed")
	}
	return row.ChatID, row.ID, true, nil
}

func (t *tx) UpdateServerUID(msgID uint32, folder string, uid uint32) error {
	err := t.db.Model(&messageRow{}).Where("id = ?", msgID).Updates(map[string]interface{}{
		"server_folder": folder,
		"server_uid":    uid,
	}).Error
	return errors.Wrap(err, "gormstore: update_server_uid failed")
}

func (t *tx) ScaleupContactOrigin(contactID uint32, origin uint32) error {
	err := t.db.Model(&contactRow{}).Where("id = ? AND origin < ?", contactID, origin).Update("origin", origin).Error
	return errors.Wrap(err, "gormstore: scaleup_contact_origin failed")
}

func (t *tx) LastTimestampInChatExcluding(chatID uint32, excludeFromID uint32) (int64, error) {
	var row messageRow
	err := t.db.Where("chat_id = ? AND from_id != ?", chatID, excludeFromID).
		Order("timestamp desc").First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrap(err, "gormstore: last_timestamp_in_chat failed")
	}
	return row.Timestamp, nil
}
