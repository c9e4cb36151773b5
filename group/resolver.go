// Package group extracts and reconciles group-chat identity: the grpid
// embedded in headers or Message-ID, chat creation, and membership
// changes driven by Chat-Group-Member-Added/Removed/Name-Changed.
package group

import (
	"context"
	"regexp"
	"strings"

	"github.com/deltamsg/core/constants"
	"github.com/deltamsg/core/contact"
	"github.com/deltamsg/core/event"
	"github.com/deltamsg/core/mailmsg"
	"github.com/deltamsg/core/model"
	"github.com/deltamsg/core/store"
	"github.com/pkg/errors"
)

var validGrpID = regexp.MustCompile(`^[A-Za-z0-9_-]{8}$`)

// ExtractGrpID finds a grpid in msg, trying in priority order: explicit
// Chat-Group-ID/X-MrGrpId headers, then the Message-ID if it has the
// "Gr.<grpid>.<rand>@host" shape, then the first id of that shape found
// in In-Reply-To, then in References. Returns "" if none match
// constants.GroupValidIDLen.
func ExtractGrpID(h mailmsg.Parsed) string {
	if id := mailmsg.HeaderAny(h.Header, "Chat-Group-ID", "X-MrGrpId"); validGrpID.MatchString(id) {
		return id
	}
	if id := grpIDFromMessageID(h.Header.Get("Message-ID")); id != "" {
		return id
	}
	if id := grpIDFromMessageID(h.Header.Get("In-Reply-To")); id != "" {
		return id
	}
	if id := grpIDFromMessageID(h.Header.Get("References")); id != "" {
		return id
	}
	return ""
}

var grIDPattern = regexp.MustCompile(`Gr\.([A-Za-z0-9_-]{8})\.[^@]*@`)

// grpIDFromMessageID scans value (which may hold one or more
// angle-bracketed message ids, as References does) for the first
// "Gr.<grpid>.<rand>@host" pattern.
func grpIDFromMessageID(value string) string {
	m := grIDPattern.FindStringSubmatch(value)
	if m == nil {
		return ""
	}
	return m[1]
}

// Outcome reports what the group resolver decided for one message.
type Outcome struct {
	ChatID uint32
	// Handled is true when the message resolved to a group chat (new or
	// existing); the classifier should not fall through to single-chat
	// or deaddrop assignment.
	Handled bool
}

// Resolve implements §4.F: find or create the group chat for msg, apply
// any membership command it carries, and return the resulting chat id.
func Resolve(tx store.Tx, contacts *contact.Resolver, fromID uint32, isMsgr bool, msg mailmsg.Parsed) (Outcome, error) {
	grpid := ExtractGrpID(msg)
	if grpid == "" {
		return Outcome{}, nil
	}

	chat, exists, err := tx.LookupChatByGrpID(grpid)
	if err != nil {
		return Outcome{}, errors.Wrap(err, "group: lookup by grpid failed")
	}

	memberRemoved := mailmsg.HeaderAny(msg.Header, "Chat-Group-Member-Removed", "X-MrRemoveFromGrp")
	groupName := mailmsg.HeaderAny(msg.Header, "Chat-Group-Name", "X-MrGrpName")

	if !exists {
		left, err := tx.IsGroupLeft(grpid)
		if err != nil {
			return Outcome{}, errors.Wrap(err, "group: is_group_left failed")
		}
		memberAdded := mailmsg.HeaderAny(msg.Header, "Chat-Group-Member-Added", "X-MrAddToGrp")
		selfReAdded := addrIsSelf(memberAdded, contacts)

		if groupName == "" || memberRemoved != "" || (left && !selfReAdded) {
			return Outcome{}, nil
		}

		if len(groupName) > 200 {
			groupName = groupName[:200]
		}
		chatID, err := tx.CreateGroupChat(grpid, groupName)
		if err != nil {
			return Outcome{}, errors.Wrap(err, "group: create_group_chat failed")
		}
		chat = &model.Chat{ID: chatID, Kind: model.ChatGroup, Name: groupName, GrpID: grpid}
	} else {
		inChat, err := tx.IsContactInChat(chat.ID, fromID)
		if err != nil {
			return Outcome{}, errors.Wrap(err, "group: is_contact_in_chat failed")
		}
		if !inChat {
			return Outcome{}, nil
		}

		left, err := tx.IsGroupLeft(grpid)
		if err != nil {
			return Outcome{}, errors.Wrap(err, "group: is_group_left failed")
		}
		memberAdded := mailmsg.HeaderAny(msg.Header, "Chat-Group-Member-Added", "X-MrAddToGrp")
		if left && !addrIsSelf(memberAdded, contacts) {
			return Outcome{ChatID: constants.ChatIDTrash, Handled: true}, nil
		}
	}

	if err := applyCommands(tx, contacts, chat.ID, grpid, msg); err != nil {
		return Outcome{}, err
	}

	if antiLeak(msg, isMsgr) {
		return Outcome{}, nil
	}

	return Outcome{ChatID: chat.ID, Handled: true}, nil
}

// applyCommands runs the mutually exclusive group-command headers, in
// the priority order given by §4.F, then rebuilds membership from the
// message's To+Cc.
func applyCommands(tx store.Tx, contacts *contact.Resolver, chatID uint32, grpid string, msg mailmsg.Parsed) error {
	added := mailmsg.HeaderAny(msg.Header, "Chat-Group-Member-Added", "X-MrAddToGrp")
	removed := mailmsg.HeaderAny(msg.Header, "Chat-Group-Member-Removed", "X-MrRemoveFromGrp")
	nameChanged := mailmsg.HeaderAny(msg.Header, "Chat-Group-Name-Changed", "X-MrGrpNameChanged")
	newName := mailmsg.HeaderAny(msg.Header, "Chat-Group-Name", "X-MrGrpName")

	modified := false

	switch {
	case added != "":
		modified = true
		if addrIsSelf(added, contacts) {
			if err := tx.MarkGroupLeft(grpid, false); err != nil {
				return errors.Wrap(err, "group: mark_group_left failed")
			}
		}
		if err := rebuildMembership(tx, contacts, chatID, msg, ""); err != nil {
			return err
		}
	case removed != "":
		modified = true
		if addrIsSelf(removed, contacts) {
			if err := tx.MarkGroupLeft(grpid, true); err != nil {
				return errors.Wrap(err, "group: mark_group_left failed")
			}
		}
		if err := rebuildMembership(tx, contacts, chatID, msg, removed); err != nil {
			return err
		}
	case nameChanged != "" && newName != "":
		modified = true
		if len(newName) > 200 {
			newName = newName[:200]
		}
		if err := tx.RenameChat(chatID, newName); err != nil {
			return errors.Wrap(err, "group: rename_chat failed")
		}
	}

	if modified {
		tx.Enqueue(event.ChatModified(chatID))
	}
	return nil
}

// rebuildMembership fully recreates membership from msg's To+Cc,
// excluding excludeAddr and, when the removal targeted self, excluding
// the self contact entirely.
func rebuildMembership(tx store.Tx, contacts *contact.Resolver, chatID uint32, msg mailmsg.Parsed, excludeAddr string) error {
	if err := tx.RemoveAllMembers(chatID); err != nil {
		return errors.Wrap(err, "group: remove_all_members failed")
	}

	exclude := normalizeAddrLike(excludeAddr)
	selfRemoved := exclude != "" && addrIsSelf(excludeAddr, contacts)

	if !selfRemoved {
		if err := tx.AddMember(chatID, constants.ContactIDSelf); err != nil {
			return errors.Wrap(err, "group: add_member(self) failed")
		}
	}

	all := append(append([]mailmsg.Address{}, msg.To...), msg.Cc...)
	seen := map[uint32]bool{}
	for _, a := range all {
		if exclude != "" && a.Addr == exclude {
			continue
		}
		id, err := contacts.ResolveOne(context.Background(), tx, a, constants.OriginIncomingTo)
		if err != nil {
			return err
		}
		if id == constants.ContactIDSelf || seen[id] {
			continue
		}
		seen[id] = true
		if err := tx.AddMember(chatID, id); err != nil {
			return errors.Wrap(err, "group: add_member failed")
		}
	}
	return nil
}

func addrIsSelf(addr string, contacts *contact.Resolver) bool {
	if addr == "" {
		return false
	}
	return contacts.IsSelf(normalizeAddrLike(addr))
}

func normalizeAddrLike(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

// antiLeak implements the anti-leak heuristic: suppress group assignment
// when the message was addressed to exactly one To recipient and the
// sender was not a messenger client (a plain "Reply" instead of "Reply
// all" outside the messenger).
func antiLeak(msg mailmsg.Parsed, isMsgr bool) bool {
	return len(msg.To) == 1 && !isMsgr
}
