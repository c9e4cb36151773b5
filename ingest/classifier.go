// Package ingest is the message classifier: the orchestrator that takes
// one parsed inbound or outbound message and drives direction
// detection, deduplication, chat assignment (via contact and group),
// timestamp fixup, persistence and event emission, all inside a single
// store transaction.
package ingest

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/deltamsg/core/constants"
	"github.com/deltamsg/core/contact"
	"github.com/deltamsg/core/event"
	"github.com/deltamsg/core/group"
	"github.com/deltamsg/core/mailmsg"
	"github.com/deltamsg/core/mdn"
	"github.com/deltamsg/core/model"
	"github.com/deltamsg/core/store"
	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"
)

// Classifier runs §4.G's per-message pipeline. One Classifier is shared
// across the ingest thread; smear is internally synchronized so messages
// arriving in a tight loop still get strictly increasing timestamps.
type Classifier struct {
	log      hclog.Logger
	contacts *contact.Resolver
	config   Config

	smearMu   sync.Mutex
	lastSmear int64
}

// Config carries the account-level settings the classifier consults.
type Config struct {
	ShowDeaddrop bool
	MdnsEnabled  bool
}

// New returns a Classifier using contacts to resolve sender/recipient
// addresses.
func New(log hclog.Logger, contacts *contact.Resolver, cfg Config) *Classifier {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Classifier{log: log.Named("ingest"), contacts: contacts, config: cfg}
}

// Outcome summarizes what happened to one ingested message.
type Outcome struct {
	MessageID uint32
	ChatID    uint32
	Deduped   bool
}

// DetermineDirection implements §4.G.1: a message is incoming iff it
// carries a Return-Path header. A From address matching SELF always
// flips the result to outgoing, since a copy of our own sent mail can
// still pick up a Return-Path header on its way back through a mailing
// list or a self-addressed account.
func DetermineDirection(msg mailmsg.Parsed, contacts *contact.Resolver) bool {
	incoming := msg.Header.Get("Return-Path") != ""
	fromSelf := !incoming
	if len(msg.From) > 0 && contacts.IsSelf(normalizeAddr(msg.From[0].Addr)) {
		fromSelf = true
	}
	return fromSelf
}

func normalizeAddr(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

// checkDup runs the dedup check for mid: if a message with that
// rfc724_mid already exists, its server location is refreshed (the
// dedup-on-move case, §8 S4) and the outcome to return is reported.
func (c *Classifier) checkDup(tx store.Tx, mid string, msg mailmsg.Parsed) (Outcome, bool, error) {
	existingID, exists, err := tx.RFC724MidExists(mid)
	if err != nil {
		return Outcome{}, false, errors.Wrap(err, "ingest: rfc724_mid_exists failed")
	}
	if !exists {
		return Outcome{}, false, nil
	}
	if msg.ServerFolder != "" {
		if err := tx.UpdateServerUID(existingID, msg.ServerFolder, msg.ServerUID); err != nil {
			return Outcome{}, false, errors.Wrap(err, "ingest: update_server_uid failed")
		}
	}
	return Outcome{MessageID: existingID, Deduped: true}, true, nil
}

// Classify implements §4.G end to end: it must run inside tx's owning
// transaction, and every event it enqueues only fires once that
// transaction commits.
func (c *Classifier) Classify(tx store.Tx, msg mailmsg.Parsed, seenByTransport bool) (Outcome, error) {
	fromSelf := DetermineDirection(msg, c.contacts)
	incoming := !fromSelf

	mid := msg.Rfc724Mid
	if mid != "" {
		if out, dup, err := c.checkDup(tx, mid, msg); err != nil {
			return Outcome{}, err
		} else if dup {
			return out, nil
		}
	}

	if c.config.MdnsEnabled && mdn.IsReport(msg.Header) {
		if res, ok := mdn.Parse(msg.Header, bytes.NewReader(msg.Body)); ok {
			if err := mdn.Handle(tx, res); err != nil {
				return Outcome{}, errors.Wrap(err, "ingest: mdn_handle failed")
			}
		}
		return Outcome{}, nil
	}

	fromID, err := c.resolveFrom(tx, msg, fromSelf)
	if err != nil {
		return Outcome{}, err
	}

	chatID, isGroup, err := c.assignChat(tx, msg, fromID, incoming)
	if err != nil {
		return Outcome{}, err
	}

	ts := msg.Timestamp
	if incoming {
		ts, err = c.correctBadTimestamp(tx, chatID, fromID, ts)
		if err != nil {
			return Outcome{}, err
		}
	} else {
		ts = c.smear(ts)
	}

	if mid == "" {
		mid = synthesizeMid(ts, fromID, msg.To)
		if out, dup, err := c.checkDup(tx, mid, msg); err != nil {
			return Outcome{}, err
		} else if dup {
			return out, nil
		}
	}

	state := c.initialState(incoming, seenByTransport)

	toID := uint32(0)
	if !incoming && len(msg.To) > 0 {
		toID, err = c.contacts.ResolveOne(context.Background(), tx, msg.To[0], constants.OriginOutgoingTo)
		if err != nil {
			return Outcome{}, err
		}
	}

	row := &model.Message{
		Rfc724Mid:    mid,
		ServerFolder: msg.ServerFolder,
		ServerUID:    msg.ServerUID,
		ChatID:       chatID,
		FromID:       fromID,
		ToID:         toID,
		Timestamp:    ts,
		State:        state,
		IsMsgr:       msg.IsMsgr,
	}
	msgID, err := tx.InsertMessage(row)
	if err != nil {
		return Outcome{}, errors.Wrap(err, "ingest: insert_message failed")
	}

	if !incoming && !isGroup && len(msg.To) > 1 {
		if err := c.ghostFanOut(tx, msg, fromID, msgID, msg.To[0].Addr); err != nil {
			return Outcome{}, err
		}
	}

	c.emitClassifyEvent(tx, chatID, msgID, state)

	return Outcome{MessageID: msgID, ChatID: chatID}, nil
}

func (c *Classifier) resolveFrom(tx store.Tx, msg mailmsg.Parsed, fromSelf bool) (uint32, error) {
	if fromSelf {
		return constants.ContactIDSelf, nil
	}
	if len(msg.From) == 0 {
		return 0, errors.New("ingest: message has no From address")
	}
	origin := constants.OriginIncomingUnknownFrom
	return c.contacts.ResolveOne(context.Background(), tx, msg.From[0], uint32(origin))
}

// assignChat implements §4.G.3's first-match-wins chat assignment.
func (c *Classifier) assignChat(tx store.Tx, msg mailmsg.Parsed, fromID uint32, incoming bool) (chatID uint32, isGroup bool, err error) {
	outcome, err := group.Resolve(tx, c.contacts, fromID, msg.IsMsgr, msg)
	if err != nil {
		return 0, false, err
	}
	if outcome.Handled {
		return outcome.ChatID, true, nil
	}

	if incoming {
		if chatID, ok, err := tx.LookupSingleChat(fromID); err != nil {
			return 0, false, errors.Wrap(err, "ingest: lookup_single_chat failed")
		} else if ok {
			return chatID, false, nil
		}
		repliesToKnown := msg.Header.Get("In-Reply-To") != "" || msg.Header.Get("References") != ""
		if msg.IsMsgr || repliesToKnown {
			chatID, err := tx.CreateSingleChat(fromID)
			if err != nil {
				return 0, false, errors.Wrap(err, "ingest: create_single_chat failed")
			}
			return chatID, false, nil
		}
		return constants.ChatIDDeaddrop, false, nil
	}

	return constants.ChatIDToDeaddrop, false, nil
}

// correctBadTimestamp implements §4.G.4 and invariant 8: for a fresh
// inbound message, ts is raised to be strictly after the last stored
// timestamp from a different sender in the same chat, then capped at
// the smeared wall clock.
func (c *Classifier) correctBadTimestamp(tx store.Tx, chatID, fromID uint32, ts int64) (int64, error) {
	last, err := tx.LastTimestampInChatExcluding(chatID, fromID)
	if err != nil {
		return 0, errors.Wrap(err, "ingest: last_timestamp_in_chat failed")
	}
	if last > 0 && ts <= last {
		ts = last + 1
	}
	now := c.smear(time.Now().Unix())
	if ts > now {
		ts = now
	}
	return ts, nil
}

// smear returns ts, raised if needed to be strictly greater than the
// previous value this Classifier handed out, so messages produced in a
// tight loop still sort uniquely. It is applied both to the wall clock
// and to outgoing message timestamps.
func (c *Classifier) smear(ts int64) int64 {
	c.smearMu.Lock()
	defer c.smearMu.Unlock()
	if ts <= c.lastSmear {
		ts = c.lastSmear + 1
	}
	c.lastSmear = ts
	return ts
}

func (c *Classifier) initialState(incoming, seenByTransport bool) model.MsgState {
	if !incoming {
		return model.MsgOutDelivered
	}
	if seenByTransport {
		return model.MsgInSeen
	}
	return model.MsgInFresh
}

// ghostFanOut implements §4.G.7: for an outbound 1:1-shaped message with
// more than one recipient, creates a ghost row in every additional
// recipient's single chat, carrying param.G = the original message id.
func (c *Classifier) ghostFanOut(tx store.Tx, msg mailmsg.Parsed, fromID, origMsgID uint32, primaryAddr string) error {
	for _, to := range msg.To[1:] {
		if to.Addr == primaryAddr {
			continue
		}
		contactID, err := c.contacts.ResolveOne(context.Background(), tx, to, constants.OriginOutgoingTo)
		if err != nil {
			return err
		}
		chatID, ok, err := tx.LookupSingleChat(contactID)
		if err != nil {
			return errors.Wrap(err, "ingest: lookup_single_chat (ghost) failed")
		}
		if !ok {
			chatID, err = tx.CreateSingleChat(contactID)
			if err != nil {
				return errors.Wrap(err, "ingest: create_single_chat (ghost) failed")
			}
		}
		ghost := &model.Message{
			Rfc724Mid: fmt.Sprintf("G@%d.%s", origMsgID, to.Addr),
			ChatID:    chatID,
			FromID:    fromID,
			ToID:      contactID,
			Timestamp: c.smear(msg.Timestamp),
			State:     model.MsgOutDelivered,
			IsMsgr:    msg.IsMsgr,
			Param:     model.Params{model.ParamGhostOrigID: fmt.Sprintf("%d", origMsgID)},
		}
		if _, err := tx.InsertMessage(ghost); err != nil {
			return errors.Wrap(err, "ingest: insert_message (ghost) failed")
		}
	}
	return nil
}

// emitClassifyEvent implements §4.G.8's event-selection rule.
func (c *Classifier) emitClassifyEvent(tx store.Tx, chatID, msgID uint32, state model.MsgState) {
	fresh := state == model.MsgInFresh
	notDeaddrop := chatID != constants.ChatIDDeaddrop
	if fresh && (notDeaddrop || c.config.ShowDeaddrop) {
		tx.Enqueue(event.IncomingMsg(chatID, msgID))
		return
	}
	tx.Enqueue(event.MsgsChanged(chatID, msgID))
}

// synthesizeMid mints an rfc724_mid for a message that arrived without a
// Message-ID header. It hashes (ts, fromID, sorted to-addresses)
// deterministically so the same message re-ingested later, e.g. after an
// IMAP folder move, synthesizes the identical id and dedups correctly
// instead of creating a second row.
func synthesizeMid(ts int64, fromID uint32, to []mailmsg.Address) string {
	addrs := make([]string, len(to))
	for i, a := range to {
		addrs[i] = normalizeAddr(a.Addr)
	}
	sort.Strings(addrs)

	h := sha256.New()
	fmt.Fprintf(h, "%d|%d|%s", ts, fromID, strings.Join(addrs, ","))
	sum := h.Sum(nil)
	return fmt.Sprintf("synth-%s@localhost", hex.EncodeToString(sum[:16]))
}
