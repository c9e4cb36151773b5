package ingest_test

import (
	"testing"

	"github.com/deltamsg/core/constants"
	"github.com/deltamsg/core/contact"
	"github.com/deltamsg/core/ingest"
	"github.com/deltamsg/core/internal/storetest"
	"github.com/deltamsg/core/mailmsg"
	"github.com/deltamsg/core/model"
	"github.com/emersion/go-message/textproto"
	"github.com/stretchr/testify/require"
)

func newClassifier() (*ingest.Classifier, *contact.Resolver) {
	contacts := contact.New("self@example.org")
	return ingest.New(nil, contacts, ingest.Config{ShowDeaddrop: false, MdnsEnabled: true}), contacts
}

// incomingHeader returns a header carrying Return-Path, which
// ingest.DetermineDirection treats as the incoming marker.
func incomingHeader(extra map[string]string) textproto.Header {
	var h textproto.Header
	h.Set("Return-Path", "<bounce@example.org>")
	for k, v := range extra {
		h.Set(k, v)
	}
	return h
}

func TestDetermineDirectionIncomingNeedsReturnPath(t *testing.T) {
	_, contacts := newClassifier()

	withReturnPath := mailmsg.Parsed{Header: incomingHeader(nil), From: []mailmsg.Address{{Addr: "bob@example.org"}}}
	require.False(t, ingest.DetermineDirection(withReturnPath, contacts), "Return-Path present means incoming")

	var plain textproto.Header
	withoutReturnPath := mailmsg.Parsed{Header: plain, From: []mailmsg.Address{{Addr: "bob@example.org"}}}
	require.True(t, ingest.DetermineDirection(withoutReturnPath, contacts), "absent Return-Path defaults to outgoing")
}

func TestDetermineDirectionFromSelfAlwaysOutgoing(t *testing.T) {
	_, contacts := newClassifier()

	msg := mailmsg.Parsed{Header: incomingHeader(nil), From: []mailmsg.Address{{Addr: "self@example.org"}}}
	require.True(t, ingest.DetermineDirection(msg, contacts), "From == SELF flips direction to outgoing even with Return-Path set")
}

func TestClassifyFreshIncomingUnknownSenderGoesToDeaddrop(t *testing.T) {
	tx := storetest.New()
	c, _ := newClassifier()

	msg := mailmsg.Parsed{
		Header:    incomingHeader(nil),
		From:      []mailmsg.Address{{Addr: "stranger@example.org"}},
		Rfc724Mid: "msg1@example.org",
		Timestamp: 1000,
	}

	outcome, err := c.Classify(tx, msg, false)
	require.NoError(t, err)
	require.Equal(t, constants.ChatIDDeaddrop, outcome.ChatID)
	require.Len(t, tx.Events, 1)
	require.Equal(t, constants.EventMsgsChanged, tx.Events[0].ID, "deaddrop messages fire MSGS_CHANGED unless ShowDeaddrop")
}

func TestClassifyDedupUpdatesServerUID(t *testing.T) {
	tx := storetest.New()
	c, _ := newClassifier()

	msg := mailmsg.Parsed{
		Header:       incomingHeader(nil),
		From:         []mailmsg.Address{{Addr: "stranger@example.org"}},
		Rfc724Mid:    "msg1@example.org",
		Timestamp:    1000,
		ServerFolder: "INBOX",
		ServerUID:    7,
	}
	first, err := c.Classify(tx, msg, false)
	require.NoError(t, err)

	msg.ServerFolder = "Archive"
	msg.ServerUID = 13
	second, err := c.Classify(tx, msg, false)
	require.NoError(t, err)

	require.True(t, second.Deduped)
	require.Equal(t, first.MessageID, second.MessageID)
	require.Equal(t, "Archive", tx.Messages[second.MessageID].ServerFolder)
	require.EqualValues(t, 13, tx.Messages[second.MessageID].ServerUID)
}

func TestClassifyMessengerReplyCreatesSingleChat(t *testing.T) {
	tx := storetest.New()
	c, _ := newClassifier()

	msg := mailmsg.Parsed{
		Header:    incomingHeader(nil),
		From:      []mailmsg.Address{{Addr: "bob@example.org"}},
		Rfc724Mid: "msg2@example.org",
		Timestamp: 1000,
		IsMsgr:    true,
	}

	outcome, err := c.Classify(tx, msg, false)
	require.NoError(t, err)
	require.NotEqual(t, constants.ChatIDDeaddrop, outcome.ChatID)
	require.Len(t, tx.Events, 1)
	require.Equal(t, constants.EventIncomingMsg, tx.Events[0].ID)
}

func TestClassifyOutgoingGhostFanOut(t *testing.T) {
	tx := storetest.New()
	c, _ := newClassifier()

	msg := mailmsg.Parsed{
		From:      []mailmsg.Address{{Addr: "self@example.org"}},
		To:        []mailmsg.Address{{Addr: "bob@example.org"}, {Addr: "carol@example.org"}},
		Rfc724Mid: "out1@example.org",
		Timestamp: 1000,
		IsMsgr:    true,
	}

	_, err := c.Classify(tx, msg, false)
	require.NoError(t, err)

	var ghosts int
	for _, m := range tx.Messages {
		if m.Param[model.ParamGhostOrigID] != "" {
			ghosts++
		}
	}
	require.Equal(t, 1, ghosts, "the second recipient gets a ghost row")
}

func TestClassifyTimestampCorrectedAgainstOtherSenderInSameChat(t *testing.T) {
	tx := storetest.New()
	c, _ := newClassifier()

	chatID, err := tx.CreateGroupChat("ABCD1234", "Group")
	require.NoError(t, err)
	bobID, err := tx.UpsertContact("bob@example.org", "Bob", constants.OriginIncomingUnknownFrom)
	require.NoError(t, err)
	carolID, err := tx.UpsertContact("carol@example.org", "Carol", constants.OriginIncomingUnknownFrom)
	require.NoError(t, err)
	require.NoError(t, tx.AddMember(chatID, bobID))
	require.NoError(t, tx.AddMember(chatID, carolID))

	_, err = tx.InsertMessage(&model.Message{
		Rfc724Mid: "from-bob@example.org",
		ChatID:    chatID,
		FromID:    bobID,
		Timestamp: 1000,
		State:     model.MsgInFresh,
	})
	require.NoError(t, err)

	second := mailmsg.Parsed{
		Header:    incomingHeader(map[string]string{"Chat-Group-ID": "ABCD1234"}),
		From:      []mailmsg.Address{{Addr: "carol@example.org"}},
		Rfc724Mid: "from-carol@example.org",
		Timestamp: 1000,
		IsMsgr:    true,
	}
	out, err := c.Classify(tx, second, false)
	require.NoError(t, err)
	require.Greater(t, tx.Messages[out.MessageID].Timestamp, int64(1000),
		"a colliding timestamp against another sender already in the chat must be nudged forward")
}

func TestClassifyMissingMessageIDSynthesizesDeterministicallyAndDedups(t *testing.T) {
	tx := storetest.New()
	c, _ := newClassifier()

	msg := mailmsg.Parsed{
		Header:       incomingHeader(nil),
		From:         []mailmsg.Address{{Addr: "stranger@example.org"}},
		To:           []mailmsg.Address{{Addr: "self@example.org"}},
		Timestamp:    1000,
		ServerFolder: "INBOX",
		ServerUID:    1,
	}

	first, err := c.Classify(tx, msg, false)
	require.NoError(t, err)
	require.NotZero(t, first.MessageID)

	// Re-ingested after an IMAP folder move: same content, no
	// Message-ID, different server location. It must synthesize the
	// identical rfc724_mid and dedup instead of creating a new row.
	msg.ServerFolder = "Archive"
	msg.ServerUID = 9
	second, err := c.Classify(tx, msg, false)
	require.NoError(t, err)
	require.True(t, second.Deduped, "a re-ingested message missing Message-ID must synthesize the same id and dedup")
	require.Equal(t, first.MessageID, second.MessageID)
	require.Equal(t, "Archive", tx.Messages[second.MessageID].ServerFolder)
}

func TestClassifyRoutesDispositionNotificationToMdnHandle(t *testing.T) {
	tx := storetest.New()
	c, _ := newClassifier()

	bobID, err := tx.UpsertContact("bob@example.org", "Bob", constants.OriginIncomingUnknownFrom)
	require.NoError(t, err)
	chatID, err := tx.CreateSingleChat(bobID)
	require.NoError(t, err)
	_, err = tx.InsertMessage(&model.Message{
		Rfc724Mid: "sent1@example.org",
		ChatID:    chatID,
		FromID:    constants.ContactIDSelf,
		Timestamp: 500,
		State:     model.MsgOutDelivered,
	})
	require.NoError(t, err)

	const boundary = "report-boundary"
	body := "--" + boundary + "\r\n" +
		"Content-Type: text/plain\r\n\r\n" +
		"Your message was read.\r\n" +
		"--" + boundary + "\r\n" +
		"Content-Type: message/disposition-notification\r\n\r\n" +
		"Disposition: manual-action/MDN-sent-automatically; displayed\r\n" +
		"Original-Message-ID: <sent1@example.org>\r\n" +
		"\r\n" +
		"--" + boundary + "--\r\n"

	header := incomingHeader(nil)
	header.Set("Content-Type", "multipart/report; report-type=disposition-notification; boundary="+boundary)

	msg := mailmsg.Parsed{
		Header:    header,
		From:      []mailmsg.Address{{Addr: "bob@example.org"}},
		Rfc724Mid: "mdn1@example.org",
		Timestamp: 1000,
		Body:      []byte(body),
	}

	outcome, err := c.Classify(tx, msg, false)
	require.NoError(t, err)
	require.Zero(t, outcome.MessageID, "an MDN is handled in place, not stored as its own message")

	var found bool
	for _, evt := range tx.Events {
		if evt.ID == constants.EventMsgRead {
			found = true
		}
	}
	require.True(t, found, "a disposition notification for our own sent message must fire MSG_READ")
}
