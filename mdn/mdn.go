// Package mdn parses RFC 3798 Message Disposition Notifications (read
// receipts) out of inbound mail and resolves them to the original
// message they acknowledge.
package mdn

import (
	"bufio"
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	nettextproto "net/textproto"
	"strings"

	"github.com/deltamsg/core/event"
	"github.com/deltamsg/core/internal"
	"github.com/deltamsg/core/store"
	"github.com/emersion/go-message/textproto"
	"github.com/pkg/errors"
)

// Result is the outcome of successfully parsing one MDN: the message it
// acknowledges. A malformed or irrelevant MDN yields ok=false, never an
// error, since MDN failures must never abort ingest of the carrying mail.
type Result struct {
	OriginalRfc724Mid string
	Disposition       string
}

// IsReport reports whether header carries a disposition-notification
// multipart/report, the precondition for attempting to parse it.
func IsReport(header textproto.Header) bool {
	mediaType, params, err := mime.ParseMediaType(header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/report" {
		return false
	}
	return strings.EqualFold(params["report-type"], "disposition-notification")
}

// Parse reads the second subpart of a multipart/report body (the
// "message/disposition-notification" part) and extracts the Disposition
// and Original-Message-ID fields. Any parsing failure or a part count
// below 2 yields ok=false with no error, per §4.H's "silently ignored"
// rule for malformed MDNs.
func Parse(header textproto.Header, body io.Reader) (res Result, ok bool) {
	_, params, err := mime.ParseMediaType(header.Get("Content-Type"))
	if err != nil {
		return Result{}, false
	}
	boundary := params["boundary"]
	if boundary == "" {
		return Result{}, false
	}

	mr := multipart.NewReader(body, boundary)
	var parts []*multipart.Part
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Result{}, false
		}
		parts = append(parts, p)
		if len(parts) >= 2 {
			break
		}
	}
	if len(parts) < 2 {
		return Result{}, false
	}

	innerHeader, err := readMIMEHeader(parts[1])
	if err != nil {
		return Result{}, false
	}

	disposition := internal.SanitizeString(innerHeader.Get("Disposition"))
	originalMid := stripAngleBrackets(innerHeader.Get("Original-Message-ID"))
	if disposition == "" || originalMid == "" {
		return Result{}, false
	}
	return Result{OriginalRfc724Mid: originalMid, Disposition: disposition}, true
}

// readMIMEHeader reads part's body as a nested RFC 5322 header block
// (the "message/disposition-notification" part is itself header-only
// plus a blank line).
func readMIMEHeader(part *multipart.Part) (nettextproto.MIMEHeader, error) {
	raw, err := io.ReadAll(part)
	if err != nil {
		return nil, errors.Wrap(err, "mdn: error reading report part")
	}
	r := nettextproto.NewReader(bufio.NewReader(bytes.NewReader(raw)))
	h, err := r.ReadMIMEHeader()
	if err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "mdn: error reading report part header")
	}
	return h, nil
}

func stripAngleBrackets(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "<")
	s = strings.TrimSuffix(s, ">")
	return s
}

// Handle implements §4.H: given a parsed MDN result, resolve the
// original message (only if it was sent by SELF) and queue a MSG_READ
// event on tx.
func Handle(tx store.Tx, res Result) error {
	chatID, msgID, found, err := tx.ResolveSentMessage(res.OriginalRfc724Mid)
	if err != nil {
		return errors.Wrap(err, "mdn: resolve_sent_message failed")
	}
	if !found {
		return nil
	}
	tx.Enqueue(event.MsgRead(chatID, msgID))
	return nil
}
