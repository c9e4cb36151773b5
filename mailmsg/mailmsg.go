// Package mailmsg is the structured view of an inbound RFC 5322 message
// that the contact resolver, group resolver, classifier and MDN handler
// all consume. Building one is the MIME parser's job; this package only
// defines the shape and the small amount of RFC 5322 / RFC 2047 decoding
// needed to read addresses and headers out of it.
package mailmsg

import (
	"mime"
	"net/mail"
	"strings"

	"github.com/emersion/go-message/textproto"
)

// Address is a decoded display-name/address pair. Name has already been
// RFC 2047 decoded; ParseAddressList lowercases and trims Addr.
type Address struct {
	Name string
	Addr string
}

// Part is one MIME body part worth storing as its own Message row.
type Part struct {
	// Type is a coarse kind such as "text", "image", "file".
	Type string
	Text string
	// Bytes is the part's encoded size, used for Message.Bytes.
	Bytes int
}

// Parsed is the structured form of one ingested mail: header plus the
// address lists and body parts the pipeline needs. The MIME parser
// (external to this module) is responsible for producing one.
type Parsed struct {
	Header textproto.Header

	From []Address
	To   []Address
	Cc   []Address

	// Rfc724Mid is the Message-ID header value with angle brackets
	// stripped, or "" if absent.
	Rfc724Mid string

	// Timestamp is the Date header parsed to Unix seconds, or 0 if
	// absent or unparseable.
	Timestamp int64

	// IsMsgr is true when the message carries a messenger marker
	// (Chat-Version header), distinguishing it from plain MUA mail.
	IsMsgr bool

	// Seen reports whether the transport already reported this message
	// as read (e.g. an IMAP \Seen flag at fetch time).
	Seen bool

	// ServerFolder and ServerUID identify where the transport fetched
	// this message from, for dedup-on-move (§8 S4).
	ServerFolder string
	ServerUID    uint32

	Parts []Part

	// Body carries the raw, undecoded MIME body bytes for a message the
	// classifier may need to hand to a body-level parser, such as
	// mdn.Parse for a multipart/report.
	Body []byte
}

var decoder = mime.WordDecoder{}

// DecodeHeaderWord decodes RFC 2047 encoded-words in s, falling back to s
// unchanged if it contains none or decoding fails.
func DecodeHeaderWord(s string) string {
	decoded, err := decoder.DecodeHeader(s)
	if err != nil {
		return s
	}
	return decoded
}

// ParseAddressList decodes an RFC 5322 address-list header value (after
// RFC 2047 word decoding) into Address values. Malformed entries are
// skipped rather than failing the whole list, since a single bad address
// in a To: header must not block ingest of the rest.
func ParseAddressList(value string) []Address {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	decoded := DecodeHeaderWord(value)
	parsed, err := mail.ParseAddressList(decoded)
	if err != nil {
		return parseAddressListLenient(decoded)
	}
	out := make([]Address, 0, len(parsed))
	for _, a := range parsed {
		out = append(out, Address{Name: normalizeName(a.Name), Addr: normalizeAddr(a.Address)})
	}
	return out
}

// parseAddressListLenient recovers one address at a time from a
// comma-separated list when net/mail rejects the whole header, so that a
// single malformed entry does not discard every address that follows it.
func parseAddressListLenient(value string) []Address {
	var out []Address
	for _, field := range strings.Split(value, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		a, err := mail.ParseAddress(field)
		if err != nil {
			continue
		}
		out = append(out, Address{Name: normalizeName(a.Name), Addr: normalizeAddr(a.Address)})
	}
	return out
}

func normalizeName(name string) string {
	fields := strings.Fields(name)
	return strings.Join(fields, " ")
}

func normalizeAddr(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

// HeaderAny returns the first non-empty value among candidate header
// names, tried in order. Used to accept both the legacy X-Mr* and
// canonical Chat-* header names for the same field.
func HeaderAny(h textproto.Header, names ...string) string {
	for _, name := range names {
		if v := h.Get(name); v != "" {
			return v
		}
	}
	return ""
}
