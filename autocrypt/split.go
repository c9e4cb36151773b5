// Package autocrypt splits ASCII-armored PGP blocks carrying
// Autocrypt-specific headers, the way the pipeline reads Autocrypt Setup
// Messages and exported keys out of mail bodies.
package autocrypt

import (
	"strings"

	"github.com/pkg/errors"
)

// Block is the result of splitting one ASCII-armored PGP block: the raw
// header line, any recognised Autocrypt headers, and the base64 body.
type Block struct {
	// Header is the full BEGIN line, e.g. "-----BEGIN PGP MESSAGE-----".
	Header string
	// Label is the part between "-----BEGIN " and "-----", e.g. "PGP MESSAGE".
	Label string
	// PassphraseBegin is the value of a "Passphrase-Begin" armor header, if present.
	PassphraseBegin string
	// PreferEncrypt is the value of an "Autocrypt-Prefer-Encrypt" armor header, if present.
	PreferEncrypt string
	// Base64Body is the undecoded base64 body between headers and the END line.
	Base64Body string
}

// Split parses buf as a single ASCII-armored PGP block. It strips \r,
// requires the first non-empty line to match "-----BEGIN <label>-----",
// reads armor headers of the form "Name: Value" until an empty line or a
// line without ":" (tolerating malformed producers), and requires the
// label on the END line to equal the label captured at BEGIN.
func Split(buf string) (*Block, error) {
	text := strings.ReplaceAll(buf, "\r", "")
	lines := strings.Split(text, "\n")

	i := 0
	for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
		i++
	}
	if i >= len(lines) {
		return nil, errors.New("autocrypt: armored block not parseable: empty input")
	}

	beginLine := lines[i]
	label, ok := parseBoundary(beginLine, "BEGIN")
	if !ok {
		return nil, errors.New("autocrypt: armored block not parseable: missing BEGIN line")
	}
	i++

	block := &Block{Header: beginLine, Label: label}

	bodyStart := -1
headers:
	for ; i < len(lines); i++ {
		line := lines[i]
		if strings.TrimSpace(line) == "" {
			bodyStart = i + 1
			break
		}
		name, value, hasColon := splitHeaderLine(line)
		if !hasColon {
			bodyStart = i
			break headers
		}
		switch strings.ToLower(name) {
		case "passphrase-begin":
			block.PassphraseBegin = value
		case "autocrypt-prefer-encrypt":
			block.PreferEncrypt = value
		}
	}
	if bodyStart == -1 {
		bodyStart = i
	}

	var bodyLines []string
	endLabel := ""
	endFound := false
	for j := bodyStart; j < len(lines); j++ {
		line := lines[j]
		if lbl, ok := parseBoundary(line, "END"); ok {
			endLabel = lbl
			endFound = true
			break
		}
		bodyLines = append(bodyLines, strings.TrimRight(line, " \t"))
	}
	if !endFound {
		return nil, errors.New("autocrypt: armored block not parseable: missing END line")
	}
	if endLabel != label {
		return nil, errors.Errorf("autocrypt: armored block not parseable: BEGIN label %q does not match END label %q", label, endLabel)
	}

	block.Base64Body = strings.Join(bodyLines, "")
	return block, nil
}

// parseBoundary matches a line of the form "-----<kind> <label>-----" and
// returns the label.
func parseBoundary(line, kind string) (string, bool) {
	const dashes = "-----"
	prefix := dashes + kind + " "
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, prefix) || !strings.HasSuffix(trimmed, dashes) {
		return "", false
	}
	label := strings.TrimSuffix(strings.TrimPrefix(trimmed, prefix), dashes)
	if label == "" {
		return "", false
	}
	return label, true
}

func splitHeaderLine(line string) (name, value string, ok bool) {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return "", "", false
	}
	return strings.TrimSpace(line[:idx]), strings.TrimSpace(line[idx+1:]), true
}
