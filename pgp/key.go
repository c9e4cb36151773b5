package pgp

import (
	"bytes"
	"encoding/hex"
	"strings"
	"time"

	openpgp "github.com/ProtonMail/go-crypto/openpgp/v2"
	"github.com/pkg/errors"
)

// Kind tags whether a Key blob carries a public or private transferable key.
type Kind int

const (
	KindPublic Kind = iota
	KindPrivate
)

// Key is a binary OpenPGP transferable key blob plus its declared kind.
// Construction validates parseability against the declared kind; use
// IsValidKey to re-check a blob that was not constructed through NewKey.
type Key struct {
	Kind  Kind
	Bytes []byte
}

// Fingerprint is the 20-byte SHA-1 V4 fingerprint of a key's primary packet.
type Fingerprint [20]byte

// String renders the fingerprint as uppercase hex, per RFC 4880 §12.2
// display convention.
func (f Fingerprint) String() string {
	return strings.ToUpper(hex.EncodeToString(f[:]))
}

// KeyID returns the lower 8 bytes of the fingerprint, used for PKESK
// key-id matching.
func (f Fingerprint) KeyID() uint64 {
	var id uint64
	for _, b := range f[12:] {
		id = id<<8 | uint64(b)
	}
	return id
}

// NewKey parses blob as kind and returns a Key on success.
func NewKey(kind Kind, blob []byte) (*Key, error) {
	k := &Key{Kind: kind, Bytes: blob}
	if err := IsValidKey(k); err != nil {
		return nil, err
	}
	return k, nil
}

// parseEntity parses the sole entity out of a transferable key blob.
func parseEntity(blob []byte) (*openpgp.Entity, error) {
	entities, err := openpgp.ReadKeyRing(bytes.NewReader(blob))
	if err != nil {
		return nil, errors.Wrap(err, "pgp: invalid key blob")
	}
	if len(entities) != 1 {
		return nil, errors.New("pgp: key blob must contain exactly one entity")
	}
	return entities[0], nil
}

// IsValidKey returns nil iff key.Bytes parses, the parsed kind matches
// key.Kind and the primary key has a valid self-signature. It never
// panics, even on adversarial input.
func IsValidKey(key *Key) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("pgp: invalid key: %v", r)
		}
	}()
	entity, err := parseEntity(key.Bytes)
	if err != nil {
		return err
	}
	hasPrivate := entity.PrivateKey != nil
	switch key.Kind {
	case KindPrivate:
		if !hasPrivate {
			return errors.New("pgp: expected a private key blob")
		}
	case KindPublic:
		if hasPrivate {
			return errors.New("pgp: expected a public key blob")
		}
	}
	if _, err := entity.PrimarySelfSignature(time.Time{}); err != nil {
		return errors.Wrap(err, "pgp: key has no valid self-signature")
	}
	return nil
}

// CalcFingerprint returns the SHA-1 V4 fingerprint of key's primary packet.
func CalcFingerprint(key *Key) (Fingerprint, error) {
	entity, err := parseEntity(key.Bytes)
	if err != nil {
		return Fingerprint{}, err
	}
	var fp Fingerprint
	copy(fp[:], entity.PrimaryKey.Fingerprint)
	return fp, nil
}

// SplitKey extracts the public transferable key from a private key blob.
func SplitKey(private *Key) (*Key, error) {
	if private.Kind != KindPrivate {
		return nil, errors.New("pgp: split_key requires a private key")
	}
	entity, err := parseEntity(private.Bytes)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := entity.Serialize(&buf); err != nil {
		return nil, errors.Wrap(err, "pgp: error serializing public key")
	}
	return &Key{Kind: KindPublic, Bytes: buf.Bytes()}, nil
}
