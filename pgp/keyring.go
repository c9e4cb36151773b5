package pgp

import "github.com/pkg/errors"

// Keyring is an ordered collection of Keys, all of the same Kind.
// Duplicates by fingerprint are permitted but discouraged.
type Keyring struct {
	Kind Kind
	keys []*Key
}

// NewKeyring returns an empty keyring for the given kind.
func NewKeyring(kind Kind) *Keyring {
	return &Keyring{Kind: kind}
}

// Append adds key to the keyring. It errors if key.Kind does not match.
func (kr *Keyring) Append(key *Key) error {
	if key.Kind != kr.Kind {
		return errors.New("pgp: keyring kind mismatch")
	}
	kr.keys = append(kr.keys, key)
	return nil
}

// Keys returns the keys in insertion order.
func (kr *Keyring) Keys() []*Key {
	return kr.keys
}

// Len returns the number of keys in the keyring.
func (kr *Keyring) Len() int {
	return len(kr.keys)
}

// FindByKeyID returns the first key whose fingerprint's lower 8 bytes
// match id, or nil if none match.
func (kr *Keyring) FindByKeyID(id uint64) *Key {
	for _, k := range kr.keys {
		fp, err := CalcFingerprint(k)
		if err != nil {
			continue
		}
		if fp.KeyID() == id {
			return k
		}
	}
	return nil
}

// LookupByFingerprint returns the first key with the given fingerprint,
// or nil if none match.
func (kr *Keyring) LookupByFingerprint(fp Fingerprint) *Key {
	for _, k := range kr.keys {
		kfp, err := CalcFingerprint(k)
		if err != nil {
			continue
		}
		if kfp == fp {
			return k
		}
	}
	return nil
}
