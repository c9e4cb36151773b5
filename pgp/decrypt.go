package pgp

import (
	"bytes"
	"io"
	"time"

	openpgp "github.com/ProtonMail/go-crypto/openpgp/v2"
	"github.com/ProtonMail/go-crypto/openpgp/armor"
	"github.com/ProtonMail/go-crypto/openpgp/packet"
	"github.com/deltamsg/core/internal"
	"github.com/pkg/errors"
)

func (e *Engine) decryptConfig() *packet.Config {
	cfg := &packet.Config{
		Rand: e.randReader(),
		Time: func() time.Time { return time.Now() },
	}
	return cfg
}

// PkDecrypt tries each key in keys as a decryptor, in order, and returns
// the plaintext on the first that succeeds. If the payload is signed, the
// one signature go-crypto reports for the message is checked: if it
// verifies and its signer's primary key is in validators, that signer's
// fingerprint is returned in validFingerprints. Further signatures on a
// message signed more than once are not examined. An unknown-signer or a
// bad signature is not itself an error: the message is still returned,
// just without that fingerprint.
func (e *Engine) PkDecrypt(ctext []byte, keys *Keyring, validators *Keyring) (plain []byte, validFingerprints []Fingerprint, err error) {
	if keys == nil || keys.Kind != KindPrivate || keys.Len() == 0 {
		return nil, nil, errors.New("pgp: pk_decrypt requires at least one private key")
	}

	var entries openpgp.EntityList
	for _, k := range keys.Keys() {
		ent, perr := parseEntity(k.Bytes)
		if perr != nil {
			continue
		}
		entries = append(entries, ent)
	}
	if len(entries) == 0 {
		return nil, nil, errors.New("pgp: no usable private key to decrypt with")
	}

	var validatorEntities openpgp.EntityList
	if validators != nil {
		for _, k := range validators.Keys() {
			ent, perr := parseEntity(k.Bytes)
			if perr != nil {
				continue
			}
			validatorEntities = append(validatorEntities, ent)
			entries = append(entries, ent)
		}
	}

	body, err := unwrapArmor(ctext)
	if err != nil {
		return nil, nil, errors.Wrap(err, "pgp: error reading armored message")
	}

	md, err := openpgp.ReadMessage(body, entries, nil, e.decryptConfig())
	if err != nil {
		return nil, nil, errors.Wrap(err, "pgp: decrypting message failed")
	}

	plain, err = io.ReadAll(internal.NewSanitizeReader(md.UnverifiedBody))
	if err != nil {
		return nil, nil, errors.Wrap(err, "pgp: error reading decrypted message")
	}

	if md.IsSigned && md.SignatureError == nil && md.SignedBy != nil {
		for _, vk := range validatorEntities {
			if vk.PrimaryKey.KeyId == md.SignedByKeyId {
				var fp Fingerprint
				copy(fp[:], vk.PrimaryKey.Fingerprint)
				validFingerprints = append(validFingerprints, fp)
				break
			}
		}
	}
	return plain, validFingerprints, nil
}

// unwrapArmor returns a reader over the message body, transparently
// unarmoring ASCII-armored input and passing through binary input as-is.
func unwrapArmor(data []byte) (io.Reader, error) {
	block, err := armor.Decode(bytes.NewReader(data))
	if err != nil {
		return bytes.NewReader(data), nil
	}
	return block.Body, nil
}
