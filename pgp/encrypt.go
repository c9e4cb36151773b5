package pgp

import (
	"bytes"
	"time"

	openpgp "github.com/ProtonMail/go-crypto/openpgp/v2"
	"github.com/ProtonMail/go-crypto/openpgp/armor"
	"github.com/ProtonMail/go-crypto/openpgp/packet"
	"github.com/deltamsg/core/constants"
	"github.com/deltamsg/core/internal"
	"github.com/pkg/errors"
)

func (e *Engine) encryptConfig() *packet.Config {
	cfg := e.profile.EncryptionConfig()
	cfg.Rand = e.randReader()
	cfg.Time = func() time.Time { return time.Now() }
	if cfg.DefaultCipher == 0 {
		cfg.DefaultCipher = packet.CipherAES256
	}
	return cfg
}

// PkEncrypt produces an ASCII-armored OpenPGP message encrypting plain to
// every key in recipients. If signer is non-nil, the message is signed
// before encryption so the innermost payload is a signed literal-data
// packet; otherwise it is encrypt-only. The session key is wrapped in a
// PKESK packet per recipient and the payload uses SEIPD (Tag 18) with MDC,
// never Tag 9 (plain symmetric data).
func (e *Engine) PkEncrypt(plain []byte, recipients *Keyring, signer *Key) ([]byte, error) {
	if recipients == nil || recipients.Kind != KindPublic || recipients.Len() == 0 {
		return nil, errors.New("pgp: pk_encrypt requires at least one public recipient key")
	}
	recipientEntities := make([]*openpgp.Entity, 0, recipients.Len())
	for _, k := range recipients.Keys() {
		ent, err := parseEntity(k.Bytes)
		if err != nil {
			return nil, errors.Wrap(err, "pgp: invalid recipient key")
		}
		recipientEntities = append(recipientEntities, ent)
	}

	var signEntity *openpgp.Entity
	if signer != nil {
		if signer.Kind != KindPrivate {
			return nil, errors.New("pgp: pk_encrypt signer must be a private key")
		}
		ent, err := parseEntity(signer.Bytes)
		if err != nil {
			return nil, errors.Wrap(err, "pgp: invalid signer key")
		}
		signEntity = ent
	}

	var outBuf bytes.Buffer
	armorWriter, err := armor.Encode(&outBuf, constants.PGPMessageHeader, internal.ArmorHeaders)
	if err != nil {
		return nil, errors.Wrap(err, "pgp: error creating armor writer")
	}

	plaintextWriter, err := openpgp.Encrypt(armorWriter, recipientEntities, signEntity, nil, e.encryptConfig())
	if err != nil {
		return nil, errors.Wrap(err, "pgp: error in encrypting message")
	}
	if _, err := plaintextWriter.Write(plain); err != nil {
		return nil, errors.Wrap(err, "pgp: error writing plaintext")
	}
	if err := plaintextWriter.Close(); err != nil {
		return nil, errors.Wrap(err, "pgp: error closing encryption writer")
	}
	if err := armorWriter.Close(); err != nil {
		return nil, errors.Wrap(err, "pgp: error closing armor writer")
	}
	return outBuf.Bytes(), nil
}
