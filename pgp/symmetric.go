package pgp

import (
	"bytes"
	"crypto"
	"io"
	"time"

	openpgp "github.com/ProtonMail/go-crypto/openpgp/v2"
	"github.com/ProtonMail/go-crypto/openpgp/armor"
	"github.com/ProtonMail/go-crypto/openpgp/packet"
	"github.com/ProtonMail/go-crypto/openpgp/s2k"
	"github.com/deltamsg/core/constants"
	"github.com/deltamsg/core/internal"
	"github.com/pkg/errors"
)

// symmConfig returns the packet.Config used for Autocrypt Setup Message
// symmetric encryption: AES-128 cipher, iterated+salted S2K with SHA-256
// and 65,536 iterations (S2K count-octet 96), matching the Autocrypt
// Setup Message wire format.
func (e *Engine) symmConfig() *packet.Config {
	return &packet.Config{
		Rand:          e.randReader(),
		Time:          func() time.Time { return time.Now() },
		DefaultCipher: packet.CipherAES128,
		S2KConfig: &s2k.Config{
			S2KMode:  s2k.IteratedSaltedS2K,
			Hash:     crypto.SHA256,
			S2KCount: 65536,
		},
	}
}

// SymmEncrypt produces a standalone Autocrypt Setup Message payload: a
// literal-data packet containing plain, wrapped in a Tag 3 Symmetric-Key
// Encrypted Session Key packet and a Tag 18 SEIPD packet, ASCII-armored.
func (e *Engine) SymmEncrypt(passphrase []byte, plain []byte) ([]byte, error) {
	var outBuf bytes.Buffer
	armorWriter, err := armor.Encode(&outBuf, constants.PGPMessageHeader, internal.ArmorHeaders)
	if err != nil {
		return nil, errors.Wrap(err, "pgp: error creating armor writer")
	}

	plaintextWriter, err := openpgp.SymmetricallyEncrypt(armorWriter, passphrase, nil, e.symmConfig())
	if err != nil {
		return nil, errors.Wrap(err, "pgp: error in symmetric encryption")
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

// SymmDecrypt is the inverse of SymmEncrypt, tolerating armored or binary
// ciphertext input.
func (e *Engine) SymmDecrypt(passphrase []byte, ctext []byte) ([]byte, error) {
	body, err := unwrapArmor(ctext)
	if err != nil {
		return nil, errors.Wrap(err, "pgp: error reading armored message")
	}

	firstTry := true
	prompt := func(keys []openpgp.Key, symmetric bool) ([]byte, error) {
		if firstTry {
			firstTry = false
			return passphrase, nil
		}
		return nil, errors.New("pgp: wrong passphrase in symmetric decryption")
	}

	md, err := openpgp.ReadMessage(body, nil, prompt, e.symmConfig())
	if err != nil {
		return nil, errors.Wrap(err, "pgp: error in symmetric decryption: wrong passphrase or malformed message")
	}
	plain, err := io.ReadAll(internal.NewSanitizeReader(md.UnverifiedBody))
	if err != nil {
		return nil, errors.Wrap(err, "pgp: error reading decrypted message")
	}
	return plain, nil
}
