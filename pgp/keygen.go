package pgp

import (
	"bytes"
	"time"

	openpgp "github.com/ProtonMail/go-crypto/openpgp/v2"
	"github.com/pkg/errors"
)

// CreateKeypair generates a primary RSA-2048 signing key with an RSA-2048
// encryption subkey for addr, and returns the binary (non-armored)
// transferable public and private key blobs. The user id is literally
// "<addr>", matching the Autocrypt convention of carrying no display name
// in the key itself.
func (e *Engine) CreateKeypair(addr string) (public, private *Key, err error) {
	config := e.profile.KeyGenerationConfig(0)
	config.Rand = e.randReader()
	config.Time = func() time.Time { return time.Now() }

	entity, err := openpgp.NewEntity("", "", addr, config)
	if err != nil {
		return nil, nil, errors.Wrap(err, "pgp: error generating key pair")
	}
	if entity.PrivateKey == nil {
		return nil, nil, errors.New("pgp: error generating private key")
	}

	var pubBuf, privBuf bytes.Buffer
	if err := entity.Serialize(&pubBuf); err != nil {
		return nil, nil, errors.Wrap(err, "pgp: error serializing public key")
	}
	if err := entity.SerializePrivateWithoutSigning(&privBuf, nil); err != nil {
		return nil, nil, errors.Wrap(err, "pgp: error serializing private key")
	}

	public = &Key{Kind: KindPublic, Bytes: pubBuf.Bytes()}
	private = &Key{Kind: KindPrivate, Bytes: privBuf.Bytes()}
	return public, private, nil
}

// go-crypto's NewEntity already binds the generated RSA subkey with
// KeyFlagEncryptStorage | KeyFlagEncryptCommunications and no preference
// subpackets, matching the Autocrypt subkey-binding requirement without
// extra code on our side.
