// Package pgp is the OpenPGP engine: key generation, fingerprinting,
// public-key encrypt/decrypt with optional signing, and passphrase-based
// symmetric encryption for Autocrypt Setup Messages. It wraps
// github.com/ProtonMail/go-crypto/openpgp/v2 behind the typed operations
// the message pipeline calls.
package pgp
