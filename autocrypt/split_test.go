package autocrypt_test

import (
	"testing"

	"github.com/deltamsg/core/autocrypt"
	"github.com/stretchr/testify/require"
)

func TestSplitParsesHeadersAndBody(t *testing.T) {
	raw := "-----BEGIN PGP MESSAGE-----\n" +
		"Passphrase-Begin: 12\n" +
		"Autocrypt-Prefer-Encrypt: mutual\n" +
		"\n" +
		"SGVsbG8g\n" +
		"V29ybGQ=\n" +
		"-----END PGP MESSAGE-----\n"

	block, err := autocrypt.Split(raw)
	require.NoError(t, err)
	require.Equal(t, "PGP MESSAGE", block.Label)
	require.Equal(t, "12", block.PassphraseBegin)
	require.Equal(t, "mutual", block.PreferEncrypt)
	require.Equal(t, "SGVsbG8gV29ybGQ=", block.Base64Body)
}

func TestSplitRejectsMismatchedEndLabel(t *testing.T) {
	raw := "-----BEGIN PGP MESSAGE-----\n\nYQ==\n-----END PGP SIGNATURE-----\n"
	_, err := autocrypt.Split(raw)
	require.Error(t, err)
}

func TestSplitRejectsMissingEnd(t *testing.T) {
	raw := "-----BEGIN PGP MESSAGE-----\n\nYQ==\n"
	_, err := autocrypt.Split(raw)
	require.Error(t, err)
}

func TestSplitToleratesCRLF(t *testing.T) {
	raw := "-----BEGIN PGP PUBLIC KEY BLOCK-----\r\n\r\nYQ==\r\n-----END PGP PUBLIC KEY BLOCK-----\r\n"
	block, err := autocrypt.Split(raw)
	require.NoError(t, err)
	require.Equal(t, "YQ==", block.Base64Body)
}
