package autocrypt_test

import (
	"testing"

	"github.com/deltamsg/core/autocrypt"
	"github.com/deltamsg/core/pgp"
	"github.com/stretchr/testify/require"
)

func TestExportKeyBlockUsesMatchingHeaderForKind(t *testing.T) {
	e := pgp.NewEngine()
	pub, priv, err := e.CreateKeypair("alice@example.org")
	require.NoError(t, err)

	armoredPub, err := autocrypt.ExportKeyBlock(pub)
	require.NoError(t, err)
	require.Contains(t, armoredPub, "BEGIN PGP PUBLIC KEY BLOCK")

	armoredPriv, err := autocrypt.ExportKeyBlock(priv)
	require.NoError(t, err)
	require.Contains(t, armoredPriv, "BEGIN PGP PRIVATE KEY BLOCK")
}
