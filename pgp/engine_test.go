package pgp_test

import (
	"testing"

	"github.com/deltamsg/core/pgp"
	"github.com/deltamsg/core/profile"
	"github.com/stretchr/testify/require"
)

func TestCreateKeypairRoundTripsThroughNewKey(t *testing.T) {
	e := pgp.NewEngine()
	pub, priv, err := e.CreateKeypair("alice@example.org")
	require.NoError(t, err)

	_, err = pgp.NewKey(pgp.KindPublic, pub.Bytes)
	require.NoError(t, err)
	_, err = pgp.NewKey(pgp.KindPrivate, priv.Bytes)
	require.NoError(t, err)

	require.NoError(t, pgp.IsValidKey(pub))
	require.NoError(t, pgp.IsValidKey(priv))
}

func TestCalcFingerprintIsStableAndMatchesSplitKey(t *testing.T) {
	e := pgp.NewEngine()
	pub, priv, err := e.CreateKeypair("alice@example.org")
	require.NoError(t, err)

	fp1, err := pgp.CalcFingerprint(pub)
	require.NoError(t, err)
	fp2, err := pgp.CalcFingerprint(pub)
	require.NoError(t, err)
	require.Equal(t, fp1, fp2)
	require.Len(t, fp1.String(), 40)

	split, err := pgp.SplitKey(priv)
	require.NoError(t, err)
	splitFP, err := pgp.CalcFingerprint(split)
	require.NoError(t, err)
	require.Equal(t, fp1, splitFP)
}

func TestPkEncryptDecryptRoundTrip(t *testing.T) {
	e := pgp.NewEngine()
	pub, priv, err := e.CreateKeypair("alice@example.org")
	require.NoError(t, err)

	recipients := pgp.NewKeyring(pgp.KindPublic)
	require.NoError(t, recipients.Append(pub))

	ctext, err := e.PkEncrypt([]byte("hello autocrypt"), recipients, nil)
	require.NoError(t, err)
	require.Contains(t, string(ctext), "BEGIN PGP MESSAGE")

	privRing := pgp.NewKeyring(pgp.KindPrivate)
	require.NoError(t, privRing.Append(priv))

	plain, validSigners, err := e.PkDecrypt(ctext, privRing, nil)
	require.NoError(t, err)
	require.Equal(t, "hello autocrypt", string(plain))
	require.Empty(t, validSigners)
}

func TestPkEncryptSignedVerifiesAgainstValidator(t *testing.T) {
	e := pgp.NewEngine()
	recipPub, recipPriv, err := e.CreateKeypair("bob@example.org")
	require.NoError(t, err)
	signerPub, signerPriv, err := e.CreateKeypair("alice@example.org")
	require.NoError(t, err)

	recipients := pgp.NewKeyring(pgp.KindPublic)
	require.NoError(t, recipients.Append(recipPub))

	ctext, err := e.PkEncrypt([]byte("signed message"), recipients, signerPriv)
	require.NoError(t, err)

	privRing := pgp.NewKeyring(pgp.KindPrivate)
	require.NoError(t, privRing.Append(recipPriv))
	validators := pgp.NewKeyring(pgp.KindPublic)
	require.NoError(t, validators.Append(signerPub))

	plain, validSigners, err := e.PkDecrypt(ctext, privRing, validators)
	require.NoError(t, err)
	require.Equal(t, "signed message", string(plain))
	require.Len(t, validSigners, 1)
}

func TestSymmEncryptDecryptRoundTrip(t *testing.T) {
	e := pgp.NewEngine()
	passphrase := []byte("correct horse battery staple")

	ctext, err := e.SymmEncrypt(passphrase, []byte("setup message payload"))
	require.NoError(t, err)

	plain, err := e.SymmDecrypt(passphrase, ctext)
	require.NoError(t, err)
	require.Equal(t, "setup message payload", string(plain))
}

func TestSymmDecryptWrongPassphraseFails(t *testing.T) {
	e := pgp.NewEngine()
	ctext, err := e.SymmEncrypt([]byte("right"), []byte("payload"))
	require.NoError(t, err)

	_, err = e.SymmDecrypt([]byte("wrong"), ctext)
	require.Error(t, err)
}

func TestNewEngineWithProfileUsesChosenAlgorithm(t *testing.T) {
	e := pgp.NewEngineWithProfile(profile.RFC4880())
	pub, priv, err := e.CreateKeypair("alice@example.org")
	require.NoError(t, err)
	require.NoError(t, pgp.IsValidKey(pub))
	require.NoError(t, pgp.IsValidKey(priv))

	recipients := pgp.NewKeyring(pgp.KindPublic)
	require.NoError(t, recipients.Append(pub))
	privRing := pgp.NewKeyring(pgp.KindPrivate)
	require.NoError(t, privRing.Append(priv))

	ctext, err := e.PkEncrypt([]byte("rfc4880 payload"), recipients, nil)
	require.NoError(t, err)
	plain, _, err := e.PkDecrypt(ctext, privRing, nil)
	require.NoError(t, err)
	require.Equal(t, "rfc4880 payload", string(plain))
}

func TestRandSeedDoesNotBreakKeygen(t *testing.T) {
	e := pgp.NewEngine()
	e.RandSeed([]byte("additional entropy from the platform"))

	pub, priv, err := e.CreateKeypair("alice@example.org")
	require.NoError(t, err)
	require.NoError(t, pgp.IsValidKey(pub))
	require.NoError(t, pgp.IsValidKey(priv))
}
