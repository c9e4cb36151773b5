package autocrypt

import (
	"github.com/deltamsg/core/armor"
	"github.com/deltamsg/core/constants"
	"github.com/deltamsg/core/pgp"
	"github.com/pkg/errors"
)

// ExportKeyBlock ASCII-armors a key blob as a standalone PGP key block,
// the format a user exports a key to or imports one from outside of an
// Autocrypt header or Setup Message.
func ExportKeyBlock(key *pgp.Key) (string, error) {
	header := constants.PublicKeyHeader
	if key.Kind == pgp.KindPrivate {
		header = constants.PrivateKeyHeader
	}
	armored, err := armor.ArmorWithType(key.Bytes, header)
	if err != nil {
		return "", errors.Wrap(err, "autocrypt: error armoring key block")
	}
	return armored, nil
}
