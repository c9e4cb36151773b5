package pgp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateKeypairUserIDIsBareAngleAddr(t *testing.T) {
	e := NewEngine()
	pub, _, err := e.CreateKeypair("alice@example.org")
	require.NoError(t, err)

	entity, err := parseEntity(pub.Bytes)
	require.NoError(t, err)
	require.Len(t, entity.Identities, 1)
	for id := range entity.Identities {
		require.Equal(t, "<alice@example.org>", id)
	}
}
