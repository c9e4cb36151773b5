package armor_test

import (
	"io"
	"strings"
	"testing"

	"github.com/deltamsg/core/armor"
	"github.com/deltamsg/core/constants"
	"github.com/stretchr/testify/require"
)

func TestArmorWithTypeRoundTrips(t *testing.T) {
	data := []byte("arbitrary binary payload")
	armored, err := armor.ArmorWithType(data, constants.PGPMessageHeader)
	require.NoError(t, err)
	require.Contains(t, armored, "BEGIN PGP MESSAGE")

	decoded, err := armor.Unarmor(armored)
	require.NoError(t, err)
	require.Equal(t, data, decoded)
}

func TestArmorReaderStreams(t *testing.T) {
	data := []byte("streamed payload")
	armored, err := armor.ArmorWithType(data, constants.PGPMessageHeader)
	require.NoError(t, err)

	r, err := armor.ArmorReader(strings.NewReader(armored))
	require.NoError(t, err)
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, data, out)
}

func TestArmorWithCustomHeaders(t *testing.T) {
	data := []byte("x")
	armored, err := armor.ArmorWithTypeAndCustomHeaders(data, constants.PublicKeyHeader, "myapp 1.0", "a comment")
	require.NoError(t, err)
	require.Contains(t, armored, "myapp 1.0")
	require.Contains(t, armored, "a comment")
}
