package mailmsg_test

import (
	"testing"

	"github.com/deltamsg/core/mailmsg"
	"github.com/emersion/go-message/textproto"
	"github.com/stretchr/testify/require"
)

func TestParseAddressListDecodesEncodedWords(t *testing.T) {
	addrs := mailmsg.ParseAddressList(`=?UTF-8?Q?Bj=C3=B6rn?= <bjorn@example.org>, carol@example.org`)
	require.Len(t, addrs, 2)
	require.Equal(t, "Björn", addrs[0].Name)
	require.Equal(t, "bjorn@example.org", addrs[0].Addr)
	require.Equal(t, "carol@example.org", addrs[1].Addr)
}

func TestParseAddressListNormalizesCase(t *testing.T) {
	addrs := mailmsg.ParseAddressList("Bob <Bob@Example.ORG>")
	require.Equal(t, "bob@example.org", addrs[0].Addr)
}

func TestParseAddressListEmpty(t *testing.T) {
	require.Empty(t, mailmsg.ParseAddressList(""))
	require.Empty(t, mailmsg.ParseAddressList("   "))
}

func TestParseAddressListRecoversFromOneMalformedEntry(t *testing.T) {
	addrs := mailmsg.ParseAddressList("not-an-address, bob@example.org")
	require.Len(t, addrs, 1)
	require.Equal(t, "bob@example.org", addrs[0].Addr)
}

func TestHeaderAnyTriesCandidatesInOrder(t *testing.T) {
	var h textproto.Header
	h.Set("X-MrGrpId", "legacy")

	require.Equal(t, "legacy", mailmsg.HeaderAny(h, "Chat-Group-ID", "X-MrGrpId"))

	h.Set("Chat-Group-ID", "canonical")
	require.Equal(t, "canonical", mailmsg.HeaderAny(h, "Chat-Group-ID", "X-MrGrpId"))
}
