package contact_test

import (
	"context"
	"testing"

	"github.com/deltamsg/core/constants"
	"github.com/deltamsg/core/contact"
	"github.com/deltamsg/core/internal/storetest"
	"github.com/deltamsg/core/mailmsg"
	"github.com/stretchr/testify/require"
)

func TestResolveOneCreatesContact(t *testing.T) {
	tx := storetest.New()
	r := contact.New("self@example.org")

	id, err := r.ResolveOne(context.Background(), tx, mailmsg.Address{Name: "Bob", Addr: "bob@example.org"}, constants.OriginIncomingUnknownFrom)
	require.NoError(t, err)
	require.NotEqual(t, constants.ContactIDSelf, id)
	require.Equal(t, "bob@example.org", tx.Contacts[id].Addr)
}

func TestResolveOneRecognizesSelf(t *testing.T) {
	tx := storetest.New()
	r := contact.New("self@example.org")

	id, err := r.ResolveOne(context.Background(), tx, mailmsg.Address{Addr: "self@example.org"}, constants.OriginIncomingUnknownFrom)
	require.NoError(t, err)
	require.Equal(t, constants.ContactIDSelf, id)
	require.Empty(t, tx.Contacts)
}

func TestResolveUpgradesOriginNotName(t *testing.T) {
	tx := storetest.New()
	r := contact.New("self@example.org")

	id, err := r.ResolveOne(context.Background(), tx, mailmsg.Address{Name: "Bob", Addr: "bob@example.org"}, constants.OriginIncomingUnknownFrom)
	require.NoError(t, err)

	// A lower-origin sighting with a different name must not overwrite
	// the name already recorded at a higher origin.
	_, err = r.ResolveOne(context.Background(), tx, mailmsg.Address{Name: "Not Bob", Addr: "bob@example.org"}, constants.OriginIncomingUnknownFrom-1)
	require.NoError(t, err)
	require.Equal(t, "Bob", tx.Contacts[id].Name)
	require.Equal(t, constants.OriginIncomingUnknownFrom, tx.Contacts[id].Origin)
}

func TestResolveMixedListMarksSelf(t *testing.T) {
	tx := storetest.New()
	r := contact.New("self@example.org")

	res, err := r.Resolve(context.Background(), tx, []mailmsg.Address{
		{Addr: "self@example.org"},
		{Addr: "bob@example.org"},
	}, constants.OriginIncomingTo)
	require.NoError(t, err)
	require.True(t, res.IsSelf)
	require.Len(t, res.ContactIDs, 1)
}

func TestIsSelf(t *testing.T) {
	r := contact.New(" Self@Example.org ")
	require.True(t, r.IsSelf("self@example.org"))
	require.False(t, r.IsSelf("bob@example.org"))
}
