// Package contact resolves MIME address lists to internal contact ids,
// tracking the highest origin ever observed for each normalized address.
package contact

import (
	"context"
	"strings"

	"github.com/deltamsg/core/constants"
	"github.com/deltamsg/core/mailmsg"
	"github.com/deltamsg/core/store"
	"github.com/pkg/errors"
)

// Resolver upserts contacts against a Tx, recognising the configured
// self address so the pipeline never creates a contact row for the
// local user.
type Resolver struct {
	selfAddr string
}

// New returns a Resolver configured with the account's own address,
// compared case-insensitively.
func New(selfAddr string) *Resolver {
	return &Resolver{selfAddr: strings.ToLower(strings.TrimSpace(selfAddr))}
}

// Result is the outcome of resolving one address list: the contact ids
// created or matched, and whether SELF appeared in the list.
type Result struct {
	ContactIDs []uint32
	IsSelf     bool
}

// Resolve upserts a contact for every address in addrs at the given
// origin, except addresses equal to the resolver's self address, which
// are recognised via IsSelf instead of being added as a contact.
func (r *Resolver) Resolve(ctx context.Context, tx store.Tx, addrs []mailmsg.Address, origin uint32) (Result, error) {
	var res Result
	for _, a := range addrs {
		if r.isSelf(a.Addr) {
			res.IsSelf = true
			continue
		}
		id, err := tx.UpsertContact(a.Addr, a.Name, origin)
		if err != nil {
			return Result{}, errors.Wrap(err, "contact: upsert failed")
		}
		res.ContactIDs = append(res.ContactIDs, id)
	}
	return res, nil
}

// ResolveOne resolves a single address, returning (ContactIDSelf, true)
// when addr is the account's own address instead of upserting a contact.
func (r *Resolver) ResolveOne(ctx context.Context, tx store.Tx, a mailmsg.Address, origin uint32) (uint32, error) {
	if r.isSelf(a.Addr) {
		return constants.ContactIDSelf, nil
	}
	id, err := tx.UpsertContact(a.Addr, a.Name, origin)
	if err != nil {
		return 0, errors.Wrap(err, "contact: upsert failed")
	}
	return id, nil
}

func (r *Resolver) isSelf(addr string) bool {
	return r.selfAddr != "" && addr == r.selfAddr
}

// IsSelf reports whether addr (already normalized: lowercased, trimmed)
// is the account's own address.
func (r *Resolver) IsSelf(addr string) bool {
	return r.isSelf(addr)
}
