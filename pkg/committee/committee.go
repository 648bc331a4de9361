// Package committee holds the static description of a protocol committee:
// the sorted participant identities, the Byzantine fault bound, and the
// public (and optionally secret) threshold key material.
package committee

import (
	"errors"
	"fmt"

	"github.com/veldtlabs/common-coin/internal/hash"
	"github.com/veldtlabs/common-coin/pkg/party"
	"github.com/veldtlabs/common-coin/pkg/threshold"
)

// Info is a read-only handle on one committee's identities and key material.
//
// Many protocol instances may hold the same Info concurrently; it is never
// mutated after construction.
type Info struct {
	selfID     party.ID
	validators party.IDSlice
	f          int
	scheme     threshold.Scheme
	signer     threshold.Signer
}

// NewInfo validates and assembles a committee description.
//
// validators is the sorted set of key-share holders; the key share with
// committee index i belongs to validators[i]. signer may be nil, in which
// case the local party is an observer: it follows the protocol and verifies
// its output, but contributes no shares. selfID does not need to be a
// validator when signer is nil.
func NewInfo(selfID party.ID, validators party.IDSlice, f int, scheme threshold.Scheme, signer threshold.Signer) (*Info, error) {
	if selfID == "" {
		return nil, errors.New("committee: empty self ID")
	}
	if !validators.Valid() {
		return nil, errors.New("committee: validators not sorted or contain duplicates")
	}
	n := len(validators)
	if n == 0 {
		return nil, errors.New("committee: no validators")
	}
	if scheme == nil {
		return nil, errors.New("committee: nil scheme")
	}
	if f < 0 || f+1 > n {
		return nil, fmt.Errorf("committee: fault bound %d out of range for %d validators", f, n)
	}
	if scheme.N() != n {
		return nil, fmt.Errorf("committee: scheme has %d key shares for %d validators", scheme.N(), n)
	}
	if scheme.Threshold() != f+1 {
		return nil, fmt.Errorf("committee: scheme threshold %d does not match f+1 = %d", scheme.Threshold(), f+1)
	}
	if signer != nil {
		idx := validators.GetIndex(selfID)
		if idx < 0 {
			return nil, fmt.Errorf("committee: signer given but %s is not a validator", selfID)
		}
		if signer.Index() != idx {
			return nil, fmt.Errorf("committee: signer index %d does not match %s at index %d", signer.Index(), selfID, idx)
		}
	}
	return &Info{
		selfID:     selfID,
		validators: validators.Copy(),
		f:          f,
		scheme:     scheme,
		signer:     signer,
	}, nil
}

// SelfID returns the identity of the local party.
func (i *Info) SelfID() party.ID { return i.selfID }

// IsKeyShareHolder returns true if the local party holds a secret key share.
func (i *Info) IsKeyShareHolder() bool { return i.signer != nil }

// Sign produces the local party's signature share over msg.
// It fails if the local party is an observer.
func (i *Info) Sign(msg []byte) (threshold.SignatureShare, error) {
	if i.signer == nil {
		return nil, errors.New("committee: local party holds no key share")
	}
	return i.signer.Sign(msg)
}

// PublicKeyShare returns the share verifier for the given party.
// The second return value is false if the party is not a validator.
func (i *Info) PublicKeyShare(id party.ID) (threshold.Verifier, bool) {
	idx, ok := i.validators.Search(id)
	if !ok {
		return nil, false
	}
	return i.scheme.Verifier(idx)
}

// Index returns the canonical committee index of the given party.
// The second return value is false if the party is not a validator.
func (i *Info) Index(id party.ID) (int, bool) {
	return i.validators.Search(id)
}

// MaxFaulty returns the Byzantine fault bound f.
func (i *Info) MaxFaulty() int { return i.f }

// N returns the committee size.
func (i *Info) N() int { return len(i.validators) }

// Validators returns a copy of the sorted validator identities.
func (i *Info) Validators() party.IDSlice { return i.validators.Copy() }

// CombineSignatures reconstructs the group signature over msg from the given
// indexed shares.
func (i *Info) CombineSignatures(msg []byte, shares []threshold.IndexedShare) (threshold.Signature, error) {
	return i.scheme.Combine(msg, shares)
}

// VerifySignature checks a combined signature against the group public key.
func (i *Info) VerifySignature(msg []byte, sig threshold.Signature) error {
	return i.scheme.VerifySignature(msg, sig)
}

// Fingerprint returns a digest binding the committee composition, the fault
// bound and the group public key. Two parties agreeing on a fingerprint agree
// on the committee; it is a useful session identifier component.
func (i *Info) Fingerprint() []byte {
	h := hash.New()
	_ = h.WriteAny(
		i.validators,
		uint64(i.f),
		hash.BytesWithDomain{TheDomain: "GroupKey", Bytes: i.scheme.GroupKey()},
	)
	return h.Sum()
}
