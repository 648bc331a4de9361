// Package threshold defines the contracts a threshold signature scheme must
// satisfy to back a common coin.
//
// The essential requirement is the uniqueness property: for a fixed group
// public key and message there is exactly one valid signature, so any quorum
// of at least Threshold() valid shares combines to the identical signature.
package threshold

// SignatureShare is a partial signature over a message, produced with one
// participant's secret key share. Its encoding is owned by the scheme.
type SignatureShare []byte

// Signature is the combined group signature over a message.
type Signature []byte

// Parity returns the parity of the signature's canonical byte representation,
// i.e. the XOR of all of its bits.
func (s Signature) Parity() bool {
	var acc byte
	for _, b := range s {
		acc ^= b
	}
	acc ^= acc >> 4
	acc ^= acc >> 2
	acc ^= acc >> 1
	return acc&1 == 1
}

// IndexedShare pairs a signature share with the committee index of its signer.
//
// Combination algorithms operate over indexed shares, not participant
// identities; the index domain is the signer's position in the sorted
// committee, in [0, N).
type IndexedShare struct {
	Index int
	Share SignatureShare
}

// Signer produces signature shares with one secret key share.
type Signer interface {
	// Index returns the committee index the key share was dealt to.
	Index() int
	// Sign produces a signature share over msg.
	Sign(msg []byte) (SignatureShare, error)
}

// Verifier checks signature shares against one participant's public key share.
//
// A Verifier is bound to a single committee index: shares produced by a
// different key share must be rejected, even if they are valid under some
// other index.
type Verifier interface {
	Verify(msg []byte, sig SignatureShare) error
}

// Scheme is a handle on the public portion of a dealt threshold key group.
//
// A Scheme is immutable and safe for concurrent use.
type Scheme interface {
	// Threshold returns the minimum number of shares required to combine,
	// i.e. f+1 for a scheme tolerating f faulty signers.
	Threshold() int
	// N returns the number of key shares dealt.
	N() int
	// Verifier returns the share verifier for committee index i.
	// The second return value is false if i is out of range.
	Verifier(i int) (Verifier, bool)
	// Combine reconstructs the group signature over msg from at least
	// Threshold() shares. The result is independent of which quorum of
	// valid shares was used.
	Combine(msg []byte, shares []IndexedShare) (Signature, error)
	// VerifySignature checks a combined signature against the group public key.
	VerifySignature(msg []byte, sig Signature) error
	// GroupKey returns the canonical encoding of the group public key.
	GroupKey() []byte
}
