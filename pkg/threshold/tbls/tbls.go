// Package tbls backs the threshold contracts with BLS signatures over the
// BN256 pairing, using dedis/kyber.
//
// BLS signatures are deterministic, so the scheme has the uniqueness property:
// any quorum of f+1 valid shares recovers the same group signature.
package tbls

import (
	"crypto/cipher"
	"fmt"

	"go.dedis.ch/kyber/v3/pairing/bn256"
	"go.dedis.ch/kyber/v3/share"
	"go.dedis.ch/kyber/v3/sign/bls"
	"go.dedis.ch/kyber/v3/sign/tbls"
	"go.dedis.ch/kyber/v3/xof/blake2xb"

	"github.com/veldtlabs/common-coin/pkg/threshold"
)

// Scheme is the public portion of a dealt BLS key group.
// It is immutable and safe for concurrent use.
type Scheme struct {
	suite *bn256.Suite
	pub   *share.PubPoly
	t, n  int
}

// Signer holds one secret key share of the group.
type Signer struct {
	suite *bn256.Suite
	priv  *share.PriShare
}

// NewKeyGroup deals a fresh t-of-n BLS key group with t = f+1, acting as a
// trusted dealer. It returns the shared public scheme handle and one signer
// per committee index.
//
// If seed is non-nil the secret polynomial is derived deterministically from
// it; this is intended for tests.
func NewKeyGroup(n, f int, seed []byte) (*Scheme, []*Signer, error) {
	if n < 1 {
		return nil, nil, fmt.Errorf("tbls: group size %d < 1", n)
	}
	if f < 0 || f+1 > n {
		return nil, nil, fmt.Errorf("tbls: fault bound %d out of range for group size %d", f, n)
	}
	suite := bn256.NewSuite()
	var stream cipher.Stream
	if seed != nil {
		stream = blake2xb.New(seed)
	} else {
		stream = suite.RandomStream()
	}
	priPoly := share.NewPriPoly(suite.G2(), f+1, nil, stream)
	pubPoly := priPoly.Commit(suite.G2().Point().Base())

	scheme := &Scheme{
		suite: suite,
		pub:   pubPoly,
		t:     f + 1,
		n:     n,
	}
	signers := make([]*Signer, n)
	for i, priv := range priPoly.Shares(n) {
		signers[i] = &Signer{suite: suite, priv: priv}
	}
	return scheme, signers, nil
}

// Index returns the committee index the key share was dealt to.
func (s *Signer) Index() int { return s.priv.I }

// Sign produces a signature share over msg. The share embeds the signer's index.
func (s *Signer) Sign(msg []byte) (threshold.SignatureShare, error) {
	sig, err := tbls.Sign(s.suite, s.priv, msg)
	if err != nil {
		return nil, fmt.Errorf("tbls: sign: %w", err)
	}
	return sig, nil
}

// Threshold returns the minimum number of shares required to combine, f+1.
func (s *Scheme) Threshold() int { return s.t }

// N returns the number of key shares dealt.
func (s *Scheme) N() int { return s.n }

// Verifier returns the share verifier bound to committee index i.
func (s *Scheme) Verifier(i int) (threshold.Verifier, bool) {
	if i < 0 || i >= s.n {
		return nil, false
	}
	return &verifier{suite: s.suite, pub: s.pub, index: i}, true
}

type verifier struct {
	suite *bn256.Suite
	pub   *share.PubPoly
	index int
}

// Verify checks that sig is a valid share produced by the key share at the
// verifier's index. Shares embedding a different index are rejected even if
// they verify under that other index.
func (v *verifier) Verify(msg []byte, sig threshold.SignatureShare) error {
	i, err := tbls.SigShare(sig).Index()
	if err != nil {
		return fmt.Errorf("tbls: malformed signature share: %w", err)
	}
	if i != v.index {
		return fmt.Errorf("tbls: signature share index %d does not match signer index %d", i, v.index)
	}
	if err := tbls.Verify(v.suite, v.pub, msg, sig); err != nil {
		return fmt.Errorf("tbls: verify share: %w", err)
	}
	return nil
}

// Combine recovers the group signature over msg from at least f+1 shares.
func (s *Scheme) Combine(msg []byte, shares []threshold.IndexedShare) (threshold.Signature, error) {
	if len(shares) < s.t {
		return nil, fmt.Errorf("tbls: got %d shares, need %d", len(shares), s.t)
	}
	sigs := make([][]byte, 0, len(shares))
	for _, is := range shares {
		i, err := tbls.SigShare(is.Share).Index()
		if err != nil {
			return nil, fmt.Errorf("tbls: malformed signature share: %w", err)
		}
		if i != is.Index {
			return nil, fmt.Errorf("tbls: share for index %d embeds index %d", is.Index, i)
		}
		sigs = append(sigs, is.Share)
	}
	sig, err := tbls.Recover(s.suite, s.pub, msg, sigs, s.t, s.n)
	if err != nil {
		return nil, fmt.Errorf("tbls: recover: %w", err)
	}
	return sig, nil
}

// VerifySignature checks a combined signature against the group public key.
func (s *Scheme) VerifySignature(msg []byte, sig threshold.Signature) error {
	if err := bls.Verify(s.suite, s.pub.Commit(), msg, sig); err != nil {
		return fmt.Errorf("tbls: verify signature: %w", err)
	}
	return nil
}

// GroupKey returns the canonical encoding of the group public key.
func (s *Scheme) GroupKey() []byte {
	b, err := s.pub.Commit().MarshalBinary()
	if err != nil {
		panic(fmt.Sprintf("tbls: marshal group key: %v", err))
	}
	return b
}
