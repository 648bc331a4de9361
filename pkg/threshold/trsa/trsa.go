// Package trsa backs the threshold contracts with Shoup RSA threshold
// signatures, using niclabs/tcrsa.
//
// RSA PKCS#1 v1.5 signatures are deterministic, so the scheme has the
// uniqueness property. tcrsa requires an honest-majority threshold
// (k >= l/2+1), which restricts the fault bounds this backend accepts.
package trsa

import (
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/niclabs/tcrsa"

	"github.com/veldtlabs/common-coin/pkg/threshold"
)

// DefaultKeyBits is the RSA modulus size used when NewKeyGroup is given a
// non-positive size.
const DefaultKeyBits = 2048

// Scheme is the public portion of a dealt RSA key group.
// It is immutable and safe for concurrent use.
type Scheme struct {
	meta *tcrsa.KeyMeta
	t, n int
}

// Signer holds one secret key share of the group.
type Signer struct {
	meta  *tcrsa.KeyMeta
	share *tcrsa.KeyShare
	index int
}

// NewKeyGroup deals a fresh (f+1)-of-n RSA key group, acting as a trusted
// dealer. It returns the shared public scheme handle and one signer per
// committee index.
//
// tcrsa mandates a combining threshold of at least l/2+1, so fault bounds
// with f+1 < n/2+1 are rejected.
func NewKeyGroup(n, f, bits int) (*Scheme, []*Signer, error) {
	if bits <= 0 {
		bits = DefaultKeyBits
	}
	if n < 1 {
		return nil, nil, fmt.Errorf("trsa: group size %d < 1", n)
	}
	if f < 0 || f+1 > n {
		return nil, nil, fmt.Errorf("trsa: fault bound %d out of range for group size %d", f, n)
	}
	k := f + 1
	if k < n/2+1 {
		return nil, nil, fmt.Errorf("trsa: threshold %d below tcrsa minimum %d for group size %d", k, n/2+1, n)
	}
	keyShares, keyMeta, err := tcrsa.NewKey(bits, uint16(k), uint16(n), nil)
	if err != nil {
		return nil, nil, fmt.Errorf("trsa: generate key shares: %w", err)
	}

	scheme := &Scheme{meta: keyMeta, t: k, n: n}
	signers := make([]*Signer, n)
	for i, keyShare := range keyShares {
		signers[i] = &Signer{meta: keyMeta, share: keyShare, index: i}
	}
	return scheme, signers, nil
}

// digest hashes msg and pads it for the RSA primitives.
func digest(meta *tcrsa.KeyMeta, msg []byte) ([]byte, [sha256.Size]byte, error) {
	sum := sha256.Sum256(msg)
	padded, err := tcrsa.PrepareDocumentHash(meta.PublicKey.Size(), crypto.SHA256, sum[:])
	if err != nil {
		return nil, sum, fmt.Errorf("trsa: prepare document hash: %w", err)
	}
	return padded, sum, nil
}

// Index returns the committee index the key share was dealt to.
func (s *Signer) Index() int { return s.index }

// Sign produces a signature share over msg, including its verification proof.
func (s *Signer) Sign(msg []byte) (threshold.SignatureShare, error) {
	padded, _, err := digest(s.meta, msg)
	if err != nil {
		return nil, err
	}
	sigShare, err := s.share.Sign(padded, crypto.SHA256, s.meta)
	if err != nil {
		return nil, fmt.Errorf("trsa: sign: %w", err)
	}
	data, err := cbor.Marshal(sigShare)
	if err != nil {
		return nil, fmt.Errorf("trsa: marshal signature share: %w", err)
	}
	return data, nil
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
	return &verifier{meta: s.meta, index: i}, true
}

type verifier struct {
	meta  *tcrsa.KeyMeta
	index int
}

// Verify checks that sig is a valid share produced by the key share at the
// verifier's index. tcrsa share ids are 1-based.
func (v *verifier) Verify(msg []byte, sig threshold.SignatureShare) error {
	var sigShare tcrsa.SigShare
	if err := cbor.Unmarshal(sig, &sigShare); err != nil {
		return fmt.Errorf("trsa: malformed signature share: %w", err)
	}
	if int(sigShare.Id) != v.index+1 {
		return fmt.Errorf("trsa: signature share id %d does not match signer index %d", sigShare.Id, v.index)
	}
	padded, _, err := digest(v.meta, msg)
	if err != nil {
		return err
	}
	if err := sigShare.Verify(padded, v.meta); err != nil {
		return fmt.Errorf("trsa: verify share: %w", err)
	}
	return nil
}

// Combine reconstructs the group signature over msg from at least f+1 shares.
func (s *Scheme) Combine(msg []byte, shares []threshold.IndexedShare) (threshold.Signature, error) {
	if len(shares) < s.t {
		return nil, fmt.Errorf("trsa: got %d shares, need %d", len(shares), s.t)
	}
	padded, _, err := digest(s.meta, msg)
	if err != nil {
		return nil, err
	}
	// any quorum of exactly t valid shares joins to the unique signature
	shares = shares[:s.t]
	sigShares := make(tcrsa.SigShareList, len(shares))
	for i, is := range shares {
		var sigShare tcrsa.SigShare
		if err := cbor.Unmarshal(is.Share, &sigShare); err != nil {
			return nil, fmt.Errorf("trsa: malformed signature share: %w", err)
		}
		if int(sigShare.Id) != is.Index+1 {
			return nil, fmt.Errorf("trsa: share for index %d carries id %d", is.Index, sigShare.Id)
		}
		sigShares[i] = &sigShare
	}
	sig, err := sigShares.Join(padded, s.meta)
	if err != nil {
		return nil, fmt.Errorf("trsa: join shares: %w", err)
	}
	return threshold.Signature(sig), nil
}

// VerifySignature checks a combined signature against the group public key.
func (s *Scheme) VerifySignature(msg []byte, sig threshold.Signature) error {
	_, sum, err := digest(s.meta, msg)
	if err != nil {
		return err
	}
	if err := rsa.VerifyPKCS1v15(s.meta.PublicKey, crypto.SHA256, sum[:], sig); err != nil {
		return fmt.Errorf("trsa: verify signature: %w", err)
	}
	return nil
}

// GroupKey returns the PKCS#1 encoding of the group public key.
func (s *Scheme) GroupKey() []byte {
	return x509.MarshalPKCS1PublicKey(s.meta.PublicKey)
}
