package trsa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veldtlabs/common-coin/pkg/threshold"
)

// 512-bit keys keep key generation fast; they are not secure parameters.
const testKeyBits = 512

func TestNewKeyGroup_Validation(t *testing.T) {
	_, _, err := NewKeyGroup(0, 0, testKeyBits)
	assert.Error(t, err)
	_, _, err = NewKeyGroup(3, -1, testKeyBits)
	assert.Error(t, err)
	_, _, err = NewKeyGroup(3, 3, testKeyBits)
	assert.Error(t, err)

	// f+1 = 2 < 4/2+1 = 3: below the tcrsa combining floor
	_, _, err = NewKeyGroup(4, 1, testKeyBits)
	assert.Error(t, err)
}

func TestSignVerifyCombine(t *testing.T) {
	tests := []struct {
		n, f int
	}{
		{3, 1},
		{5, 2},
	}
	msg := []byte("round-7")
	for _, tt := range tests {
		scheme, signers, err := NewKeyGroup(tt.n, tt.f, testKeyBits)
		require.NoError(t, err)
		require.Equal(t, tt.f+1, scheme.Threshold())
		require.Equal(t, tt.n, scheme.N())

		shares := make([]threshold.IndexedShare, tt.n)
		for i, signer := range signers {
			require.Equal(t, i, signer.Index())
			sig, err := signer.Sign(msg)
			require.NoError(t, err)

			v, ok := scheme.Verifier(i)
			require.True(t, ok)
			assert.NoError(t, v.Verify(msg, sig))

			shares[i] = threshold.IndexedShare{Index: i, Share: sig}
		}

		sig, err := scheme.Combine(msg, shares[:tt.f+1])
		require.NoError(t, err)
		assert.NoError(t, scheme.VerifySignature(msg, sig))
		assert.Error(t, scheme.VerifySignature([]byte("other message"), sig))
	}
}

// Any quorum of valid shares must join to the identical signature.
func TestCombine_SubsetIndependence(t *testing.T) {
	msg := []byte("round-7")
	scheme, signers, err := NewKeyGroup(3, 1, testKeyBits)
	require.NoError(t, err)

	shares := make([]threshold.IndexedShare, 3)
	for i, signer := range signers {
		sig, err := signer.Sign(msg)
		require.NoError(t, err)
		shares[i] = threshold.IndexedShare{Index: i, Share: sig}
	}

	subsets := [][]threshold.IndexedShare{
		{shares[0], shares[1]},
		{shares[1], shares[2]},
		{shares[0], shares[2]},
	}
	first, err := scheme.Combine(msg, subsets[0])
	require.NoError(t, err)
	for _, subset := range subsets[1:] {
		sig, err := scheme.Combine(msg, subset)
		require.NoError(t, err)
		assert.Equal(t, first, sig)
	}
}

func TestVerifier_RejectsWrongSigner(t *testing.T) {
	msg := []byte("round-7")
	scheme, signers, err := NewKeyGroup(3, 1, testKeyBits)
	require.NoError(t, err)

	sig, err := signers[1].Sign(msg)
	require.NoError(t, err)

	v, ok := scheme.Verifier(0)
	require.True(t, ok)
	assert.Error(t, v.Verify(msg, sig))

	v, ok = scheme.Verifier(1)
	require.True(t, ok)
	assert.NoError(t, v.Verify(msg, sig))

	_, ok = scheme.Verifier(3)
	assert.False(t, ok)
}

func TestVerifier_RejectsGarbage(t *testing.T) {
	scheme, _, err := NewKeyGroup(3, 1, testKeyBits)
	require.NoError(t, err)

	v, ok := scheme.Verifier(0)
	require.True(t, ok)
	assert.Error(t, v.Verify([]byte("round-7"), []byte("not a cbor share")))
}

func TestCombine_TooFewShares(t *testing.T) {
	msg := []byte("round-7")
	scheme, signers, err := NewKeyGroup(3, 1, testKeyBits)
	require.NoError(t, err)

	sig, err := signers[0].Sign(msg)
	require.NoError(t, err)

	_, err = scheme.Combine(msg, []threshold.IndexedShare{{Index: 0, Share: sig}})
	assert.Error(t, err)
}
