package commoncoin

import (
	"github.com/veldtlabs/common-coin/internal/hash"
)

// RoundNonce derives the nonce for one coin round from a session identifier
// and a round number.
//
// Distinct (sessionID, round) pairs yield distinct nonces, which is what the
// coin requires to stay unpredictable across rounds.
func RoundNonce(sessionID []byte, round uint64) []byte {
	h := hash.New(hash.BytesWithDomain{TheDomain: "CommonCoin/SSID", Bytes: sessionID})
	_ = h.WriteAny(round)
	return h.Sum()
}
