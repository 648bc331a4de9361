package main

import (
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/veldtlabs/common-coin/internal/test"
	"github.com/veldtlabs/common-coin/pkg/committee"
	"github.com/veldtlabs/common-coin/pkg/party"
	"github.com/veldtlabs/common-coin/pkg/protocol"
	"github.com/veldtlabs/common-coin/protocols/commoncoin"
)

const (
	numValidators = 4
	numFaulty     = 1
	numRounds     = 5
)

// CoinFlip runs one coin round for one party over the test network and
// returns the bit it output.
func CoinFlip(id party.ID, info *committee.Info, sessionID []byte, round uint64, n *test.Network) (bool, error) {
	nonce := commoncoin.RoundNonce(sessionID, round)
	h, err := protocol.NewHandler(commoncoin.New(info, nonce), sessionID)
	if err != nil {
		return false, err
	}
	if err := h.Input(); err != nil {
		return false, err
	}
	test.HandlerLoop(id, h, n)
	r, err := h.Result()
	if err != nil {
		return false, err
	}
	bit := r.(bool)
	h.Log.Info().Uint64("round", round).Bool("coin", bit).Msg("coin flipped")
	return bit, nil
}

func main() {
	log := zerolog.New(zerolog.NewConsoleWriter()).Level(zerolog.InfoLevel).With().
		Str("role", "dealer").
		Logger()

	validators := test.PartyIDs(numValidators)
	const observer party.ID = "observer"
	infos, err := test.CommitteeInfos(validators, numFaulty, nil, observer)
	if err != nil {
		log.Error().Err(err).Msg("failed to set up committee")
		os.Exit(1)
	}
	all := append(validators.Copy(), observer)
	sessionID := infos[observer].Fingerprint()

	for round := uint64(1); round <= numRounds; round++ {
		network := test.NewNetwork(all)

		var mtx sync.Mutex
		bits := make(map[party.ID]bool, len(all))

		var group errgroup.Group
		for _, id := range all {
			id := id
			group.Go(func() error {
				bit, err := CoinFlip(id, infos[id], sessionID, round, network)
				if err != nil {
					return fmt.Errorf("party %s: %w", id, err)
				}
				mtx.Lock()
				bits[id] = bit
				mtx.Unlock()
				return nil
			})
		}
		if err := group.Wait(); err != nil {
			log.Error().Err(err).Msg("round failed")
			os.Exit(1)
		}

		first := bits[all[0]]
		for id, bit := range bits {
			if bit != first {
				log.Error().Str("party", string(id)).Msg("coin values diverged")
				os.Exit(1)
			}
		}
		log.Info().Uint64("round", round).Bool("coin", first).Msg("all parties agree")
	}
}
