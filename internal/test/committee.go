package test

import (
	"fmt"

	"github.com/veldtlabs/common-coin/pkg/committee"
	"github.com/veldtlabs/common-coin/pkg/party"
	"github.com/veldtlabs/common-coin/pkg/threshold/tbls"
)

// CommitteeInfos deals a seeded BLS key group over the given validators and
// returns one committee handle per validator, plus one per observer.
// The same seed reproduces the same key material.
func CommitteeInfos(validators party.IDSlice, f int, seed []byte, observers ...party.ID) (map[party.ID]*committee.Info, error) {
	scheme, signers, err := tbls.NewKeyGroup(len(validators), f, seed)
	if err != nil {
		return nil, fmt.Errorf("test: deal key group: %w", err)
	}
	infos := make(map[party.ID]*committee.Info, len(validators)+len(observers))
	for i, id := range validators {
		info, err := committee.NewInfo(id, validators, f, scheme, signers[i])
		if err != nil {
			return nil, fmt.Errorf("test: committee info for %s: %w", id, err)
		}
		infos[id] = info
	}
	for _, id := range observers {
		info, err := committee.NewInfo(id, validators, f, scheme, nil)
		if err != nil {
			return nil, fmt.Errorf("test: observer info for %s: %w", id, err)
		}
		infos[id] = info
	}
	return infos, nil
}
