package protocol

import (
	"fmt"

	"github.com/veldtlabs/common-coin/pkg/party"
)

// Error is a custom error for protocols which contains information about the
// party responsible, when one can be identified.
type Error struct {
	// Culprit is empty if the identity of the misbehaving party cannot be known
	Culprit party.ID
	// Err is the underlying error
	Err error
}

func (e Error) Error() string {
	if e.Culprit == "" {
		return fmt.Sprintf("protocol: %s", e.Err)
	}
	return fmt.Sprintf("protocol: party: %s: %s", e.Culprit, e.Err)
}

func (e Error) Unwrap() error {
	return e.Err
}
