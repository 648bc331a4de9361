// Package fault records observed misbehavior of protocol participants.
//
// A fault is advisory telemetry: it never stops a protocol instance, but is
// surfaced to the caller so that higher-level peer-accountability logic can
// act on it.
package fault

import "github.com/veldtlabs/common-coin/pkg/party"

// Kind enumerates the kinds of misbehavior a protocol can detect.
type Kind uint8

const (
	// InvalidSignatureShare indicates a party sent a signature share that
	// failed verification against its declared public key share.
	InvalidSignatureShare Kind = 1 + iota
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case InvalidSignatureShare:
		return "invalid signature share"
	default:
		return "unknown fault"
	}
}

// Record attributes one detected fault to one party.
type Record struct {
	Party party.ID
	Kind  Kind
}

// Log is an ordered list of fault records accumulated during protocol execution.
type Log []Record

// Append adds a record for the given party to the log.
func (l *Log) Append(id party.ID, kind Kind) {
	*l = append(*l, Record{Party: id, Kind: kind})
}

// Merge appends all records from other to the log.
func (l *Log) Merge(other Log) {
	*l = append(*l, other...)
}

// Copy returns an independent copy of the log.
func (l Log) Copy() Log {
	out := make(Log, len(l))
	copy(out, l)
	return out
}

// Record makes *Log implement Sink.
func (l *Log) Record(r Record) {
	*l = append(*l, r)
}

// Sink receives fault records as they are detected.
//
// Implementations must not block; records are delivered synchronously from
// protocol state transitions.
type Sink interface {
	Record(Record)
}
