// Package protocol defines the contract shared by all consensus sub-protocols
// and a handler that drives one protocol instance.
//
// An Instance is a synchronous, single-owner state machine: every call is a
// complete state transition that never blocks. The Handler is the boundary
// where the surrounding system's concurrency meets the instance.
package protocol

import (
	"github.com/veldtlabs/common-coin/pkg/fault"
	"github.com/veldtlabs/common-coin/pkg/party"
)

// Content is a protocol-specific message body.
//
// A Content must round-trip losslessly through cbor.
type Content interface {
	// Protocol returns the identifier of the protocol this content belongs to.
	Protocol() string
}

// Step is the observable result of one state transition.
type Step struct {
	// Output holds the values produced by this transition, in order.
	// Most transitions produce none; a terminating transition produces one.
	Output []interface{}
	// Faults lists the misbehavior detected during this transition.
	Faults fault.Log
}

// TargetedMessage is an outgoing message queued by an instance.
type TargetedMessage struct {
	// To is the intended recipient. An empty To means the message must be
	// broadcast to all committee members.
	To party.ID
	// Content is the protocol-specific body.
	Content Content
}

// Broadcast returns true if the message is intended for all committee members.
func (t *TargetedMessage) Broadcast() bool {
	return t.To == ""
}

// Instance is implemented by every consensus sub-protocol, so that a single
// driver can run heterogeneous instances uniformly.
//
// An Instance is owned by exactly one driver at a time and performs no
// internal locking. After any call returns a non-nil error the instance is
// dead, regardless of what Terminated reports.
type Instance interface {
	// Input provides the local input to the protocol. It must be idempotent.
	Input() (Step, error)

	// HandleMessage processes a message received from another party.
	HandleMessage(from party.ID, content Content) (Step, error)

	// NextMessage pops the next queued outgoing message, in FIFO order.
	// It returns false when the queue is empty. The driver must drain the
	// queue after every state-changing call.
	NextMessage() (*TargetedMessage, bool)

	// Terminated returns true once the instance has produced its output.
	Terminated() bool

	// SelfID is the identity of the local party.
	SelfID() party.ID

	// MessageContent returns a fresh content value suitable for decoding a
	// received message body into.
	MessageContent() Content
}
