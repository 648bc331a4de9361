// Package commoncoin implements a cryptographic common coin.
//
// The coin produces a pseudorandom binary value that all correct parties
// agree on, and that cannot be known beforehand. Every instance is bound to a
// nonce that determines the value without giving it away: the output is the
// parity of the unique threshold signature over the nonce.
//
// On input, a key-share holder signs the nonce and broadcasts its signature
// share. Once a party has collected f+1 verified shares (and provided input),
// it combines them into the group signature, verifies it, and outputs the
// signature's parity. The threshold scheme's uniqueness property makes the
// output independent of which quorum of shares was combined.
//
// The nonce must be unique per round for the lifetime of the key material;
// reusing a nonce repeats the coin value.
package commoncoin

import (
	"errors"
	"fmt"
	"sort"

	"github.com/veldtlabs/common-coin/pkg/committee"
	"github.com/veldtlabs/common-coin/pkg/fault"
	"github.com/veldtlabs/common-coin/pkg/party"
	"github.com/veldtlabs/common-coin/pkg/protocol"
	"github.com/veldtlabs/common-coin/pkg/threshold"
)

// Protocol identifies the common coin protocol on the wire.
const Protocol = "commoncoin/1"

var (
	// ErrUnknownSender indicates a message from a party without a public key
	// share. The instance must be treated as aborted.
	ErrUnknownSender = errors.New("commoncoin: message from unknown sender")
	// ErrVerificationFailed indicates that a set of individually valid shares
	// combined into a signature that does not verify against the group key.
	// This is an assumption violation, not tolerated Byzantine noise; the
	// instance must be treated as aborted.
	ErrVerificationFailed = errors.New("commoncoin: group signature verification failed")
)

// Message is the only message kind of the protocol: one signature share over
// the round's nonce.
type Message struct {
	Share threshold.SignatureShare
}

// Protocol implements protocol.Content.
func (Message) Protocol() string { return Protocol }

// Coin is one common coin round. It implements protocol.Instance.
//
// A Coin is a synchronous state machine owned by a single driver; it performs
// no locking. The committee handle is shared and read-only.
type Coin struct {
	info *committee.Info
	// nonce names this coin round; it is the message all shares sign.
	nonce []byte
	// output is set exactly once, after combination succeeds, and handed out
	// in the next step.
	output *bool
	// queue of outgoing messages, drained by the driver in FIFO order.
	queue []*protocol.TargetedMessage
	// shares holds the verified signature share of each distinct sender.
	// A later share from the same sender overwrites the earlier one.
	shares   map[party.ID]threshold.SignatureShare
	hadInput bool
	// terminated is set together with output. Fatal errors leave it false;
	// the caller must treat any returned error as instance-ending.
	terminated bool
}

// New returns an un-started coin round bound to the given nonce.
func New(info *committee.Info, nonce []byte) *Coin {
	nonceCopy := make([]byte, len(nonce))
	copy(nonceCopy, nonce)
	return &Coin{
		info:   info,
		nonce:  nonceCopy,
		shares: map[party.ID]threshold.SignatureShare{},
	}
}

// Input starts the round: a key-share holder signs the nonce, queues the
// broadcast of its share and processes it locally; an observer only checks
// whether enough shares have already arrived. Input is idempotent, repeated
// calls return an empty step.
func (c *Coin) Input() (protocol.Step, error) {
	if c.hadInput {
		return protocol.Step{}, nil
	}
	c.hadInput = true
	faults, err := c.provideInput()
	if err != nil {
		return protocol.Step{}, err
	}
	return c.step(faults), nil
}

func (c *Coin) provideInput() (fault.Log, error) {
	if !c.info.IsKeyShareHolder() {
		return nil, c.tryOutput()
	}
	share, err := c.info.Sign(c.nonce)
	if err != nil {
		return nil, fmt.Errorf("commoncoin: sign nonce: %w", err)
	}
	c.queue = append(c.queue, &protocol.TargetedMessage{Content: &Message{Share: share}})
	return c.handleShare(c.info.SelfID(), share)
}

// HandleMessage processes a signature share received from another party.
// After termination it is a no-op.
func (c *Coin) HandleMessage(from party.ID, content protocol.Content) (protocol.Step, error) {
	if c.terminated {
		return protocol.Step{}, nil
	}
	msg, ok := content.(*Message)
	if !ok {
		return protocol.Step{}, fmt.Errorf("commoncoin: unexpected content type %T", content)
	}
	faults, err := c.handleShare(from, msg.Share)
	if err != nil {
		return protocol.Step{}, err
	}
	return c.step(faults), nil
}

func (c *Coin) handleShare(from party.ID, share threshold.SignatureShare) (fault.Log, error) {
	verifier, ok := c.info.PublicKeyShare(from)
	if !ok {
		return nil, fmt.Errorf("commoncoin: %s: %w", from, ErrUnknownSender)
	}
	if err := verifier.Verify(c.nonce, share); err != nil {
		// tolerated Byzantine behavior: log the sender, discard the share
		return fault.Log{{Party: from, Kind: fault.InvalidSignatureShare}}, nil
	}
	c.shares[from] = share
	return nil, c.tryOutput()
}

// tryOutput combines the collected shares once more than f distinct senders
// contributed and we provided input.
func (c *Coin) tryOutput() error {
	if !c.hadInput || len(c.shares) <= c.info.MaxFaulty() {
		return nil
	}
	sig, err := c.combineAndVerify()
	if err != nil {
		return err
	}
	parity := sig.Parity()
	c.output = &parity
	c.terminated = true
	return nil
}

func (c *Coin) combineAndVerify() (threshold.Signature, error) {
	indexed := make([]threshold.IndexedShare, 0, len(c.shares))
	for id, share := range c.shares {
		idx, ok := c.info.Index(id)
		if !ok {
			return nil, fmt.Errorf("commoncoin: no committee index for %s", id)
		}
		indexed = append(indexed, threshold.IndexedShare{Index: idx, Share: share})
	}
	sort.Slice(indexed, func(i, j int) bool { return indexed[i].Index < indexed[j].Index })

	sig, err := c.info.CombineSignatures(c.nonce, indexed)
	if err != nil {
		return nil, fmt.Errorf("commoncoin: combine shares: %w", err)
	}
	if err := c.info.VerifySignature(c.nonce, sig); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrVerificationFailed, err)
	}
	return sig, nil
}

// step packages the detected faults and, once, the produced output.
func (c *Coin) step(faults fault.Log) protocol.Step {
	s := protocol.Step{Faults: faults}
	if c.output != nil {
		s.Output = append(s.Output, *c.output)
		c.output = nil
	}
	return s
}

// NextMessage pops the next queued outgoing message, in FIFO order.
func (c *Coin) NextMessage() (*protocol.TargetedMessage, bool) {
	if len(c.queue) == 0 {
		return nil, false
	}
	msg := c.queue[0]
	c.queue = c.queue[1:]
	return msg, true
}

// Terminated returns true once the coin value has been output.
func (c *Coin) Terminated() bool { return c.terminated }

// SelfID is the identity of the local party.
func (c *Coin) SelfID() party.ID { return c.info.SelfID() }

// MessageContent implements protocol.Instance.
func (c *Coin) MessageContent() protocol.Content { return &Message{} }
