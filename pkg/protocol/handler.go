package protocol

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"github.com/fxamacker/cbor/v2"
	"github.com/rs/zerolog"

	"github.com/veldtlabs/common-coin/pkg/fault"
	"github.com/veldtlabs/common-coin/pkg/party"
)

var (
	// ErrNilMessage is returned when Accept is given a nil message.
	ErrNilMessage = errors.New("protocol: nil message")
	// ErrWrongSSID is returned when a message belongs to a different session.
	ErrWrongSSID = errors.New("protocol: message has wrong SSID")
	// ErrWrongProtocol is returned when a message belongs to a different protocol.
	ErrWrongProtocol = errors.New("protocol: message for wrong protocol")
	// ErrWrongDestination is returned when a message is not intended for us.
	ErrWrongDestination = errors.New("protocol: message not intended for us")
	// ErrNotFinished is returned by Result while the protocol is still running.
	ErrNotFinished = errors.New("protocol: not finished")
)

// outChanCapacity bounds the number of undelivered outgoing messages.
// Instances queue at most a handful of messages per transition.
const outChanCapacity = 64

// Handler drives the execution of one protocol instance.
// It provides a simple interface for the user to receive/deliver protocol messages.
type Handler struct {
	mtx sync.Mutex

	Log zerolog.Logger

	// Sink, if set before messages are delivered, additionally receives every
	// fault record as it is detected.
	Sink fault.Sink

	instance   Instance
	ssid       []byte
	protocolID string

	outChan chan *Message
	faults  fault.Log
	result  interface{}
	err     error
	done    bool
}

// NewHandler wraps a protocol instance for the session identified by sessionID.
// The caller must call Input once to start the protocol.
func NewHandler(instance Instance, sessionID []byte) (*Handler, error) {
	if instance == nil {
		return nil, errors.New("protocol: nil instance")
	}
	protocolID := instance.MessageContent().Protocol()
	h := &Handler{
		instance:   instance,
		ssid:       sessionID,
		protocolID: protocolID,
		outChan:    make(chan *Message, outChanCapacity),
	}
	h.Log = zerolog.New(zerolog.NewConsoleWriter()).Level(zerolog.InfoLevel).With().
		Str("protocol", protocolID).
		Str("party", string(instance.SelfID())).
		Logger()
	return h, nil
}

// Input provides the local input to the instance.
func (h *Handler) Input() error {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	if h.done {
		return h.err
	}
	step, err := h.instance.Input()
	return h.advance(step, err, "")
}

// Accept delivers a received message to the instance.
//
// Messages failing envelope validation are rejected with an error but do not
// affect the instance; a fatal instance error ends the handler.
func (h *Handler) Accept(msg *Message) error {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	if h.done {
		return h.err
	}
	if msg == nil {
		return ErrNilMessage
	}
	if err := h.validate(msg); err != nil {
		h.Log.Warn().Err(err).Stringer("msg", msg).Msg("rejected message")
		return err
	}
	content := h.instance.MessageContent()
	if err := cbor.Unmarshal(msg.Data, content); err != nil {
		return h.abort(fmt.Errorf("protocol: unmarshal content: %w", err), msg.From)
	}
	step, err := h.instance.HandleMessage(msg.From, content)
	return h.advance(step, err, msg.From)
}

// Listen returns a channel with outgoing messages that must be sent to other parties.
// A message must be reliably broadcast if msg.Broadcast() is true.
// The channel is closed when the protocol terminates or fails.
func (h *Handler) Listen() <-chan *Message {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	return h.outChan
}

// Result returns the output if the protocol completed successfully,
// the fatal error if it aborted, and ErrNotFinished otherwise.
func (h *Handler) Result() (interface{}, error) {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	if h.result != nil {
		return h.result, nil
	}
	if h.err != nil {
		return nil, h.err
	}
	return nil, ErrNotFinished
}

// Faults returns a copy of the fault records accumulated so far.
func (h *Handler) Faults() fault.Log {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	return h.faults.Copy()
}

func (h *Handler) validate(msg *Message) error {
	if !bytes.Equal(msg.SSID, h.ssid) {
		return ErrWrongSSID
	}
	if msg.Protocol != h.protocolID {
		return ErrWrongProtocol
	}
	if !msg.IsFor(h.instance.SelfID()) {
		return ErrWrongDestination
	}
	return nil
}

// advance integrates one state transition: it records faults, forwards queued
// outgoing messages, captures the output, and stops the handler on
// termination or fatal error.
func (h *Handler) advance(step Step, err error, culprit party.ID) error {
	if err != nil {
		return h.abort(err, culprit)
	}
	for _, record := range step.Faults {
		h.Log.Warn().Str("party", string(record.Party)).Stringer("kind", record.Kind).Msg("fault detected")
		h.faults.Record(record)
		if h.Sink != nil {
			h.Sink.Record(record)
		}
	}
	if err := h.drain(); err != nil {
		return h.abort(err, "")
	}
	for _, out := range step.Output {
		if h.result == nil {
			h.result = out
		}
	}
	if h.instance.Terminated() {
		h.Log.Info().Msg("terminated")
		h.stop()
	}
	return nil
}

func (h *Handler) drain() error {
	for {
		tm, ok := h.instance.NextMessage()
		if !ok {
			return nil
		}
		data, err := cbor.Marshal(tm.Content)
		if err != nil {
			return fmt.Errorf("protocol: marshal content: %w", err)
		}
		h.outChan <- &Message{
			SSID:     h.ssid,
			From:     h.instance.SelfID(),
			To:       tm.To,
			Protocol: h.protocolID,
			Data:     data,
		}
	}
}

// abort wraps an instance error with a possible culprit and ends the handler.
func (h *Handler) abort(err error, culprit party.ID) error {
	wrapped := Error{Culprit: culprit, Err: err}
	if h.err == nil {
		h.err = wrapped
	}
	h.Log.Error().Err(err).Str("culprit", string(culprit)).Msg("aborted")
	h.stop()
	return wrapped
}

func (h *Handler) stop() {
	if !h.done {
		h.done = true
		close(h.outChan)
	}
}
