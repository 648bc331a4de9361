package protocol_test

import (
	"errors"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/veldtlabs/common-coin/internal/test"
	"github.com/veldtlabs/common-coin/pkg/fault"
	"github.com/veldtlabs/common-coin/pkg/party"
	"github.com/veldtlabs/common-coin/pkg/protocol"
	"github.com/veldtlabs/common-coin/protocols/commoncoin"
)

// Whole committee plus one observer over the in-memory network: every handler
// finishes with the identical coin value.
func TestHandlerCoinFlip(t *testing.T) {
	validators := test.PartyIDs(4)
	const observer party.ID = "observer"
	infos, err := test.CommitteeInfos(validators, 1, []byte("handler test seed"), observer)
	require.NoError(t, err)

	sessionID := commoncoin.RoundNonce([]byte("handler test session"), 0)
	nonce := commoncoin.RoundNonce(sessionID, 1)

	all := append(validators.Copy(), observer)
	network := test.NewNetwork(all)

	handlers := make(map[party.ID]*protocol.Handler, len(all))
	for _, id := range all {
		h, err := protocol.NewHandler(commoncoin.New(infos[id], nonce), sessionID)
		require.NoError(t, err)
		handlers[id] = h
	}

	var group errgroup.Group
	for _, id := range all {
		id := id
		h := handlers[id]
		group.Go(func() error {
			if err := h.Input(); err != nil {
				return err
			}
			test.HandlerLoop(id, h, network)
			return nil
		})
	}
	require.NoError(t, group.Wait())

	results := make([]bool, 0, len(all))
	for _, id := range all {
		r, err := handlers[id].Result()
		require.NoError(t, err, "party %s", id)
		bit, ok := r.(bool)
		require.True(t, ok)
		results = append(results, bit)
	}
	for _, bit := range results[1:] {
		assert.Equal(t, results[0], bit)
	}
}

func coinHandler(t *testing.T, sessionID []byte) (*protocol.Handler, party.IDSlice) {
	t.Helper()
	validators := party.NewIDSlice([]party.ID{"mallory", "v0", "v1", "v2"})
	infos, err := test.CommitteeInfos(validators, 1, []byte("handler test seed"))
	require.NoError(t, err)
	h, err := protocol.NewHandler(commoncoin.New(infos["v0"], commoncoin.RoundNonce(sessionID, 1)), sessionID)
	require.NoError(t, err)
	return h, validators
}

func TestHandlerValidation(t *testing.T) {
	sessionID := []byte("session")
	h, _ := coinHandler(t, sessionID)
	data, err := cbor.Marshal(&commoncoin.Message{Share: []byte("ignored")})
	require.NoError(t, err)

	tests := []struct {
		name string
		msg  *protocol.Message
		want error
	}{
		{"nil", nil, protocol.ErrNilMessage},
		{"wrong ssid", &protocol.Message{SSID: []byte("other"), From: "v1", Protocol: commoncoin.Protocol, Data: data}, protocol.ErrWrongSSID},
		{"wrong protocol", &protocol.Message{SSID: sessionID, From: "v1", Protocol: "other/1", Data: data}, protocol.ErrWrongProtocol},
		{"not for us", &protocol.Message{SSID: sessionID, From: "v1", To: "v2", Protocol: commoncoin.Protocol, Data: data}, protocol.ErrWrongDestination},
		{"from ourselves", &protocol.Message{SSID: sessionID, From: "v0", Protocol: commoncoin.Protocol, Data: data}, protocol.ErrWrongDestination},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := h.Accept(tt.msg)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	// envelope rejections must not kill the handler
	_, err = h.Result()
	assert.ErrorIs(t, err, protocol.ErrNotFinished)
}

// An invalid share is absorbed as a fault record, surfaced through Faults and
// the optional sink, and the protocol completes regardless.
func TestHandlerFaultSink(t *testing.T) {
	sessionID := []byte("session")
	validators := party.NewIDSlice([]party.ID{"mallory", "v0", "v1", "v2"})
	infos, err := test.CommitteeInfos(validators, 1, []byte("handler test seed"))
	require.NoError(t, err)
	nonce := commoncoin.RoundNonce(sessionID, 1)

	var sink fault.Log
	h, err := protocol.NewHandler(commoncoin.New(infos["v0"], nonce), sessionID)
	require.NoError(t, err)
	h.Sink = &sink

	require.NoError(t, h.Input())

	badShare, err := infos["mallory"].Sign([]byte("wrong message"))
	require.NoError(t, err)
	badData, err := cbor.Marshal(&commoncoin.Message{Share: badShare})
	require.NoError(t, err)
	require.NoError(t, h.Accept(&protocol.Message{
		SSID: sessionID, From: "mallory", Protocol: commoncoin.Protocol, Data: badData,
	}))

	expected := fault.Log{{Party: "mallory", Kind: fault.InvalidSignatureShare}}
	assert.Equal(t, expected, h.Faults())
	assert.Equal(t, expected, sink)

	goodShare, err := infos["v1"].Sign(nonce)
	require.NoError(t, err)
	goodData, err := cbor.Marshal(&commoncoin.Message{Share: goodShare})
	require.NoError(t, err)
	require.NoError(t, h.Accept(&protocol.Message{
		SSID: sessionID, From: "v1", Protocol: commoncoin.Protocol, Data: goodData,
	}))

	r, err := h.Result()
	require.NoError(t, err)
	_, ok := r.(bool)
	assert.True(t, ok)
}

// A share from a party outside the committee is fatal: the error names the
// culprit and the handler is dead afterwards.
func TestHandlerUnknownSender(t *testing.T) {
	sessionID := []byte("session")
	h, _ := coinHandler(t, sessionID)
	require.NoError(t, h.Input())

	data, err := cbor.Marshal(&commoncoin.Message{Share: []byte("junk")})
	require.NoError(t, err)
	err = h.Accept(&protocol.Message{
		SSID: sessionID, From: "stranger", Protocol: commoncoin.Protocol, Data: data,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, commoncoin.ErrUnknownSender)

	var protoErr protocol.Error
	require.True(t, errors.As(err, &protoErr))
	assert.Equal(t, party.ID("stranger"), protoErr.Culprit)

	_, err = h.Result()
	assert.ErrorIs(t, err, commoncoin.ErrUnknownSender)

	// the outgoing channel is closed
	_, open := <-h.Listen()
	assert.False(t, open)
}

// The coin's single message kind round-trips losslessly through cbor.
func TestContentRoundTrip(t *testing.T) {
	original := &commoncoin.Message{Share: []byte{0, 1, 2, 3, 0xff}}
	data, err := cbor.Marshal(original)
	require.NoError(t, err)

	decoded := &commoncoin.Message{}
	require.NoError(t, cbor.Unmarshal(data, decoded))
	assert.Equal(t, original, decoded)
}
