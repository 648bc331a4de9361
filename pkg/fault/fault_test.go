package fault

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/veldtlabs/common-coin/pkg/party"
)

func TestLog_Append(t *testing.T) {
	var l Log
	l.Append("mallory", InvalidSignatureShare)
	l.Append("mallory", InvalidSignatureShare)
	assert.Equal(t, Log{
		{Party: "mallory", Kind: InvalidSignatureShare},
		{Party: "mallory", Kind: InvalidSignatureShare},
	}, l)
}

func TestLog_Merge(t *testing.T) {
	a := Log{{Party: "a", Kind: InvalidSignatureShare}}
	b := Log{{Party: "b", Kind: InvalidSignatureShare}}
	a.Merge(b)
	assert.Len(t, a, 2)
	assert.Equal(t, party.ID("b"), a[1].Party)
}

func TestLog_Copy(t *testing.T) {
	l := Log{{Party: "a", Kind: InvalidSignatureShare}}
	c := l.Copy()
	c.Append("b", InvalidSignatureShare)
	assert.Len(t, l, 1)
	assert.Len(t, c, 2)
}

func TestLog_ImplementsSink(t *testing.T) {
	var l Log
	var sink Sink = &l
	sink.Record(Record{Party: "a", Kind: InvalidSignatureShare})
	assert.Len(t, l, 1)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "invalid signature share", InvalidSignatureShare.String())
	assert.Equal(t, "unknown fault", Kind(200).String())
}
