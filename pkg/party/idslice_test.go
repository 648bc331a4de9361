package party

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDSlice_GetIndex(t *testing.T) {
	tests := []struct {
		name        string
		partyIDs    IDSlice
		requestedID ID
		want        int
	}{
		{"empty", IDSlice{}, "a", -1},
		{"first", IDSlice{"a", "b", "c"}, "a", 0},
		{"middle", IDSlice{"a", "b", "c"}, "b", 1},
		{"last", IDSlice{"a", "b", "c"}, "c", 2},
		{"absent", IDSlice{"a", "b", "c"}, "d", -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.partyIDs.GetIndex(tt.requestedID); got != tt.want {
				t.Errorf("GetIndex() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewIDSlice_Sorts(t *testing.T) {
	ids := NewIDSlice([]ID{"c", "a", "b"})
	assert.Equal(t, IDSlice{"a", "b", "c"}, ids)
	assert.True(t, ids.Valid())
}

func TestIDSlice_Valid(t *testing.T) {
	assert.True(t, IDSlice{}.Valid())
	assert.True(t, IDSlice{"a", "b"}.Valid())
	assert.False(t, IDSlice{"b", "a"}.Valid())
	assert.False(t, IDSlice{"a", "a"}.Valid())
}

func TestIDSlice_Remove(t *testing.T) {
	ids := NewIDSlice([]ID{"a", "b", "c"})
	removed := ids.Remove("b")
	assert.Equal(t, IDSlice{"a", "c"}, removed)
	// the original is untouched
	assert.Equal(t, IDSlice{"a", "b", "c"}, ids)
}

func TestRandomIDs(t *testing.T) {
	ids := RandomIDs(20)
	require.Len(t, ids, 20)
	assert.True(t, ids.Valid())
}
