package threshold

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignature_Parity(t *testing.T) {
	tests := []struct {
		name string
		sig  Signature
		want bool
	}{
		{"empty", Signature{}, false},
		{"zero", Signature{0x00}, false},
		{"one bit", Signature{0x01}, true},
		{"two bits", Signature{0x03}, false},
		{"all bits", Signature{0xff}, false},
		{"seven bits", Signature{0x7f}, true},
		{"cancelling bytes", Signature{0x01, 0x01}, false},
		{"multi byte odd", Signature{0x01, 0x02, 0x04}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.sig.Parity())
		})
	}
}
