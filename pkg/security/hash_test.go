package security_test

import (
	"testing"

	"go-whatscv-backend/pkg/security"

	"github.com/stretchr/testify/assert"
)

func strptr(s string) *string { return &s }

func TestHashSensitive(t *testing.T) {
	h := security.NewHasher("test-salt")

	t.Run("Nil input yields nil", func(t *testing.T) {
		assert.Nil(t, h.HashSensitive(nil))
	})

	t.Run("Empty input yields nil", func(t *testing.T) {
		assert.Nil(t, h.HashSensitive(strptr("")))
	})

	t.Run("Deterministic for fixed salt and value", func(t *testing.T) {
		a := h.HashSensitive(strptr("1234567890"))
		b := h.HashSensitive(strptr("1234567890"))
		assert.NotNil(t, a)
		assert.Equal(t, *a, *b)
		assert.Len(t, *a, 64) // hex sha256
	})

	t.Run("Never stores the raw value", func(t *testing.T) {
		out := h.HashSensitive(strptr("1234567890"))
		assert.NotContains(t, *out, "1234567890")
	})

	t.Run("Different salts diverge", func(t *testing.T) {
		other := security.NewHasher("other-salt")
		a := h.HashSensitive(strptr("1234567890"))
		b := other.HashSensitive(strptr("1234567890"))
		assert.NotEqual(t, *a, *b)
	})

	t.Run("Empty salt still hashes", func(t *testing.T) {
		bare := security.NewHasher("")
		out := bare.HashSensitive(strptr("v"))
		assert.NotNil(t, out)
		assert.Len(t, *out, 64)
	})
}
