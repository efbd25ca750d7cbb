package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInvoiceSID(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		sid, err := NewInvoiceSID()
		require.NoError(t, err)
		assert.True(t, HasPrefix(sid, PrefixInvoice), sid)
		_, dup := seen[sid]
		assert.False(t, dup)
		seen[sid] = struct{}{}
	}
}

func TestHasPrefix(t *testing.T) {
	assert.True(t, HasPrefix("inv_abcDEF012345", PrefixInvoice))
	assert.False(t, HasPrefix("rfd_abcDEF012345", PrefixInvoice))
	assert.False(t, HasPrefix("inv_short", PrefixInvoice))
	assert.False(t, HasPrefix("inv_abcDEF01234-", PrefixInvoice))
	assert.False(t, HasPrefix("invabcDEF012345", PrefixInvoice))
}
