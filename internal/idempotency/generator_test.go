package idempotency

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateKeyIsDeterministic(t *testing.T) {
	g := NewGenerator()

	params := map[string]interface{}{
		"wallet_id": "wallet_1",
		"bucket":    int64(12345),
	}
	key1 := g.GenerateKey(ScopeAutoReload, params)
	key2 := g.GenerateKey(ScopeAutoReload, params)

	assert.Equal(t, key1, key2)
	assert.Contains(t, key1, string(ScopeAutoReload))
	assert.True(t, g.ValidateKey(ScopeAutoReload, params, key1))
}

func TestGenerateKeyVariesByParamsAndScope(t *testing.T) {
	g := NewGenerator()

	base := map[string]interface{}{"wallet_id": "wallet_1"}
	other := map[string]interface{}{"wallet_id": "wallet_2"}

	assert.NotEqual(t, g.GenerateKey(ScopeAutoReload, base), g.GenerateKey(ScopeAutoReload, other))
	assert.NotEqual(t, g.GenerateKey(ScopeAutoReload, base), g.GenerateKey(ScopeRefund, base))
	assert.False(t, g.ValidateKey(ScopeAutoReload, other, g.GenerateKey(ScopeAutoReload, base)))
}
