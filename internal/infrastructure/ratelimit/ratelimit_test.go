package ratelimit

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyed_BurstThenDenied(t *testing.T) {
	k := PerMinute(3)
	defer k.Close()

	for i := 0; i < 3; i++ {
		assert.True(t, k.Allow("ip1"), "request %d should fit the burst", i)
	}
	assert.False(t, k.Allow("ip1"))
}

func TestKeyed_KeysAreIndependent(t *testing.T) {
	k := PerMinute(1)
	defer k.Close()

	assert.True(t, k.Allow("otp-request:ip1"))
	assert.False(t, k.Allow("otp-request:ip1"))

	// A different prefix or IP carries its own untouched budget.
	assert.True(t, k.Allow("otp-verify:ip1"))
	assert.True(t, k.Allow("otp-request:ip2"))
}

func TestKeyed_ManyKeys(t *testing.T) {
	k := PerMinute(1)
	defer k.Close()
	for i := 0; i < 100; i++ {
		assert.True(t, k.Allow(fmt.Sprintf("key-%d", i)))
	}
}

func TestKeyed_UsableAfterClose(t *testing.T) {
	k := PerMinute(2)
	k.Close()

	assert.True(t, k.Allow("ip1"))
	assert.True(t, k.Allow("ip1"))
	assert.False(t, k.Allow("ip1"))
}
