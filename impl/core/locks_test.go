package core

import (
	"MenuHub/internal/config"
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyedLocksSerializeAndRelease(t *testing.T) {
	locks := newKeyedLocks()

	var wg sync.WaitGroup
	counters := make(map[string]*int)
	for i := 0; i < 4; i++ {
		counters[fmt.Sprintf("chat-%d", i)] = new(int)
	}
	for i := 0; i < 200; i++ {
		key := fmt.Sprintf("chat-%d", i%4)
		wg.Add(1)
		go func() {
			defer wg.Done()
			locks.Lock(key)
			*counters[key]++
			locks.Unlock(key)
		}()
	}
	wg.Wait()

	for i := 0; i < 4; i++ {
		assert.Equal(t, 50, *counters[fmt.Sprintf("chat-%d", i)])
	}
	assert.Zero(t, locks.size())
}

func TestKeyedLocksUnlockUnknownKey(t *testing.T) {
	locks := newKeyedLocks()
	locks.Unlock("never-locked")
	assert.Zero(t, locks.size())
}

func TestLocksReleasedAfterRequests(t *testing.T) {
	env := newTestEnv(t, config.AutoReplyOff)

	for i := 0; i < 100; i++ {
		jid := fmt.Sprintf("55119%08d@s.whatsapp.net", i)
		_, err := env.core.HandleWebhook(context.Background(), inbound("inst-1", jid, "oi", false))
		require.NoError(t, err)
	}
	for i := 0; i < 10; i++ {
		_, err := env.core.CreatePublicOrder(context.Background(), publicOrder(fmt.Sprintf("mp-%d", i)))
		require.NoError(t, err)
	}

	assert.Zero(t, env.core.locks.size())
}
