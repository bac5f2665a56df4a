package keylock_test

import (
	"sync"
	"testing"

	"sala/shared/keylock"

	"github.com/stretchr/testify/assert"
)

func TestKeyLock_SerializesSameKey(t *testing.T) {
	lock := keylock.New()

	const goroutines = 50

	counter := 0

	var wg sync.WaitGroup
	wg.Add(goroutines)

	for range goroutines {
		go func() {
			defer wg.Done()

			lock.Lock("sched-1|2026-03-10")
			defer lock.Unlock("sched-1|2026-03-10")

			counter++
		}()
	}

	wg.Wait()

	assert.Equal(t, goroutines, counter)
}

func TestKeyLock_IndependentKeys(t *testing.T) {
	lock := keylock.New()

	lock.Lock("a")

	done := make(chan struct{})
	go func() {
		lock.Lock("b")
		lock.Unlock("b")
		close(done)
	}()

	// A different key must not be blocked by the held lock.
	<-done

	lock.Unlock("a")
}

func TestKeyLock_Reacquire(t *testing.T) {
	lock := keylock.New()

	lock.Lock("k")
	lock.Unlock("k")
	lock.Lock("k")
	lock.Unlock("k")
}
