package goroutine

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/homechef-inc/mealsub/internal/shared/logger"
)

func TestRun_ConvertsPanicToError(t *testing.T) {
	err := Run(logger.Nop(), "renew group 7", func() error {
		panic("nil cycle")
	})

	assert.EqualError(t, err, "renew group 7 panicked: nil cycle")
}

func TestRun_PassesThroughError(t *testing.T) {
	want := errors.New("boom")
	assert.Equal(t, want, Run(logger.Nop(), "task", func() error { return want }))
	assert.NoError(t, Run(logger.Nop(), "task", func() error { return nil }))
}

func TestSafeGo_RecoversPanic(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(1)
	SafeGo(logger.Nop(), "alert", func() {
		defer wg.Done()
		panic("smtp exploded")
	})
	wg.Wait()
}
