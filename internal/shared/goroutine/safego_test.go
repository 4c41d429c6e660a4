package goroutine

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bodrix-ai/bodrix/internal/shared/logger"
)

func TestSafeGo_RecoversPanic(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(1)

	SafeGo(logger.NewNop(), "test", func() {
		defer wg.Done()
		panic("boom")
	})

	wg.Wait()
}

func TestTry(t *testing.T) {
	t.Run("returns fn error", func(t *testing.T) {
		want := errors.New("resolver offline")
		assert.Equal(t, want, Try(func() error { return want }))
	})

	t.Run("converts string panic", func(t *testing.T) {
		err := Try(func() error { panic("bad locator") })

		var pe *PanicError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, "bad locator", err.Error())
		assert.NotEmpty(t, pe.Stack)
	})

	t.Run("keeps panic error message", func(t *testing.T) {
		err := Try(func() error { panic(errors.New("chunk missing")) })
		assert.EqualError(t, err, "chunk missing")
	})
}
