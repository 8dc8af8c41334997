package dispatcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMicroBreaker(t *testing.T) {
	assert := assert.New(t)

	t.Run("stays closed under threshold", func(t *testing.T) {
		b := NewMicroBreaker(3, time.Minute)
		b.OnFailure()
		b.OnFailure()
		assert.True(b.Ready())
		assert.True(b.TryAcquire())
	})

	t.Run("opens at threshold", func(t *testing.T) {
		b := NewMicroBreaker(3, time.Minute)
		for i := 0; i < 3; i++ {
			b.OnFailure()
		}
		assert.False(b.Ready())
		assert.False(b.TryAcquire())
	})

	t.Run("success resets the failure run", func(t *testing.T) {
		b := NewMicroBreaker(3, time.Minute)
		b.OnFailure()
		b.OnFailure()
		b.OnSuccess()
		b.OnFailure()
		b.OnFailure()
		assert.True(b.Ready())
	})

	t.Run("single probe after open window, then closes on success", func(t *testing.T) {
		b := NewMicroBreaker(1, 5*time.Millisecond)
		b.OnFailure()
		assert.False(b.TryAcquire())

		time.Sleep(10 * time.Millisecond)
		assert.True(b.TryAcquire())
		// probe in flight: nobody else gets through
		assert.False(b.TryAcquire())

		b.OnSuccess()
		assert.True(b.TryAcquire())
		assert.True(b.TryAcquire())
	})

	t.Run("failed probe reopens", func(t *testing.T) {
		b := NewMicroBreaker(1, 5*time.Millisecond)
		b.OnFailure()
		time.Sleep(10 * time.Millisecond)
		assert.True(b.TryAcquire())
		b.OnFailure()
		assert.False(b.TryAcquire())
	})
}
