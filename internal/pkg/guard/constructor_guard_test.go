package guard_test

import (
	"errors"
	"sync"
	"testing"

	"dispatch/internal/pkg/guard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorGuard_Validate(t *testing.T) {
	t.Run("constructed_guard_returns_nil", func(t *testing.T) {
		// Given
		g := guard.NewConstructorGuard()

		// When
		err := g.Validate(errors.New("not constructed"))

		// Then
		require.NoError(t, err)
	})

	t.Run("zero_value_returns_given_error", func(t *testing.T) {
		// Given
		var g guard.ConstructorGuard
		expected := errors.New("rider not constructed")

		// When
		err := g.Validate(expected)

		// Then
		assert.Equal(t, expected, err)
	})

	t.Run("zero_value_falls_back_to_default", func(t *testing.T) {
		var g guard.ConstructorGuard

		err := g.Validate(nil)

		assert.Equal(t, guard.ErrDefaultConstructorGuard, err)
		assert.Equal(t, "object must be created via its constructor", err.Error())
	})
}

func TestConstructorGuard_EmbeddedInValueObject(t *testing.T) {
	type rating struct {
		stars int
		guard guard.ConstructorGuard
	}
	errNotConstructed := errors.New("rating must be created via newRating")

	newRating := func(stars int) (rating, error) {
		if stars < 1 || stars > 5 {
			return rating{}, errors.New("stars out of range")
		}
		return rating{stars: stars, guard: guard.NewConstructorGuard()}, nil
	}

	t.Run("constructor_result_is_valid", func(t *testing.T) {
		r, err := newRating(5)

		require.NoError(t, err)
		require.NoError(t, r.guard.Validate(errNotConstructed))
	})

	t.Run("failed_constructor_returns_zero_value", func(t *testing.T) {
		r, err := newRating(9)

		require.Error(t, err)
		assert.Equal(t, errNotConstructed, r.guard.Validate(errNotConstructed))
	})

	t.Run("copy_keeps_state", func(t *testing.T) {
		r, _ := newRating(3)
		c := r

		require.NoError(t, c.guard.Validate(errNotConstructed))
	})
}

func TestConstructorGuard_Concurrency(t *testing.T) {
	g := guard.NewConstructorGuard()
	validationError := errors.New("not constructed")

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 500 {
				assert.NoError(t, g.Validate(validationError))
			}
		}()
	}
	wg.Wait()
}

func BenchmarkConstructorGuard_Validate(b *testing.B) {
	g := guard.NewConstructorGuard()
	err := errors.New("not constructed")
	b.ResetTimer()
	for range b.N {
		_ = g.Validate(err)
	}
}
