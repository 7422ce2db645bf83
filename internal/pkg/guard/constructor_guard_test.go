package guard_test

import (
	"errors"
	"testing"

	"kayayo/internal/pkg/guard"

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

	t.Run("zero_value_guard_returns_custom_error", func(t *testing.T) {
		// Given
		var g guard.ConstructorGuard
		expectedError := errors.New("challenge not constructed")

		// When
		err := g.Validate(expectedError)

		// Then
		require.Error(t, err)
		assert.Equal(t, expectedError, err)
	})

	t.Run("zero_value_guard_returns_default_error_when_nil", func(t *testing.T) {
		// Given
		var g guard.ConstructorGuard

		// When
		err := g.Validate(nil)

		// Then
		assert.Equal(t, guard.ErrDefaultConstructorGuard, err)
	})
}

// TestConstructorGuard_EmbeddedInValueObject mirrors how domain types use the guard.
func TestConstructorGuard_EmbeddedInValueObject(t *testing.T) {
	errCodeNotConstructed := errors.New("PickupCode must be created via NewPickupCode")

	type pickupCode struct {
		digits string
		guard  guard.ConstructorGuard
	}

	newPickupCode := func(digits string) (pickupCode, error) {
		if len(digits) != 6 {
			return pickupCode{}, errors.New("code must have six digits")
		}
		return pickupCode{digits: digits, guard: guard.NewConstructorGuard()}, nil
	}

	t.Run("constructed_value_validates", func(t *testing.T) {
		code, err := newPickupCode("123456")
		require.NoError(t, err)
		require.NoError(t, code.guard.Validate(errCodeNotConstructed))
		assert.Equal(t, "123456", code.digits)
	})

	t.Run("rejected_value_is_zero", func(t *testing.T) {
		code, err := newPickupCode("12")
		require.Error(t, err)
		assert.Equal(t, errCodeNotConstructed, code.guard.Validate(errCodeNotConstructed))
	})
}

func TestConstructorGuard_ConcurrentValidate(t *testing.T) {
	g := guard.NewConstructorGuard()
	validationError := errors.New("not constructed")

	done := make(chan struct{})
	for range 50 {
		go func() {
			defer func() { done <- struct{}{} }()
			for range 100 {
				assert.NoError(t, g.Validate(validationError))
			}
		}()
	}
	for range 50 {
		<-done
	}
}
