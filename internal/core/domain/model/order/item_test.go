package order_test

import (
	"testing"

	"kayayo/internal/core/domain/model/kernel"
	"kayayo/internal/core/domain/model/order"
	"kayayo/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewItem(t *testing.T) {
	sellerID := kernel.NewUUID()

	t.Run("should compute subtotal", func(t *testing.T) {
		item, err := order.NewItem(kernel.NewUUID(), kernel.NewUUID(), sellerID, 3, money(t, "1.25"), "  no plastic  ")

		require.NoError(t, err)
		require.NoError(t, item.Validate())
		assert.Equal(t, "3.75", item.Subtotal().String())
		assert.Equal(t, "no plastic", item.SubstitutionNote())
		assert.True(t, item.IsOwnedBy(sellerID))
		assert.False(t, item.IsSellerReady())
		assert.False(t, item.IsRunnerCollected())
	})

	t.Run("should reject zero quantity", func(t *testing.T) {
		_, err := order.NewItem(kernel.NewUUID(), kernel.NewUUID(), sellerID, 0, money(t, "1"), "")

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
		assert.Contains(t, err.Error(), "0 is not greater than 0")
	})

	t.Run("should require seller and price", func(t *testing.T) {
		_, err := order.NewItem(kernel.NewUUID(), kernel.NewUUID(), kernel.UUID{}, 1, kernel.Money{}, "")

		require.ErrorIs(t, err, errs.ErrValueIsRequired)
		assert.Contains(t, err.Error(), "seller id")
		assert.Contains(t, err.Error(), "unit price")
	})
}

func TestRestoreItem(t *testing.T) {
	_, err := order.RestoreItem(kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), 1, money(t, "1"), "", false, true)

	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	assert.Contains(t, err.Error(), "collected but not ready")
}
