package kernel_test

import (
	"testing"

	"kayayo/internal/core/domain/model/kernel"
	"kayayo/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAddress(t *testing.T) {
	t.Run("should trim and keep all parts", func(t *testing.T) {
		a, err := kernel.NewAddress("  12 Ring Road ", "Accra", " Makola market ")

		require.NoError(t, err)
		assert.Equal(t, "12 Ring Road", a.Street())
		assert.Equal(t, "Accra", a.City())
		assert.Equal(t, "Makola market", a.Landmark())
		assert.Equal(t, "12 Ring Road, Accra, near Makola market", a.String())
	})

	t.Run("landmark is optional", func(t *testing.T) {
		a, err := kernel.NewAddress("12 Ring Road", "Accra", "")

		require.NoError(t, err)
		assert.Equal(t, "12 Ring Road, Accra", a.String())
	})

	t.Run("should report every missing part", func(t *testing.T) {
		_, err := kernel.NewAddress(" ", "", "")

		require.ErrorIs(t, err, errs.ErrValueIsRequired)
		assert.Contains(t, err.Error(), "street")
		assert.Contains(t, err.Error(), "city")
	})
}

func TestAddress_ZeroValue(t *testing.T) {
	var a kernel.Address
	require.ErrorIs(t, a.Validate(), kernel.ErrAddressIsNotConstructed)
}
