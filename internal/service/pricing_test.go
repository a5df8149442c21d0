package service_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"djassa-payments/internal/service"
)

func TestValidateAmount_ExactListedPriceAccepted(t *testing.T) {
	packages := map[int64]int64{
		5:   1000,
		12:  2000,
		30:  4500,
		70:  10000,
		150: 20000,
	}

	for tokens, price := range packages {
		require.NoError(t, service.ValidateAmount("tokens", tokens, price),
			"package %d at listed price %d", tokens, price)

		listed, ok := service.TokenPackagePrice(tokens)
		require.True(t, ok)
		require.Equal(t, price, listed)
	}
}

func TestValidateAmount_AnyOtherAmountRejected(t *testing.T) {
	for _, amount := range []int64{1, 1999, 2001, 4500, 200000} {
		err := service.ValidateAmount("tokens", 12, amount)
		if amount == 2000 {
			continue
		}

		var mismatch *service.PriceMismatchError
		require.ErrorAs(t, err, &mismatch, "amount %d", amount)
		require.Equal(t, int64(2000), mismatch.Expected)
		require.Equal(t, amount, mismatch.Received)
	}
}

func TestValidateAmount_FixedPricesForOtherTypes(t *testing.T) {
	require.NoError(t, service.ValidateAmount("article_publication", 0, 500))
	require.NoError(t, service.ValidateAmount("subscription", 0, 5000))

	var mismatch *service.PriceMismatchError
	require.ErrorAs(t, service.ValidateAmount("article_publication", 0, 501), &mismatch)
	require.ErrorAs(t, service.ValidateAmount("subscription", 0, 4999), &mismatch)
}

func TestValidateAmount_UnknownPackageOrType(t *testing.T) {
	var validationErr *service.ValidationError
	require.ErrorAs(t, service.ValidateAmount("tokens", 13, 2000), &validationErr)
	require.ErrorAs(t, service.ValidateAmount("something_else", 0, 100), &validationErr)
}
