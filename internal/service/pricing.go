package service

// Server-side price tables, XOF. Client-submitted amounts must match
// exactly; anything else is treated as tampering.

var tokenPackagePrices = map[int64]int64{
	5:   1000,
	12:  2000,
	30:  4500,
	70:  10000,
	150: 20000,
}

const (
	articlePublicationPrice int64 = 500
	subscriptionPrice       int64 = 5000
)

// TokenPackagePrice returns the listed price for a package size, false
// if no such package exists.
func TokenPackagePrice(tokensAmount int64) (int64, bool) {
	price, ok := tokenPackagePrices[tokensAmount]
	return price, ok
}

// ValidateAmount rejects any amount that does not exactly match the
// price table for the declared purchase.
func ValidateAmount(paymentType string, tokensAmount, amount int64) error {
	var expected int64

	switch paymentType {
	case "tokens":
		price, ok := tokenPackagePrices[tokensAmount]
		if !ok {
			return &ValidationError{Fields: map[string]string{
				"tokens_amount": "no such token package",
			}}
		}
		expected = price
	case "article_publication":
		expected = articlePublicationPrice
	case "subscription":
		expected = subscriptionPrice
	default:
		return &ValidationError{Fields: map[string]string{
			"payment_type": "unknown payment type",
		}}
	}

	if amount != expected {
		return &PriceMismatchError{Expected: expected, Received: amount}
	}

	return nil
}
