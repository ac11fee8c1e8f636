package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Tokens maps canonical token symbols to the number of decimals they support.
// Adding a token is a configuration change.
type Tokens map[string]int32

func DefaultTokens() Tokens {
	return Tokens{
		"ICP":    8,
		"ckBTC":  8,
		"ckETH":  18,
		"ckUSDC": 6,
	}
}

// Normalize resolves symbol case-insensitively and returns its canonical form.
func (t Tokens) Normalize(symbol string) (string, error) {
	trimmed := strings.TrimSpace(symbol)
	if _, ok := t[trimmed]; ok {
		return trimmed, nil
	}
	for canonical := range t {
		if strings.EqualFold(canonical, trimmed) {
			return canonical, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedToken, symbol)
}

// ValidateAmount checks that amount is positive and fits the token precision.
func (t Tokens) ValidateAmount(token string, amount decimal.Decimal) error {
	decimals, ok := t[token]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedToken, token)
	}
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	if !amount.Equal(amount.Truncate(decimals)) {
		return fmt.Errorf("%w: %s supports at most %d decimals", ErrInvalidInput, token, decimals)
	}
	return nil
}

// Decimals returns the precision of token, or 0 when unknown.
func (t Tokens) Decimals(token string) int32 {
	return t[token]
}
