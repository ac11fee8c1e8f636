package usecase

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/LavaJover/shvark-settlement-service/internal/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// PercentFeePolicy charges sellers a flat percentage of the gross amount,
// optionally overridden per token. Fees round down to the token precision.
type PercentFeePolicy struct {
	Percent   decimal.Decimal
	Overrides map[string]decimal.Decimal
	Tokens    domain.Tokens
}

func NewPercentFeePolicy(percent decimal.Decimal, overrides map[string]decimal.Decimal, tokens domain.Tokens) *PercentFeePolicy {
	normalized := make(map[string]decimal.Decimal, len(overrides))
	for symbol, pct := range overrides {
		canonical, err := tokens.Normalize(symbol)
		if err != nil {
			slog.Warn("ignoring fee override for unsupported token", "token", symbol)
			continue
		}
		normalized[canonical] = pct
	}
	return &PercentFeePolicy{Percent: percent, Overrides: normalized, Tokens: tokens}
}

// CheckOverrides rejects overrides naming unsupported tokens or percentages
// outside [0, 100].
func CheckOverrides(overrides map[string]decimal.Decimal, tokens domain.Tokens) error {
	var errs []error
	for _, symbol := range sortedSymbols(overrides) {
		if _, err := tokens.Normalize(symbol); err != nil {
			errs = append(errs, fmt.Errorf("fee override: %w", err))
		}
		if pct := overrides[symbol]; pct.IsNegative() || pct.GreaterThan(hundred) {
			errs = append(errs, fmt.Errorf("%w: fee override for %s is %s%%", domain.ErrInvalidInput, symbol, pct))
		}
	}
	return errors.Join(errs...)
}

func (p *PercentFeePolicy) SellerFee(token string, gross decimal.Decimal) decimal.Decimal {
	pct := p.Percent
	if override, ok := p.Overrides[token]; ok {
		pct = override
	}
	if !pct.IsPositive() || !gross.IsPositive() {
		return decimal.Zero
	}
	return gross.Mul(pct).Div(hundred).RoundDown(p.Tokens.Decimals(token))
}

func sortedSymbols(m map[string]decimal.Decimal) []string {
	return slices.Sorted(maps.Keys(m))
}
