package setup

import (
	"testing"

	"github.com/LavaJover/shvark-settlement-service/internal/config"
	"github.com/LavaJover/shvark-settlement-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeUseCases_RejectsUnknownFeeOverride(t *testing.T) {
	deps := &Dependencies{Config: &config.SettlementConfig{
		Fees: config.Fees{
			PlatformAccount: "platform",
			SellerPercent:   "2",
			TokenOverrides:  map[string]string{"ckUSCD": "1.5"},
		},
		Wallet: config.Wallet{RailURL: "http://rail.local"},
	}}

	_, err := InitializeUseCases(deps)
	require.ErrorIs(t, err, domain.ErrUnsupportedToken)
	assert.ErrorContains(t, err, "fee policy")
}

func TestInitializeUseCases_RequiresRailURL(t *testing.T) {
	deps := &Dependencies{Config: &config.SettlementConfig{
		Fees: config.Fees{SellerPercent: "2", TokenOverrides: map[string]string{"ckusdc": "1.5"}},
	}}

	_, err := InitializeUseCases(deps)
	assert.ErrorContains(t, err, "wallet.rail_url")
}
