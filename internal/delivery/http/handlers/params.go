package handlers

import (
	"fmt"
	"strconv"

	"github.com/LavaJover/shvark-settlement-service/internal/domain"
)

const maxBulkOrders = 100

func atoiOr(raw string, fallback int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func errInvalidParam(name, value string) error {
	return fmt.Errorf("%w: invalid %s %q", domain.ErrInvalidInput, name, value)
}
