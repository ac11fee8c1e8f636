package models

// All lists every persisted model in dependency order.
func All() []any {
	return []any{
		&BalanceModel{},
		&TransactionModel{},
		&OrderModel{},
		&OrderLineModel{},
		&OrderTransitionModel{},
		&EscrowHoldModel{},
		&EscrowMovementModel{},
		&SettlementModel{},
		&DepositModel{},
		&WithdrawalModel{},
	}
}
