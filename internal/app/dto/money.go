package dto

import "staydesk/internal/domain/shared/money"

// Money carries amounts as fixed two-decimal strings to keep precision on the wire.
type Money struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

func MapMoney(m money.Money) Money {
	return Money{Amount: m.Amount.StringFixed(money.Precision), Currency: m.Currency}
}
