package mongo

import (
	"time"

	"github.com/shopspring/decimal"

	"staydesk/internal/domain/shared/daterange"
	"staydesk/internal/domain/shared/money"
)

type rangeDocument struct {
	CheckIn  int64 `bson:"check_in"`
	CheckOut int64 `bson:"check_out"`
}

func newRangeDocument(r daterange.DateRange) rangeDocument {
	return rangeDocument{CheckIn: r.CheckIn.UnixMilli(), CheckOut: r.CheckOut.UnixMilli()}
}

func (d rangeDocument) toRange() daterange.DateRange {
	return daterange.DateRange{CheckIn: timestampToTime(d.CheckIn), CheckOut: timestampToTime(d.CheckOut)}
}

// moneyDocument keeps the decimal amount as a string so no precision is lost.
type moneyDocument struct {
	Amount   string `bson:"amount"`
	Currency string `bson:"currency"`
}

func newMoneyDocument(m money.Money) moneyDocument {
	return moneyDocument{Amount: m.Amount.String(), Currency: m.Currency}
}

func (d moneyDocument) toMoney() (money.Money, error) {
	if d.Amount == "" {
		return money.Zero(d.Currency), nil
	}
	return money.Parse(d.Amount, d.Currency)
}

func parseDecimal(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(raw)
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
