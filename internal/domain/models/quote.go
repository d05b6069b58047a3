package models

import "github.com/shopspring/decimal"

// NotAvailable is shown in place of any value that could not be fetched.
const NotAvailable = "N/A"

var daysPerYear = decimal.NewFromInt(365)

// RateQuote is one report row. Daily is the daily funding rate in percent;
// an invalid Daily means the source could not be read.
type RateQuote struct {
	Instrument Instrument
	Daily      decimal.NullDecimal
}

// NewRateQuote builds an available quote.
func NewRateQuote(inst Instrument, dailyPercent decimal.Decimal) RateQuote {
	return RateQuote{Instrument: inst, Daily: decimal.NewNullDecimal(dailyPercent)}
}

// UnavailableQuote builds a row whose values render as N/A.
func UnavailableQuote(inst Instrument) RateQuote {
	return RateQuote{Instrument: inst}
}

// Available reports whether the daily rate was fetched.
func (q RateQuote) Available() bool {
	return q.Daily.Valid
}

// APR is the simple annualization Daily × 365; unavailable when Daily is.
func (q RateQuote) APR() decimal.NullDecimal {
	if !q.Daily.Valid {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(q.Daily.Decimal.Mul(daysPerYear))
}

// DailyText formats the daily rate with four decimals, e.g. "0.0100%".
func (q RateQuote) DailyText() string {
	return percentText(q.Daily, 4)
}

// APRText formats the APR with two decimals, e.g. "3.65%".
func (q RateQuote) APRText() string {
	return percentText(q.APR(), 2)
}

func percentText(v decimal.NullDecimal, places int32) string {
	if !v.Valid {
		return NotAvailable
	}
	return v.Decimal.StringFixed(places) + "%"
}
