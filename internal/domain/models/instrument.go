package models

import "strings"

const iconBaseURL = "https://static.okx.com/cdn/oksupport/asset/currency/icon/"

// Instrument is a funding instrument shown as one report row.
type Instrument struct {
	ID          string // market-data symbol, e.g. "fUSD"
	DisplayName string // label in the Currency column
	IconURL     string
}

// DefaultInstruments returns a fresh copy of the reported instruments in row order.
func DefaultInstruments() []Instrument {
	return []Instrument{
		newInstrument("fUSD", "USD"),
		newInstrument("fUST", "USDT"),
		newInstrument("fXAUT", "XAUT"),
		newInstrument("fBTC", "BTC"),
		newInstrument("fETH", "ETH"),
		newInstrument("fEUR", "EUR"),
	}
}

func newInstrument(id, name string) Instrument {
	return Instrument{
		ID:          id,
		DisplayName: name,
		IconURL:     iconBaseURL + strings.ToLower(name) + ".png",
	}
}
