// ./internal/state/recorder.go
package state

import (
	"github.com/odyn-fi/odyn/internal/finance"
	"github.com/odyn-fi/odyn/internal/types"
)

// Recorder adapts the package-level store functions to the persistence
// surface the option issuer consumes.
type Recorder struct{}

// SaveTradeReceipt persists one trade receipt.
func (Recorder) SaveTradeReceipt(receipt types.TradeReceipt) error {
	_, err := SaveTradeReceipt(receipt)
	return err
}

// SaveRollSnapshot persists one roll snapshot and advances the roll counter.
func (Recorder) SaveRollSnapshot(snapshot types.RollSnapshot) error {
	if _, err := SaveRollSnapshot(snapshot); err != nil {
		return err
	}
	_, err := IncrementRollNumber()
	return err
}

// SaveFinanceParameters persists the parameter set rotated in at a roll.
func (Recorder) SaveFinanceParameters(seriesID string, params finance.Parameters) error {
	_, err := SaveFinanceParameters(seriesID, params)
	return err
}
