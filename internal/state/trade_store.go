// ./internal/state/trade_store.go
package state

import (
	"fmt"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog/log"

	"github.com/odyn-fi/odyn/internal/types"
)

// SaveTradeReceipt persists one settled mint or burn.
func SaveTradeReceipt(receipt types.TradeReceipt) (int64, error) {
	if DB == nil {
		return 0, fmt.Errorf("database not initialized")
	}

	query := `
		INSERT INTO trade_receipts (
			trade_id, kind, epoch, owner, strike,
			amount_up, amount_down, premium, fee, trade_timestamp
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING receipt_id;
	`

	var receiptID int64
	err := DB.QueryRow(
		query,
		receipt.TradeID, string(receipt.Kind), receipt.Epoch, receipt.Owner, receipt.Strike.String(),
		receipt.AmountUp.String(), receipt.AmountDown.String(), receipt.Premium.String(), receipt.Fee.String(),
		receipt.Timestamp,
	).Scan(&receiptID)

	if err != nil {
		return 0, fmt.Errorf("failed to save trade receipt: %w", err)
	}

	log.Debug().
		Int64("receipt_id", receiptID).
		Str("trade_id", receipt.TradeID).
		Str("kind", string(receipt.Kind)).
		Msg("Trade receipt saved to database")

	return receiptID, nil
}

// LoadRecentTradeReceipts returns up to limit receipts, newest first.
func LoadRecentTradeReceipts(limit int) ([]types.TradeReceipt, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT
			receipt_id, trade_id, kind, epoch, owner, strike,
			amount_up, amount_down, premium, fee, trade_timestamp
		FROM trade_receipts
		ORDER BY trade_timestamp DESC, receipt_id DESC
		LIMIT $1;`

	rows, err := DB.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query trade receipts: %w", err)
	}
	defer rows.Close()

	var out []types.TradeReceipt
	for rows.Next() {
		var r types.TradeReceipt
		var kind string
		var strike, amountUp, amountDown, premium, fee string
		err := rows.Scan(
			&r.ReceiptID, &r.TradeID, &kind, &r.Epoch, &r.Owner, &strike,
			&amountUp, &amountDown, &premium, &fee, &r.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade receipt: %w", err)
		}
		r.Kind = types.TradeKind(kind)

		fields := []struct {
			dst *sdkmath.LegacyDec
			src string
		}{
			{&r.Strike, strike}, {&r.AmountUp, amountUp}, {&r.AmountDown, amountDown},
			{&r.Premium, premium}, {&r.Fee, fee},
		}
		for _, f := range fields {
			dec, err := sdkmath.LegacyNewDecFromStr(f.src)
			if err != nil {
				return nil, fmt.Errorf("failed to parse receipt decimal %q: %w", f.src, err)
			}
			*f.dst = dec
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate trade receipts: %w", err)
	}
	return out, nil
}
