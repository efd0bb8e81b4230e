package types

// Token describes one of the two assets a series trades against. The base
// token denominates premiums, payoffs and vault shares; the side token is the
// asset the vault hedges with.
type Token struct {
	Symbol   string `json:"symbol"`   // Display symbol (e.g. "USDC")
	Denom    string `json:"denom"`    // Transfer-layer denomination
	Decimals int    `json:"decimals"` // Native fractional digit count (0..18)
}
