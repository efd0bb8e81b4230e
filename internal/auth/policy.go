/*
This file contains the capability policy injected into each component. Every
public mutator checks the policy once at its entry point instead of carrying
its own role bookkeeping.
*/

package auth

import "errors"

// Error definitions for capability checks
var (
	ErrUnauthorizedRoller          = errors.New("caller is not the epoch roller")
	ErrUnauthorizedPositionManager = errors.New("caller is not the position manager")
	ErrUnauthorizedVaultCaller     = errors.New("caller may not invoke vault primitives")
)

// Policy names the identities holding each capability for one series. A
// single roller may advance the epoch, a single position manager may place
// unbalanced mints, and only the option issuer may call the vault's hedge
// and payoff-transfer primitives.
type Policy struct {
	Roller          string
	PositionManager string
	IssuerID        string
}

// CheckRoller gates epoch advancement.
func (p Policy) CheckRoller(caller string) error {
	if caller != p.Roller {
		return ErrUnauthorizedRoller
	}
	return nil
}

// CheckPositionManager gates unbalanced mint requests.
func (p Policy) CheckPositionManager(caller string) error {
	if caller != p.PositionManager {
		return ErrUnauthorizedPositionManager
	}
	return nil
}

// CheckIssuer gates the vault's system-facing primitives.
func (p Policy) CheckIssuer(caller string) error {
	if caller != p.IssuerID {
		return ErrUnauthorizedVaultCaller
	}
	return nil
}

// EntitlementChecker is the optional priority-access gate consumed by mint
// when the feature flag is on. Implementations typically wrap an NFT
// allow-list.
type EntitlementChecker interface {
	// CheckCap verifies the token entitles its holder to the requested
	// notional.
	CheckCap(token string, requestedNotional string) error
	// OwnerOf resolves the holder of an entitlement token.
	OwnerOf(token string) (string, error)
}
