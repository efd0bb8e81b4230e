/*

This file manages the persistent roll counter. The counter is stored in the
database so roll numbering stays continuous across restarts.

*/

package state

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"
)

// GetCurrentRollNumber retrieves the current roll number from the database
func GetCurrentRollNumber() (int, error) {
	if DB == nil {
		return 0, fmt.Errorf("database not initialized")
	}

	query := `SELECT current_roll FROM roll_counter WHERE id = 1;`

	var currentRoll int
	row := DB.QueryRow(query)
	err := row.Scan(&currentRoll)

	if err != nil {
		if err == sql.ErrNoRows {
			// EnsureSchema inserts the row; a missing row means it never ran.
			log.Warn().Msg("No roll counter row found, initializing to 0")
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get current roll number: %w", err)
	}

	log.Debug().Int("currentRoll", currentRoll).Msg("Retrieved current roll number")
	return currentRoll, nil
}

// IncrementRollNumber increments the roll counter and returns the new value
func IncrementRollNumber() (int, error) {
	if DB == nil {
		return 0, fmt.Errorf("database not initialized")
	}

	updateQuery := `
		UPDATE roll_counter
		SET current_roll = current_roll + 1,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = 1
		RETURNING current_roll;`

	var newRoll int
	row := DB.QueryRow(updateQuery)
	err := row.Scan(&newRoll)

	if err != nil {
		return 0, fmt.Errorf("failed to increment roll number: %w", err)
	}

	log.Info().Int("newRoll", newRoll).Msg("Incremented roll counter")
	return newRoll, nil
}

// ResetRollNumber resets the roll counter to a specific value (for testing/maintenance)
func ResetRollNumber(rollNumber int) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	if rollNumber < 0 {
		return fmt.Errorf("roll number cannot be negative: %d", rollNumber)
	}

	updateQuery := `
		UPDATE roll_counter
		SET current_roll = $1,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = 1;`

	result, err := DB.Exec(updateQuery, rollNumber)
	if err != nil {
		return fmt.Errorf("failed to reset roll number to %d: %w", rollNumber, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("no rows updated when resetting roll number")
	}

	log.Warn().Int("rollNumber", rollNumber).Msg("Reset roll counter")
	return nil
}
