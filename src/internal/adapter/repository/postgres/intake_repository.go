package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/api-sage/payout-reconciler/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/payout-reconciler/src/internal/domain"
	"github.com/api-sage/payout-reconciler/src/internal/logger"
)

// Verify that IntakeRepository implements the intake contract
var _ repo_interfaces.IntakeRepository = (*IntakeRepository)(nil)

// IntakeRepository reads creator_intake_profiles, the
// profile-submission table that is the only capture point for the
// encrypted resident registration number.
type IntakeRepository struct {
	db *sql.DB
}

func NewIntakeRepository(db *sql.DB) *IntakeRepository {
	return &IntakeRepository{db: db}
}

func (r *IntakeRepository) EncryptedResidentNumbers(ctx context.Context) (map[domain.AccountIdentity]string, error) {
	const query = `
SELECT
	account_holder,
	account_number,
	resident_registration_number
FROM creator_intake_profiles
WHERE resident_registration_number IS NOT NULL
  AND resident_registration_number <> ''`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		logger.Error("intake repository resident number lookup failed", err, nil)
		return nil, fmt.Errorf("fetch intake resident numbers: %w", err)
	}
	defer rows.Close()

	lookup := make(map[domain.AccountIdentity]string)
	for rows.Next() {
		var holder, accountNumber sql.NullString
		var residentNumber string
		if err := rows.Scan(&holder, &accountNumber, &residentNumber); err != nil {
			return nil, fmt.Errorf("scan intake resident number row: %w", err)
		}

		identity := domain.NewAccountIdentity(holder.String, accountNumber.String)
		if identity.Empty() {
			continue
		}
		lookup[identity] = residentNumber
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate intake resident number rows: %w", err)
	}

	logger.Info("intake repository resident number lookup success", logger.Fields{
		"count": len(lookup),
	})

	return lookup, nil
}

func (r *IntakeRepository) CachedBalances(ctx context.Context) (map[string]int64, error) {
	const query = `SELECT creator_id, COALESCE(points_balance, 0) FROM creator_intake_profiles`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		logger.Error("intake repository cached balances failed", err, nil)
		return nil, fmt.Errorf("fetch cached balances: %w", err)
	}
	defer rows.Close()

	balances := make(map[string]int64)
	for rows.Next() {
		var creatorID string
		var balance int64
		if err := rows.Scan(&creatorID, &balance); err != nil {
			return nil, fmt.Errorf("scan cached balance row: %w", err)
		}
		balances[creatorID] = balance
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cached balance rows: %w", err)
	}

	return balances, nil
}
