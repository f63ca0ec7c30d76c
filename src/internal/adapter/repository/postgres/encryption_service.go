package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/api-sage/payout-reconciler/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/payout-reconciler/src/internal/logger"
)

// Verify that EncryptionService implements the encryption contract
var _ repo_interfaces.EncryptionService = (*EncryptionService)(nil)

// EncryptionService delegates to the pgcrypto-backed decrypt_text
// function the origin store already uses, so ciphertext written at
// profile intake stays readable without sharing key material beyond
// the passphrase.
type EncryptionService struct {
	db  *sql.DB
	key string
}

func NewEncryptionService(db *sql.DB, key string) *EncryptionService {
	return &EncryptionService{db: db, key: key}
}

func (s *EncryptionService) Decrypt(ctx context.Context, ciphertext string) (string, error) {
	if ciphertext == "" {
		return "", nil
	}

	var plaintext string
	if err := s.db.QueryRowContext(ctx, `SELECT decrypt_text($1, $2)`, ciphertext, s.key).Scan(&plaintext); err != nil {
		logger.Error("encryption service decrypt failed", err, nil)
		return "", fmt.Errorf("decrypt text: %w", err)
	}

	return plaintext, nil
}
