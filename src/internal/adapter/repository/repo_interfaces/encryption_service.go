package repo_interfaces

import "context"

// EncryptionService wraps the origin store's pgcrypto decrypt
// function. This system only ever reads resident numbers; encryption
// happens upstream at profile intake. Decrypt failures are caught by
// callers and converted to display-safe markers, never propagated as
// a hard failure of a whole report.
type EncryptionService interface {
	Decrypt(ctx context.Context, ciphertext string) (string, error)
}
