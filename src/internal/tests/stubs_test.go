package services_test

import (
	"context"

	"github.com/api-sage/payout-reconciler/src/internal/domain"
)

type sourceAdapterStub struct {
	source      domain.SourceSystem
	fetchFn     func(ctx context.Context) ([]domain.RawRecord, error)
	writeBackFn func(ctx context.Context, originID string, patch domain.WriteBackPatch) error
}

func (s sourceAdapterStub) Source() domain.SourceSystem {
	return s.source
}

func (s sourceAdapterStub) Fetch(ctx context.Context) ([]domain.RawRecord, error) {
	if s.fetchFn != nil {
		return s.fetchFn(ctx)
	}
	return nil, nil
}

func (s sourceAdapterStub) WriteBack(ctx context.Context, originID string, patch domain.WriteBackPatch) error {
	if s.writeBackFn != nil {
		return s.writeBackFn(ctx, originID, patch)
	}
	return nil
}

type snapshotProviderStub struct {
	snapshotFn func() domain.Snapshot
	findFn     func(id string) (domain.WithdrawalRequest, bool)
	replaceFn  func(oldID string, req domain.WithdrawalRequest) bool
}

func (s snapshotProviderStub) Snapshot() domain.Snapshot {
	if s.snapshotFn != nil {
		return s.snapshotFn()
	}
	return domain.Snapshot{}
}

func (s snapshotProviderStub) Find(id string) (domain.WithdrawalRequest, bool) {
	if s.findFn != nil {
		return s.findFn(id)
	}
	return domain.WithdrawalRequest{}, false
}

func (s snapshotProviderStub) Replace(oldID string, req domain.WithdrawalRequest) bool {
	if s.replaceFn != nil {
		return s.replaceFn(oldID, req)
	}
	return true
}

type promotionRepoStub struct {
	insertPromotedFn func(ctx context.Context, req domain.WithdrawalRequest) (string, error)
}

func (s promotionRepoStub) InsertPromoted(ctx context.Context, req domain.WithdrawalRequest) (string, error) {
	if s.insertPromotedFn != nil {
		return s.insertPromotedFn(ctx, req)
	}
	return "", nil
}

type refundLedgerStub struct {
	recordRefundFn      func(ctx context.Context, creatorID string, amount int64, reason, idempotencyKey string) (string, error)
	balancesByCreatorFn func(ctx context.Context) (map[string]int64, error)
}

func (s refundLedgerStub) RecordRefund(ctx context.Context, creatorID string, amount int64, reason, idempotencyKey string) (string, error) {
	if s.recordRefundFn != nil {
		return s.recordRefundFn(ctx, creatorID, amount, reason, idempotencyKey)
	}
	return "", nil
}

func (s refundLedgerStub) BalancesByCreator(ctx context.Context) (map[string]int64, error) {
	if s.balancesByCreatorFn != nil {
		return s.balancesByCreatorFn(ctx)
	}
	return map[string]int64{}, nil
}

type intakeRepoStub struct {
	encryptedResidentNumbersFn func(ctx context.Context) (map[domain.AccountIdentity]string, error)
	cachedBalancesFn           func(ctx context.Context) (map[string]int64, error)
}

func (s intakeRepoStub) EncryptedResidentNumbers(ctx context.Context) (map[domain.AccountIdentity]string, error) {
	if s.encryptedResidentNumbersFn != nil {
		return s.encryptedResidentNumbersFn(ctx)
	}
	return map[domain.AccountIdentity]string{}, nil
}

func (s intakeRepoStub) CachedBalances(ctx context.Context) (map[string]int64, error) {
	if s.cachedBalancesFn != nil {
		return s.cachedBalancesFn(ctx)
	}
	return map[string]int64{}, nil
}

type encryptionStub struct {
	decryptFn func(ctx context.Context, ciphertext string) (string, error)
}

func (s encryptionStub) Decrypt(ctx context.Context, ciphertext string) (string, error) {
	if s.decryptFn != nil {
		return s.decryptFn(ctx, ciphertext)
	}
	return ciphertext, nil
}

type notifierStub struct {
	sendRejectionNoticeFn func(ctx context.Context, contact, creatorName, reason string) error
}

func (s notifierStub) SendRejectionNotice(ctx context.Context, contact, creatorName, reason string) error {
	if s.sendRejectionNoticeFn != nil {
		return s.sendRejectionNoticeFn(ctx, contact, creatorName, reason)
	}
	return nil
}

type dispatcherStub struct {
	dispatchReportFn func(ctx context.Context, text string) error
}

func (s dispatcherStub) DispatchReport(ctx context.Context, text string) error {
	if s.dispatchReportFn != nil {
		return s.dispatchReportFn(ctx, text)
	}
	return nil
}
