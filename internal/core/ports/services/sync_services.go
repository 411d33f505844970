package services

import (
	"context"
	"time"

	"github.com/ajudi46/expense-tracker-server/internal/core/domain"
	"github.com/ajudi46/expense-tracker-server/internal/dto"
)

// SyncSvcFacade reconciles the local ledger store against the remote
// encrypted store. Every operation requires a signed-in user and fails with
// apperrors.ErrNotSignedIn otherwise, without touching the network.
//
// Uploads are idempotent: each call diffs local items against the remote
// identifier set and pushes only the missing ones, so a retried call after a
// partial batch failure simply skips what already committed.
type SyncSvcFacade interface {
	// Upload phase, one method per entity kind. Each returns the number of
	// newly uploaded documents.
	SyncAccountsToCloud(ctx context.Context, accounts []domain.Account) (int, error)
	SyncTransactionsToCloud(ctx context.Context, txns []domain.Transaction) (int, error)
	SyncCategoriesToCloud(ctx context.Context, categories []domain.Category) (int, error)
	SyncBudgetsToCloud(ctx context.Context, budgets []domain.Budget) (int, error)

	// Download phase. Since-filters apply to kinds carrying an unencrypted
	// creation timestamp; documents that fail to decrypt are dropped and
	// logged, never failing the batch.
	SyncAccountsFromCloud(ctx context.Context) ([]domain.Account, error)
	SyncTransactionsFromCloud(ctx context.Context, since *time.Time) ([]domain.Transaction, error)
	SyncCategoriesFromCloud(ctx context.Context) ([]domain.Category, error)
	SyncBudgetsFromCloud(ctx context.Context, since *time.Time) ([]domain.Budget, error)

	// PerformFullSync uploads all four kinds in a fixed order, failing fast
	// on the first upload error. On success it stamps the user's last-sync
	// time. It never downloads; callers compose upload-then-download.
	PerformFullSync(ctx context.Context) (*dto.FullSyncResponse, error)

	// SyncAll runs upload, download and merge for every kind and returns a
	// report of tagged per-kind outcomes instead of discarding failures.
	SyncAll(ctx context.Context) (*dto.SyncReport, error)
}
