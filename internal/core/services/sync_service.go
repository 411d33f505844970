package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/ajudi46/expense-tracker-server/internal/core/domain"
	"github.com/ajudi46/expense-tracker-server/internal/core/ports/cloud"
	portsrepo "github.com/ajudi46/expense-tracker-server/internal/core/ports/repositories"
	portssvc "github.com/ajudi46/expense-tracker-server/internal/core/ports/services"
	"github.com/ajudi46/expense-tracker-server/internal/dto"
	"github.com/ajudi46/expense-tracker-server/internal/middleware"
	"github.com/google/uuid"
)

// syncService reconciles the local ledger store against the remote encrypted
// store. It holds no state of its own across calls; the only persistent
// artifact of a sync is the last-sync timestamp on the user row.
//
// Concurrent invocations are not mutually excluded: two overlapping uploads
// may both diff and push the same documents, which is safe because remote
// writes are idempotent keyed overwrites.
type syncService struct {
	accountRepo  portsrepo.AccountRepositoryFacade
	txnRepo      portsrepo.TransactionRepositoryFacade
	categoryRepo portsrepo.CategoryRepositoryFacade
	budgetRepo   portsrepo.BudgetRepositoryFacade
	userRepo     portsrepo.UserRepositoryFacade
	remote       cloud.Store
	codec        cloud.Codec
}

// NewSyncService creates a new cloud sync service.
func NewSyncService(
	accountRepo portsrepo.AccountRepositoryFacade,
	txnRepo portsrepo.TransactionRepositoryFacade,
	categoryRepo portsrepo.CategoryRepositoryFacade,
	budgetRepo portsrepo.BudgetRepositoryFacade,
	userRepo portsrepo.UserRepositoryFacade,
	remote cloud.Store,
	codec cloud.Codec,
) portssvc.SyncSvcFacade {
	return &syncService{
		accountRepo:  accountRepo,
		txnRepo:      txnRepo,
		categoryRepo: categoryRepo,
		budgetRepo:   budgetRepo,
		userRepo:     userRepo,
		remote:       remote,
		codec:        codec,
	}
}

var _ portssvc.SyncSvcFacade = (*syncService)(nil)

// currentUser resolves the signed-in identity every cloud operation is keyed
// by. Fails with apperrors.ErrNotSignedIn before any network traffic.
func (s *syncService) currentUser(ctx context.Context) (*domain.User, error) {
	user, err := s.userRepo.FindSignedInUser(ctx)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// uploadNew pushes the local items missing from the remote collection.
// The diff is computed client-side against the full remote identifier set;
// only missing items are encrypted and written, in sequential batches of at
// most cloud.MaxBatchOps. A failing batch aborts the call; earlier batches
// stay committed and are skipped by the diff on the next attempt.
func uploadNew[T any](ctx context.Context, s *syncService, uid string, kind cloud.EntityKind, items []T, idOf func(T) string, encode func(T) (cloud.Document, error)) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	remoteIDs, err := s.remote.ListDocumentIDs(ctx, uid, kind)
	if err != nil {
		return 0, fmt.Errorf("failed to list remote %s identifiers: %w", kind, err)
	}

	var newItems []T
	for _, item := range items {
		if _, exists := remoteIDs[idOf(item)]; !exists {
			newItems = append(newItems, item)
		}
	}
	if len(newItems) == 0 {
		return 0, nil
	}

	docs := make([]cloud.Document, 0, len(newItems))
	for _, item := range newItems {
		doc, err := encode(item)
		if err != nil {
			return 0, fmt.Errorf("failed to encrypt %s record: %w", kind, err)
		}
		docs = append(docs, doc)
	}

	uploaded := 0
	for start := 0; start < len(docs); start += cloud.MaxBatchOps {
		end := min(start+cloud.MaxBatchOps, len(docs))
		if err := s.remote.CommitBatch(ctx, uid, kind, docs[start:end]); err != nil {
			// Batches 1..k-1 are already committed and are not rolled back.
			return uploaded, fmt.Errorf("failed to commit %s batch: %w", kind, err)
		}
		uploaded += end - start
	}
	return uploaded, nil
}

// downloadAll fetches and decrypts an entire remote collection. A document
// that fails to decrypt is dropped and logged; one corrupt record never
// blocks retrieval of the rest.
func downloadAll[T any](ctx context.Context, s *syncService, uid string, kind cloud.EntityKind, opts cloud.ListOptions, decode func(cloud.Document) (T, error)) ([]T, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	docs, err := s.remote.ListDocuments(ctx, uid, kind, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list remote %s documents: %w", kind, err)
	}

	items := make([]T, 0, len(docs))
	for _, doc := range docs {
		item, err := decode(doc)
		if err != nil {
			logger.Warn("Dropping remote document that failed to decrypt",
				slog.String("kind", string(kind)),
				slog.String("document_id", doc.ID),
				slog.String("error", err.Error()))
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// seal marshals a record and encrypts it for the given user.
func (s *syncService) seal(uid string, record any) (string, error) {
	plaintext, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("failed to marshal record: %w", err)
	}
	return s.codec.Seal(uid, plaintext)
}

// open decrypts a payload for the given user and unmarshals it into out.
func (s *syncService) open(uid string, payload string, out any) error {
	plaintext, err := s.codec.Open(uid, payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(plaintext, out)
}

// SyncAccountsToCloud uploads locally known accounts missing from the remote store.
func (s *syncService) SyncAccountsToCloud(ctx context.Context, accounts []domain.Account) (int, error) {
	user, err := s.currentUser(ctx)
	if err != nil {
		return 0, err
	}
	return uploadNew(ctx, s, user.UserID, cloud.KindAccounts, accounts,
		func(a domain.Account) string { return formatID(a.AccountID) },
		func(a domain.Account) (cloud.Document, error) {
			payload, err := s.seal(user.UserID, a)
			if err != nil {
				return cloud.Document{}, err
			}
			return cloud.Document{ID: formatID(a.AccountID), Payload: payload, CreatedAt: a.CreatedAt}, nil
		})
}

// SyncTransactionsToCloud uploads locally known transactions missing from the remote store.
func (s *syncService) SyncTransactionsToCloud(ctx context.Context, txns []domain.Transaction) (int, error) {
	user, err := s.currentUser(ctx)
	if err != nil {
		return 0, err
	}
	return uploadNew(ctx, s, user.UserID, cloud.KindTransactions, txns,
		func(t domain.Transaction) string { return formatID(t.TransactionID) },
		func(t domain.Transaction) (cloud.Document, error) {
			payload, err := s.seal(user.UserID, t)
			if err != nil {
				return cloud.Document{}, err
			}
			return cloud.Document{ID: formatID(t.TransactionID), Payload: payload, CreatedAt: t.CreatedAt}, nil
		})
}

// SyncCategoriesToCloud uploads locally known categories missing from the remote store.
func (s *syncService) SyncCategoriesToCloud(ctx context.Context, categories []domain.Category) (int, error) {
	user, err := s.currentUser(ctx)
	if err != nil {
		return 0, err
	}
	return uploadNew(ctx, s, user.UserID, cloud.KindCategories, categories,
		func(c domain.Category) string { return formatID(c.CategoryID) },
		func(c domain.Category) (cloud.Document, error) {
			payload, err := s.seal(user.UserID, c)
			if err != nil {
				return cloud.Document{}, err
			}
			return cloud.Document{ID: formatID(c.CategoryID), Payload: payload, Name: string(c.Name)}, nil
		})
}

// SyncBudgetsToCloud uploads locally known budgets missing from the remote store.
func (s *syncService) SyncBudgetsToCloud(ctx context.Context, budgets []domain.Budget) (int, error) {
	user, err := s.currentUser(ctx)
	if err != nil {
		return 0, err
	}
	return uploadNew(ctx, s, user.UserID, cloud.KindBudgets, budgets,
		func(b domain.Budget) string { return formatID(b.BudgetID) },
		func(b domain.Budget) (cloud.Document, error) {
			payload, err := s.seal(user.UserID, b)
			if err != nil {
				return cloud.Document{}, err
			}
			return cloud.Document{ID: formatID(b.BudgetID), Payload: payload, CreatedAt: b.CreatedAt}, nil
		})
}

// SyncAccountsFromCloud downloads and decrypts the full remote account collection.
func (s *syncService) SyncAccountsFromCloud(ctx context.Context) ([]domain.Account, error) {
	user, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	return downloadAll(ctx, s, user.UserID, cloud.KindAccounts, cloud.ListOptions{},
		func(doc cloud.Document) (domain.Account, error) {
			var a domain.Account
			err := s.open(user.UserID, doc.Payload, &a)
			return a, err
		})
}

// SyncTransactionsFromCloud downloads remote transactions, optionally only
// those created after the given time.
func (s *syncService) SyncTransactionsFromCloud(ctx context.Context, since *time.Time) ([]domain.Transaction, error) {
	user, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	return downloadAll(ctx, s, user.UserID, cloud.KindTransactions, cloud.ListOptions{Since: since},
		func(doc cloud.Document) (domain.Transaction, error) {
			var t domain.Transaction
			err := s.open(user.UserID, doc.Payload, &t)
			return t, err
		})
}

// SyncCategoriesFromCloud downloads and decrypts the full remote category collection.
func (s *syncService) SyncCategoriesFromCloud(ctx context.Context) ([]domain.Category, error) {
	user, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	return downloadAll(ctx, s, user.UserID, cloud.KindCategories, cloud.ListOptions{},
		func(doc cloud.Document) (domain.Category, error) {
			var c domain.Category
			err := s.open(user.UserID, doc.Payload, &c)
			return c, err
		})
}

// SyncBudgetsFromCloud downloads remote budgets, optionally only those
// created after the given time.
func (s *syncService) SyncBudgetsFromCloud(ctx context.Context, since *time.Time) ([]domain.Budget, error) {
	user, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	return downloadAll(ctx, s, user.UserID, cloud.KindBudgets, cloud.ListOptions{Since: since},
		func(doc cloud.Document) (domain.Budget, error) {
			var b domain.Budget
			err := s.open(user.UserID, doc.Payload, &b)
			return b, err
		})
}

// PerformFullSync uploads every entity kind in a fixed order. The first
// upload failure aborts the remaining uploads (fail-fast) with the cause
// wrapped in the failing phase. On success the user's last-sync timestamp is
// stamped. Downloads are intentionally not part of a full sync; callers
// compose upload-then-download themselves.
func (s *syncService) PerformFullSync(ctx context.Context) (*dto.FullSyncResponse, error) {
	user, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}

	total := 0

	accounts, err := s.accountRepo.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("full sync failed reading accounts: %w", err)
	}
	n, err := s.SyncAccountsToCloud(ctx, accounts)
	if err != nil {
		return nil, fmt.Errorf("full sync aborted uploading accounts: %w", err)
	}
	total += n

	txns, err := s.txnRepo.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("full sync failed reading transactions: %w", err)
	}
	n, err = s.SyncTransactionsToCloud(ctx, txns)
	if err != nil {
		return nil, fmt.Errorf("full sync aborted uploading transactions: %w", err)
	}
	total += n

	categories, err := s.categoryRepo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("full sync failed reading categories: %w", err)
	}
	n, err = s.SyncCategoriesToCloud(ctx, categories)
	if err != nil {
		return nil, fmt.Errorf("full sync aborted uploading categories: %w", err)
	}
	total += n

	budgets, err := s.budgetRepo.ListBudgets(ctx)
	if err != nil {
		return nil, fmt.Errorf("full sync failed reading budgets: %w", err)
	}
	n, err = s.SyncBudgetsToCloud(ctx, budgets)
	if err != nil {
		return nil, fmt.Errorf("full sync aborted uploading budgets: %w", err)
	}
	total += n

	syncedAt := time.Now().UTC()
	if err := s.userRepo.UpdateLastSyncAt(ctx, user.UserID, syncedAt); err != nil {
		return nil, fmt.Errorf("full sync completed but failed to stamp last-sync time: %w", err)
	}

	return &dto.FullSyncResponse{SyncedAt: syncedAt, Uploaded: total}, nil
}

// SyncAll runs upload, download and merge for every entity kind and returns
// a report of tagged per-kind outcomes. One kind's failure is recorded and
// does not stop the others. The last-sync timestamp is stamped only when no
// kind failed.
func (s *syncService) SyncAll(ctx context.Context) (*dto.SyncReport, error) {
	user, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}

	report := &dto.SyncReport{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}

	report.Outcomes = append(report.Outcomes, s.syncAccounts(ctx))
	report.Outcomes = append(report.Outcomes, s.syncTransactions(ctx, user.LastSyncAt))
	report.Outcomes = append(report.Outcomes, s.syncCategories(ctx))
	report.Outcomes = append(report.Outcomes, s.syncBudgets(ctx, user.LastSyncAt))

	report.FinishedAt = time.Now().UTC()

	if !report.Failed() {
		if err := s.userRepo.UpdateLastSyncAt(ctx, user.UserID, report.FinishedAt); err != nil {
			middleware.GetLoggerFromCtx(ctx).Warn("Failed to stamp last-sync time after sync run",
				slog.String("run_id", report.RunID),
				slog.String("error", err.Error()))
		}
	}
	return report, nil
}

func outcomeFor(kind cloud.EntityKind, uploaded, downloaded, merged int, err error) dto.SyncOutcome {
	o := dto.SyncOutcome{
		Kind:       string(kind),
		Uploaded:   uploaded,
		Downloaded: downloaded,
		Merged:     merged,
	}
	switch {
	case err != nil:
		o.Status = dto.SyncFailed
		o.Error = err.Error()
	case uploaded == 0 && downloaded == 0:
		o.Status = dto.SyncSkipped
	default:
		o.Status = dto.SyncSuccess
	}
	return o
}

func (s *syncService) syncAccounts(ctx context.Context) dto.SyncOutcome {
	locals, err := s.accountRepo.ListAccounts(ctx)
	if err != nil {
		return outcomeFor(cloud.KindAccounts, 0, 0, 0, err)
	}
	uploaded, err := s.SyncAccountsToCloud(ctx, locals)
	if err != nil {
		return outcomeFor(cloud.KindAccounts, uploaded, 0, 0, err)
	}
	remotes, err := s.SyncAccountsFromCloud(ctx)
	if err != nil {
		return outcomeFor(cloud.KindAccounts, uploaded, 0, 0, err)
	}
	merged := 0
	for _, a := range remotes {
		if s.mergeOne(ctx,
			func() error { return s.accountRepo.SaveAccount(ctx, a) },
			func() error { return s.accountRepo.UpdateAccount(ctx, a) }) {
			merged++
		}
	}
	return outcomeFor(cloud.KindAccounts, uploaded, len(remotes), merged, nil)
}

func (s *syncService) syncTransactions(ctx context.Context, since *time.Time) dto.SyncOutcome {
	locals, err := s.txnRepo.ListTransactions(ctx)
	if err != nil {
		return outcomeFor(cloud.KindTransactions, 0, 0, 0, err)
	}
	uploaded, err := s.SyncTransactionsToCloud(ctx, locals)
	if err != nil {
		return outcomeFor(cloud.KindTransactions, uploaded, 0, 0, err)
	}
	remotes, err := s.SyncTransactionsFromCloud(ctx, since)
	if err != nil {
		return outcomeFor(cloud.KindTransactions, uploaded, 0, 0, err)
	}
	merged := 0
	for _, t := range remotes {
		if s.mergeOne(ctx,
			func() error { return s.txnRepo.SaveTransaction(ctx, t) },
			func() error { return s.txnRepo.UpdateTransaction(ctx, t) }) {
			merged++
		}
	}
	return outcomeFor(cloud.KindTransactions, uploaded, len(remotes), merged, nil)
}

func (s *syncService) syncCategories(ctx context.Context) dto.SyncOutcome {
	locals, err := s.categoryRepo.ListCategories(ctx)
	if err != nil {
		return outcomeFor(cloud.KindCategories, 0, 0, 0, err)
	}
	uploaded, err := s.SyncCategoriesToCloud(ctx, locals)
	if err != nil {
		return outcomeFor(cloud.KindCategories, uploaded, 0, 0, err)
	}
	remotes, err := s.SyncCategoriesFromCloud(ctx)
	if err != nil {
		return outcomeFor(cloud.KindCategories, uploaded, 0, 0, err)
	}
	merged := 0
	for _, c := range remotes {
		if s.mergeOne(ctx,
			func() error { return s.categoryRepo.SaveCategory(ctx, c) },
			func() error { return s.categoryRepo.UpdateCategory(ctx, c) }) {
			merged++
		}
	}
	return outcomeFor(cloud.KindCategories, uploaded, len(remotes), merged, nil)
}

func (s *syncService) syncBudgets(ctx context.Context, since *time.Time) dto.SyncOutcome {
	locals, err := s.budgetRepo.ListBudgets(ctx)
	if err != nil {
		return outcomeFor(cloud.KindBudgets, 0, 0, 0, err)
	}
	uploaded, err := s.SyncBudgetsToCloud(ctx, locals)
	if err != nil {
		return outcomeFor(cloud.KindBudgets, uploaded, 0, 0, err)
	}
	remotes, err := s.SyncBudgetsFromCloud(ctx, since)
	if err != nil {
		return outcomeFor(cloud.KindBudgets, uploaded, 0, 0, err)
	}
	merged := 0
	for _, b := range remotes {
		if s.mergeOne(ctx,
			func() error { return s.budgetRepo.SaveBudget(ctx, b) },
			func() error { return s.budgetRepo.UpdateBudget(ctx, b) }) {
			merged++
		}
	}
	return outcomeFor(cloud.KindBudgets, uploaded, len(remotes), merged, nil)
}

// mergeOne applies the best-effort upsert the merge phase uses: try the
// insert, and on any failure (typically an identifier collision) fall back
// to an update. The last writer's outcome wins; there is no field-level
// conflict arbitration. Returns whether the record landed.
func (s *syncService) mergeOne(ctx context.Context, insert, update func() error) bool {
	if err := insert(); err != nil {
		if err := update(); err != nil {
			middleware.GetLoggerFromCtx(ctx).Warn("Failed to merge downloaded record",
				slog.String("error", err.Error()))
			return false
		}
	}
	return true
}
