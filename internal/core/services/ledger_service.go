package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ajudi46/expense-tracker-server/internal/apperrors"
	"github.com/ajudi46/expense-tracker-server/internal/core/domain"
	portsrepo "github.com/ajudi46/expense-tracker-server/internal/core/ports/repositories"
	portssvc "github.com/ajudi46/expense-tracker-server/internal/core/ports/services"
	"github.com/ajudi46/expense-tracker-server/internal/dto"
	"github.com/ajudi46/expense-tracker-server/internal/middleware"
	"github.com/ajudi46/expense-tracker-server/internal/utils"
	"github.com/shopspring/decimal"
)

var (
	ErrAccountNotFound   = errors.New("account not found")
	ErrAmountNotPositive = errors.New("transaction amount must be positive")
	ErrUnknownKind       = errors.New("unknown transaction kind")
)

// ledgerService posts transactions and applies their directional balance
// deltas. Insert and balance update always commit as one database
// transaction, so a crash can never leave a posted transaction without its
// balance effect.
type ledgerService struct {
	txnRepo     portsrepo.TransactionRepositoryFacade
	accountRepo portsrepo.AccountRepositoryFacade
	budgetSvc   portssvc.BudgetSvcFacade
}

// NewLedgerService creates a new ledger service.
func NewLedgerService(txnRepo portsrepo.TransactionRepositoryFacade, accountRepo portsrepo.AccountRepositoryFacade, budgetSvc portssvc.BudgetSvcFacade) portssvc.LedgerSvcFacade {
	return &ledgerService{
		txnRepo:     txnRepo,
		accountRepo: accountRepo,
		budgetSvc:   budgetSvc,
	}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// balanceChangesFor computes the per-account balance deltas a transaction
// applies when posted: Expense debits the source, Income credits it, and
// Transfer moves the amount between source and destination. A Transfer with
// no destination skips the credit leg; the caller logs that condition.
func balanceChangesFor(txn domain.Transaction) map[int64]decimal.Decimal {
	changes := make(map[int64]decimal.Decimal, 2)
	switch txn.Kind {
	case domain.Expense:
		changes[txn.AccountID] = txn.Amount.Neg()
	case domain.Income:
		changes[txn.AccountID] = txn.Amount
	case domain.Transfer:
		changes[txn.AccountID] = txn.Amount.Neg()
		if txn.ToAccountID != nil {
			changes[*txn.ToAccountID] = changes[*txn.ToAccountID].Add(txn.Amount)
		}
	}
	return changes
}

// negated returns the inverse delta set, used to reverse a posted transaction.
func negated(changes map[int64]decimal.Decimal) map[int64]decimal.Decimal {
	out := make(map[int64]decimal.Decimal, len(changes))
	for id, d := range changes {
		out[id] = d.Neg()
	}
	return out
}

// merged folds b's deltas into a copy of a.
func merged(a, b map[int64]decimal.Decimal) map[int64]decimal.Decimal {
	out := make(map[int64]decimal.Decimal, len(a)+len(b))
	for id, d := range a {
		out[id] = d
	}
	for id, d := range b {
		out[id] = out[id].Add(d)
	}
	return out
}

func (s *ledgerService) validateKindAndAmount(kind domain.TransactionKind, amount decimal.Decimal) error {
	switch kind {
	case domain.Expense, domain.Income, domain.Transfer:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: %s", ErrAmountNotPositive, amount.String())
	}
	return nil
}

// checkAccounts verifies that the source (and destination, when present)
// accounts exist before any mutation happens.
func (s *ledgerService) checkAccounts(ctx context.Context, accountID int64, toAccountID *int64) error {
	if _, err := s.accountRepo.FindAccountByID(ctx, accountID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: ID %d", ErrAccountNotFound, accountID)
		}
		return fmt.Errorf("failed to find account %d: %w", accountID, err)
	}
	if toAccountID != nil {
		if _, err := s.accountRepo.FindAccountByID(ctx, *toAccountID); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return fmt.Errorf("%w: ID %d", ErrAccountNotFound, *toAccountID)
			}
			return fmt.Errorf("failed to find account %d: %w", *toAccountID, err)
		}
	}
	return nil
}

// PostTransaction inserts the transaction and applies its balance deltas in
// one unit of work, then reconciles the affected budget for Expense kinds.
func (s *ledgerService) PostTransaction(ctx context.Context, req dto.CreateTransactionRequest) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.validateKindAndAmount(req.Kind, req.Amount); err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}
	if err := s.checkAccounts(ctx, req.AccountID, req.ToAccountID); err != nil {
		return nil, err
	}

	createdAt := time.Now().UTC()
	if req.CreatedAt != nil {
		createdAt = req.CreatedAt.UTC()
	}

	txn := domain.Transaction{
		TransactionID: utils.NewNumericID(),
		Kind:          req.Kind,
		Amount:        req.Amount,
		Description:   req.Description,
		Category:      domain.CategoryName(req.Category),
		AccountID:     req.AccountID,
		ToAccountID:   req.ToAccountID,
		CreatedAt:     createdAt,
	}

	if txn.Kind == domain.Transfer && txn.ToAccountID == nil {
		logger.Warn("Transfer has no destination account; credit leg skipped",
			slog.Int64("transaction_id", txn.TransactionID))
	}

	if err := s.txnRepo.SaveTransactionWithBalances(ctx, txn, balanceChangesFor(txn)); err != nil {
		return nil, fmt.Errorf("failed to save transaction: %w", err)
	}

	s.reconcileIfExpense(ctx, txn)

	return &txn, nil
}

// GetTransactionByID retrieves a single transaction.
func (s *ledgerService) GetTransactionByID(ctx context.Context, transactionID int64) (*domain.Transaction, error) {
	txn, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find transaction %d: %w", transactionID, err)
	}
	return txn, nil
}

// ListTransactions retrieves every transaction, newest first.
func (s *ledgerService) ListTransactions(ctx context.Context) ([]domain.Transaction, error) {
	txns, err := s.txnRepo.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txns, nil
}

// UpdateTransaction replaces a posted transaction: the old balance deltas are
// reversed and the new ones applied in the same database transaction as the
// row update, then every affected budget tuple is reconciled.
func (s *ledgerService) UpdateTransaction(ctx context.Context, transactionID int64, req dto.UpdateTransactionRequest) (*domain.Transaction, error) {
	if err := s.validateKindAndAmount(req.Kind, req.Amount); err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}

	existing, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find transaction %d: %w", transactionID, err)
	}
	if err := s.checkAccounts(ctx, req.AccountID, req.ToAccountID); err != nil {
		return nil, err
	}

	createdAt := existing.CreatedAt
	if req.CreatedAt != nil {
		createdAt = req.CreatedAt.UTC()
	}

	updated := domain.Transaction{
		TransactionID: transactionID,
		Kind:          req.Kind,
		Amount:        req.Amount,
		Description:   req.Description,
		Category:      domain.CategoryName(req.Category),
		AccountID:     req.AccountID,
		ToAccountID:   req.ToAccountID,
		CreatedAt:     createdAt,
	}

	changes := merged(negated(balanceChangesFor(*existing)), balanceChangesFor(updated))
	if err := s.txnRepo.UpdateTransactionWithBalances(ctx, updated, changes); err != nil {
		return nil, fmt.Errorf("failed to update transaction %d: %w", transactionID, err)
	}

	s.reconcileIfExpense(ctx, *existing)
	s.reconcileIfExpense(ctx, updated)

	return &updated, nil
}

// DeleteTransaction removes a posted transaction and reverses its balance
// deltas in one unit of work.
func (s *ledgerService) DeleteTransaction(ctx context.Context, transactionID int64) error {
	existing, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return fmt.Errorf("failed to find transaction %d: %w", transactionID, err)
	}

	changes := negated(balanceChangesFor(*existing))
	if err := s.txnRepo.DeleteTransactionWithBalances(ctx, transactionID, changes); err != nil {
		return fmt.Errorf("failed to delete transaction %d: %w", transactionID, err)
	}

	s.reconcileIfExpense(ctx, *existing)

	return nil
}

// reconcileIfExpense triggers budget reconciliation for the transaction's
// (category, period) when it is an Expense. Reconciliation failure never
// fails the ledger mutation that triggered it; the budget row catches up on
// the next reconcile.
func (s *ledgerService) reconcileIfExpense(ctx context.Context, txn domain.Transaction) {
	if txn.Kind != domain.Expense || s.budgetSvc == nil {
		return
	}
	if err := s.budgetSvc.Reconcile(ctx, txn.Category, txn.Period()); err != nil {
		middleware.GetLoggerFromCtx(ctx).Warn("Budget reconciliation failed after ledger mutation",
			slog.String("category", string(txn.Category)),
			slog.Int("month", txn.Period().Month),
			slog.Int("year", txn.Period().Year),
			slog.String("error", err.Error()))
	}
}
