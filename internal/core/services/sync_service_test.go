package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/ajudi46/expense-tracker-server/internal/apperrors"
	"github.com/ajudi46/expense-tracker-server/internal/core/domain"
	"github.com/ajudi46/expense-tracker-server/internal/core/ports/cloud"
	portssvc "github.com/ajudi46/expense-tracker-server/internal/core/ports/services"
	"github.com/ajudi46/expense-tracker-server/internal/core/services"
	"github.com/ajudi46/expense-tracker-server/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type SyncServiceTestSuite struct {
	suite.Suite
	accountRepo  *MockAccountRepository
	txnRepo      *MockTransactionRepository
	categoryRepo *MockCategoryRepository
	budgetRepo   *MockBudgetRepository
	userRepo     *MockUserRepository
	store        *MockCloudStore
	codec        *MockCodec
	service      portssvc.SyncSvcFacade
}

func (s *SyncServiceTestSuite) SetupTest() {
	s.accountRepo = new(MockAccountRepository)
	s.txnRepo = new(MockTransactionRepository)
	s.categoryRepo = new(MockCategoryRepository)
	s.budgetRepo = new(MockBudgetRepository)
	s.userRepo = new(MockUserRepository)
	s.store = new(MockCloudStore)
	s.codec = new(MockCodec)
	s.service = services.NewSyncService(
		s.accountRepo, s.txnRepo, s.categoryRepo, s.budgetRepo, s.userRepo, s.store, s.codec,
	)
}

func (s *SyncServiceTestSuite) signIn() *domain.User {
	user := &domain.User{UserID: "u1", Email: "u1@example.com", IsSignedIn: true}
	s.userRepo.On("FindSignedInUser", mock.Anything).Return(user, nil)
	return user
}

func makeTxns(n int) []domain.Transaction {
	txns := make([]domain.Transaction, n)
	for i := range txns {
		txns[i] = domain.Transaction{
			TransactionID: int64(i + 1),
			Kind:          domain.Expense,
			Amount:        decimal.NewFromInt(int64(i + 1)),
			Category:      "Food",
			AccountID:     10,
			CreatedAt:     time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(i) * time.Minute),
		}
	}
	return txns
}

func (s *SyncServiceTestSuite) TestUpload_RequiresSignedInUser() {
	s.userRepo.On("FindSignedInUser", mock.Anything).Return(nil, apperrors.ErrNotSignedIn)

	_, err := s.service.SyncTransactionsToCloud(context.Background(), makeTxns(1))

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrNotSignedIn)
	s.store.AssertNotCalled(s.T(), "ListDocumentIDs")
	s.store.AssertNotCalled(s.T(), "CommitBatch")
}

func (s *SyncServiceTestSuite) TestUpload_EmptyLocalShortCircuits() {
	s.signIn()

	n, err := s.service.SyncTransactionsToCloud(context.Background(), nil)

	s.Require().NoError(err)
	s.Zero(n)
	s.store.AssertNotCalled(s.T(), "ListDocumentIDs")
}

// Items already present remotely are skipped; only the missing ones are
// encrypted and committed, so a retried upload is idempotent.
func (s *SyncServiceTestSuite) TestUpload_DiffSkipsExistingDocuments() {
	s.signIn()
	txns := makeTxns(3)

	s.store.On("ListDocumentIDs", mock.Anything, "u1", cloud.KindTransactions).
		Return(map[string]struct{}{"1": {}, "2": {}}, nil).Once()
	s.codec.On("Seal", "u1", mock.Anything).Return("sealed-3", nil).Once()
	s.store.On("CommitBatch", mock.Anything, "u1", cloud.KindTransactions,
		mock.MatchedBy(func(docs []cloud.Document) bool {
			return len(docs) == 1 && docs[0].ID == "3" && docs[0].Payload == "sealed-3"
		})).Return(nil).Once()

	n, err := s.service.SyncTransactionsToCloud(context.Background(), txns)

	s.Require().NoError(err)
	s.Equal(1, n)
	s.store.AssertExpectations(s.T())
}

func (s *SyncServiceTestSuite) TestUpload_NothingNewCommitsNothing() {
	s.signIn()
	txns := makeTxns(2)

	s.store.On("ListDocumentIDs", mock.Anything, "u1", cloud.KindTransactions).
		Return(map[string]struct{}{"1": {}, "2": {}}, nil).Once()

	n, err := s.service.SyncTransactionsToCloud(context.Background(), txns)

	s.Require().NoError(err)
	s.Zero(n)
	s.store.AssertNotCalled(s.T(), "CommitBatch")
}

// 500 new documents split into sequential batches of 450 and 50.
func (s *SyncServiceTestSuite) TestUpload_ChunksLargeBatches() {
	s.signIn()
	txns := makeTxns(500)

	s.store.On("ListDocumentIDs", mock.Anything, "u1", cloud.KindTransactions).
		Return(map[string]struct{}{}, nil).Once()
	s.codec.On("Seal", "u1", mock.Anything).Return("sealed", nil)

	s.store.On("CommitBatch", mock.Anything, "u1", cloud.KindTransactions,
		mock.MatchedBy(func(docs []cloud.Document) bool { return len(docs) == cloud.MaxBatchOps })).
		Return(nil).Once()
	s.store.On("CommitBatch", mock.Anything, "u1", cloud.KindTransactions,
		mock.MatchedBy(func(docs []cloud.Document) bool { return len(docs) == 50 })).
		Return(nil).Once()

	n, err := s.service.SyncTransactionsToCloud(context.Background(), txns)

	s.Require().NoError(err)
	s.Equal(500, n)
	s.store.AssertExpectations(s.T())
}

// A failing later chunk aborts the upload but does not undo earlier chunks;
// the next run's diff picks up where this one stopped.
func (s *SyncServiceTestSuite) TestUpload_ChunkFailureKeepsCommittedChunks() {
	s.signIn()
	txns := makeTxns(500)

	s.store.On("ListDocumentIDs", mock.Anything, "u1", cloud.KindTransactions).
		Return(map[string]struct{}{}, nil).Once()
	s.codec.On("Seal", "u1", mock.Anything).Return("sealed", nil)

	s.store.On("CommitBatch", mock.Anything, "u1", cloud.KindTransactions,
		mock.MatchedBy(func(docs []cloud.Document) bool { return len(docs) == cloud.MaxBatchOps })).
		Return(nil).Once()
	s.store.On("CommitBatch", mock.Anything, "u1", cloud.KindTransactions,
		mock.MatchedBy(func(docs []cloud.Document) bool { return len(docs) == 50 })).
		Return(errors.New("remote unavailable")).Once()

	n, err := s.service.SyncTransactionsToCloud(context.Background(), txns)

	s.Require().Error(err)
	s.Equal(cloud.MaxBatchOps, n)
}

// One undecryptable document is dropped; the rest of the batch survives.
func (s *SyncServiceTestSuite) TestDownload_DropsCorruptRecords() {
	s.signIn()

	good1, _ := json.Marshal(domain.Transaction{TransactionID: 1, Kind: domain.Expense, Amount: decimal.NewFromInt(5), Category: "Food", AccountID: 10})
	good2, _ := json.Marshal(domain.Transaction{TransactionID: 3, Kind: domain.Income, Amount: decimal.NewFromInt(9), Category: "Pay", AccountID: 10})

	s.store.On("ListDocuments", mock.Anything, "u1", cloud.KindTransactions, cloud.ListOptions{}).
		Return([]cloud.Document{
			{ID: "1", Payload: "p1"},
			{ID: "2", Payload: "corrupt"},
			{ID: "3", Payload: "p3"},
		}, nil).Once()
	s.codec.On("Open", "u1", "p1").Return(good1, nil).Once()
	s.codec.On("Open", "u1", "corrupt").Return(nil, errors.New("cipher: message authentication failed")).Once()
	s.codec.On("Open", "u1", "p3").Return(good2, nil).Once()

	txns, err := s.service.SyncTransactionsFromCloud(context.Background(), nil)

	s.Require().NoError(err)
	s.Require().Len(txns, 2)
	s.Equal(int64(1), txns[0].TransactionID)
	s.Equal(int64(3), txns[1].TransactionID)
}

func (s *SyncServiceTestSuite) TestDownload_PassesSinceFilter() {
	s.signIn()
	since := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	s.store.On("ListDocuments", mock.Anything, "u1", cloud.KindTransactions, cloud.ListOptions{Since: &since}).
		Return([]cloud.Document{}, nil).Once()

	txns, err := s.service.SyncTransactionsFromCloud(context.Background(), &since)

	s.Require().NoError(err)
	s.Empty(txns)
	s.store.AssertExpectations(s.T())
}

// The first failing upload phase aborts the full sync; later kinds are never
// attempted and the last-sync time stays untouched.
func (s *SyncServiceTestSuite) TestPerformFullSync_FailsFast() {
	s.signIn()

	s.accountRepo.On("ListAccounts", mock.Anything).
		Return([]domain.Account{{AccountID: 1, Name: "Cash"}}, nil).Once()
	s.store.On("ListDocumentIDs", mock.Anything, "u1", cloud.KindAccounts).
		Return(nil, errors.New("remote unavailable")).Once()

	_, err := s.service.PerformFullSync(context.Background())

	s.Require().Error(err)
	s.txnRepo.AssertNotCalled(s.T(), "ListTransactions")
	s.userRepo.AssertNotCalled(s.T(), "UpdateLastSyncAt")
}

func (s *SyncServiceTestSuite) TestPerformFullSync_UploadsAllKindsAndStamps() {
	s.signIn()

	s.accountRepo.On("ListAccounts", mock.Anything).Return([]domain.Account{{AccountID: 1, Name: "Cash"}}, nil).Once()
	s.txnRepo.On("ListTransactions", mock.Anything).Return(makeTxns(2), nil).Once()
	s.categoryRepo.On("ListCategories", mock.Anything).Return([]domain.Category{{CategoryID: 5, Name: "Food", Kind: domain.CategoryExpense}}, nil).Once()
	s.budgetRepo.On("ListBudgets", mock.Anything).Return([]domain.Budget{}, nil).Once()

	for _, kind := range []cloud.EntityKind{cloud.KindAccounts, cloud.KindTransactions, cloud.KindCategories} {
		s.store.On("ListDocumentIDs", mock.Anything, "u1", kind).Return(map[string]struct{}{}, nil).Once()
		s.store.On("CommitBatch", mock.Anything, "u1", kind, mock.Anything).Return(nil).Once()
	}
	s.codec.On("Seal", "u1", mock.Anything).Return("sealed", nil)
	s.userRepo.On("UpdateLastSyncAt", mock.Anything, "u1", mock.AnythingOfType("time.Time")).Return(nil).Once()

	resp, err := s.service.PerformFullSync(context.Background())

	s.Require().NoError(err)
	s.Require().NotNil(resp)
	s.Equal(4, resp.Uploaded) // 1 account + 2 transactions + 1 category
	s.userRepo.AssertExpectations(s.T())
	s.store.AssertExpectations(s.T())
}

// Downloaded records merge by insert, falling back to update on identifier
// collision; the kind's outcome counts the landed records.
func (s *SyncServiceTestSuite) TestSyncAll_MergesWithInsertThenUpdate() {
	user := s.signIn()
	user.LastSyncAt = nil

	// Accounts: one local already remote, one remote to merge down.
	local := domain.Account{AccountID: 1, Name: "Cash"}
	remoteAccount := domain.Account{AccountID: 2, Name: "Bank"}
	remoteJSON, _ := json.Marshal(remoteAccount)

	s.accountRepo.On("ListAccounts", mock.Anything).Return([]domain.Account{local}, nil).Once()
	s.store.On("ListDocumentIDs", mock.Anything, "u1", cloud.KindAccounts).
		Return(map[string]struct{}{"1": {}}, nil).Once()
	s.store.On("ListDocuments", mock.Anything, "u1", cloud.KindAccounts, cloud.ListOptions{}).
		Return([]cloud.Document{{ID: "2", Payload: "pa"}}, nil).Once()
	s.codec.On("Open", "u1", "pa").Return(remoteJSON, nil).Once()
	s.accountRepo.On("SaveAccount", mock.Anything, remoteAccount).Return(apperrors.ErrDuplicate).Once()
	s.accountRepo.On("UpdateAccount", mock.Anything, remoteAccount).Return(nil).Once()

	// Remaining kinds are empty everywhere.
	s.txnRepo.On("ListTransactions", mock.Anything).Return([]domain.Transaction{}, nil).Once()
	s.categoryRepo.On("ListCategories", mock.Anything).Return([]domain.Category{}, nil).Once()
	s.budgetRepo.On("ListBudgets", mock.Anything).Return([]domain.Budget{}, nil).Once()
	for _, kind := range []cloud.EntityKind{cloud.KindTransactions, cloud.KindCategories, cloud.KindBudgets} {
		s.store.On("ListDocuments", mock.Anything, "u1", kind, mock.Anything).
			Return([]cloud.Document{}, nil).Once()
	}
	s.userRepo.On("UpdateLastSyncAt", mock.Anything, "u1", mock.AnythingOfType("time.Time")).Return(nil).Once()

	report, err := s.service.SyncAll(context.Background())

	s.Require().NoError(err)
	s.Require().NotNil(report)
	s.NotEmpty(report.RunID)
	s.False(report.Failed())
	s.Require().Len(report.Outcomes, 4)

	accounts := report.Outcomes[0]
	s.Equal(string(cloud.KindAccounts), accounts.Kind)
	s.Equal(dto.SyncSuccess, accounts.Status)
	s.Equal(1, accounts.Downloaded)
	s.Equal(1, accounts.Merged)

	for _, outcome := range report.Outcomes[1:] {
		s.Equal(dto.SyncSkipped, outcome.Status)
	}
	s.accountRepo.AssertExpectations(s.T())
}

// One kind's failure is reported, not propagated, and the other kinds still run.
func (s *SyncServiceTestSuite) TestSyncAll_IsolatesKindFailures() {
	s.signIn()

	s.accountRepo.On("ListAccounts", mock.Anything).Return(nil, errors.New("db down")).Once()

	s.txnRepo.On("ListTransactions", mock.Anything).Return([]domain.Transaction{}, nil).Once()
	s.categoryRepo.On("ListCategories", mock.Anything).Return([]domain.Category{}, nil).Once()
	s.budgetRepo.On("ListBudgets", mock.Anything).Return([]domain.Budget{}, nil).Once()
	for _, kind := range []cloud.EntityKind{cloud.KindTransactions, cloud.KindCategories, cloud.KindBudgets} {
		s.store.On("ListDocuments", mock.Anything, "u1", kind, mock.Anything).
			Return([]cloud.Document{}, nil).Once()
	}

	report, err := s.service.SyncAll(context.Background())

	s.Require().NoError(err)
	s.True(report.Failed())
	s.Equal(dto.SyncFailed, report.Outcomes[0].Status)
	s.NotEmpty(report.Outcomes[0].Error)
	// A failed run must not advance the last-sync cursor.
	s.userRepo.AssertNotCalled(s.T(), "UpdateLastSyncAt")
}

func (s *SyncServiceTestSuite) TestUploadDocumentIDsMatchEntityIDs() {
	s.signIn()
	txns := makeTxns(2)

	s.store.On("ListDocumentIDs", mock.Anything, "u1", cloud.KindTransactions).
		Return(map[string]struct{}{}, nil).Once()
	s.codec.On("Seal", "u1", mock.Anything).Return("sealed", nil)
	s.store.On("CommitBatch", mock.Anything, "u1", cloud.KindTransactions,
		mock.MatchedBy(func(docs []cloud.Document) bool {
			if len(docs) != 2 {
				return false
			}
			for i, doc := range docs {
				if doc.ID != strconv.FormatInt(txns[i].TransactionID, 10) {
					return false
				}
				if !doc.CreatedAt.Equal(txns[i].CreatedAt) {
					return false
				}
			}
			return true
		})).Return(nil).Once()

	n, err := s.service.SyncTransactionsToCloud(context.Background(), txns)

	s.Require().NoError(err)
	s.Equal(2, n)
}

func TestSyncServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SyncServiceTestSuite))
}
