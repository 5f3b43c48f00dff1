package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/ledgerops/recon_app/internal/adapters/database/memory"
	"github.com/ledgerops/recon_app/internal/apperrors"
	"github.com/ledgerops/recon_app/internal/core/domain"
	portsrepo "github.com/ledgerops/recon_app/internal/core/ports/repositories"
	"github.com/ledgerops/recon_app/internal/core/services"
)

type MergerTestSuite struct {
	suite.Suite
	ctx    context.Context
	ledger *memory.Ledger
	draft  portsrepo.Draft
	merger *services.TransactionMerger
}

func (suite *MergerTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.ledger = memory.NewLedger()

	var err error
	suite.draft, err = suite.ledger.BeginDraft(suite.ctx)
	suite.Require().NoError(err)
	suite.merger = services.NewTransactionMerger(suite.draft)
}

func (suite *MergerTestSuite) seedPlaceholder(txnID string, date time.Time, bankAmount domain.Amount) *domain.Transaction {
	t := &domain.Transaction{TransactionID: txnID, Date: date}
	t.AddEntry(domain.Entry{EntryID: txnID + "-bank", AccountID: "bank", Amount: bankAmount})
	t.AddEntry(domain.Entry{EntryID: txnID + "-other", AccountID: "unmatched", Amount: -bankAmount})
	suite.Require().NoError(suite.draft.SaveTransaction(suite.ctx, t))
	return t
}

func (suite *MergerTestSuite) TestMergeReplacesPlaceholderLeg() {
	matchedDate := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	newDate := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	target := suite.seedPlaceholder("target", matchedDate, -2999)

	newHalf := &domain.Transaction{TransactionID: "new", Date: newDate}
	newHalf.AddEntry(domain.Entry{EntryID: "anchor", AccountID: "bank", Amount: -2999, UniqueID: "ext-1", Memo: "Seller"})
	newHalf.AddEntry(domain.Entry{EntryID: "counter", AccountID: "purchases", Amount: 2999, Memo: "Seller"})

	cand := &services.MatchCandidate{
		Entry:        target.Entries[0],
		Transaction:  target,
		DistanceDays: 4,
	}

	merged, err := suite.merger.Merge(suite.ctx, newHalf, "anchor", cand)
	suite.Require().NoError(err)

	suite.Equal("target", merged.TransactionID)
	suite.Equal(newDate, merged.Date, "merged transaction keeps the earlier date")
	suite.Require().Len(merged.Entries, 2)
	suite.Equal("target-bank", merged.Entries[0].EntryID)
	suite.Equal("counter", merged.Entries[1].EntryID)
	suite.Equal(domain.Amount(0), merged.Sum())

	// The kept entry inherits the feed's identifying marks.
	suite.Equal("ext-1", merged.Entries[0].UniqueID)
	suite.Equal("Seller", merged.Entries[0].Memo)

	// The newHalf container is gone from the draft.
	_, err = suite.draft.FindTransactionByID(suite.ctx, "new")
	suite.ErrorIs(err, apperrors.ErrNotFound)

	saved, err := suite.draft.FindTransactionByID(suite.ctx, "target")
	suite.Require().NoError(err)
	suite.Len(saved.Entries, 2)
	suite.Equal("counter", saved.Entries[1].EntryID)
}

func (suite *MergerTestSuite) TestMergeKeepsExistingMarks() {
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	target := &domain.Transaction{TransactionID: "target", Date: date}
	target.AddEntry(domain.Entry{EntryID: "t-bank", AccountID: "bank", Amount: -2999, UniqueID: "kept-id", Memo: "kept memo"})
	target.AddEntry(domain.Entry{EntryID: "t-other", AccountID: "unmatched", Amount: 2999})
	suite.Require().NoError(suite.draft.SaveTransaction(suite.ctx, target))

	newHalf := &domain.Transaction{TransactionID: "new", Date: date}
	newHalf.AddEntry(domain.Entry{EntryID: "anchor", AccountID: "bank", Amount: -2999, UniqueID: "ext-1", Memo: "Seller"})
	newHalf.AddEntry(domain.Entry{EntryID: "counter", AccountID: "purchases", Amount: 2999})

	merged, err := suite.merger.Merge(suite.ctx, newHalf, "anchor",
		&services.MatchCandidate{Entry: target.Entries[0], Transaction: target})
	suite.Require().NoError(err)
	suite.Equal("kept-id", merged.Entries[0].UniqueID)
	suite.Equal("kept memo", merged.Entries[0].Memo)
}

func (suite *MergerTestSuite) TestMergeConflictLeavesDraftUntouched() {
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	target := &domain.Transaction{TransactionID: "target", Date: date}
	target.AddEntry(domain.Entry{EntryID: "t1", AccountID: "bank", Amount: -2999})
	target.AddEntry(domain.Entry{EntryID: "t2", AccountID: "purchases", Amount: 2500})
	target.AddEntry(domain.Entry{EntryID: "t3", AccountID: "postage", Amount: 499})
	suite.Require().NoError(suite.draft.SaveTransaction(suite.ctx, target))

	newHalf := &domain.Transaction{TransactionID: "new", Date: date}
	newHalf.AddEntry(domain.Entry{EntryID: "anchor", AccountID: "bank", Amount: -2999})
	newHalf.AddEntry(domain.Entry{EntryID: "counter", AccountID: "purchases", Amount: 2999})
	suite.Require().NoError(suite.draft.SaveTransaction(suite.ctx, newHalf))

	_, err := suite.merger.Merge(suite.ctx, newHalf, "anchor",
		&services.MatchCandidate{Entry: target.Entries[0], Transaction: target})
	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrMergeConflict)

	// Both transactions still stand for manual resolution.
	kept, err := suite.draft.FindTransactionByID(suite.ctx, "target")
	suite.Require().NoError(err)
	suite.Len(kept.Entries, 3)
	still, err := suite.draft.FindTransactionByID(suite.ctx, "new")
	suite.Require().NoError(err)
	suite.Len(still.Entries, 2)
}

func (suite *MergerTestSuite) TestMergeUnknownAnchorFails() {
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	target := suite.seedPlaceholder("target", date, -2999)

	newHalf := &domain.Transaction{TransactionID: "new", Date: date}
	newHalf.AddEntry(domain.Entry{EntryID: "anchor", AccountID: "bank", Amount: -2999})
	newHalf.AddEntry(domain.Entry{EntryID: "counter", AccountID: "purchases", Amount: 2999})

	_, err := suite.merger.Merge(suite.ctx, newHalf, "nope",
		&services.MatchCandidate{Entry: target.Entries[0], Transaction: target})
	suite.Require().Error(err)
	suite.Contains(err.Error(), "anchor entry")
}

func TestMergerTestSuite(t *testing.T) {
	suite.Run(t, new(MergerTestSuite))
}
