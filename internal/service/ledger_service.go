package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketrunner/internal/dto"
	"marketrunner/internal/model"
	"marketrunner/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type LedgerService interface {
	List(ctx context.Context, filter dto.LedgerFilter) ([]model.LedgerEntry, int64, error)
	ListByStore(ctx context.Context, storeID uuid.UUID) ([]model.LedgerEntry, error)

	// StoreBalance returns Σ credits − Σ debits for a store, each net of
	// discount.
	StoreBalance(ctx context.Context, storeID uuid.UUID) (decimal.Decimal, error)

	// Amend replaces a finalized confirmation's net amount and updates the
	// linked ledger entry in place, recording the prior value in its notes.
	Amend(ctx context.Context, confirmationID uuid.UUID, newAmount decimal.Decimal) error
}

type ledgerService struct {
	ledgerRepo       repository.LedgerRepository
	confirmationRepo repository.ConfirmationRepository
}

func NewLedgerService(ledgerRepo repository.LedgerRepository, confirmationRepo repository.ConfirmationRepository) LedgerService {
	return &ledgerService{ledgerRepo: ledgerRepo, confirmationRepo: confirmationRepo}
}

func (s *ledgerService) List(ctx context.Context, filter dto.LedgerFilter) ([]model.LedgerEntry, int64, error) {
	return s.ledgerRepo.List(ctx, filter)
}

func (s *ledgerService) ListByStore(ctx context.Context, storeID uuid.UUID) ([]model.LedgerEntry, error) {
	return s.ledgerRepo.ListByStore(ctx, storeID)
}

func (s *ledgerService) StoreBalance(ctx context.Context, storeID uuid.UUID) (decimal.Decimal, error) {
	return s.ledgerRepo.StoreBalance(ctx, storeID)
}

func (s *ledgerService) Amend(ctx context.Context, confirmationID uuid.UUID, newAmount decimal.Decimal) error {
	confirmation, err := s.confirmationRepo.FindByID(ctx, confirmationID)
	if err != nil {
		return errOf(KindUnknownReference, "confirmation %s not found", confirmationID)
	}
	if confirmation.TotalAmount.Equal(newAmount) {
		return nil
	}

	return runTx(ctx, s.ledgerRepo.DB(), func(tx *gorm.DB) error {
		if err := s.confirmationRepo.UpdateAmountTx(tx, confirmationID, newAmount); err != nil {
			return err
		}

		entry, err := s.ledgerRepo.FindByConfirmationTx(tx, confirmationID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			// The visit settled at zero, so no entry exists yet; a non-zero
			// amendment creates the missing one.
			if newAmount.IsZero() {
				return nil
			}
			entry = &model.LedgerEntry{
				StoreID:           confirmation.StoreID,
				TransactionType:   signType(newAmount),
				Amount:            newAmount.Abs(),
				Date:              time.Now().UTC(),
				RunConfirmationID: &confirmation.ID,
				Notes:             "created by amendment, prior net 0.00",
			}
			return s.ledgerRepo.CreateTx(tx, entry)
		}

		priorNet := entry.Amount
		if entry.TransactionType == model.LedgerCredit {
			priorNet = priorNet.Neg()
		}

		entry.TransactionType = signType(newAmount)
		entry.Amount = newAmount.Abs()
		note := fmt.Sprintf("amended, prior net %s", priorNet.StringFixed(2))
		if entry.Notes != "" {
			entry.Notes = entry.Notes + "; " + note
		} else {
			entry.Notes = note
		}
		if err := s.ledgerRepo.UpdateTx(tx, entry); err != nil {
			return err
		}

		log.Info().
			Str("confirmation_id", confirmationID.String()).
			Str("prior_net", priorNet.StringFixed(2)).
			Str("new_net", newAmount.StringFixed(2)).
			Msg("ledger entry amended")
		return nil
	})
}

// signType maps a signed net amount to the ledger entry type: the store owes
// the operator on a positive net, the operator owes the store on a negative.
func signType(net decimal.Decimal) string {
	if net.IsNegative() {
		return model.LedgerCredit
	}
	return model.LedgerDebit
}
