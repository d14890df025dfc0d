package infra

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"marketrunner/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildStatementEntries(storeID uuid.UUID) []model.LedgerEntry {
	n1, n2 := 12, 13
	return []model.LedgerEntry{
		{
			StoreID: storeID, TransactionType: model.LedgerDebit,
			Amount: decimal.NewFromInt(250), Discount: decimal.NewFromInt(25),
			Date: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), RunNumber: &n1,
		},
		{
			StoreID: storeID, TransactionType: model.LedgerCredit,
			Amount: decimal.NewFromInt(40),
			Date:   time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC), RunNumber: &n2,
		},
	}
}

func TestGenerateStatementPDF(t *testing.T) {
	tmpDir := t.TempDir()
	store := &model.Store{ID: uuid.New(), Name: "Store A"}

	pdfPath, err := GenerateStatementPDF(store, buildStatementEntries(store.ID), tmpDir)
	require.NoError(t, err)

	info, statErr := os.Stat(pdfPath)
	require.NoError(t, statErr)
	assert.Greater(t, info.Size(), int64(100), "PDF should have content > 100 bytes")
	assert.Equal(t, fmt.Sprintf("statement_%s.pdf", store.ID), filepath.Base(pdfPath))
}

func TestGenerateStatementPDFEmptyLedger(t *testing.T) {
	tmpDir := t.TempDir()
	store := &model.Store{ID: uuid.New(), Name: "Store B"}

	pdfPath, err := GenerateStatementPDF(store, nil, tmpDir)
	require.NoError(t, err)
	_, statErr := os.Stat(pdfPath)
	assert.NoError(t, statErr)
}

func TestGenerateStatementPDFCreatesStorageDir(t *testing.T) {
	tmpDir := filepath.Join(t.TempDir(), "nested", "statements")
	store := &model.Store{ID: uuid.New(), Name: "Store C"}

	_, err := GenerateStatementPDF(store, buildStatementEntries(store.ID), tmpDir)
	require.NoError(t, err)
}
