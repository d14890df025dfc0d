package infra

// pdf.go — store settlement statement rendering with go-pdf/fpdf.
// One A4 page series: store header, entry table (date, run, type, amount,
// discount), running balance column, bold closing balance.
// The output file is saved to storagePath/statement_{storeID}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"

	"marketrunner/internal/model"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// GenerateStatementPDF renders a store's ledger statement and returns the
// absolute path to the generated file. Entries are expected oldest-first.
func GenerateStatementPDF(store *model.Store, entries []model.LedgerEntry, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("statement_%s.pdf", store.ID)
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, "Settlement Statement", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 6, store.Name, "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// ── Table header ──────────────────────────────────────────────────────────
	colDate := contentW * 0.18
	colRun := contentW * 0.14
	colType := contentW * 0.14
	colAmount := contentW * 0.18
	colDiscount := contentW * 0.16
	colBalance := contentW * 0.20

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(colDate, 6, "Date", "B", 0, "L", false, 0, "")
	pdf.CellFormat(colRun, 6, "Run", "B", 0, "C", false, 0, "")
	pdf.CellFormat(colType, 6, "Type", "B", 0, "C", false, 0, "")
	pdf.CellFormat(colAmount, 6, "Amount", "B", 0, "R", false, 0, "")
	pdf.CellFormat(colDiscount, 6, "Discount", "B", 0, "R", false, 0, "")
	pdf.CellFormat(colBalance, 6, "Balance", "B", 1, "R", false, 0, "")

	// ── Rows with running balance ─────────────────────────────────────────────
	balance := decimal.Zero
	pdf.SetFont("Helvetica", "", 9)
	for _, e := range entries {
		net := e.Amount.Sub(e.Discount)
		if e.TransactionType == model.LedgerCredit {
			balance = balance.Add(net)
		} else {
			balance = balance.Sub(net)
		}

		runLabel := "-"
		if e.RunNumber != nil {
			runLabel = fmt.Sprintf("#%d", *e.RunNumber)
		}
		pdf.CellFormat(colDate, 5, e.Date.Format("02/01/2006"), "", 0, "L", false, 0, "")
		pdf.CellFormat(colRun, 5, runLabel, "", 0, "C", false, 0, "")
		pdf.CellFormat(colType, 5, e.TransactionType, "", 0, "C", false, 0, "")
		pdf.CellFormat(colAmount, 5, "$"+e.Amount.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(colDiscount, 5, "$"+e.Discount.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(colBalance, 5, "$"+balance.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.Ln(2)

	// ── Closing balance ───────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(colDate+colRun+colType+colAmount+colDiscount, 7, "CLOSING BALANCE:", "", 0, "L", false, 0, "")
	pdf.CellFormat(colBalance, 7, "$"+balance.StringFixed(2), "", 1, "R", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}

	return filePath, nil
}
