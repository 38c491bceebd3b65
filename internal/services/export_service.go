package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"github.com/you/fintrack/domain"
)

// Export formats
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

var exportHeader = []string{"Date", "Category", "Amount", "Method", "Note"}

// ExportServiceImpl implements domain.ExportService
type ExportServiceImpl struct {
	repos         map[domain.TxKind]domain.TransactionRepository
	permissionSvc domain.PermissionService
	guard         ownerGuard
}

// NewExportService creates a new export service
func NewExportService(
	expenses, incomes domain.TransactionRepository,
	userRepo domain.UserRepository,
	permissionSvc domain.PermissionService,
) domain.ExportService {
	return &ExportServiceImpl{
		repos: map[domain.TxKind]domain.TransactionRepository{
			domain.KindExpense: expenses,
			domain.KindIncome:  incomes,
		},
		permissionSvc: permissionSvc,
		guard:         ownerGuard{userRepo: userRepo},
	}
}

// Export implements domain.ExportService. Rows are written oldest first.
func (s *ExportServiceImpl) Export(ctx context.Context, actor domain.Principal, ownerID uint, kind domain.TxKind, format string, w io.Writer) error {
	repo, ok := s.repos[kind]
	if !ok {
		return domain.NewValidationError("type", "must be expense or income")
	}
	format = strings.ToLower(strings.TrimSpace(format))
	if format != FormatCSV && format != FormatXLSX {
		return domain.NewValidationError("format", "must be csv or xlsx")
	}

	ownerID = resolveOwner(actor, ownerID)
	if err := s.guard.authorize(ctx, actor, ownerID); err != nil {
		return err
	}
	if err := s.permissionSvc.Require(ctx, actor, domain.PermCanExport); err != nil {
		return err
	}

	rows, err := repo.ListAll(ctx, ownerID, nil, nil)
	if err != nil {
		return fmt.Errorf("failed to load %ss: %w", kind, err)
	}

	if format == FormatCSV {
		return writeCSV(w, rows)
	}
	return writeXLSX(w, kind, rows)
}

func exportRecord(tx *domain.Transaction) []string {
	return []string{
		tx.Date.Format(domain.DateLayout),
		tx.Category,
		tx.Amount.StringFixed(2),
		string(tx.Method),
		tx.Note,
	}
}

func writeCSV(w io.Writer, rows []*domain.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, tx := range rows {
		if err := cw.Write(exportRecord(tx)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeXLSX(w io.Writer, kind domain.TxKind, rows []*domain.Transaction) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Expenses"
	if kind == domain.KindIncome {
		sheet = "Incomes"
	}
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	if err := f.SetSheetRow(sheet, "A1", &exportHeader); err != nil {
		return err
	}
	for i, tx := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		amount, _ := tx.Amount.Round(2).Float64()
		row := []interface{}{
			tx.Date.Format(domain.DateLayout),
			tx.Category,
			amount,
			string(tx.Method),
			tx.Note,
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(sheet, "A", "E", 16); err != nil {
		return err
	}
	_, err := f.WriteTo(w)
	return err
}
