package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/you/fintrack/domain"
	"gorm.io/gorm"
)

// TransactionRow is the shared column set of the expenses and incomes tables
type TransactionRow struct {
	ID        uint            `gorm:"primaryKey"`
	UserID    uint            `gorm:"index;not null"`
	Amount    decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Category  string          `gorm:"size:32;index;not null"`
	Note      string          `gorm:"size:255"`
	Date      time.Time       `gorm:"column:occurred_on;index;not null"`
	Method    string          `gorm:"size:8;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DBExpense is the migration model of the expenses table
type DBExpense struct {
	TransactionRow
}

// TableName returns the table name for GORM
func (DBExpense) TableName() string {
	return domain.KindExpense.Table()
}

// DBIncome is the migration model of the incomes table
type DBIncome struct {
	TransactionRow
}

// TableName returns the table name for GORM
func (DBIncome) TableName() string {
	return domain.KindIncome.Table()
}

// TransactionRepositoryImpl implements domain.TransactionRepository for one kind
type TransactionRepositoryImpl struct {
	db   *gorm.DB
	kind domain.TxKind
}

// NewTransactionRepository creates a repository bound to the table of kind
func NewTransactionRepository(db *gorm.DB, kind domain.TxKind) domain.TransactionRepository {
	return &TransactionRepositoryImpl{db: db, kind: kind}
}

// Kind implements domain.TransactionRepository
func (r *TransactionRepositoryImpl) Kind() domain.TxKind {
	return r.kind
}

func (r *TransactionRepositoryImpl) table(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Table(r.kind.Table())
}

// Create implements domain.TransactionRepository
func (r *TransactionRepositoryImpl) Create(ctx context.Context, tx *domain.Transaction) error {
	row := r.domainToDB(tx)
	if err := r.table(ctx).Create(row).Error; err != nil {
		return err
	}
	tx.ID = row.ID
	tx.Kind = r.kind
	tx.CreatedAt = row.CreatedAt
	tx.UpdatedAt = row.UpdatedAt
	return nil
}

// FindByID implements domain.TransactionRepository
func (r *TransactionRepositoryImpl) FindByID(ctx context.Context, id uint) (*domain.Transaction, error) {
	var row TransactionRow
	if err := r.table(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrResourceNotFound
		}
		return nil, err
	}
	return r.dbToDomain(&row), nil
}

// Update writes the mutable columns of tx
func (r *TransactionRepositoryImpl) Update(ctx context.Context, tx *domain.Transaction) error {
	now := time.Now()
	res := r.table(ctx).Where("id = ?", tx.ID).Updates(map[string]interface{}{
		"amount":      tx.Amount,
		"category":    tx.Category,
		"note":        tx.Note,
		"occurred_on": tx.Date.UTC(),
		"method":      string(tx.Method),
		"updated_at":  now,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrResourceNotFound
	}
	tx.UpdatedAt = now
	return nil
}

// Delete implements domain.TransactionRepository
func (r *TransactionRepositoryImpl) Delete(ctx context.Context, id uint) error {
	res := r.table(ctx).Where("id = ?", id).Delete(&TransactionRow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrResourceNotFound
	}
	return nil
}

// List returns one page of the owner's transactions, newest first
func (r *TransactionRepositoryImpl) List(ctx context.Context, userID uint, f domain.TransactionFilter) ([]*domain.Transaction, int64, error) {
	q := r.filtered(ctx, userID, f.From, f.To)
	if f.Category != "" {
		q = q.Where("LOWER(category) = LOWER(?)", f.Category)
	}
	if f.Method != "" {
		q = q.Where("method = ?", string(f.Method))
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []TransactionRow
	err := q.Order("occurred_on DESC, id DESC").
		Offset((f.Page - 1) * f.PageSize).
		Limit(f.PageSize).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return r.toDomainList(rows), total, nil
}

// ListAll returns every transaction of the owner in the range, oldest first
func (r *TransactionRepositoryImpl) ListAll(ctx context.Context, userID uint, from, to *time.Time) ([]*domain.Transaction, error) {
	var rows []TransactionRow
	if err := r.filtered(ctx, userID, from, to).Order("occurred_on, id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.toDomainList(rows), nil
}

func (r *TransactionRepositoryImpl) filtered(ctx context.Context, userID uint, from, to *time.Time) *gorm.DB {
	q := r.table(ctx).Where("user_id = ?", userID)
	if from != nil {
		q = q.Where("occurred_on >= ?", from.UTC())
	}
	if to != nil {
		q = q.Where("occurred_on <= ?", to.UTC())
	}
	return q
}

func (r *TransactionRepositoryImpl) toDomainList(rows []TransactionRow) []*domain.Transaction {
	out := make([]*domain.Transaction, 0, len(rows))
	for i := range rows {
		out = append(out, r.dbToDomain(&rows[i]))
	}
	return out
}

func (r *TransactionRepositoryImpl) domainToDB(tx *domain.Transaction) *TransactionRow {
	return &TransactionRow{
		ID:        tx.ID,
		UserID:    tx.UserID,
		Amount:    tx.Amount,
		Category:  tx.Category,
		Note:      tx.Note,
		Date:      tx.Date.UTC(),
		Method:    string(tx.Method),
		CreatedAt: tx.CreatedAt,
		UpdatedAt: tx.UpdatedAt,
	}
}

func (r *TransactionRepositoryImpl) dbToDomain(row *TransactionRow) *domain.Transaction {
	return &domain.Transaction{
		ID:        row.ID,
		Kind:      r.kind,
		UserID:    row.UserID,
		Amount:    row.Amount,
		Category:  row.Category,
		Note:      row.Note,
		Date:      row.Date.UTC(),
		Method:    domain.PaymentMethod(row.Method),
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}
