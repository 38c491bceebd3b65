package repositories

import (
	"context"
	"errors"

	"github.com/you/fintrack/domain"
	"gorm.io/gorm"
)

// CategoryRepositoryImpl implements domain.CategoryRepository using GORM
type CategoryRepositoryImpl struct {
	db *gorm.DB
}

// DBCategory stores both ordered lists of a user in one row
type DBCategory struct {
	ID      uint     `gorm:"primaryKey"`
	UserID  uint     `gorm:"uniqueIndex;not null"`
	Income  []string `gorm:"serializer:json;type:text"`
	Expense []string `gorm:"serializer:json;type:text"`
}

// TableName returns the table name for GORM
func (DBCategory) TableName() string {
	return "categories"
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *gorm.DB) domain.CategoryRepository {
	return &CategoryRepositoryImpl{db: db}
}

// Create implements domain.CategoryRepository
func (r *CategoryRepositoryImpl) Create(ctx context.Context, set *domain.CategorySet) error {
	row := &DBCategory{UserID: set.UserID, Income: set.Income, Expense: set.Expense}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrCategoryExists
		}
		return err
	}
	return nil
}

// FindByUser implements domain.CategoryRepository
func (r *CategoryRepositoryImpl) FindByUser(ctx context.Context, userID uint) (*domain.CategorySet, error) {
	var row DBCategory
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrResourceNotFound
		}
		return nil, err
	}
	return &domain.CategorySet{
		UserID:  row.UserID,
		Income:  nonNil(row.Income),
		Expense: nonNil(row.Expense),
	}, nil
}

// Save replaces both lists of the user
func (r *CategoryRepositoryImpl) Save(ctx context.Context, set *domain.CategorySet) error {
	res := r.db.WithContext(ctx).Model(&DBCategory{}).
		Where("user_id = ?", set.UserID).
		Select("income", "expense").
		Updates(&DBCategory{Income: nonNil(set.Income), Expense: nonNil(set.Expense)})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrResourceNotFound
	}
	return nil
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
