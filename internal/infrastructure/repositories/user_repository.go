package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/you/fintrack/domain"
	"gorm.io/gorm"
)

// UserRepositoryImpl implements domain.UserRepository using GORM
type UserRepositoryImpl struct {
	db *gorm.DB
}

// DBUser represents the database model for User (with GORM tags)
type DBUser struct {
	ID           uint           `gorm:"primaryKey"`
	Name         string         `gorm:"size:128"`
	Email        string         `gorm:"uniqueIndex;size:255;not null"`
	Mobile       string         `gorm:"index;size:16"`
	PasswordHash string         `gorm:"column:password;not null"`
	Role         string         `gorm:"index;size:16;not null"`
	Status       string         `gorm:"index;size:16;not null"`
	OTPCode      string         `gorm:"column:otp_code;size:16"`
	OTPPurpose   string         `gorm:"column:otp_purpose;size:16"`
	OTPExpiresAt *time.Time     `gorm:"column:otp_expires_at"`
	OTPAttempts  int            `gorm:"column:otp_attempts;not null;default:0"`
	Permissions  map[string]any `gorm:"serializer:json;type:text"`
	ManagerID    *uint          `gorm:"index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName returns the table name for GORM
func (DBUser) TableName() string {
	return "users"
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) domain.UserRepository {
	return &UserRepositoryImpl{db: db}
}

// Create implements domain.UserRepository
func (r *UserRepositoryImpl) Create(ctx context.Context, user *domain.User) error {
	dbUser := r.domainToDB(user)
	if err := r.db.WithContext(ctx).Create(dbUser).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrUserAlreadyExists
		}
		return err
	}
	user.ID = dbUser.ID
	user.CreatedAt = dbUser.CreatedAt
	user.UpdatedAt = dbUser.UpdatedAt
	return nil
}

// FindByEmail implements domain.UserRepository
func (r *UserRepositoryImpl) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, "email = ?", email)
}

// FindByMobile implements domain.UserRepository. Verified accounts win
// over pending ones sharing the same number.
func (r *UserRepositoryImpl) FindByMobile(ctx context.Context, mobile string) (*domain.User, error) {
	var dbUser DBUser
	err := r.db.WithContext(ctx).
		Where("mobile = ?", mobile).
		Order(fmt.Sprintf("CASE WHEN status = '%s' THEN 0 ELSE 1 END, id", domain.StatusVerified)).
		First(&dbUser).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return r.dbToDomain(&dbUser), nil
}

// FindByID implements domain.UserRepository
func (r *UserRepositoryImpl) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *UserRepositoryImpl) findOne(ctx context.Context, query string, arg interface{}) (*domain.User, error) {
	var dbUser DBUser
	err := r.db.WithContext(ctx).Where(query, arg).First(&dbUser).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return r.dbToDomain(&dbUser), nil
}

// userOwnedColumns are the columns Update writes. Status and the OTP
// columns only change through SetOTP, RecordOTPFailure, ConsumeOTP and
// InvalidateOTP, so a stale copy cannot undo them.
var userOwnedColumns = []string{"name", "mobile", "password", "role", "permissions", "manager_id", "updated_at"}

// Update implements domain.UserRepository
func (r *UserRepositoryImpl) Update(ctx context.Context, user *domain.User) error {
	dbUser := r.domainToDB(user)
	res := r.db.WithContext(ctx).Model(dbUser).Select(userOwnedColumns).Updates(dbUser)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	user.UpdatedAt = dbUser.UpdatedAt
	return nil
}

// Delete removes the user together with every record it owns
func (r *UserRepositoryImpl) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&DBCategory{}).Error; err != nil {
			return fmt.Errorf("delete categories: %w", err)
		}
		if err := tx.Where("user_id = ?", id).Delete(&DBExpense{}).Error; err != nil {
			return fmt.Errorf("delete expenses: %w", err)
		}
		if err := tx.Where("user_id = ?", id).Delete(&DBIncome{}).Error; err != nil {
			return fmt.Errorf("delete incomes: %w", err)
		}
		// detach team members; the manager reference is weak
		if err := tx.Model(&DBUser{}).Where("manager_id = ?", id).Update("manager_id", nil).Error; err != nil {
			return fmt.Errorf("detach team: %w", err)
		}
		res := tx.Delete(&DBUser{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrUserNotFound
		}
		return nil
	})
}

// ListByManager implements domain.UserRepository
func (r *UserRepositoryImpl) ListByManager(ctx context.Context, managerID uint) ([]*domain.User, error) {
	var rows []DBUser
	if err := r.db.WithContext(ctx).Where("manager_id = ?", managerID).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.toDomainList(rows), nil
}

// ListAll implements domain.UserRepository
func (r *UserRepositoryImpl) ListAll(ctx context.Context) ([]*domain.User, error) {
	var rows []DBUser
	if err := r.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.toDomainList(rows), nil
}

// SetOTP overwrites any live OTP and resets the attempt counter
func (r *UserRepositoryImpl) SetOTP(ctx context.Context, userID uint, purpose domain.OTPPurpose, code string, expiresAt time.Time) error {
	expires := expiresAt.UTC()
	res := r.db.WithContext(ctx).Model(&DBUser{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"otp_code":       code,
		"otp_purpose":    string(purpose),
		"otp_expires_at": &expires,
		"otp_attempts":   0,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// RecordOTPFailure bumps the attempt counter as long as code is still the
// live OTP, and returns the counter after the update.
func (r *UserRepositoryImpl) RecordOTPFailure(ctx context.Context, userID uint, code string) (int, error) {
	err := r.db.WithContext(ctx).Model(&DBUser{}).
		Where("id = ? AND otp_code = ?", userID, code).
		UpdateColumn("otp_attempts", gorm.Expr("otp_attempts + 1")).Error
	if err != nil {
		return 0, err
	}

	var attempts int
	err = r.db.WithContext(ctx).Model(&DBUser{}).Where("id = ?", userID).Select("otp_attempts").Scan(&attempts).Error
	return attempts, err
}

// InvalidateOTP clears every OTP field
func (r *UserRepositoryImpl) InvalidateOTP(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Model(&DBUser{}).Where("id = ?", userID).Updates(clearedOTP()).Error
}

// ConsumeOTP is a compare-and-clear: the single conditional UPDATE only
// matches while the code is live, unexpired and under the attempt limit, so
// concurrent requests with the same code cannot both succeed.
func (r *UserRepositoryImpl) ConsumeOTP(ctx context.Context, userID uint, c domain.OTPConsumption) (bool, error) {
	updates := clearedOTP()
	switch c.Purpose {
	case domain.OTPPurposeVerify:
		updates["status"] = string(domain.StatusVerified)
	case domain.OTPPurposeReset:
		if c.PasswordHash == "" {
			return false, fmt.Errorf("reset consumption requires a password hash")
		}
	}
	if c.PasswordHash != "" {
		updates["password"] = c.PasswordHash
	}

	res := r.db.WithContext(ctx).Model(&DBUser{}).
		Where("id = ? AND otp_code = ? AND otp_purpose = ? AND otp_attempts < ? AND otp_expires_at > ?",
			userID, c.Code, string(c.Purpose), c.MaxAttempts, c.Now.UTC()).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func clearedOTP() map[string]interface{} {
	return map[string]interface{}{
		"otp_code":       "",
		"otp_purpose":    "",
		"otp_expires_at": nil,
		"otp_attempts":   0,
	}
}

func (r *UserRepositoryImpl) toDomainList(rows []DBUser) []*domain.User {
	users := make([]*domain.User, 0, len(rows))
	for i := range rows {
		users = append(users, r.dbToDomain(&rows[i]))
	}
	return users
}

// domainToDB converts domain user to database user
func (r *UserRepositoryImpl) domainToDB(user *domain.User) *DBUser {
	return &DBUser{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		Mobile:       user.Mobile,
		PasswordHash: user.PasswordHash,
		Role:         user.Role,
		Status:       string(user.Status),
		OTPCode:      user.OTPCode,
		OTPPurpose:   string(user.OTPPurpose),
		OTPExpiresAt: user.OTPExpiresAt,
		OTPAttempts:  user.OTPAttempts,
		Permissions:  user.Permissions,
		ManagerID:    user.ManagerID,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
}

// dbToDomain converts database user to domain user
func (r *UserRepositoryImpl) dbToDomain(dbUser *DBUser) *domain.User {
	return &domain.User{
		ID:           dbUser.ID,
		Name:         dbUser.Name,
		Email:        dbUser.Email,
		Mobile:       dbUser.Mobile,
		PasswordHash: dbUser.PasswordHash,
		Role:         dbUser.Role,
		Status:       domain.AccountStatus(dbUser.Status),
		OTPCode:      dbUser.OTPCode,
		OTPPurpose:   domain.OTPPurpose(dbUser.OTPPurpose),
		OTPExpiresAt: dbUser.OTPExpiresAt,
		OTPAttempts:  dbUser.OTPAttempts,
		Permissions:  dbUser.Permissions,
		ManagerID:    dbUser.ManagerID,
		CreatedAt:    dbUser.CreatedAt,
		UpdatedAt:    dbUser.UpdatedAt,
	}
}
