package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/you/fintrack/domain"
)

// AuthServiceImpl implements domain.AuthService
type AuthServiceImpl struct {
	userRepo     domain.UserRepository
	categoryRepo domain.CategoryRepository
	passwordSvc  domain.PasswordService
	tokenSvc     domain.TokenService
	otpSvc       domain.OTPService
	auditLogger  domain.AuditLogger
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo domain.UserRepository,
	categoryRepo domain.CategoryRepository,
	passwordSvc domain.PasswordService,
	tokenSvc domain.TokenService,
	otpSvc domain.OTPService,
	auditLogger domain.AuditLogger,
) domain.AuthService {
	return &AuthServiceImpl{
		userRepo:     userRepo,
		categoryRepo: categoryRepo,
		passwordSvc:  passwordSvc,
		tokenSvc:     tokenSvc,
		otpSvc:       otpSvc,
		auditLogger:  auditLogger,
	}
}

// Register implements domain.AuthService. A pending account with the same
// email is refreshed and gets a new code instead of failing.
func (s *AuthServiceImpl) Register(ctx context.Context, name, email, mobile, password string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = domain.NormalizeEmail(email)
	mobile = strings.TrimSpace(mobile)

	if err := domain.ValidateRegistration(name, email, mobile, password); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.FindByEmail(ctx, email)
	switch {
	case err == nil && existing.IsVerified():
		return nil, domain.ErrUserAlreadyExists
	case err != nil && !errors.Is(err, domain.ErrUserNotFound):
		return nil, fmt.Errorf("failed to look up user: %w", err)
	case err != nil:
		existing = nil
	}

	holder, err := s.userRepo.FindByMobile(ctx, mobile)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up mobile: %w", err)
	}
	if err == nil && holder.IsVerified() && (existing == nil || holder.ID != existing.ID) {
		return nil, domain.ErrMobileAlreadyInUse
	}

	hashedPassword, err := s.passwordSvc.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := existing
	if user != nil {
		if ok, wait, err := s.otpSvc.CanResend(ctx, email); err == nil && !ok {
			return nil, fmt.Errorf("%w: retry in %d seconds", domain.ErrOTPResendLimit, wait)
		}
		user.Name = name
		user.Mobile = mobile
		user.PasswordHash = hashedPassword
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to update pending user: %w", err)
		}
	} else {
		user = &domain.User{
			Name:         name,
			Email:        email,
			Mobile:       mobile,
			PasswordHash: hashedPassword,
			Role:         domain.RoleUser,
			Status:       domain.StatusPending,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			if errors.Is(err, domain.ErrUserAlreadyExists) {
				return nil, err
			}
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		if err := s.categoryRepo.Create(ctx, domain.DefaultCategories(user.ID)); err != nil && !errors.Is(err, domain.ErrCategoryExists) {
			// categories are seeded again on first access
			log.Printf("auth: failed to seed categories for user_id=%d: %v", user.ID, err)
		}
	}

	if _, err := s.otpSvc.Issue(ctx, user, domain.OTPPurposeVerify, domain.ChannelEmail); err != nil {
		return nil, err
	}

	recordAudit(ctx, s.auditLogger, domain.NewAuditEvent(domain.UserRegistrationEvent, user.ID).WithEmail(email))
	return user, nil
}

// VerifyOTP implements domain.AuthService
func (s *AuthServiceImpl) VerifyOTP(ctx context.Context, email, code string) (*domain.AuthResult, error) {
	email = domain.NormalizeEmail(email)
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return nil, domain.NewValidationError("", "email and otp are required")
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user.IsVerified() {
		return nil, domain.ErrAlreadyVerified
	}

	if err := s.otpSvc.Check(ctx, user, domain.OTPPurposeVerify, code, ""); err != nil {
		recordAudit(ctx, s.auditLogger, domain.NewAuditEvent(domain.OTPFailureEvent, user.ID).
			WithEmail(email).
			WithMetadata("attempts", user.OTPAttempts).
			WithError(err))
		return nil, err
	}

	recordAudit(ctx, s.auditLogger, domain.NewAuditEvent(domain.OTPVerifiedEvent, user.ID).WithEmail(email))
	return s.issueToken(user)
}

// ResendOTP implements domain.AuthService. Unknown emails get the same
// answer as a successful resend.
func (s *AuthServiceImpl) ResendOTP(ctx context.Context, email string) error {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return domain.NewValidationError("email", "is required")
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		recordAudit(ctx, s.auditLogger, domain.NewAuditEvent(domain.OTPResendIgnored, 0).WithEmail(email))
		return nil
	}
	if err != nil {
		return err
	}
	if user.IsVerified() {
		return domain.ErrAlreadyVerified
	}

	ok, wait, err := s.otpSvc.CanResend(ctx, email)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: retry in %d seconds", domain.ErrOTPResendLimit, wait)
	}

	if _, err := s.otpSvc.Issue(ctx, user, domain.OTPPurposeVerify, domain.ChannelEmail); err != nil {
		return err
	}
	recordAudit(ctx, s.auditLogger, domain.NewAuditEvent(domain.OTPIssuedEvent, user.ID).WithEmail(email).WithMetadata("purpose", domain.OTPPurposeVerify))
	return nil
}

// Login implements domain.AuthService. Unknown accounts and wrong
// passwords fail the same way.
func (s *AuthServiceImpl) Login(ctx context.Context, identifier, password string) (*domain.AuthResult, error) {
	if strings.TrimSpace(identifier) == "" || password == "" {
		return nil, domain.NewValidationError("", "identifier and password are required")
	}

	user, _, err := s.lookup(ctx, identifier)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.passwordSvc.Verify(user.PasswordHash, password) {
		recordAudit(ctx, s.auditLogger, domain.NewAuditEvent(domain.UserLoginFailureEvent, user.ID).WithError(domain.ErrInvalidCredentials))
		return nil, domain.ErrInvalidCredentials
	}

	if !user.IsVerified() {
		return nil, domain.ErrAccountNotVerified
	}

	recordAudit(ctx, s.auditLogger, domain.NewAuditEvent(domain.UserLoginEvent, user.ID))
	return s.issueToken(user)
}

// RequestPasswordReset implements domain.AuthService. The caller always
// gets nil so the response never reveals whether the account exists.
func (s *AuthServiceImpl) RequestPasswordReset(ctx context.Context, identifier string) error {
	user, channel, err := s.lookup(ctx, identifier)
	if err != nil {
		recordAudit(ctx, s.auditLogger, domain.NewAuditEvent(domain.PasswordResetIgnored, 0).
			WithMetadata("identifier", strings.TrimSpace(identifier)).
			WithError(err))
		return nil
	}
	if !user.IsVerified() {
		recordAudit(ctx, s.auditLogger, domain.NewAuditEvent(domain.PasswordResetIgnored, user.ID).WithMetadata("reason", "pending"))
		return nil
	}

	if ok, _, err := s.otpSvc.CanResend(ctx, user.Email); err == nil && !ok {
		recordAudit(ctx, s.auditLogger, domain.NewAuditEvent(domain.PasswordResetIgnored, user.ID).WithMetadata("reason", "throttled"))
		return nil
	}

	if _, err := s.otpSvc.Issue(ctx, user, domain.OTPPurposeReset, channel); err != nil {
		recordAudit(ctx, s.auditLogger, domain.NewAuditEvent(domain.PasswordResetRequest, user.ID).WithError(err))
		return nil
	}

	recordAudit(ctx, s.auditLogger, domain.NewAuditEvent(domain.PasswordResetRequest, user.ID).WithMetadata("channel", channel))
	return nil
}

// ConfirmPasswordReset implements domain.AuthService
func (s *AuthServiceImpl) ConfirmPasswordReset(ctx context.Context, identifier, code, newPassword string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return domain.NewValidationError("otp", "is required")
	}
	if err := domain.ValidatePassword("newPassword", newPassword); err != nil {
		return err
	}

	user, _, err := s.lookup(ctx, identifier)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrOTPInvalid
		}
		return err
	}

	hashedPassword, err := s.passwordSvc.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.otpSvc.Check(ctx, user, domain.OTPPurposeReset, code, hashedPassword); err != nil {
		recordAudit(ctx, s.auditLogger, domain.NewAuditEvent(domain.OTPFailureEvent, user.ID).
			WithMetadata("purpose", domain.OTPPurposeReset).
			WithError(err))
		return err
	}

	recordAudit(ctx, s.auditLogger, domain.NewAuditEvent(domain.PasswordResetCompleted, user.ID))
	return nil
}

// GetUserProfile implements domain.AuthService
func (s *AuthServiceImpl) GetUserProfile(ctx context.Context, userID uint) (*domain.User, error) {
	return s.userRepo.FindByID(ctx, userID)
}

// UpdateProfile implements domain.AuthService
func (s *AuthServiceImpl) UpdateProfile(ctx context.Context, userID uint, name, mobile string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	mobile = strings.TrimSpace(mobile)
	if name == "" {
		return nil, domain.NewValidationError("name", "is required")
	}
	if err := domain.ValidateMobile(mobile); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if mobile != user.Mobile {
		holder, err := s.userRepo.FindByMobile(ctx, mobile)
		if err == nil && holder.ID != user.ID && holder.IsVerified() {
			return nil, domain.ErrMobileAlreadyInUse
		}
		if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("failed to look up mobile: %w", err)
		}
	}

	user.Name = name
	user.Mobile = mobile
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

// ChangePassword implements domain.AuthService
func (s *AuthServiceImpl) ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error {
	if err := domain.ValidatePassword("newPassword", newPassword); err != nil {
		return err
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !s.passwordSvc.Verify(user.PasswordHash, oldPassword) {
		return domain.ErrInvalidCredentials
	}

	hashedPassword, err := s.passwordSvc.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = hashedPassword
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	recordAudit(ctx, s.auditLogger, domain.NewAuditEvent(domain.PasswordChangedEvent, user.ID))
	return nil
}

// lookup resolves an email or a 10 digit mobile and reports which channel
// the identifier belongs to
func (s *AuthServiceImpl) lookup(ctx context.Context, identifier string) (*domain.User, domain.Channel, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, "", domain.ErrUserNotFound
	}
	if strings.Contains(identifier, "@") {
		user, err := s.userRepo.FindByEmail(ctx, domain.NormalizeEmail(identifier))
		return user, domain.ChannelEmail, err
	}
	if domain.ValidateMobile(identifier) != nil {
		return nil, "", domain.ErrUserNotFound
	}
	user, err := s.userRepo.FindByMobile(ctx, identifier)
	return user, domain.ChannelSMS, err
}

func (s *AuthServiceImpl) issueToken(user *domain.User) (*domain.AuthResult, error) {
	token, err := s.tokenSvc.GenerateAccessToken(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	return &domain.AuthResult{
		User:      user,
		Token:     token,
		ExpiresIn: int64(s.tokenSvc.TTL().Seconds()),
	}, nil
}
