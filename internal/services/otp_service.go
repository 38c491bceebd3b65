package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"log"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/you/fintrack/domain"
)

// OTPServiceImpl implements domain.OTPService. Codes live on the user row;
// Redis only carries the resend throttle.
type OTPServiceImpl struct {
	notificationSvc domain.NotificationService
	userRepo        domain.UserRepository
	redisClient     *redis.Client
	config          OTPConfig
	now             func() time.Time
}

type OTPConfig struct {
	Length       int
	TTL          time.Duration
	MaxAttempts  int
	ResendWindow time.Duration
}

// NewOTPService creates a new OTP service. redisClient may be nil, which
// disables the resend throttle.
func NewOTPService(notificationSvc domain.NotificationService, userRepo domain.UserRepository, redisClient *redis.Client, config OTPConfig) domain.OTPService {
	if config.Length <= 0 {
		config.Length = 6
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 5
	}
	if config.TTL <= 0 {
		config.TTL = 10 * time.Minute
	}
	return &OTPServiceImpl{
		notificationSvc: notificationSvc,
		userRepo:        userRepo,
		redisClient:     redisClient,
		config:          config,
		now:             time.Now,
	}
}

func resendKey(email string) string {
	return fmt.Sprintf("otp:res:%s", email)
}

// Issue implements domain.OTPService. Any previous code of the user is
// overwritten, so at most one OTP is live at a time.
func (s *OTPServiceImpl) Issue(ctx context.Context, user *domain.User, purpose domain.OTPPurpose, channel domain.Channel) (*domain.OTPIssue, error) {
	code, err := s.generateSecureCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate OTP code: %w", err)
	}

	expiresAt := s.now().Add(s.config.TTL)
	if err := s.userRepo.SetOTP(ctx, user.ID, purpose, code, expiresAt); err != nil {
		return nil, fmt.Errorf("failed to store OTP: %w", err)
	}

	if s.redisClient != nil && s.config.ResendWindow > 0 {
		if err := s.redisClient.Set(ctx, resendKey(user.Email), 1, s.config.ResendWindow).Err(); err != nil {
			// the code is already stored; a missing throttle only allows an early resend
			log.Printf("otp: failed to set resend throttle for user_id=%d: %v", user.ID, err)
		}
	}

	if err := s.deliver(user, purpose, channel, code); err != nil {
		if cleanupErr := s.userRepo.InvalidateOTP(ctx, user.ID); cleanupErr != nil {
			log.Printf("otp: failed to invalidate undelivered code for user_id=%d: %v", user.ID, cleanupErr)
		}
		if s.redisClient != nil {
			s.redisClient.Del(ctx, resendKey(user.Email))
		}
		return nil, fmt.Errorf("failed to send OTP: %w", err)
	}

	user.OTPCode = code
	user.OTPPurpose = purpose
	user.OTPExpiresAt = &expiresAt
	user.OTPAttempts = 0

	return &domain.OTPIssue{
		UserID:    user.ID,
		Purpose:   purpose,
		Code:      code,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *OTPServiceImpl) deliver(user *domain.User, purpose domain.OTPPurpose, channel domain.Channel, code string) error {
	minutes := int(s.config.TTL.Minutes())
	subject := "Verify your account"
	message := fmt.Sprintf("Your verification code is: %s. Valid for %d minutes.", code, minutes)
	if purpose == domain.OTPPurposeReset {
		subject = "Reset your password"
		message = fmt.Sprintf("Your password reset code is: %s. Valid for %d minutes.", code, minutes)
	}

	if channel == domain.ChannelSMS && user.Mobile != "" {
		return s.notificationSvc.SendSMS(user.Mobile, message)
	}
	return s.notificationSvc.SendEmail(user.Email, subject, message)
}

// Check implements domain.OTPService. user is the state loaded by the
// caller; the final consume re-checks everything in one UPDATE.
func (s *OTPServiceImpl) Check(ctx context.Context, user *domain.User, purpose domain.OTPPurpose, code, newPasswordHash string) error {
	if !user.HasLiveOTP(purpose) {
		return domain.ErrOTPNotPending
	}

	// an expired code reports Expired even when its attempts are used up
	now := s.now()
	if !now.Before(*user.OTPExpiresAt) {
		return domain.ErrOTPExpired
	}
	if user.OTPAttempts >= s.config.MaxAttempts {
		return domain.ErrOTPMaxAttempts
	}

	if subtle.ConstantTimeCompare([]byte(user.OTPCode), []byte(code)) != 1 {
		attempts, err := s.userRepo.RecordOTPFailure(ctx, user.ID, user.OTPCode)
		if err != nil {
			return fmt.Errorf("failed to record OTP attempt: %w", err)
		}
		user.OTPAttempts = attempts
		return domain.ErrOTPInvalid
	}

	ok, err := s.userRepo.ConsumeOTP(ctx, user.ID, domain.OTPConsumption{
		Purpose:      purpose,
		Code:         code,
		MaxAttempts:  s.config.MaxAttempts,
		Now:          now,
		PasswordHash: newPasswordHash,
	})
	if err != nil {
		return fmt.Errorf("failed to consume OTP: %w", err)
	}
	if !ok {
		// another request consumed or replaced the code first
		return domain.ErrOTPNotPending
	}

	user.OTPCode = ""
	user.OTPPurpose = ""
	user.OTPExpiresAt = nil
	user.OTPAttempts = 0
	if purpose == domain.OTPPurposeVerify {
		user.Status = domain.StatusVerified
	}
	if newPasswordHash != "" {
		user.PasswordHash = newPasswordHash
	}
	return nil
}

// CanResend implements domain.OTPService with Redis-based throttling
func (s *OTPServiceImpl) CanResend(ctx context.Context, email string) (bool, int64, error) {
	if s.redisClient == nil || s.config.ResendWindow <= 0 {
		return true, 0, nil
	}

	ttl, err := s.redisClient.TTL(ctx, resendKey(email)).Result()
	if err != nil {
		return false, 0, fmt.Errorf("failed to check resend TTL: %w", err)
	}

	// If TTL <= 0, key doesn't exist or has expired - can resend
	if ttl <= 0 {
		return true, 0, nil
	}

	// Must wait for TTL to expire
	return false, int64(ttl.Seconds()), nil
}

// generateSecureCode generates a zero-padded numeric code from crypto/rand
func (s *OTPServiceImpl) generateSecureCode() (string, error) {
	digits := make([]byte, s.config.Length)

	for i := 0; i < s.config.Length; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("failed to generate random digit: %w", err)
		}
		digits[i] = byte('0' + num.Int64())
	}

	return string(digits), nil
}
