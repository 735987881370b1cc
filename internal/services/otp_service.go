package services

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"log"
	"math/big"
	"time"

	"github.com/bharthraj1412/nexora/internal/config"
	"github.com/bharthraj1412/nexora/internal/mailer"
	"github.com/bharthraj1412/nexora/internal/models"
	"github.com/bharthraj1412/nexora/internal/repositories"
)

// OTPService issues and verifies emailed one-time codes. A fixed attempt
// budget is spent on every verification try, match or not.
type OTPService struct {
	otps   repositories.OTPRepository
	mailer mailer.Sender
	cfg    *config.SecurityConfig
}

func NewOTPService(otps repositories.OTPRepository, sender mailer.Sender, cfg *config.SecurityConfig) *OTPService {
	return &OTPService{otps: otps, mailer: sender, cfg: cfg}
}

// RequestCode creates a fresh code for (email, purpose), invalidating any
// previous unsent codes for the pair, and dispatches it by mail. The
// plaintext code is returned so debug harnesses can surface it; production
// callers must not expose it.
func (s *OTPService) RequestCode(email string, purpose models.OTPPurpose) (string, error) {
	now := time.Now().UTC()

	recent, err := s.otps.CountSince(email, purpose, now.Add(-time.Hour))
	if err != nil {
		return "", fmt.Errorf("count recent OTPs: %w", err)
	}
	if recent >= int64(s.cfg.OTPRateLimitPerHour) {
		return "", ErrRateLimited
	}

	if err := s.otps.InvalidateUnused(email, purpose); err != nil {
		return "", fmt.Errorf("invalidate previous OTPs: %w", err)
	}

	code, err := generateNumericCode(s.cfg.OTPLength)
	if err != nil {
		return "", fmt.Errorf("generate OTP: %w", err)
	}

	otp := &models.OTP{
		Email:     email,
		Purpose:   purpose,
		CodeHash:  models.HashToken(code),
		ExpiresAt: now.Add(s.cfg.OTPTTL()),
		CreatedAt: now,
	}
	if err := s.otps.Create(otp); err != nil {
		return "", fmt.Errorf("store OTP: %w", err)
	}

	// Mail delivery must not fail the request.
	if err := s.mailer.Send(email, mailer.OTPSubject(purpose), mailer.OTPBody(code, s.cfg.OTPExpireMinutes)); err != nil {
		log.Printf("warn: failed to send OTP email to %s: %v", email, err)
	}

	return code, nil
}

// VerifyCode checks code against the newest unused OTP for (email, purpose).
// The attempt counter is incremented and committed before the hashes are
// compared, so a wrong guess spends budget even though the call fails.
func (s *OTPService) VerifyCode(email, code string, purpose models.OTPPurpose) error {
	var outcome error

	err := s.otps.InTx(func(repo repositories.OTPRepository) error {
		otp, err := repo.LatestUnused(email, purpose)
		if err != nil {
			return err
		}
		if otp == nil {
			outcome = ErrOTPNotFound
			return nil
		}

		now := time.Now().UTC()
		if otp.IsExpired(now) {
			// Expired codes are left untouched.
			outcome = ErrOTPExpired
			return nil
		}
		if otp.Attempts >= s.cfg.OTPMaxAttempts {
			outcome = ErrOTPAttemptsExhausted
			return nil
		}

		// The guarded update refuses once the budget is gone, so two
		// concurrent attempts cannot both pass the check above.
		spent, err := repo.IncrementAttempts(otp.ID, s.cfg.OTPMaxAttempts)
		if err != nil {
			return err
		}
		if !spent {
			outcome = ErrOTPAttemptsExhausted
			return nil
		}

		if subtle.ConstantTimeCompare([]byte(models.HashToken(code)), []byte(otp.CodeHash)) != 1 {
			// Commit: the attempt stays spent.
			outcome = ErrInvalidOTP
			return nil
		}

		return repo.MarkUsed(otp.ID)
	})
	if err != nil {
		return fmt.Errorf("verify OTP: %w", err)
	}
	return outcome
}

func generateNumericCode(length int) (string, error) {
	if length <= 0 {
		length = 6
	}
	digits := make([]byte, length)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits), nil
}
