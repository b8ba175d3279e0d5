package auth

import (
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"time"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"

	"skillsync/internal/models"
)

const (
	otpLength     = 6
	otpTTL        = 5 * time.Minute
	purposeVerify = "verify"
	purposeReset  = "reset"
)

// UserStore is the persistence surface the auth service needs.
type UserStore interface {
	GetUserByUsername(username string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	CreateUser(user *models.User) error
	UpdateUser(user *models.User) error
}

// OTPStore holds short-lived one-time codes (redis-backed in production).
type OTPStore interface {
	SetOTP(purpose, email, code string, ttl time.Duration) error
	GetOTP(purpose, email string) (string, error)
	DeleteOTP(purpose, email string) error
}

// Mailer delivers one-time codes.
type Mailer interface {
	SendOTP(to, subject, code string) error
}

type Service struct {
	store     UserStore
	otps      OTPStore
	mailer    Mailer
	jwtSecret []byte
}

func NewService(store UserStore, otps OTPStore, mailer Mailer, jwtSecret string) *Service {
	return &Service{
		store:     store,
		otps:      otps,
		mailer:    mailer,
		jwtSecret: []byte(jwtSecret),
	}
}

// Register creates an unverified account and emails a verification code.
func (s *Service) Register(username, email, password string) error {
	if username == "" || email == "" || password == "" {
		return fmt.Errorf("%w: username, email and password are required", models.ErrInvalidArgument)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: string(hashedPassword),
		Role:     models.RoleMember,
	}
	if err := s.store.CreateUser(user); err != nil {
		return err
	}

	return s.issueOTP(purposeVerify, email, "SkillSync - Verify your email")
}

// VerifyEmail checks the emailed code and marks the account verified.
func (s *Service) VerifyEmail(email, code string) error {
	stored, err := s.otps.GetOTP(purposeVerify, email)
	if err != nil || stored == "" || stored != code {
		return fmt.Errorf("%w: invalid or expired verification code", models.ErrInvalidArgument)
	}

	user, err := s.store.GetUserByEmail(email)
	if err != nil {
		return err
	}

	user.Verified = true
	if err := s.store.UpdateUser(user); err != nil {
		return err
	}

	if err := s.otps.DeleteOTP(purposeVerify, email); err != nil {
		log.Printf("Error deleting used OTP for %s: %v", email, err)
	}
	return nil
}

// Login authenticates a verified user and returns a signed token.
func (s *Service) Login(username, password string) (string, error) {
	user, err := s.store.GetUserByUsername(username)
	if err != nil {
		return "", fmt.Errorf("%w: invalid credentials", models.ErrInvalidArgument)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", fmt.Errorf("%w: invalid credentials", models.ErrInvalidArgument)
	}

	if !user.Verified {
		return "", fmt.Errorf("%w: email not verified", models.ErrForbidden)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     string(user.Role),
		"exp":      time.Now().Add(time.Hour * 24).Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ForgotPassword emails a reset code to an existing account.
func (s *Service) ForgotPassword(email string) error {
	if _, err := s.store.GetUserByEmail(email); err != nil {
		return err
	}
	return s.issueOTP(purposeReset, email, "SkillSync - Password reset code")
}

// ResetPassword checks the reset code and replaces the password.
func (s *Service) ResetPassword(email, code, newPassword string) error {
	stored, err := s.otps.GetOTP(purposeReset, email)
	if err != nil || stored == "" || stored != code {
		return fmt.Errorf("%w: invalid or expired reset code", models.ErrInvalidArgument)
	}
	if newPassword == "" {
		return fmt.Errorf("%w: password is required", models.ErrInvalidArgument)
	}

	user, err := s.store.GetUserByEmail(email)
	if err != nil {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.Password = string(hashedPassword)
	if err := s.store.UpdateUser(user); err != nil {
		return err
	}

	if err := s.otps.DeleteOTP(purposeReset, email); err != nil {
		log.Printf("Error deleting used OTP for %s: %v", email, err)
	}
	return nil
}

func (s *Service) issueOTP(purpose, email, subject string) error {
	code, err := generateOTP()
	if err != nil {
		return err
	}
	if err := s.otps.SetOTP(purpose, email, code, otpTTL); err != nil {
		return err
	}
	if err := s.mailer.SendOTP(email, subject, code); err != nil {
		return fmt.Errorf("failed to send code: %w", err)
	}
	return nil
}

func generateOTP() (string, error) {
	code := ""
	for i := 0; i < otpLength; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		code += n.String()
	}
	return code, nil
}
