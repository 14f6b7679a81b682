package user

import (
	"context"
	"fmt"
	"log"
	"time"

	"pickle-storefront/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenTTL      = 72 * time.Hour
	resetTokenTTL = time.Hour
)

// Mailer sends the password-recovery email. Delivery failures are logged, not
// surfaced: the endpoint's response never reveals whether the email exists.
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, token string) error
}

type ServiceInterface interface {
	SignUp(ctx context.Context, req models.SignUpRequest) (*models.User, error)
	// Login returns a signed JWT and the authenticated user.
	Login(ctx context.Context, req models.LoginRequest) (string, *models.User, error)
	FindUser(ctx context.Context, userID string) (*models.User, error)
	// Me returns the user with saved addresses attached.
	Me(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, req models.UpdateProfileRequest) (*models.User, error)

	ListAddresses(ctx context.Context, userID string) ([]models.UserAddress, error)
	AddAddress(ctx context.Context, userID string, req models.UpsertAddressRequest) (*models.UserAddress, error)
	UpdateAddress(ctx context.Context, userID, addressID string, req models.UpsertAddressRequest) (*models.UserAddress, error)
	DeleteAddress(ctx context.Context, userID, addressID string) error
	SetDefaultAddress(ctx context.Context, userID, addressID string) error

	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, req models.ResetPasswordRequest) error
}

type service struct {
	repo      RepositoryInterface
	mailer    Mailer
	jwtSecret string
}

func NewService(repo RepositoryInterface, mailer Mailer, jwtSecret string) ServiceInterface {
	return &service{repo: repo, mailer: mailer, jwtSecret: jwtSecret}
}

func (s *service) SignUp(ctx context.Context, req models.SignUpRequest) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("service.SignUp: %w", err)
	}

	u := models.User{
		ID:    uuid.NewString(),
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
		Role:  models.RoleCustomer,
	}
	if err := s.repo.CreateUser(ctx, &u, string(hash)); err != nil {
		if err == models.ErrConflict {
			return nil, err
		}
		return nil, fmt.Errorf("service.SignUp: %w", err)
	}
	return &u, nil
}

func (s *service) Login(ctx context.Context, req models.LoginRequest) (string, *models.User, error) {
	u, hash, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if err == models.ErrNotFound {
			return "", nil, models.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("service.Login: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)); err != nil {
		return "", nil, models.ErrInvalidCredentials
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  u.ID,
		"role": u.Role,
		"iat":  now.Unix(),
		"exp":  now.Add(tokenTTL).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", nil, fmt.Errorf("service.Login sign: %w", err)
	}
	return token, u, nil
}

func (s *service) FindUser(ctx context.Context, userID string) (*models.User, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if err == models.ErrNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("service.FindUser: %w", err)
	}
	return u, nil
}

func (s *service) Me(ctx context.Context, userID string) (*models.User, error) {
	u, err := s.FindUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	addresses, err := s.repo.ListAddresses(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service.Me: %w", err)
	}
	u.Addresses = addresses
	return u, nil
}

func (s *service) UpdateProfile(ctx context.Context, userID string, req models.UpdateProfileRequest) (*models.User, error) {
	u, err := s.repo.UpdateProfile(ctx, userID, req.Name, req.Phone)
	if err != nil {
		if err == models.ErrNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("service.UpdateProfile: %w", err)
	}
	return u, nil
}

func (s *service) ListAddresses(ctx context.Context, userID string) ([]models.UserAddress, error) {
	addresses, err := s.repo.ListAddresses(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service.ListAddresses: %w", err)
	}
	return addresses, nil
}

func (s *service) AddAddress(ctx context.Context, userID string, req models.UpsertAddressRequest) (*models.UserAddress, error) {
	existing, err := s.repo.ListAddresses(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service.AddAddress: %w", err)
	}

	a := addressFromRequest(userID, req)
	a.ID = uuid.NewString()
	// The first saved address is always the default.
	a.IsDefault = req.IsDefault || len(existing) == 0

	if err := s.repo.CreateAddress(ctx, &a); err != nil {
		return nil, fmt.Errorf("service.AddAddress: %w", err)
	}
	if a.IsDefault {
		if err := s.repo.SetDefaultAddress(ctx, userID, a.ID); err != nil {
			return nil, fmt.Errorf("service.AddAddress: %w", err)
		}
	}
	return &a, nil
}

func (s *service) UpdateAddress(ctx context.Context, userID, addressID string, req models.UpsertAddressRequest) (*models.UserAddress, error) {
	a := addressFromRequest(userID, req)
	a.ID = addressID

	if err := s.repo.UpdateAddress(ctx, &a); err != nil {
		if err == models.ErrNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("service.UpdateAddress: %w", err)
	}
	if req.IsDefault {
		if err := s.repo.SetDefaultAddress(ctx, userID, addressID); err != nil {
			return nil, fmt.Errorf("service.UpdateAddress: %w", err)
		}
		a.IsDefault = true
	}
	return &a, nil
}

func (s *service) DeleteAddress(ctx context.Context, userID, addressID string) error {
	if err := s.repo.DeleteAddress(ctx, userID, addressID); err != nil {
		if err == models.ErrNotFound {
			return err
		}
		return fmt.Errorf("service.DeleteAddress: %w", err)
	}
	return nil
}

func (s *service) SetDefaultAddress(ctx context.Context, userID, addressID string) error {
	if err := s.repo.SetDefaultAddress(ctx, userID, addressID); err != nil {
		if err == models.ErrNotFound {
			return err
		}
		return fmt.Errorf("service.SetDefaultAddress: %w", err)
	}
	return nil
}

// ForgotPassword issues a single-use recovery token. An unknown email is not
// an error: the response must not leak which addresses have accounts.
func (s *service) ForgotPassword(ctx context.Context, email string) error {
	u, _, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if err == models.ErrNotFound {
			return nil
		}
		return fmt.Errorf("service.ForgotPassword: %w", err)
	}

	t := models.PasswordResetToken{
		Token:     uuid.NewString(),
		UserID:    u.ID,
		ExpiresAt: time.Now().Add(resetTokenTTL),
	}
	if err := s.repo.CreateResetToken(ctx, &t); err != nil {
		return fmt.Errorf("service.ForgotPassword: %w", err)
	}

	if err := s.mailer.SendPasswordReset(ctx, u.Email, t.Token); err != nil {
		log.Printf("user: password reset mail to %s: %v", u.Email, err)
	}
	return nil
}

func (s *service) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) error {
	t, err := s.repo.FindResetToken(ctx, req.Token)
	if err != nil {
		if err == models.ErrInvalidToken {
			return err
		}
		return fmt.Errorf("service.ResetPassword: %w", err)
	}
	if t.Used || time.Now().After(t.ExpiresAt) {
		return models.ErrInvalidToken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("service.ResetPassword: %w", err)
	}
	if err := s.repo.UpdatePassword(ctx, t.UserID, string(hash)); err != nil {
		return fmt.Errorf("service.ResetPassword: %w", err)
	}
	if err := s.repo.MarkTokenUsed(ctx, req.Token); err != nil {
		return fmt.Errorf("service.ResetPassword: %w", err)
	}
	return nil
}

func addressFromRequest(userID string, req models.UpsertAddressRequest) models.UserAddress {
	return models.UserAddress{
		UserID:    userID,
		Label:     req.Label,
		Name:      req.Name,
		Phone:     req.Phone,
		Street:    req.Street,
		City:      req.City,
		State:     req.State,
		Pincode:   req.Pincode,
		Country:   req.Country,
		IsDefault: req.IsDefault,
	}
}
