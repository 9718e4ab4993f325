package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/monterra-as/installer-api/internal/auth"
	"github.com/monterra-as/installer-api/internal/domain"
	"github.com/monterra-as/installer-api/internal/mapper"
	"github.com/monterra-as/installer-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// onboardingAutoSignThreshold is the minimum signature payload length that
// triggers immediate signing of the onboarding contract.
const onboardingAutoSignThreshold = 100

// AuthService handles login and account registration
type AuthService struct {
	userRepo *repository.UserRepository
	issuer   *auth.TokenIssuer
	db       *gorm.DB
	logger   *zap.Logger
}

// NewAuthService creates a new AuthService instance
func NewAuthService(
	userRepo *repository.UserRepository,
	issuer *auth.TokenIssuer,
	db *gorm.DB,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		issuer:   issuer,
		db:       db,
		logger:   logger,
	}
}

// Login verifies credentials and returns a session token with the user.
// Wrong username, wrong password and inactive account all map to the same
// unauthorized error.
func (s *AuthService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		s.logger.Warn("failed login attempt", zap.String("username", req.Username))
		return nil, ErrUnauthorized
	}

	if !user.Active {
		s.logger.Warn("login attempt on inactive account", zap.String("username", req.Username))
		return nil, ErrUnauthorized
	}

	token, err := s.issuer.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.Info("user logged in",
		zap.String("userID", user.ID.String()),
		zap.String("role", string(user.Role)),
	)

	return &domain.LoginResponse{
		Token: token,
		User:  mapper.ToUserDTO(user),
	}, nil
}

// GetCurrentUser returns the authenticated user's profile
func (s *AuthService) GetCurrentUser(ctx context.Context) (*domain.UserDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}

	user, err := s.userRepo.GetByID(ctx, userCtx.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	dto := mapper.ToUserDTO(user)
	return &dto, nil
}

// CreateUser creates an account with an explicit role (admin operation)
func (s *AuthService) CreateUser(ctx context.Context, req *domain.CreateUserRequest) (*domain.UserDTO, error) {
	if !req.Role.IsValid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, req.Role)
	}

	taken, err := s.userRepo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if taken {
		return nil, ErrUsernameTaken
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     req.Username,
		PasswordHash: hash,
		Name:         req.Name,
		Email:        req.Email,
		Role:         req.Role,
		Active:       true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user created",
		zap.String("userID", user.ID.String()),
		zap.String("role", string(user.Role)),
	)

	dto := mapper.ToUserDTO(user)
	return &dto, nil
}

// RegisterInstaller creates an installer account together with its onboarding
// service contract. The contract gets a permanent signature link; when the
// submitted contract text is long enough to be a real signature payload it is
// signed in the same transaction, so the account and its signed contract
// appear together or not at all.
func (s *AuthService) RegisterInstaller(ctx context.Context, req *domain.RegisterInstallerRequest) (*domain.RegisterInstallerResponse, error) {
	taken, err := s.userRepo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if taken {
		return nil, ErrUsernameTaken
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	contractNumber, err := newContractNumber(now)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     req.Username,
		PasswordHash: hash,
		Name:         req.Name,
		Email:        req.Email,
		Role:         domain.RoleInstaller,
		Active:       true,
	}

	token := newPermanentSignatureToken()
	contract := &domain.Contract{
		ContractNumber: contractNumber,
		Type:           domain.ContractTypeInstallerService,
		Title:          fmt.Sprintf("Installer service agreement - %s", req.Name),
		Status:         domain.ContractStatusSent,
		SignatureToken: &token,
	}

	autoSign := len(req.ContractText) > onboardingAutoSignThreshold

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return fmt.Errorf("failed to create installer: %w", err)
		}

		contract.InstallerID = &user.ID
		if autoSign {
			contract.Status = domain.ContractStatusSigned
			contract.IsSigned = true
			contract.SignedAt = &now
			contract.SignatureData = req.ContractText
			contract.SignerName = user.Name
		}

		if err := tx.Create(contract).Error; err != nil {
			return fmt.Errorf("failed to create onboarding contract: %w", err)
		}

		if autoSign {
			comm := &domain.ContractCommunication{
				ContractID: contract.ID,
				Kind:       "signature",
				Message:    fmt.Sprintf("Contract signed by %s during registration", user.Name),
				ActorName:  user.Name,
			}
			if err := tx.Create(comm).Error; err != nil {
				return fmt.Errorf("failed to record signing: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("installer registered",
		zap.String("userID", user.ID.String()),
		zap.String("contractID", contract.ID.String()),
		zap.Bool("auto_signed", autoSign),
	)

	contractDTO := mapper.ToContractDTO(contract)
	return &domain.RegisterInstallerResponse{
		User:     mapper.ToUserDTO(user),
		Contract: &contractDTO,
	}, nil
}
