package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/koboledger/kobo/internal/apperrors"
	"github.com/koboledger/kobo/internal/core/domain"
	portsrepo "github.com/koboledger/kobo/internal/core/ports/repositories"
	portssvc "github.com/koboledger/kobo/internal/core/ports/services"
	"github.com/koboledger/kobo/internal/dto"
	"github.com/koboledger/kobo/internal/middleware"
	"golang.org/x/crypto/bcrypt"
)

// authService authenticates branch users and issues principal tokens.
type authService struct {
	userRepo   portsrepo.UserRepository
	branchRepo portsrepo.BranchRepository
	jwtSecret  string
	jwtExpiry  time.Duration
	jwtIssuer  string
	now        func() time.Time
}

// NewAuthService creates the authentication service.
func NewAuthService(userRepo portsrepo.UserRepository, branchRepo portsrepo.BranchRepository, jwtSecret, jwtIssuer string, jwtExpiry time.Duration) portssvc.AuthSvcFacade {
	return &authService{
		userRepo:   userRepo,
		branchRepo: branchRepo,
		jwtSecret:  jwtSecret,
		jwtExpiry:  jwtExpiry,
		jwtIssuer:  jwtIssuer,
		now:        time.Now,
	}
}

var _ portssvc.AuthSvcFacade = (*authService)(nil)

// Login verifies the credentials, refuses expired branch licences and issues
// a bearer token embedding the principal.
func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	user, err := s.userRepo.FindUserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid credentials", apperrors.ErrValidation)
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: invalid credentials", apperrors.ErrValidation)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", apperrors.ErrValidation)
	}

	branch, err := s.branchRepo.FindBranchByID(ctx, user.BranchID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve branch for user %s: %w", user.UserID, err)
	}

	now := s.now().UTC()
	if !branch.Licensed(now) {
		logger.Warn("Login refused for expired licence",
			slog.String("branch_id", branch.BranchID),
			slog.Time("expire_date", branch.ExpireDate))
		return nil, apperrors.ErrLicenseExpired
	}

	claims := middleware.PrincipalClaims{
		BranchID:   branch.BranchID,
		CompanyID:  branch.CompanyID,
		HeadOffice: branch.HeadOffice,
		SuperAdmin: user.Role == domain.RoleVendorAdmin,
		Role:       user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.UserID,
			Issuer:    s.jwtIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtExpiry)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	logger.Info("User logged in", slog.String("user_id", user.UserID), slog.String("branch_id", branch.BranchID))
	return &dto.LoginResponse{
		Token:     token,
		ExpiresAt: now.Add(s.jwtExpiry),
		Principal: claims.Principal(),
	}, nil
}
