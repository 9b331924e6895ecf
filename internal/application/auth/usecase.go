package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ArtEnginer/POS/internal/application/dto"
	"github.com/ArtEnginer/POS/internal/application/ports"
	"github.com/ArtEnginer/POS/internal/domain"
	"github.com/ArtEnginer/POS/internal/domain/entity"
	"github.com/ArtEnginer/POS/internal/domain/repository"
	"github.com/ArtEnginer/POS/pkg/jwt"
)

// blacklistPrefix llaves de tokens revocados (valor: jti).
const blacklistPrefix = "blacklist:"

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase casos de uso de autenticación: login, logout y perfil.
type AuthUseCase struct {
	userRepo repository.UserRepository
	tokens   ports.Cache
	jwtCfg   JWTConfig
}

// NewAuthUseCase construye el caso de uso de auth. tokens guarda la lista de tokens revocados;
// con nil el logout no invalida el token antes de su expiración.
func NewAuthUseCase(userRepo repository.UserRepository, tokens ports.Cache, jwtCfg JWTConfig) *AuthUseCase {
	if tokens == nil {
		tokens = ports.NopCache{}
	}
	return &AuthUseCase{userRepo: userRepo, tokens: tokens, jwtCfg: jwtCfg}
}

// Login verifica username/email + password, genera JWT y retorna token + usuario.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.userRepo.FindByLogin(ctx, in.Login)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if user.Status != "active" {
		return nil, domain.ErrForbidden
	}
	branchID := ""
	if user.BranchID != nil {
		branchID = *user.BranchID
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, branchID, user.Role, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	_ = uc.userRepo.TouchLastLogin(ctx, user.ID)
	now := time.Now()
	user.LastLoginAt = &now
	return &dto.LoginResponse{
		Token:     token,
		ExpiresIn: uc.jwtCfg.ExpMinutes * 60,
		User:      dto.FromUser(user),
	}, nil
}

// Logout revoca el token hasta su expiración natural.
func (uc *AuthUseCase) Logout(ctx context.Context, token string) error {
	claims, err := jwt.ParseClaims(uc.jwtCfg.Secret, token)
	if err != nil {
		return domain.ErrUnauthorized
	}
	if ttl := claims.Remaining(time.Now()); ttl > 0 && claims.ID != "" {
		uc.tokens.Set(ctx, blacklistPrefix+claims.ID, claims.UserID, ttl)
	}
	return nil
}

// IsRevoked indica si el jti fue revocado por logout.
func (uc *AuthUseCase) IsRevoked(ctx context.Context, jti string) bool {
	if jti == "" {
		return false
	}
	return uc.tokens.Exists(ctx, blacklistPrefix+jti)
}

// Me perfil del usuario autenticado.
func (uc *AuthUseCase) Me(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	out := dto.FromUser(user)
	return &out, nil
}

// EnsureAdmin crea el usuario super_admin inicial si no existe ninguno con ese login.
func (uc *AuthUseCase) EnsureAdmin(ctx context.Context, username, email, password string) (bool, error) {
	existing, err := uc.userRepo.FindByLogin(ctx, username)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}
	now := time.Now()
	err = uc.userRepo.Create(ctx, &entity.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		FullName:     "Administrator",
		Role:         entity.RoleSuperAdmin,
		Status:       "active",
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	return err == nil, err
}
