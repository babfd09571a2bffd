package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	domain "github.com/example/todo-api/domain/user"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// AuthModule provides credential storage and token issuing/verification.
type AuthModule struct {
	db      *gorm.DB
	service *AuthService
	dbPath  string
}

// Compile-time interface checks.
var _ mono.Module = (*AuthModule)(nil)
var _ mono.ServiceProviderModule = (*AuthModule)(nil)
var _ mono.HealthCheckableModule = (*AuthModule)(nil)

// NewModule creates a new AuthModule.
func NewModule() *AuthModule {
	// Use environment variable for DB path, default to local file.
	// Each module owns its own database file.
	dbPath := os.Getenv("AUTH_DB_PATH")
	if dbPath == "" {
		dbPath = "auth.db"
	}
	return &AuthModule{
		dbPath: dbPath,
	}
}

// Name returns the module name.
func (m *AuthModule) Name() string {
	return "auth"
}

// Start initializes the auth module.
func (m *AuthModule) Start(_ context.Context) error {
	db, err := gorm.Open(sqlite.Open(m.dbPath), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	m.db = db

	if err := db.AutoMigrate(&domain.User{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	repo := NewUserRepository(db)
	hasher := NewPasswordHasher()
	jwtManager := NewJWTManager(loadJWTConfig())

	m.service = NewAuthService(repo, hasher, jwtManager)

	log.Printf("[auth] Module started (database: %s)", m.dbPath)
	return nil
}

// Stop shuts down the module.
func (m *AuthModule) Stop(_ context.Context) error {
	if m.db != nil {
		sqlDB, err := m.db.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
	log.Println("[auth] Module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *AuthModule) Health(_ context.Context) mono.HealthStatus {
	if m.db == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "database not initialized",
		}
	}

	sqlDB, err := m.db.DB()
	if err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("failed to get database connection: %v", err),
		}
	}

	if err := sqlDB.Ping(); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database ping failed: %v", err),
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"database": m.dbPath,
		},
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *AuthModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container,
		"register",
		json.Unmarshal,
		json.Marshal,
		m.handleRegister,
	); err != nil {
		return fmt.Errorf("failed to register register service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container,
		"login",
		json.Unmarshal,
		json.Marshal,
		m.handleLogin,
	); err != nil {
		return fmt.Errorf("failed to register login service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container,
		"validate-token",
		json.Unmarshal,
		json.Marshal,
		m.handleValidateToken,
	); err != nil {
		return fmt.Errorf("failed to register validate-token service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container,
		"get-user",
		json.Unmarshal,
		json.Marshal,
		m.handleGetUser,
	); err != nil {
		return fmt.Errorf("failed to register get-user service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container,
		"update-user",
		json.Unmarshal,
		json.Marshal,
		m.handleUpdateUser,
	); err != nil {
		return fmt.Errorf("failed to register update-user service: %w", err)
	}

	log.Printf("[auth] Registered services: register, login, validate-token, get-user, update-user")
	return nil
}

// handleRegister handles user registration.
func (m *AuthModule) handleRegister(ctx context.Context, req RegisterRequest, _ *mono.Msg) (RegisterResponse, error) {
	token, err := m.service.Register(ctx, req.Name, req.Email, req.Password, req.Phone)
	if err != nil {
		return RegisterResponse{}, err
	}

	return RegisterResponse{
		Token:     token,
		ExpiresIn: m.service.TokenDuration(),
		TokenType: "Bearer",
	}, nil
}

// handleLogin handles user login.
func (m *AuthModule) handleLogin(ctx context.Context, req LoginRequest, _ *mono.Msg) (LoginResponse, error) {
	token, err := m.service.Login(ctx, req.Email, req.Password)
	if err != nil {
		return LoginResponse{}, err
	}

	return LoginResponse{
		Token:     token,
		ExpiresIn: m.service.TokenDuration(),
		TokenType: "Bearer",
	}, nil
}

// handleValidateToken handles token validation. Validation failures are part
// of the response, not an error, so the guard can map each kind distinctly.
func (m *AuthModule) handleValidateToken(ctx context.Context, req ValidateTokenRequest, _ *mono.Msg) (ValidateTokenResponse, error) {
	claims, err := m.service.ValidateToken(ctx, req.Token)
	if err != nil {
		code := TokenCodeInvalid
		switch {
		case errors.Is(err, ErrExpiredToken):
			code = TokenCodeExpired
		case errors.Is(err, ErrMalformedClaims):
			code = TokenCodeMalformed
		}
		return ValidateTokenResponse{
			Valid: false,
			Code:  code,
			Error: err.Error(),
		}, nil
	}

	return ValidateTokenResponse{
		Valid:  true,
		UserID: claims.UserID,
	}, nil
}

// handleGetUser handles get user requests.
func (m *AuthModule) handleGetUser(ctx context.Context, req GetUserRequest, _ *mono.Msg) (GetUserResponse, error) {
	user, err := m.service.GetUser(ctx, req.UserID)
	if err != nil {
		return GetUserResponse{}, err
	}

	return GetUserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Phone:     user.Phone,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}, nil
}

// handleUpdateUser handles partial profile updates.
func (m *AuthModule) handleUpdateUser(ctx context.Context, req UpdateUserRequest, _ *mono.Msg) (UpdateUserResponse, error) {
	user, err := m.service.UpdateProfile(ctx, req.UserID, ProfilePatch{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		return UpdateUserResponse{}, err
	}

	return UpdateUserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Phone:     user.Phone,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}, nil
}

// loadJWTConfig loads JWT configuration from environment variables.
func loadJWTConfig() JWTConfig {
	config := DefaultJWTConfig()

	if secret := os.Getenv("JWT_SECRET_KEY"); secret != "" {
		config.SecretKey = secret
	}

	if issuer := os.Getenv("JWT_ISSUER"); issuer != "" {
		config.Issuer = issuer
	}

	if ttl := os.Getenv("JWT_TOKEN_TTL"); ttl != "" {
		if d, err := time.ParseDuration(ttl); err == nil {
			config.TokenDuration = d
		}
	}

	return config
}
