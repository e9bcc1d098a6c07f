package auth

import (
	"context"
	"errors"
	"testing"

	canvas "github.com/ghagevaibhav/CanvasFlow/domain/canvas"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&canvas.User{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupTestService creates an AuthService backed by in-memory SQLite.
func setupTestService(t *testing.T) *AuthService {
	t.Helper()
	return NewAuthService(NewUserRepository(setupTestDB(t)), NewPasswordHasher(), NewJWTManager(testJWTConfig()))
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))

	if err := repo.Create(&canvas.User{ID: "u1", Email: "alice@example.com"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := repo.Create(&canvas.User{ID: "u2", Email: "alice@example.com"}); !errors.Is(err, ErrUserExists) {
		t.Errorf("Create() error = %v, want %v", err, ErrUserExists)
	}
}

func TestAuthService_Signup(t *testing.T) {
	ctx := context.Background()
	service := setupTestService(t)

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{name: "valid signup", email: "alice@example.com", password: "correct-horse"},
		{name: "duplicate email", email: "alice@example.com", password: "correct-horse", wantErr: ErrUserExists},
		{name: "invalid email", email: "not-an-email", password: "correct-horse", wantErr: ErrInvalidEmail},
		{name: "short password", email: "bob@example.com", password: "short", wantErr: ErrWeakPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := service.Signup(ctx, tt.email, tt.password, "Test User")

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Signup() error = %v, want %v", err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Fatalf("Signup() unexpected error: %v", err)
			}
			if user.ID == "" {
				t.Error("Signup() user.ID should not be empty")
			}
			if user.Password == tt.password {
				t.Error("Signup() stored the password in plain text")
			}
		})
	}
}

func TestAuthService_SigninAndVerifyToken(t *testing.T) {
	ctx := context.Background()
	service := setupTestService(t)

	created, err := service.Signup(ctx, "alice@example.com", "correct-horse", "Alice")
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}

	user, token, err := service.Signin(ctx, "alice@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Signin() error = %v", err)
	}
	if user.ID != created.ID {
		t.Errorf("Signin() user.ID = %v, want %v", user.ID, created.ID)
	}
	if token == "" {
		t.Fatal("Signin() returned empty token")
	}

	// The token round-trips through the verifier to the same principal.
	userID, err := service.VerifyToken(ctx, token)
	if err != nil {
		t.Fatalf("VerifyToken() error = %v", err)
	}
	if userID != created.ID {
		t.Errorf("VerifyToken() = %v, want %v", userID, created.ID)
	}
}

func TestAuthService_SigninRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	service := setupTestService(t)

	if _, err := service.Signup(ctx, "alice@example.com", "correct-horse", "Alice"); err != nil {
		t.Fatalf("Signup() error = %v", err)
	}

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{name: "wrong password", email: "alice@example.com", password: "wrong-password"},
		{name: "unknown email", email: "ghost@example.com", password: "correct-horse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := service.Signin(ctx, tt.email, tt.password)
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("Signin() error = %v, want %v", err, ErrInvalidCredentials)
			}
		})
	}
}

func TestAuthService_VerifyTokenRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	service := setupTestService(t)

	if _, err := service.VerifyToken(ctx, "garbage"); err == nil {
		t.Error("VerifyToken() accepted a garbage token")
	}
	if _, err := service.VerifyToken(ctx, ""); err == nil {
		t.Error("VerifyToken() accepted an empty token")
	}
}
