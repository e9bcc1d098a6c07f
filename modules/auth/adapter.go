package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// ErrTokenRejected is returned by the adapter when the auth module reports
// a definite verification failure (missing, malformed, or expired token).
var ErrTokenRejected = errors.New("token rejected")

// TokenVerifier is the narrow capability the WebSocket server consumes.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (string, error)
}

// AuthPort is the full interface for auth operations, consumed by the API.
type AuthPort interface {
	TokenVerifier
	Signup(ctx context.Context, email, password, name string) (*SignupResponse, error)
	Signin(ctx context.Context, email, password string) (*SigninResponse, error)
	GetUser(ctx context.Context, userID string) (*GetUserResponse, error)
}

// AuthAdapter implements AuthPort over the auth module's service container.
type AuthAdapter struct {
	container mono.ServiceContainer
}

// NewAuthAdapter creates a new AuthAdapter.
func NewAuthAdapter(container mono.ServiceContainer) AuthPort {
	if container == nil {
		panic("auth: ServiceContainer is nil")
	}
	return &AuthAdapter{container: container}
}

// VerifyToken validates a bearer token and returns the principal's user id.
// A rejected token yields ErrTokenRejected rather than a transport error.
func (a *AuthAdapter) VerifyToken(ctx context.Context, token string) (string, error) {
	req := ValidateTokenRequest{Token: token}
	var resp ValidateTokenResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceValidateToken,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return "", fmt.Errorf("failed to validate token: %w", err)
	}
	if !resp.Valid {
		return "", fmt.Errorf("%w: %s", ErrTokenRejected, resp.Error)
	}
	return resp.UserID, nil
}

// Signup registers a new user account.
func (a *AuthAdapter) Signup(ctx context.Context, email, password, name string) (*SignupResponse, error) {
	req := SignupRequest{Email: email, Password: password, Name: name}
	var resp SignupResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceSignup,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("failed to sign up: %w", err)
	}
	return &resp, nil
}

// Signin authenticates a user and returns a bearer token.
func (a *AuthAdapter) Signin(ctx context.Context, email, password string) (*SigninResponse, error) {
	req := SigninRequest{Email: email, Password: password}
	var resp SigninResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceSignin,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("failed to sign in: %w", err)
	}
	return &resp, nil
}

// GetUser fetches a user by id.
func (a *AuthAdapter) GetUser(ctx context.Context, userID string) (*GetUserResponse, error) {
	req := GetUserRequest{UserID: userID}
	var resp GetUserResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceGetUser,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &resp, nil
}
