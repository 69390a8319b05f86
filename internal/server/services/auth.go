// Package services contains the server's business logic. AuthService
// implements login, registration and access-token refresh on top of the
// credential store, the token issuer and the password hasher.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/staffhub/internal/common"
	"github.com/dmitrijs2005/staffhub/internal/logging"
	"github.com/dmitrijs2005/staffhub/internal/server/auth"
	"github.com/dmitrijs2005/staffhub/internal/server/models"
	"github.com/dmitrijs2005/staffhub/internal/server/store"
	"github.com/dmitrijs2005/staffhub/internal/server/validation"
)

// Client-facing messages. Unknown email and wrong password share msgInvalidCredentials.
const (
	msgValidationFailed   = "Invalid input data"
	msgInvalidCredentials = "Invalid credentials"
	msgConfig             = "Server configuration error"
	msgDatabase           = "Database error"
	msgUserExists         = "User with this email already exists"
	msgCreateUser         = "Failed to create user"
	msgMissingRefresh     = "Refresh token not provided"
	msgInvalidRefresh     = "Invalid refresh token"
)

// Activity actions recorded by the service.
const (
	ActionRegister = "register"
	ActionLogin    = "login"
)

// LoginResult is a successful login: both tokens plus the user projection.
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	User         models.Summary
}

// RegisterResult carries the created record. PasswordHash is never
// serialised.
type RegisterResult struct {
	User *models.User
}

type AuthService struct {
	store  store.Store
	issuer *auth.Issuer
	hasher *auth.Hasher
	logger logging.Logger
	now    func() time.Time
}

// NewAuthService wires the service. A nil issuer behaves like one without a
// secret: logins and refreshes fail with CONFIG_ERROR.
func NewAuthService(s store.Store, issuer *auth.Issuer, hasher *auth.Hasher, logger logging.Logger) *AuthService {
	if issuer == nil {
		issuer = &auth.Issuer{}
	}
	return &AuthService{
		store:  s,
		issuer: issuer,
		hasher: hasher,
		logger: logger,
		now:    time.Now,
	}
}

// Issuer exposes the token lifetimes to the transport layer.
func (s *AuthService) Issuer() *auth.Issuer { return s.issuer }

// Login checks credentials and issues an access and a refresh token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	in, err := validation.ValidateLogin(validation.LoginInput{Email: email, Password: password})
	if err != nil {
		return nil, validationError(err)
	}

	user, err := s.store.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.CompareDummy(in.Password)
			return nil, common.NewError(common.KindAuth, msgInvalidCredentials, nil)
		}
		s.logger.Error(ctx, "login: find user", "error", err)
		return nil, common.NewError(common.KindDatabase, msgDatabase, err)
	}

	if !s.hasher.Compare(user.PasswordHash, in.Password) {
		return nil, common.NewError(common.KindAuth, msgInvalidCredentials, nil)
	}

	userID := user.ID.String()
	access, err := s.issuer.IssueAccessToken(userID, string(user.Role))
	if err != nil {
		return nil, s.configError(ctx, err)
	}
	refresh, err := s.issuer.IssueRefreshToken(userID)
	if err != nil {
		return nil, s.configError(ctx, err)
	}

	now := s.now().UTC()
	if user.Profile == nil {
		user.Profile = &models.Profile{}
	}
	user.Profile.LastLogin = &now
	user.ActivityLog = append(user.ActivityLog, models.Activity{Action: ActionLogin, Timestamp: now})

	if _, err := s.store.Save(ctx, user); err != nil {
		s.logger.Warn(ctx, "login: update last login", "user_id", userID, "error", err)
	}

	s.logger.Info(ctx, "user logged in", "user_id", userID, "role", user.Role)

	return &LoginResult{AccessToken: access, RefreshToken: refresh, User: user.Summary()}, nil
}

// Register validates the payload and creates a user.
func (s *AuthService) Register(ctx context.Context, input validation.RegisterInput) (*RegisterResult, error) {
	in, err := validation.ValidateRegistration(input)
	if err != nil {
		return nil, validationError(err)
	}

	_, err = s.store.FindByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return nil, common.NewError(common.KindUserExists, msgUserExists, nil)
	case !errors.Is(err, common.ErrorNotFound):
		s.logger.Error(ctx, "register: find user", "error", err)
		return nil, common.NewError(common.KindDatabase, msgDatabase, err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		s.logger.Error(ctx, "register: hash password", "error", err)
		return nil, common.NewError(common.KindDatabase, msgCreateUser, err)
	}

	now := s.now().UTC()
	user := &models.User{
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
		Profile:      defaultProfile(in, now),
		ActivityLog:  []models.Activity{{Action: ActionRegister, Timestamp: now}},
	}

	saved, err := s.store.Save(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.NewError(common.KindUserExists, msgUserExists, err)
		}
		s.logger.Error(ctx, "register: save user", "error", err)
		return nil, common.NewError(common.KindDatabase, msgCreateUser, err)
	}

	s.logger.Info(ctx, "user registered", "user_id", saved.ID.String(), "role", saved.Role)

	return &RegisterResult{User: saved}, nil
}

// Refresh verifies a refresh token and issues a new access token. The role
// is read from the current user record, not from the token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", common.NewError(common.KindUnauthorized, msgMissingRefresh, nil)
	}

	claims, err := s.issuer.VerifyRefresh(refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrMissingSecret) {
			return "", s.configError(ctx, err)
		}
		return "", common.NewError(common.KindForbidden, msgInvalidRefresh, err)
	}

	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return "", common.NewError(common.KindForbidden, msgInvalidRefresh, common.ErrInvalidToken)
	}

	user, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.NewError(common.KindForbidden, msgInvalidRefresh, err)
		}
		s.logger.Error(ctx, "refresh: find user", "error", err)
		return "", common.NewError(common.KindDatabase, msgDatabase, err)
	}

	access, err := s.issuer.IssueAccessToken(user.ID.String(), string(user.Role))
	if err != nil {
		return "", s.configError(ctx, err)
	}
	return access, nil
}

func (s *AuthService) configError(ctx context.Context, err error) error {
	s.logger.Error(ctx, "token signing failed", "error", err)
	return common.NewError(common.KindConfig, msgConfig, err)
}

func validationError(err error) error {
	e := common.NewError(common.KindValidation, msgValidationFailed, err)
	var fields validation.Errors
	if errors.As(err, &fields) {
		e.Details = fields
	}
	return e
}

// defaultProfile returns the supplied profile or, when none was given, one
// named after the local part of the email. lastLogin starts at now.
func defaultProfile(in validation.RegisterInput, now time.Time) *models.Profile {
	p := &models.Profile{LastLogin: &now}
	if in.Profile != nil {
		p.Name = in.Profile.Name
		p.Avatar = in.Profile.Avatar
		return p
	}

	local, _, _ := strings.Cut(in.Email, "@")
	if r := []rune(local); len(r) > validation.MaxNameLength {
		local = string(r[:validation.MaxNameLength])
	}
	p.Name = local
	return p
}
