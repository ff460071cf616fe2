package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mamgad/DVBLab/internal/domain"
	"github.com/mamgad/DVBLab/internal/logger"
	"github.com/mamgad/DVBLab/internal/password"
	"github.com/mamgad/DVBLab/internal/profile"
)

// AccountService owns registration, credential verification, and profile and
// password mutations.
type AccountService struct {
	userRepo domain.UserRepository
	hasher   *password.Hasher
	audit    *AuditService

	// unsafeMode disables the ownership check on password updates,
	// reproducing the training target's vulnerable behavior.
	unsafeMode bool
}

func NewAccountService(userRepo domain.UserRepository, hasher *password.Hasher, audit *AuditService, unsafeMode bool) *AccountService {
	return &AccountService{
		userRepo:   userRepo,
		hasher:     hasher,
		audit:      audit,
		unsafeMode: unsafeMode,
	}
}

func (s *AccountService) Register(ctx context.Context, username, plaintext, ip string, now time.Time) (domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return domain.User{}, domain.NewValidationError("username is required")
	}
	if plaintext == "" {
		return domain.User{}, domain.NewValidationError("password is required")
	}

	if _, err := s.userRepo.GetByUsername(ctx, username); err == nil {
		return domain.User{}, domain.ErrDuplicateUsername
	} else if !errors.Is(err, domain.ErrRecordNotFound) {
		return domain.User{}, fmt.Errorf("check username: %w", err)
	}

	hash, err := s.hasher.Hash(plaintext)
	if err != nil {
		return domain.User{}, fmt.Errorf("derive password verifier: %w", err)
	}

	created, err := s.userRepo.Create(ctx, domain.User{
		Username:     username,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		CreatedAt:    now,
	})
	if err != nil {
		return domain.User{}, err
	}

	logger.Info("account registered", logger.Fields{
		"userId":   created.ID,
		"username": created.Username,
	})
	s.audit.Record(ctx, &created.ID, "register", map[string]any{"username": created.Username}, ip, now)

	return created, nil
}

// Login verifies credentials and records a login attempt either way. The
// caller learns only that authentication failed, not which part was wrong.
func (s *AccountService) Login(ctx context.Context, username, plaintext, ip string, userAgent *string, now time.Time) (domain.User, error) {
	username = strings.TrimSpace(username)

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			s.audit.RecordLoginAttempt(ctx, username, nil, ip, userAgent, false, now)
			return domain.User{}, domain.ErrAuthenticationFailed
		}
		return domain.User{}, fmt.Errorf("look up user: %w", err)
	}

	if !s.hasher.Verify(user.PasswordHash, plaintext) {
		s.audit.RecordLoginAttempt(ctx, username, &user.ID, ip, userAgent, false, now)
		return domain.User{}, domain.ErrAuthenticationFailed
	}

	s.audit.RecordLoginAttempt(ctx, username, &user.ID, ip, userAgent, true, now)

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		// A bookkeeping failure should not lock the user out.
		logger.Error("update last login failed", err, logger.Fields{"userId": user.ID})
	} else {
		lastLogin := now
		user.LastLogin = &lastLogin
	}

	return user, nil
}

func (s *AccountService) GetByID(ctx context.Context, id int64) (domain.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *AccountService) GetProfile(ctx context.Context, userID int64) (profile.Document, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return profile.FromJSON(user.Profile)
}

// UpdateProfile replaces the email and the whole profile document. Keys are
// not validated; the document is schema-flexible on purpose.
func (s *AccountService) UpdateProfile(ctx context.Context, userID int64, email *string, doc profile.Document) (domain.User, error) {
	encoded, err := doc.JSON()
	if err != nil {
		return domain.User{}, err
	}

	updated, err := s.userRepo.UpdateProfile(ctx, userID, email, encoded)
	if err != nil {
		return domain.User{}, err
	}

	logger.Info("profile updated", logger.Fields{"userId": userID})
	return updated, nil
}

// ImportProfile parses a YAML document through the safe-subset parser and
// replaces the stored profile with it.
func (s *AccountService) ImportProfile(ctx context.Context, user domain.User, yamlText, ip string, now time.Time) error {
	doc, err := profile.ParseYAML(yamlText)
	if err != nil {
		return domain.NewValidationError(err.Error())
	}

	encoded, err := doc.JSON()
	if err != nil {
		return err
	}

	if err := s.userRepo.SetProfile(ctx, user.ID, encoded); err != nil {
		return err
	}

	s.audit.Record(ctx, &user.ID, "profile_import", map[string]any{"keys": len(doc)}, ip, now)
	return nil
}

// UpdatePassword replaces the target account's password verifier. The
// hardened default requires the requester to own the target account or hold
// the admin role; unsafe mode skips that check, which is the vulnerability
// this lab demonstrates.
func (s *AccountService) UpdatePassword(ctx context.Context, requester domain.User, targetID int64, newPassword, ip string, now time.Time) error {
	if newPassword == "" {
		return domain.NewValidationError("new_password is required")
	}

	if !s.unsafeMode && requester.ID != targetID && requester.Role != domain.RoleAdmin {
		s.audit.Record(ctx, &requester.ID, "password_change_denied", map[string]any{"targetUserId": targetID}, ip, now)
		return domain.ErrUnauthorized
	}

	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("derive password verifier: %w", err)
	}

	if err := s.userRepo.UpdatePasswordHash(ctx, targetID, hash); err != nil {
		return err
	}

	s.audit.Record(ctx, &requester.ID, "password_change", map[string]any{"targetUserId": targetID}, ip, now)
	return nil
}
