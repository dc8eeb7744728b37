// Package service holds the application's use cases. Services own the
// authorization checks: every mutation passes through authz.Authorize before
// anything is written, and handlers stay thin.
package service

import (
	"context"
	"strings"

	"inkwell/internal/auth"
	"inkwell/internal/authz"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"
)

type AccountService struct {
	accountRepo repository.AccountRepository
	articleRepo repository.ArticleRepository
	hasher      auth.PasswordHasher
	tokens      *auth.TokenManager
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type UpdateAccountInput struct {
	AccountID uint
	Username  string
	Email     string
	Bio       string
	Avatar    string
}

func NewAccountService(
	accountRepo repository.AccountRepository,
	articleRepo repository.ArticleRepository,
	hasher auth.PasswordHasher,
	tokens *auth.TokenManager,
) *AccountService {
	return &AccountService{
		accountRepo: accountRepo,
		articleRepo: articleRepo,
		hasher:      hasher,
		tokens:      tokens,
	}
}

const (
	maxUsernameLen = 30
	maxBioLen      = 500
	minPasswordLen = 8
)

// Register creates an account and returns it with a fresh session token.
// Uniqueness conflicts name the offending field so clients can point at the
// right form input.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*models.Account, string, error) {
	if err := authz.Authorize(authz.Anonymous(), authz.ActionAccountRegister, 0); err != nil {
		return nil, "", err
	}

	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if username == "" || email == "" || in.Password == "" {
		return nil, "", models.NewValidationError("Username, email, and password are required")
	}
	if len(username) > maxUsernameLen {
		return nil, "", models.NewValidationError("Username too long (max 30 characters)")
	}
	if !strings.Contains(email, "@") {
		return nil, "", models.NewValidationError("Email must be a valid address")
	}
	if len(in.Password) < minPasswordLen {
		return nil, "", models.NewValidationError("Password must be at least 8 characters")
	}

	if existing, err := s.accountRepo.GetByEmail(ctx, email); err != nil {
		return nil, "", err
	} else if existing != nil {
		return nil, "", models.NewConflictError("email")
	}
	if existing, err := s.accountRepo.GetByUsername(ctx, username); err != nil {
		return nil, "", err
	} else if existing != nil {
		return nil, "", models.NewConflictError("username")
	}

	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, "", models.NewInternalError(err)
	}

	account := &models.Account{
		Username: username,
		Email:    email,
		Password: digest,
	}
	// The repository translates unique violations that slip past the
	// pre-checks under concurrent registration.
	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(account.ID)
	if err != nil {
		return nil, "", models.NewInternalError(err)
	}
	return account, token, nil
}

// Authenticate verifies credentials and returns the account with a session
// token. The response never distinguishes an unknown email from a wrong
// password, and the unknown-email path still pays for a digest comparison so
// timing does not leak account existence.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*models.Account, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	account, err := s.accountRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if account == nil {
		s.hasher.Verify(password, auth.DummyDigest)
		return nil, "", models.NewInvalidCredentialsError()
	}
	if !s.hasher.Verify(password, account.Password) {
		return nil, "", models.NewInvalidCredentialsError()
	}

	token, err := s.tokens.Issue(account.ID)
	if err != nil {
		return nil, "", models.NewInternalError(err)
	}

	middleware.Logger.InfoContext(ctx, "account authenticated", "account_id", account.ID)
	return account, token, nil
}

// CurrentAccount returns the account behind the identity.
func (s *AccountService) CurrentAccount(ctx context.Context, identity authz.Identity) (*models.Account, error) {
	if err := authz.Authorize(identity, authz.ActionSessionCurrent, 0); err != nil {
		return nil, err
	}
	return s.accountRepo.GetByID(ctx, identity.AccountID)
}

func (s *AccountService) GetAccount(ctx context.Context, id uint) (*models.Account, error) {
	return s.accountRepo.GetByID(ctx, id)
}

func (s *AccountService) ListAccounts(ctx context.Context, limit, offset int) ([]models.Account, error) {
	return s.accountRepo.List(ctx, limit, offset)
}

// UpdateAccount merges the provided fields into the profile. Absence is
// checked before ownership so probing an id that does not exist yields the
// same 404 whoever asks.
func (s *AccountService) UpdateAccount(ctx context.Context, identity authz.Identity, in UpdateAccountInput) (*models.Account, error) {
	account, err := s.accountRepo.GetByID(ctx, in.AccountID)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(identity, authz.ActionAccountUpdate, account.ID); err != nil {
		return nil, err
	}

	if in.Username != "" {
		username := strings.TrimSpace(in.Username)
		if len(username) > maxUsernameLen {
			return nil, models.NewValidationError("Username too long (max 30 characters)")
		}
		if username != account.Username {
			existing, err := s.accountRepo.GetByUsername(ctx, username)
			if err != nil {
				return nil, err
			}
			if existing != nil {
				return nil, models.NewConflictError("username")
			}
		}
		account.Username = username
	}
	if in.Email != "" {
		email := strings.ToLower(strings.TrimSpace(in.Email))
		if !strings.Contains(email, "@") {
			return nil, models.NewValidationError("Email must be a valid address")
		}
		if email != account.Email {
			existing, err := s.accountRepo.GetByEmail(ctx, email)
			if err != nil {
				return nil, err
			}
			if existing != nil {
				return nil, models.NewConflictError("email")
			}
		}
		account.Email = email
	}
	if in.Bio != "" {
		if len(in.Bio) > maxBioLen {
			return nil, models.NewValidationError("Bio too long (max 500 characters)")
		}
		account.Bio = in.Bio
	}
	if in.Avatar != "" {
		account.Avatar = in.Avatar
	}

	if err := ctx.Err(); err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := s.accountRepo.Update(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// DeleteAccount removes the account and then its authored articles. There is
// no transaction across the two steps: if the second fails, the account is
// already gone and the caller gets PARTIAL_FAILURE naming the orphaned step.
func (s *AccountService) DeleteAccount(ctx context.Context, identity authz.Identity, id uint) error {
	account, err := s.accountRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authz.Authorize(identity, authz.ActionAccountDelete, account.ID); err != nil {
		return err
	}

	// Cancellation is honored up to here; once the first write lands the
	// cascade runs to completion or reports the partial state.
	if err := ctx.Err(); err != nil {
		return models.NewInternalError(err)
	}

	if err := s.accountRepo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.articleRepo.DeleteByAuthor(context.WithoutCancel(ctx), id); err != nil {
		observability.CascadePartialFailures.WithLabelValues("account_delete").Inc()
		middleware.Logger.ErrorContext(ctx, "account deleted but article cascade failed",
			"account_id", id, "error", err)
		return models.NewPartialFailureError("delete authored articles", err)
	}

	middleware.Logger.InfoContext(ctx, "account deleted", "account_id", id)
	return nil
}
