package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gh "github.com/google/go-github/v66/github"
	"github.com/yukikurage/minitrello-api/internal/github"
	"github.com/yukikurage/minitrello-api/internal/identity"
	"github.com/yukikurage/minitrello-api/internal/mailer"
	"github.com/yukikurage/minitrello-api/internal/models"
	"github.com/yukikurage/minitrello-api/internal/repository"
	"github.com/yukikurage/minitrello-api/internal/verification"
	"gorm.io/gorm"
)

var (
	ErrEmailAlreadyRegistered  = errors.New("this email is already registered")
	ErrVerificationCodeMissing = errors.New("no verification code found for this email")
	ErrVerificationCodeExpired = errors.New("verification code expired")
	ErrVerificationCodeInvalid = errors.New("invalid verification code")
	ErrEmailDelivery           = errors.New("failed to send verification code")
	ErrGitHubNotConfigured     = errors.New("github oauth is not configured")
	ErrGitHubNotConnected      = errors.New("github account not connected")
	ErrGitHubEmailUnavailable  = errors.New("github account has no verified email")
)

// AuthService handles e-mail code and GitHub sign-in
type AuthService struct {
	userRepo    repository.UserRepository
	codes       *verification.Service
	sender      mailer.Sender
	tokens      *identity.Provider
	github      GitHubAPI
	exposeCodes bool
}

// NewAuthService creates a new AuthService. githubAPI may be nil when OAuth is not configured;
// exposeCodes returns undelivered codes to the caller and must be false in production.
func NewAuthService(userRepo repository.UserRepository, codes *verification.Service, sender mailer.Sender, tokens *identity.Provider, githubAPI GitHubAPI, exposeCodes bool) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		codes:       codes,
		sender:      sender,
		tokens:      tokens,
		github:      githubAPI,
		exposeCodes: exposeCodes,
	}
}

// SendCodeResult reports how the code left the server
type SendCodeResult struct {
	Delivered bool
	// Code is only set when the code was not delivered and exposing it is allowed
	Code string
}

// AuthResult is a signed-in user with a bearer token
type AuthResult struct {
	Token string
	User  *models.User
}

// VerifyCodeInput represents input for signing in with an e-mail code
type VerifyCodeInput struct {
	Email       string
	Code        string
	DisplayName string
}

// SendCode issues a code for the e-mail and mails it
func (s *AuthService) SendCode(ctx context.Context, email string) (*SendCodeResult, error) {
	email = verification.NormalizeEmail(email)

	code, err := s.codes.Issue(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue code: %w", err)
	}

	if err := s.sender.SendVerificationCode(ctx, email, code); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmailDelivery, err)
	}

	result := &SendCodeResult{Delivered: s.sender.Delivers()}
	if !result.Delivered && s.exposeCodes {
		result.Code = code
	}
	return result, nil
}

// VerifyCode consumes the code and signs the user in, creating the account on first use
func (s *AuthService) VerifyCode(ctx context.Context, input VerifyCodeInput) (*AuthResult, error) {
	email := verification.NormalizeEmail(input.Email)
	if err := s.consumeCode(ctx, email, input.Code); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user, err = s.createUser(ctx, email, input.DisplayName, "")
		if errors.Is(err, ErrEmailAlreadyRegistered) {
			// registered concurrently
			user, err = s.userRepo.FindByEmail(ctx, email)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	return s.signIn(user)
}

// Signup consumes the code and creates a new account; an existing e-mail is rejected
func (s *AuthService) Signup(ctx context.Context, input VerifyCodeInput) (*AuthResult, error) {
	email := verification.NormalizeEmail(input.Email)

	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailAlreadyRegistered
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	if err := s.consumeCode(ctx, email, input.Code); err != nil {
		return nil, err
	}

	user, err := s.createUser(ctx, email, input.DisplayName, "")
	if err != nil {
		return nil, err
	}

	return s.signIn(user)
}

// CurrentUser returns the user behind a verified token
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// GitHubAuthURL returns the consent URL for the given state
func (s *AuthService) GitHubAuthURL(state string) (string, error) {
	if s.github == nil {
		return "", ErrGitHubNotConfigured
	}
	return s.github.AuthURL(state), nil
}

// CompleteGitHubLogin exchanges the code, finds or creates the user by e-mail and stores the token
func (s *AuthService) CompleteGitHubLogin(ctx context.Context, code string) (*AuthResult, error) {
	if s.github == nil {
		return nil, ErrGitHubNotConfigured
	}

	accessToken, err := s.github.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}

	profile, err := s.github.FetchProfile(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	if profile.Email == "" {
		return nil, ErrGitHubEmailUnavailable
	}

	email := verification.NormalizeEmail(profile.Email)
	user, err := s.userRepo.FindByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		displayName := profile.Name
		if displayName == "" {
			displayName = profile.Login
		}
		user, err = s.createUser(ctx, email, displayName, profile.AvatarURL)
		if errors.Is(err, ErrEmailAlreadyRegistered) {
			user, err = s.userRepo.FindByEmail(ctx, email)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	err = s.userRepo.LinkGitHub(ctx, user.ID, repository.GitHubLink{
		GitHubID:    profile.ID,
		Login:       profile.Login,
		AccessToken: accessToken,
		PhotoURL:    profile.AvatarURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store GitHub token: %w", err)
	}

	user, err = s.userRepo.FindByID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload user: %w", err)
	}

	return s.signIn(user)
}

// GitHubToken returns the stored GitHub access token and login of the user
func (s *AuthService) GitHubToken(ctx context.Context, userID string) (string, string, error) {
	user, err := s.CurrentUser(ctx, userID)
	if err != nil {
		return "", "", err
	}
	if !user.HasGitHub() {
		return "", "", ErrGitHubNotConnected
	}
	return user.GitHubAccessToken, user.GitHubLogin, nil
}

func (s *AuthService) consumeCode(ctx context.Context, email, code string) error {
	err := s.codes.Verify(ctx, email, code)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, verification.ErrCodeNotFound):
		return ErrVerificationCodeMissing
	case errors.Is(err, verification.ErrCodeExpired):
		return ErrVerificationCodeExpired
	case errors.Is(err, verification.ErrCodeInvalid):
		return ErrVerificationCodeInvalid
	default:
		return fmt.Errorf("failed to verify code: %w", err)
	}
}

func (s *AuthService) createUser(ctx context.Context, email, displayName, photoURL string) (*models.User, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		displayName = defaultDisplayName(email)
	}

	user := &models.User{
		Email:       email,
		DisplayName: displayName,
		PhotoURL:    photoURL,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailAlreadyRegistered
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

func (s *AuthService) signIn(user *models.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

// defaultDisplayName is the local part of the e-mail
func defaultDisplayName(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}

// GitHubAPI is the part of the GitHub client the services use
type GitHubAPI interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (string, error)
	FetchProfile(ctx context.Context, accessToken string) (*github.Profile, error)
	ListRepositories(ctx context.Context, accessToken string) ([]*gh.Repository, error)
	RepositoryInfo(ctx context.Context, accessToken, owner, repo string) (*github.RepositoryInfo, error)
}
