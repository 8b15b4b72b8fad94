package services

import (
	"context"

	gh "github.com/google/go-github/v66/github"
	"github.com/yukikurage/minitrello-api/internal/github"
)

// GitHubService browses repositories with the user's stored GitHub token
type GitHubService struct {
	auth *AuthService
	api  GitHubAPI
}

// NewGitHubService creates a new GitHubService
func NewGitHubService(auth *AuthService, api GitHubAPI) *GitHubService {
	return &GitHubService{auth: auth, api: api}
}

// ListRepositories lists the user's repositories
func (s *GitHubService) ListRepositories(ctx context.Context, userID string) ([]*gh.Repository, error) {
	token, _, err := s.auth.GitHubToken(ctx, userID)
	if err != nil {
		return nil, err
	}
	if s.api == nil {
		return nil, ErrGitHubNotConfigured
	}
	return s.api.ListRepositories(ctx, token)
}

// RepositoryInfo returns branches, pull requests, issues and commits of a repository
func (s *GitHubService) RepositoryInfo(ctx context.Context, userID, owner, repo string) (*github.RepositoryInfo, error) {
	token, _, err := s.auth.GitHubToken(ctx, userID)
	if err != nil {
		return nil, err
	}
	if s.api == nil {
		return nil, ErrGitHubNotConfigured
	}
	return s.api.RepositoryInfo(ctx, token, owner, repo)
}
