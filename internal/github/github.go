// Package github wraps the GitHub OAuth exchange and the REST calls the board uses.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	gh "github.com/google/go-github/v66/github"
	"github.com/yukikurage/minitrello-api/internal/config"
	"github.com/yukikurage/minitrello-api/internal/constants"
	"golang.org/x/oauth2"
	githuboauth "golang.org/x/oauth2/github"
	"golang.org/x/sync/errgroup"
)

// ErrUpstream marks failures reported by GitHub itself
var ErrUpstream = errors.New("github: upstream request failed")

var oauthScopes = []string{"user:email", "repo"}

// Profile is the subset of the GitHub user the board stores
type Profile struct {
	ID        int64
	Login     string
	Name      string
	Email     string
	AvatarURL string
}

// RepositoryInfo bundles what the attach dialog shows for one repository
type RepositoryInfo struct {
	RepositoryID string                 `json:"repositoryId"`
	Branches     []*gh.Branch           `json:"branches"`
	Pulls        []*gh.PullRequest      `json:"pulls"`
	Issues       []*gh.Issue            `json:"issues"`
	Commits      []*gh.RepositoryCommit `json:"commits"`
}

// Client talks to github.com on behalf of signed-in users
type Client struct {
	oauth   *oauth2.Config
	baseURL *url.URL
	http    *http.Client
}

func NewClient(cfg config.GitHubConfig) *Client {
	return &Client{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.CallbackURL,
			Endpoint:     githuboauth.Endpoint,
			Scopes:       oauthScopes,
		},
	}
}

// AuthURL returns the consent page URL carrying state
func (c *Client) AuthURL(state string) string {
	return c.oauth.AuthCodeURL(state)
}

// Exchange trades an authorization code for an access token
func (c *Client) Exchange(ctx context.Context, code string) (string, error) {
	if c.http != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, c.http)
	}

	token, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return "", upstream(err)
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("%w: no access token in response", ErrUpstream)
	}
	return token.AccessToken, nil
}

// FetchProfile loads the user and, when the profile hides it, the primary verified e-mail
func (c *Client) FetchProfile(ctx context.Context, accessToken string) (*Profile, error) {
	api := c.api(accessToken)

	user, _, err := api.Users.Get(ctx, "")
	if err != nil {
		return nil, upstream(err)
	}

	profile := &Profile{
		ID:        user.GetID(),
		Login:     user.GetLogin(),
		Name:      user.GetName(),
		Email:     user.GetEmail(),
		AvatarURL: user.GetAvatarURL(),
	}

	if profile.Email == "" {
		emails, _, err := api.Users.ListEmails(ctx, nil)
		if err != nil {
			return nil, upstream(err)
		}
		profile.Email = primaryEmail(emails)
	}

	return profile, nil
}

// ListRepositories lists the user's repositories, most recently updated first
func (c *Client) ListRepositories(ctx context.Context, accessToken string) ([]*gh.Repository, error) {
	repos, _, err := c.api(accessToken).Repositories.ListByAuthenticatedUser(ctx, &gh.RepositoryListByAuthenticatedUserOptions{
		Sort:        "updated",
		ListOptions: gh.ListOptions{PerPage: constants.GitHubRepositoriesPerPage},
	})
	if err != nil {
		return nil, upstream(err)
	}
	return repos, nil
}

// RepositoryInfo fetches branches, pull requests, issues and commits in parallel.
// Pull requests are filtered out of the issue list.
func (c *Client) RepositoryInfo(ctx context.Context, accessToken, owner, repo string) (*RepositoryInfo, error) {
	api := c.api(accessToken)
	page := gh.ListOptions{PerPage: constants.GitHubItemsPerPage}

	info := &RepositoryInfo{RepositoryID: owner + "/" + repo}
	var allIssues []*gh.Issue

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		branches, _, err := api.Repositories.ListBranches(ctx, owner, repo, &gh.BranchListOptions{ListOptions: page})
		info.Branches = branches
		return err
	})
	g.Go(func() error {
		pulls, _, err := api.PullRequests.List(ctx, owner, repo, &gh.PullRequestListOptions{State: "all", ListOptions: page})
		info.Pulls = pulls
		return err
	})
	g.Go(func() error {
		issues, _, err := api.Issues.ListByRepo(ctx, owner, repo, &gh.IssueListByRepoOptions{State: "all", ListOptions: page})
		allIssues = issues
		return err
	})
	g.Go(func() error {
		commits, _, err := api.Repositories.ListCommits(ctx, owner, repo, &gh.CommitsListOptions{ListOptions: page})
		info.Commits = commits
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, upstream(err)
	}

	info.Issues = make([]*gh.Issue, 0, len(allIssues))
	for _, issue := range allIssues {
		if !issue.IsPullRequest() {
			info.Issues = append(info.Issues, issue)
		}
	}

	return info, nil
}

func (c *Client) api(accessToken string) *gh.Client {
	client := gh.NewClient(c.http).WithAuthToken(accessToken)
	if c.baseURL != nil {
		client.BaseURL = c.baseURL
	}
	return client
}

func primaryEmail(emails []*gh.UserEmail) string {
	for _, e := range emails {
		if e.GetPrimary() && e.GetVerified() {
			return e.GetEmail()
		}
	}
	for _, e := range emails {
		if e.GetVerified() {
			return e.GetEmail()
		}
	}
	return ""
}

// upstream wraps a GitHub failure, keeping GitHub's own message when there is one
func upstream(err error) error {
	var apiErr *gh.ErrorResponse
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return fmt.Errorf("%w: %s", ErrUpstream, apiErr.Message)
	}
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) && retrieveErr.ErrorDescription != "" {
		return fmt.Errorf("%w: %s", ErrUpstream, retrieveErr.ErrorDescription)
	}
	return fmt.Errorf("%w: %v", ErrUpstream, err)
}
