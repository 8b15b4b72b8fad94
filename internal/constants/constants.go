package constants

import "time"

// Context keys
const (
	ContextKeyUserID  = "user_id"
	ContextKeyEmail   = "user_email"
	ContextKeyBoard   = "board"
	SessionKeyOAuth   = "github_oauth_state"
	SessionCookieName = "trello_session"
)

// Pagination
const (
	DefaultPageSize = 20
	// the invite picker never needs more than one screen of users
	MaxUserPageSize = 50
)

// Verification codes
const (
	VerificationCodeLength = 6
	VerificationCodeTTL    = 10 * time.Minute
)

// AI task drafts
const (
	MaxAIGeneratedTasks = 20
	MaxAIInputLength    = 4000
)

// GitHub listing sizes
const (
	GitHubRepositoriesPerPage = 100
	GitHubItemsPerPage        = 50
)
