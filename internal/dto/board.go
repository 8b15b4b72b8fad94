package dto

// CreateBoardRequest is the body of POST /api/boards
type CreateBoardRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// UpdateBoardRequest is the body of PATCH /api/boards/:boardId
type UpdateBoardRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// CreateCardRequest is the body of POST /api/boards/:boardId/cards
type CreateCardRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// UpdateCardRequest is the body of PATCH .../cards/:cardId
type UpdateCardRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// InviteRequest is the body of POST /api/boards/:boardId/invitations
type InviteRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// SendCodeRequest is the body of POST /api/auth/send-code
type SendCodeRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// VerifyCodeRequest is the body of POST /api/auth/verify-code and /api/auth/signup
type VerifyCodeRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Code        string `json:"code" binding:"required,len=6,numeric"`
	DisplayName string `json:"displayName" binding:"max=100"`
}

// UpdateProfileRequest is the body of PATCH /api/users/me
type UpdateProfileRequest struct {
	DisplayName string `json:"displayName" binding:"required,max=100"`
}
