package repository

import "gorm.io/gorm"

// NewGormRepositories wires every GORM repository over one connection
func NewGormRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Boards:            NewBoardRepository(db),
		Cards:             NewCardRepository(db),
		Tasks:             NewTaskRepository(db),
		Invitations:       NewInvitationRepository(db),
		Attachments:       NewAttachmentRepository(db),
		Users:             NewUserRepository(db),
		VerificationCodes: NewVerificationCodeRepository(db),
	}
}
