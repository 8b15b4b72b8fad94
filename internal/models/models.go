package models

// All returns every persisted model, in migration order
func All() []interface{} {
	return []interface{}{
		&User{},
		&Board{},
		&BoardMember{},
		&Card{},
		&CardMember{},
		&Task{},
		&TaskAssignee{},
		&Invitation{},
		&GitHubAttachment{},
		&VerificationCode{},
	}
}
