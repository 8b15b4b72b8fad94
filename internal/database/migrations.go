package database

import (
	"fmt"

	"github.com/yukikurage/minitrello-api/internal/models"
	"gorm.io/gorm"
)

// AddIndexes adds the composite indexes used by the read paths
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		model   interface{}
		name    string
		columns string
	}{
		// list cards of a board, newest first
		{&models.Card{}, "idx_cards_board_created", "board_id, created_at"},
		// list tasks of a card by order
		{&models.Task{}, "idx_tasks_card_order", "card_id, sort_order"},
		// pending invitations for a user
		{&models.Invitation{}, "idx_invitations_member_status", "member_id, status"},
	}

	migrator := db.Migrator()
	for _, idx := range indexes {
		if migrator.HasIndex(idx.model, idx.name) {
			continue
		}

		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(idx.model); err != nil {
			return fmt.Errorf("failed to parse model for index %s: %w", idx.name, err)
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, stmt.Schema.Table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}

	return nil
}
