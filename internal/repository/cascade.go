package repository

import (
	"errors"
	"fmt"

	"github.com/yukikurage/minitrello-api/internal/models"
	"gorm.io/gorm"
)

// The cascade helpers run inside the caller's transaction so a board, card or task
// delete either completes entirely or leaves the hierarchy untouched. Every step
// tolerates a missing target, which makes a failed delete safe to retry.

// decrementTasksCount lowers a card's counter by one without going below zero
var decrementTasksCount = gorm.Expr("CASE WHEN tasks_count > 0 THEN tasks_count - 1 ELSE 0 END")

func deleteTaskTx(tx *gorm.DB, taskID string) error {
	var task models.Task
	if err := tx.Where("id = ?", taskID).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("load task %s: %w", taskID, err)
	}

	if err := tx.Where("task_id = ?", taskID).Delete(&models.GitHubAttachment{}).Error; err != nil {
		return fmt.Errorf("delete attachments of task %s: %w", taskID, err)
	}

	if err := tx.Model(&models.Card{}).
		Where("id = ?", task.CardID).
		UpdateColumn("tasks_count", decrementTasksCount).Error; err != nil {
		return fmt.Errorf("decrement tasks count of card %s: %w", task.CardID, err)
	}

	if err := tx.Where("task_id = ?", taskID).Delete(&models.TaskAssignee{}).Error; err != nil {
		return fmt.Errorf("delete assignees of task %s: %w", taskID, err)
	}

	if err := tx.Where("id = ?", taskID).Delete(&models.Task{}).Error; err != nil {
		return fmt.Errorf("delete task %s: %w", taskID, err)
	}

	return nil
}

func deleteCardTx(tx *gorm.DB, cardID string) error {
	var taskIDs []string
	if err := tx.Model(&models.Task{}).Where("card_id = ?", cardID).Pluck("id", &taskIDs).Error; err != nil {
		return fmt.Errorf("list tasks of card %s: %w", cardID, err)
	}

	for _, id := range taskIDs {
		if err := deleteTaskTx(tx, id); err != nil {
			return err
		}
	}

	if err := tx.Where("card_id = ?", cardID).Delete(&models.CardMember{}).Error; err != nil {
		return fmt.Errorf("delete members of card %s: %w", cardID, err)
	}

	if err := tx.Where("id = ?", cardID).Delete(&models.Card{}).Error; err != nil {
		return fmt.Errorf("delete card %s: %w", cardID, err)
	}

	return nil
}

func deleteBoardTx(tx *gorm.DB, boardID string) error {
	var cardIDs []string
	if err := tx.Model(&models.Card{}).Where("board_id = ?", boardID).Pluck("id", &cardIDs).Error; err != nil {
		return fmt.Errorf("list cards of board %s: %w", boardID, err)
	}

	for _, id := range cardIDs {
		if err := deleteCardTx(tx, id); err != nil {
			return err
		}
	}

	// tasks whose card was already gone still reference the board
	var orphanIDs []string
	if err := tx.Model(&models.Task{}).Where("board_id = ?", boardID).Pluck("id", &orphanIDs).Error; err != nil {
		return fmt.Errorf("list orphan tasks of board %s: %w", boardID, err)
	}
	for _, id := range orphanIDs {
		if err := deleteTaskTx(tx, id); err != nil {
			return err
		}
	}

	if err := tx.Where("board_id = ?", boardID).Delete(&models.GitHubAttachment{}).Error; err != nil {
		return fmt.Errorf("delete attachments of board %s: %w", boardID, err)
	}

	if err := tx.Where("board_id = ?", boardID).Delete(&models.Invitation{}).Error; err != nil {
		return fmt.Errorf("delete invitations of board %s: %w", boardID, err)
	}

	if err := tx.Where("board_id = ?", boardID).Delete(&models.BoardMember{}).Error; err != nil {
		return fmt.Errorf("delete members of board %s: %w", boardID, err)
	}

	if err := tx.Where("id = ?", boardID).Delete(&models.Board{}).Error; err != nil {
		return fmt.Errorf("delete board %s: %w", boardID, err)
	}

	return nil
}
