package repository

import (
	"time"

	"github.com/yukikurage/minitrello-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// addBoardMember inserts the membership row unless it already exists
func addBoardMember(tx *gorm.DB, boardID, userID string, now time.Time) error {
	return tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.BoardMember{BoardID: boardID, UserID: userID, JoinedAt: now}).Error
}

func loadBoardMembers(tx *gorm.DB, boards []models.Board) error {
	if len(boards) == 0 {
		return nil
	}

	ids := make([]string, len(boards))
	for i := range boards {
		ids[i] = boards[i].ID
	}

	var rows []models.BoardMember
	if err := tx.Where("board_id IN ?", ids).Order("joined_at ASC").Find(&rows).Error; err != nil {
		return err
	}

	byBoard := make(map[string][]string, len(boards))
	for _, row := range rows {
		byBoard[row.BoardID] = append(byBoard[row.BoardID], row.UserID)
	}
	for i := range boards {
		boards[i].Members = nonNil(byBoard[boards[i].ID])
	}
	return nil
}

func loadCardMembers(tx *gorm.DB, cards []models.Card) error {
	if len(cards) == 0 {
		return nil
	}

	ids := make([]string, len(cards))
	for i := range cards {
		ids[i] = cards[i].ID
	}

	var rows []models.CardMember
	if err := tx.Where("card_id IN ?", ids).Order("joined_at ASC").Find(&rows).Error; err != nil {
		return err
	}

	byCard := make(map[string][]string, len(cards))
	for _, row := range rows {
		byCard[row.CardID] = append(byCard[row.CardID], row.UserID)
	}
	for i := range cards {
		cards[i].Members = nonNil(byCard[cards[i].ID])
	}
	return nil
}

func loadTaskAssignees(tx *gorm.DB, tasks []models.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	ids := make([]string, len(tasks))
	for i := range tasks {
		ids[i] = tasks[i].ID
	}

	var rows []models.TaskAssignee
	if err := tx.Where("task_id IN ?", ids).Order("created_at ASC").Find(&rows).Error; err != nil {
		return err
	}

	byTask := make(map[string][]string, len(tasks))
	for _, row := range rows {
		byTask[row.TaskID] = append(byTask[row.TaskID], row.UserID)
	}
	for i := range tasks {
		tasks[i].AssignedTo = nonNil(byTask[tasks[i].ID])
	}
	return nil
}

// replaceTaskAssignees swaps the whole assigned-user set of a task
func replaceTaskAssignees(tx *gorm.DB, taskID string, userIDs []string, now time.Time) error {
	if err := tx.Where("task_id = ?", taskID).Delete(&models.TaskAssignee{}).Error; err != nil {
		return err
	}

	unique := uniqueStrings(userIDs)
	if len(unique) == 0 {
		return nil
	}

	rows := make([]models.TaskAssignee, len(unique))
	for i, userID := range unique {
		rows[i] = models.TaskAssignee{TaskID: taskID, UserID: userID, CreatedAt: now}
	}
	return tx.Create(&rows).Error
}

// uniqueStrings removes duplicates and empty values, keeping first-seen order
func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))

	for _, v := range values {
		if v == "" {
			continue
		}
		if _, exists := seen[v]; exists {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}

	return result
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
