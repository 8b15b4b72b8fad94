package repository

import (
	"context"
	"time"

	"github.com/yukikurage/minitrello-api/internal/models"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db, now: time.Now}
}

// NewTaskRepositoryWithClock creates a TaskRepository whose order keys come from now
func NewTaskRepositoryWithClock(db *gorm.DB, now func() time.Time) TaskRepository {
	return &GormTaskRepository{db: db, now: now}
}

// Create creates a task and bumps the owning card's counter in one transaction.
// A missing card leaves the counter untouched without failing the create.
func (r *GormTaskRepository) Create(ctx context.Context, task *models.Task) error {
	now := r.now()
	task.Order = now.UnixMilli()
	task.CreatedAt = now
	task.UpdatedAt = now
	if task.Status == "" {
		task.Status = models.TaskStatusIcebox
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// keep keys strictly increasing within the card when the clock ties or steps back
		var last int64
		if err := tx.Model(&models.Task{}).
			Where("card_id = ?", task.CardID).
			Select("COALESCE(MAX(sort_order), 0)").
			Scan(&last).Error; err != nil {
			return err
		}
		if task.Order <= last {
			task.Order = last + 1
		}

		if err := tx.Create(task).Error; err != nil {
			return err
		}

		if err := replaceTaskAssignees(tx, task.ID, task.AssignedTo, now); err != nil {
			return err
		}
		task.AssignedTo = nonNil(uniqueStrings(task.AssignedTo))

		return tx.Model(&models.Card{}).
			Where("id = ?", task.CardID).
			UpdateColumn("tasks_count", gorm.Expr("tasks_count + ?", 1)).Error
	})
}

// FindByID finds a task by ID with its assignees
func (r *GormTaskRepository) FindByID(ctx context.Context, id string) (*models.Task, error) {
	db := r.db.WithContext(ctx)

	var task models.Task
	if err := db.Where("id = ?", id).First(&task).Error; err != nil {
		return nil, err
	}

	tasks := []models.Task{task}
	if err := loadTaskAssignees(db, tasks); err != nil {
		return nil, err
	}

	return &tasks[0], nil
}

// ListByCard retrieves a card's tasks sorted by order
func (r *GormTaskRepository) ListByCard(ctx context.Context, cardID string) ([]models.Task, error) {
	db := r.db.WithContext(ctx)

	var tasks []models.Task
	if err := db.Where("card_id = ?", cardID).
		Order("sort_order ASC").
		Order("created_at ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}

	if err := loadTaskAssignees(db, tasks); err != nil {
		return nil, err
	}

	return tasks, nil
}

// Update applies the update command; AssignedTo replaces the whole assignee set
func (r *GormTaskRepository) Update(ctx context.Context, id string, update TaskUpdate) (*models.Task, error) {
	now := r.now()

	updates := map[string]interface{}{"updated_at": now}
	if update.Title != nil {
		updates["title"] = *update.Title
	}
	if update.Description != nil {
		updates["description"] = *update.Description
	}
	if update.Status != nil {
		updates["status"] = *update.Status
	}
	if update.ClearPriority {
		updates["priority"] = nil
	} else if update.Priority != nil {
		updates["priority"] = *update.Priority
	}
	if update.ClearDeadline {
		updates["deadline"] = nil
	} else if update.Deadline != nil {
		updates["deadline"] = *update.Deadline
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Task{}).Where("id = ?", id).Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if update.AssignedTo != nil {
			return replaceTaskAssignees(tx, id, *update.AssignedTo, now)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.FindByID(ctx, id)
}

// Delete removes the task through the cascade routine
func (r *GormTaskRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteTaskTx(tx, id)
	})
}

