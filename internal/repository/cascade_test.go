package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestBoardDelete_RollsBackOnStoreFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	storeErr := errors.New("connection reset")

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT `id` FROM `cards`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("card-1"))
	mock.ExpectQuery("SELECT `id` FROM `tasks`").
		WillReturnError(storeErr)
	mock.ExpectRollback()

	err = NewBoardRepository(db).Delete(context.Background(), "board-1")
	assert.ErrorIs(t, err, storeErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}
