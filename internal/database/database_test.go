package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/minitrello-api/internal/config"
	applog "github.com/yukikurage/minitrello-api/internal/logger"
	"github.com/yukikurage/minitrello-api/internal/models"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestOpenAndMigrate_SQLite(t *testing.T) {
	db, err := Open(config.DatabaseConfig{Driver: "sqlite", Name: ":memory:"}, applog.NewNop(), "error")
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	defer sqlDB.Close()

	require.NoError(t, Migrate(db))

	for _, m := range models.All() {
		assert.True(t, db.Migrator().HasTable(m))
	}
	assert.True(t, db.Migrator().HasIndex(&models.Task{}, "idx_tasks_card_order"))

	// running again is a no-op
	require.NoError(t, Migrate(db))
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Driver: "oracle"}, applog.NewNop(), "info")
	assert.Error(t, err)
}

func TestOpen_QueriesGoThroughAppLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := &applog.Logger{SugaredLogger: zap.New(core).Sugar()}

	db, err := Open(config.DatabaseConfig{Driver: "sqlite", Name: ":memory:"}, log, "error")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	defer sqlDB.Close()

	require.NoError(t, Migrate(db))

	var board models.Board
	err = db.First(&board, "id = ?", "missing").Error
	require.Error(t, err)
	assert.Zero(t, logs.FilterMessage("Query failed").Len(), "record not found is not a failure")

	require.Error(t, db.Exec("SELECT * FROM no_such_table").Error)
	failed := logs.FilterMessage("Query failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, "gorm", failed[0].ContextMap()["component"])
	assert.Contains(t, failed[0].ContextMap()["sql"], "no_such_table")
}
