package database

import (
	"bytes"
	"log/slog"
	"testing"

	"blog/internal/config"
	"blog/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Open(&config.Config{
		DatabaseDriver: config.DriverSQLite,
		DatabaseDSN:    "file:" + t.Name() + "?mode=memory&cache=shared",
	})
	require.NoError(t, err)
	t.Cleanup(func() { Close(db) })
	require.NoError(t, Migrate(db))
	return db
}

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := Open(&config.Config{DatabaseDriver: "oracle", DatabaseDSN: "x"})
	assert.Error(t, err)
}

func TestMigrateAndPing(t *testing.T) {
	db := openTestDB(t)
	assert.NoError(t, Ping(db))
	for _, table := range []string{"user", "post", "session"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}

func TestStoreLogsGoThroughSlog(t *testing.T) {
	db := openTestDB(t)
	logs := captureLogs(t)

	var user models.User
	err := db.First(&user, "email = ?", "nobody@example.com").Error
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.Empty(t, logs.String(), "a missing row is not worth a log line")

	err = db.Exec("SELECT * FROM no_such_table").Error
	require.Error(t, err)
	out := logs.String()
	assert.Contains(t, out, `"msg":"gorm"`)
	assert.Contains(t, out, "no_such_table")
	assert.NotContains(t, out, "\x1b[", "no terminal colour codes")
}
