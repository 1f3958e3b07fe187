package db

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type noteModel struct {
	ID   uint `gorm:"primarykey"`
	Body string
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&noteModel{}))
	return gdb
}

func countNotes(t *testing.T, gdb *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, gdb.Model(&noteModel{}).Count(&n).Error)
	return n
}

func TestRunInTransaction_CommitsOnNil(t *testing.T) {
	gdb := openTestDB(t)
	tm := NewTransactionManager(gdb)

	err := tm.RunInTransaction(context.Background(), func(ctx context.Context) error {
		return tm.GetTx(ctx).Create(&noteModel{Body: "kept"}).Error
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, countNotes(t, gdb))
}

func TestRunInTransaction_RollsBackOnError(t *testing.T) {
	gdb := openTestDB(t)
	tm := NewTransactionManager(gdb)

	boom := errors.New("abort")
	err := tm.RunInTransaction(context.Background(), func(ctx context.Context) error {
		if err := tm.GetTx(ctx).Create(&noteModel{Body: "discarded"}).Error; err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.EqualValues(t, 0, countNotes(t, gdb))
}

func TestGetTxFromContext_FallsBackToDefaultHandle(t *testing.T) {
	gdb := openTestDB(t)

	handle := GetTxFromContext(context.Background(), gdb)
	require.NotNil(t, handle)
	assert.NoError(t, handle.Create(&noteModel{Body: "direct"}).Error)
	assert.EqualValues(t, 1, countNotes(t, gdb))
}
