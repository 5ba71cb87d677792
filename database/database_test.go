package database

import (
	"context"
	"errors"
	"testing"

	"github.com/example/task-tracker/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type uniqueThing struct {
	ID   int64  `gorm:"primaryKey;autoIncrement"`
	Name string `gorm:"uniqueIndex"`
}

func TestOpen_SQLiteMemory(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)
	defer Close(db)

	require.NoError(t, Ping(ctx, db))
	assert.Contains(t, Stats(db), "open_connections")
}

func TestOpen_TranslatesDuplicateKey(t *testing.T) {
	db, err := Open(context.Background(), config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)
	defer Close(db)

	require.NoError(t, db.AutoMigrate(&uniqueThing{}))
	require.NoError(t, db.Create(&uniqueThing{Name: "a"}).Error)

	err = db.Create(&uniqueThing{Name: "a"}).Error
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey), "got %v", err)
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}

func TestPing_Nil(t *testing.T) {
	assert.Error(t, Ping(context.Background(), nil))
	assert.NoError(t, Close(nil))
}
