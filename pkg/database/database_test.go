package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct {
	ID   int64 `gorm:"primaryKey"`
	Name string
}

func TestNew_SQLiteCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "test.db")

	db, err := New(&Config{Driver: "sqlite", FilePath: path, MaxOpenConns: 1})
	require.NoError(t, err)
	defer Close(db)

	require.NoError(t, AutoMigrate(db, &widget{}))
	require.NoError(t, db.Create(&widget{ID: 1, Name: "a"}).Error)

	var got widget
	require.NoError(t, db.First(&got, 1).Error)
	assert.Equal(t, "a", got.Name)
}

func TestNew_RejectsUnknownDriver(t *testing.T) {
	_, err := New(&Config{Driver: "postgres"})
	assert.Error(t, err)
}

func TestNew_RequiresPath(t *testing.T) {
	_, err := New(&Config{Driver: "sqlite"})
	assert.Error(t, err)
}
