package main

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gerai/internal/models"
)

func TestOpenDatabaseSQLite(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := openDatabase(dsn)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", db.Dialector.Name())

	// The migration set used at startup works against SQLite.
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Address{},
		&models.Product{},
		&models.Order{},
		&models.OrderDetail{},
		&models.Payment{},
	))
}
