package db

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/vallyhouse/vally-backend/pkg/db/models"
)

func openTestClient(t *testing.T) *Client {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.Contact{}))
	return NewWithConn(conn)
}

func TestWithTxCommits(t *testing.T) {
	client := openTestClient(t)

	err := client.WithTx(context.Background(), func(tx *gorm.DB) error {
		return tx.Create(&models.Contact{
			Name:    "Amina",
			Email:   "amina@example.com",
			Subject: "silk stock",
			Content: "do you restock raw silk?",
		}).Error
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, client.DB().Model(&models.Contact{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	client := openTestClient(t)

	err := client.WithTx(context.Background(), func(tx *gorm.DB) error {
		if err := tx.Create(&models.Contact{
			Name:    "Amina",
			Email:   "amina@example.com",
			Subject: "subject",
			Content: "content",
		}).Error; err != nil {
			return err
		}
		return fmt.Errorf("boom")
	})
	require.Error(t, err)

	var count int64
	require.NoError(t, client.DB().Model(&models.Contact{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, IsUniqueViolation(nil, ""))
	assert.True(t, IsUniqueViolation(fmt.Errorf("duplicate key value violates unique constraint"), ""))
	assert.True(t, IsUniqueViolation(fmt.Errorf("UNIQUE constraint failed: users.email"), ""))
	assert.True(t, IsUniqueViolation(fmt.Errorf("constraint idx_users_email broken"), "idx_users_email"))
	assert.False(t, IsUniqueViolation(fmt.Errorf("connection refused"), ""))
}
