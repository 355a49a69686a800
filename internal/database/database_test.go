package database_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-lab-grader/internal/database"
	"github.com/noah-isme/gema-lab-grader/internal/models"
)

func TestConnect_SQLite(t *testing.T) {
	db, err := database.Connect("sqlite", "file::memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	require.True(t, db.Migrator().HasTable(&models.LabSubmission{}))
}

func TestConnect_Rejects(t *testing.T) {
	_, err := database.Connect("sqlite", "")
	require.Error(t, err)

	_, err = database.Connect("mysql", "root@/db")
	require.Error(t, err)
}

func TestConnectRedis(t *testing.T) {
	server := miniredis.RunT(t)

	client, err := database.ConnectRedis(context.Background(), "redis://"+server.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	_, err = database.ConnectRedis(context.Background(), "")
	require.Error(t, err)

	_, err = database.ConnectRedis(context.Background(), "::not a url")
	require.Error(t, err)
}
