package database_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/km-arc/go-scoped/framework/config"
	"github.com/km-arc/go-scoped/framework/database"
)


func TestOpen_InMemory(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(ctx, config.DBConfig{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.ExecContext(ctx, `CREATE TABLE t (v TEXT NOT NULL CHECK(length(v) > 0))`)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, `INSERT INTO t (v) VALUES ('ok')`)
	require.NoError(t, err)

	var n int
	require.NoError(t, db.NewSelect().TableExpr("t").ColumnExpr("count(*)").Scan(ctx, &n))
	assert.Equal(t, 1, n)
}

func TestIsConstraintViolation(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(ctx, config.DBConfig{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.ExecContext(ctx, `CREATE TABLE t (v TEXT NOT NULL CHECK(length(v) > 0))`)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, `INSERT INTO t (v) VALUES ('')`)
	require.Error(t, err)

	assert.True(t, database.IsConstraintViolation(err))
	assert.True(t, database.IsConstraintViolation(errors.Join(errors.New("wrapped"), err)))
	assert.False(t, database.IsConstraintViolation(errors.New("other")))
	assert.False(t, database.IsConstraintViolation(nil))
}

func TestQueryLogger_LogsFailures(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	ctx := context.Background()
	db, err := database.Open(ctx, config.DBConfig{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	db.AddQueryHook(&database.QueryLogger{Logger: zap.New(core)})

	_, err = db.ExecContext(ctx, `SELECT * FROM missing_table`)
	require.Error(t, err)

	failed := logs.FilterMessage("query failed").All()
	require.Len(t, failed, 1)
	assert.Contains(t, failed[0].ContextMap()["query"], "missing_table")
}
