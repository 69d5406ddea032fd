package store

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitStatementsDropsCommentsAndBlanks(t *testing.T) {
	stmts := splitStatements(`
-- leading comment
CREATE TABLE a (id INT);

CREATE INDEX i ON a (id);
-- trailing comment
`)
	assert.Equal(t, []string{"CREATE TABLE a (id INT)", "CREATE INDEX i ON a (id)"}, stmts)
}

func TestMigrateAppliesEveryStatement(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer sqlDB.Close()

	for _, pattern := range []string{
		"CREATE TABLE IF NOT EXISTS teachers",
		"CREATE TABLE IF NOT EXISTS students",
		"CREATE TABLE IF NOT EXISTS teacher_attendance",
		"CREATE TABLE IF NOT EXISTS student_attendance",
		"CREATE INDEX IF NOT EXISTS idx_teacher_attendance_teacher_date",
		"CREATE INDEX IF NOT EXISTS idx_student_attendance_student_date",
	} {
		mock.ExpectExec(pattern).WillReturnResult(sqlmock.NewResult(0, 0))
	}

	db := &DB{Client: sqlDB}
	require.NoError(t, db.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNilHandlesAreSafe(t *testing.T) {
	var db *DB
	var rdb *Redis
	assert.False(t, db.Healthy(context.Background()))
	assert.NoError(t, db.Close())
	assert.False(t, rdb.Healthy(context.Background()))
	assert.NoError(t, rdb.Close())
}

func TestRedisHealthy(t *testing.T) {
	srv := miniredis.RunT(t)
	rdb := NewRedis(srv.Addr())
	defer rdb.Close()

	assert.True(t, rdb.Healthy(context.Background()))
	srv.Close()
	assert.False(t, rdb.Healthy(context.Background()))
}

func TestRedisPingNamesAddress(t *testing.T) {
	srv := miniredis.RunT(t)
	addr := srv.Addr()
	rdb := NewRedis(addr)
	defer rdb.Close()
	require.NoError(t, rdb.Ping(context.Background()))

	srv.Close()
	err := rdb.Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ping redis at "+addr)

	var unset *Redis
	assert.EqualError(t, unset.Ping(context.Background()), "redis client not configured")
}
