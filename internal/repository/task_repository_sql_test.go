package repository

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// The sqlite suites cover behavior; these tests pin the statement shape
// against the postgres dialect: the owner predicate must ride in the same
// WHERE clause as the primary key, and a zero-row update must surface as
// ErrNotFound without any follow-up query.

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 conn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestUpdateTitleSQLCarriesOwnerPredicate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTaskRepository(db)

	mock.ExpectExec(`UPDATE "tasks" SET .+ WHERE id = \$\d+ AND owner_id = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateTitle(7, 42, "Renamed")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateTitleZeroRowsIsNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTaskRepository(db)

	mock.ExpectExec(`UPDATE "tasks" SET .+ WHERE id = \$\d+ AND owner_id = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateTitle(7, 42, "Renamed")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToggleCompleteIsSingleStatement(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTaskRepository(db)

	// One UPDATE carrying both the NOT flip and the CASE over the pre-update
	// row; no SELECT before or after.
	mock.ExpectExec(`UPDATE "tasks" SET .*NOT is_completed.* WHERE id = \$\d+ AND owner_id = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.ToggleComplete(7, 42)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToggleCompleteZeroRowsIsNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTaskRepository(db)

	mock.ExpectExec(`UPDATE "tasks"`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.ToggleComplete(7, 42)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteScopesChildRowsThroughOwnedTask(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTaskRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "task_labels" WHERE task_id IN \(SELECT "id" FROM "tasks" WHERE id = \$\d+ AND owner_id = \$\d+\)`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM "subtasks" WHERE task_id IN \(SELECT "id" FROM "tasks" WHERE id = \$\d+ AND owner_id = \$\d+\)`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE FROM "tasks" WHERE id = \$\d+ AND owner_id = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	affected, err := repo.Delete(7, 42)
	assert.NoError(t, err)
	assert.True(t, affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}
