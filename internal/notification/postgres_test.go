package notification

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresRepository(sqlx.NewDb(db, "postgres")), mock
}

func TestCreateNotification(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`INSERT INTO notifications`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), &Notification{
		ID: "n1", Type: TypeFollow, FromID: "a", ToID: "b", CreatedAt: time.Now(),
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByRecipientNewestFirst(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "type", "from_id", "to_id", "is_read", "created_at"}).
		AddRow("n2", TypeFollow, "c", "b", false, now).
		AddRow("n1", TypeFollow, "a", "b", true, now.Add(-time.Minute))
	mock.ExpectQuery(`SELECT (.+) FROM notifications WHERE to_id=\$1 ORDER BY created_at DESC`).
		WithArgs("b").
		WillReturnRows(rows)

	got, err := repo.ListByRecipient(context.Background(), "b")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "n2", got[0].ID)
	assert.Equal(t, "n1", got[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkAllRead(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`UPDATE notifications SET is_read=true WHERE to_id=\$1`).
		WithArgs("b").
		WillReturnResult(sqlmock.NewResult(0, 2))

	assert.NoError(t, repo.MarkAllRead(context.Background(), "b"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteByRecipient(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`DELETE FROM notifications WHERE to_id=\$1`).
		WithArgs("b").
		WillReturnResult(sqlmock.NewResult(0, 2))

	assert.NoError(t, repo.DeleteByRecipient(context.Background(), "b"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
