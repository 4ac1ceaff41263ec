package bookings

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockRepository(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: conn}), &gorm.Config{
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
	})
	require.NoError(t, err)

	return NewRepository(db), mock
}

func TestMarkConfirmedConditionalOnPending(t *testing.T) {
	repo, mock := newMockRepository(t)
	id := uuid.New()

	mock.ExpectExec(`UPDATE "reservations" SET`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), id, string(StatusPending)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	confirmed, err := repo.MarkConfirmed(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, confirmed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkConfirmedLosesToSettledRow(t *testing.T) {
	repo, mock := newMockRepository(t)
	id := uuid.New()

	// The precondition matches nothing once the row left PENDING
	mock.ExpectExec(`UPDATE "reservations" SET`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), id, string(StatusPending)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	confirmed, err := repo.MarkConfirmed(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, confirmed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkReleasedConditionalOnPending(t *testing.T) {
	repo, mock := newMockRepository(t)
	id := uuid.New()

	mock.ExpectExec(`UPDATE "reservations" SET`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), id, string(StatusPending)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	released, err := repo.MarkReleased(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, released)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDNotFound(t *testing.T) {
	repo, mock := newMockRepository(t)
	id := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "reservations"`).
		WithArgs(id, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByID(context.Background(), id)
	assert.ErrorIs(t, err, ErrReservationNotFound)
}

func TestGetByGatewayOrderIDNotFound(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`SELECT \* FROM "payment_orders"`).
		WithArgs("order_missing", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByGatewayOrderID(context.Background(), "order_missing")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestUpdateOrderOmitsEmptyFields(t *testing.T) {
	repo, mock := newMockRepository(t)

	// status, processed_at, updated_at only; no payment_id or
	// failure_reason columns when they are empty
	mock.ExpectExec(`UPDATE "payment_orders" SET`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), "order_x").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateOrder(context.Background(), "order_x", OrderCancelled, "", "")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
