package appointments

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListPendingWindow(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewStore(mock)
	patientID := uuid.New()
	from := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 14)

	apptID, clinicID, profID := uuid.New(), uuid.New(), uuid.New()
	mock.ExpectQuery("SELECT id, patient_id, clinic_id, professional_id").
		WithArgs(patientID, StatusScheduled, from, to).
		WillReturnRows(pgxmock.NewRows([]string{"id", "patient_id", "clinic_id", "professional_id", "date", "time", "status"}).
			AddRow(apptID, patientID, clinicID, profID, time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC), "14:30:00", StatusScheduled))

	got, err := store.ListPendingWindow(context.Background(), patientID, from, to)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, apptID, got[0].ID)
	assert.Equal(t, "14:30:00", got[0].Time)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveConfirm(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewStore(mock)
	id := uuid.New()
	respondedAt := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec("UPDATE appointments").
		WithArgs(id, StatusConfirmed, true, respondedAt).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, store.Resolve(context.Background(), id, StatusConfirmed, respondedAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveCancelClearsConfirmedFlag(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewStore(mock)
	id := uuid.New()
	respondedAt := time.Now().UTC()

	mock.ExpectExec("UPDATE appointments").
		WithArgs(id, StatusCancelled, false, respondedAt).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, store.Resolve(context.Background(), id, StatusCancelled, respondedAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveMissingRow(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewStore(mock)
	id := uuid.New()

	mock.ExpectExec("UPDATE appointments").
		WithArgs(id, StatusConfirmed, true, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = store.Resolve(context.Background(), id, StatusConfirmed, time.Now())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListForReminder(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewStore(mock)
	tomorrow := time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT a.id, a.patient_id").
		WithArgs(StatusScheduled, tomorrow).
		WillReturnRows(pgxmock.NewRows([]string{"id", "patient_id", "clinic_id", "professional_id", "date", "time", "status", "full_name", "phone"}).
			AddRow(uuid.New(), uuid.New(), uuid.New(), uuid.New(), tomorrow, "09:00:00", StatusScheduled, "Carlos Dias", "66999516222"))

	got, err := store.ListForReminder(context.Background(), tomorrow)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Carlos Dias", got[0].PatientName)
	assert.Equal(t, "66999516222", got[0].PatientPhone)
	assert.NoError(t, mock.ExpectationsWereMet())
}
