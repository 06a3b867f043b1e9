package messagelog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppend(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewStore(mock)
	apptID, clinicID := uuid.New(), uuid.New()

	mock.ExpectExec("INSERT INTO message_logs").
		WithArgs(pgxmock.AnyArg(), &apptID, &clinicID, "66999516222",
			TypeInboundReply, "sim", StatusReceived, "3EB0F8A1", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = store.Append(context.Background(), Entry{
		AppointmentID:     &apptID,
		ClinicID:          &clinicID,
		PatientPhone:      "66999516222",
		MessageType:       TypeInboundReply,
		Content:           "sim",
		Status:            StatusReceived,
		ExternalMessageID: "3EB0F8A1",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendWithoutAppointment(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewStore(mock)

	mock.ExpectExec("INSERT INTO message_logs").
		WithArgs(pgxmock.AnyArg(), (*uuid.UUID)(nil), (*uuid.UUID)(nil), "66999516222",
			TypeInboundReply, "talvez", StatusReceived, "", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = store.Append(context.Background(), Entry{
		PatientPhone: "66999516222",
		MessageType:  TypeInboundReply,
		Content:      "talvez",
		Status:       StatusReceived,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
