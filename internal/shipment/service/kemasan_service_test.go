package service

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dandeat/barkir-core/internal/shipment/model"
)

func kemasanRows(id uuid.UUID, state model.KemasanState) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "sender_name", "receiver_name", "state"}).
		AddRow(id, "PKG-001", "PT Pengirim", "PT Penerima", string(state))
}

func TestKemasanService_TransitionInStampsGateInTime(t *testing.T) {
	db, sqlMock := setupTestDB(t)
	service := NewKemasanService(db)
	id := uuid.New()

	sqlMock.ExpectBegin()
	sqlMock.ExpectQuery(`SELECT \* FROM "kemasan_items"`).
		WillReturnRows(kemasanRows(id, model.KemasanStateDraft))
	sqlMock.ExpectExec(`UPDATE "kemasan_items"`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	sqlMock.ExpectCommit()

	kemasan, err := service.Transition(context.Background(), id.String(), model.KemasanStateIn)
	require.NoError(t, err)
	assert.Equal(t, model.KemasanStateIn, kemasan.State)
	assert.NotNil(t, kemasan.GateInTime)
	assert.Nil(t, kemasan.GateOutTime)
}

func TestKemasanService_TransitionOutStampsGateOutTime(t *testing.T) {
	db, sqlMock := setupTestDB(t)
	service := NewKemasanService(db)
	id := uuid.New()

	sqlMock.ExpectBegin()
	sqlMock.ExpectQuery(`SELECT \* FROM "kemasan_items"`).
		WillReturnRows(kemasanRows(id, model.KemasanStateCompleted))
	sqlMock.ExpectExec(`UPDATE "kemasan_items"`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	sqlMock.ExpectCommit()

	kemasan, err := service.Transition(context.Background(), id.String(), model.KemasanStateOut)
	require.NoError(t, err)
	assert.Equal(t, model.KemasanStateOut, kemasan.State)
	assert.NotNil(t, kemasan.GateOutTime)
}

func TestKemasanService_TransitionBetweenHandlingStates(t *testing.T) {
	db, sqlMock := setupTestDB(t)
	service := NewKemasanService(db)
	id := uuid.New()

	// Handling states are freely settable, even backwards
	sqlMock.ExpectBegin()
	sqlMock.ExpectQuery(`SELECT \* FROM "kemasan_items"`).
		WillReturnRows(kemasanRows(id, model.KemasanStateSPJM))
	sqlMock.ExpectExec(`UPDATE "kemasan_items"`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	sqlMock.ExpectCommit()

	kemasan, err := service.Transition(context.Background(), id.String(), model.KemasanStateXray)
	require.NoError(t, err)
	assert.Equal(t, model.KemasanStateXray, kemasan.State)
	assert.Nil(t, kemasan.GateInTime)
}

func TestKemasanService_TransitionRejectsUnknownState(t *testing.T) {
	db, _ := setupTestDB(t)
	service := NewKemasanService(db)

	_, err := service.Transition(context.Background(), uuid.NewString(), "lost")
	assert.ErrorIs(t, err, ErrUnknownKemasanState)
}

func TestKemasanService_CreateRequiresParties(t *testing.T) {
	db, _ := setupTestDB(t)
	service := NewKemasanService(db)

	err := service.Create(context.Background(), &model.Kemasan{Name: "PKG-002"})
	assert.Error(t, err)
}
