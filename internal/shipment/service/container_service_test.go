package service

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dandeat/barkir-core/internal/shipment/model"
)

func setupTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return db, sqlMock
}

func containerRows(id uuid.UUID, state model.ContainerState) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "container_no", "state"}).
		AddRow(id, "TGHU1234567", string(state))
}

func TestContainerService_GateOutFromGateIn(t *testing.T) {
	db, sqlMock := setupTestDB(t)
	service := NewContainerService(db)
	id := uuid.New()

	sqlMock.ExpectBegin()
	sqlMock.ExpectQuery(`SELECT \* FROM "containers"`).
		WillReturnRows(containerRows(id, model.ContainerStateGateIn))
	sqlMock.ExpectExec(`UPDATE "containers"`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	sqlMock.ExpectCommit()

	container, err := service.GateOut(context.Background(), id.String())
	require.NoError(t, err)
	assert.Equal(t, model.ContainerStateGateOut, container.State)
	assert.NotNil(t, container.GateOutTime)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestContainerService_GateOutRejectedBeforeGateIn(t *testing.T) {
	db, sqlMock := setupTestDB(t)
	service := NewContainerService(db)
	id := uuid.New()

	for _, state := range []model.ContainerState{
		model.ContainerStateDraft,
		model.ContainerStateArrived,
		model.ContainerStateGateOut,
		model.ContainerStateCompleted,
	} {
		sqlMock.ExpectBegin()
		sqlMock.ExpectQuery(`SELECT \* FROM "containers"`).
			WillReturnRows(containerRows(id, state))
		sqlMock.ExpectRollback()

		_, err := service.GateOut(context.Background(), id.String())
		assert.ErrorIs(t, err, ErrInvalidTransition, "state %s", state)
	}
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestContainerService_GateInRequiresArrived(t *testing.T) {
	db, sqlMock := setupTestDB(t)
	service := NewContainerService(db)
	id := uuid.New()

	sqlMock.ExpectBegin()
	sqlMock.ExpectQuery(`SELECT \* FROM "containers"`).
		WillReturnRows(containerRows(id, model.ContainerStateDraft))
	sqlMock.ExpectRollback()

	_, err := service.GateIn(context.Background(), id.String())
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestContainerService_ResetToDraftClearsGateTimes(t *testing.T) {
	db, sqlMock := setupTestDB(t)
	service := NewContainerService(db)
	id := uuid.New()

	sqlMock.ExpectBegin()
	sqlMock.ExpectQuery(`SELECT \* FROM "containers"`).
		WillReturnRows(containerRows(id, model.ContainerStateGateOut))
	sqlMock.ExpectExec(`UPDATE "containers"`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	sqlMock.ExpectCommit()

	container, err := service.ResetToDraft(context.Background(), id.String())
	require.NoError(t, err)
	assert.Equal(t, model.ContainerStateDraft, container.State)
	assert.Nil(t, container.GateInTime)
	assert.Nil(t, container.GateOutTime)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestContainerService_NotFound(t *testing.T) {
	db, sqlMock := setupTestDB(t)
	service := NewContainerService(db)

	sqlMock.ExpectBegin()
	sqlMock.ExpectQuery(`SELECT \* FROM "containers"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "container_no", "state"}))
	sqlMock.ExpectRollback()

	_, err := service.GateIn(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, ErrContainerNotFound)
}

func TestContainerService_CreateRequiresContainerNo(t *testing.T) {
	db, _ := setupTestDB(t)
	service := NewContainerService(db)

	err := service.Create(context.Background(), &model.Container{})
	assert.Error(t, err)
}
