package service

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dandeat/barkir-core/internal/shipment/model"
)

// MockGateExchangeDeriver is a mock implementation of GateExchangeDeriver
type MockGateExchangeDeriver struct {
	mock.Mock
}

func (m *MockGateExchangeDeriver) DeriveGateIn(ctx context.Context, tx *gorm.DB, sh *model.Shipment, plateNo string) error {
	args := m.Called(ctx, tx, sh, plateNo)
	return args.Error(0)
}

func (m *MockGateExchangeDeriver) DeriveGateOut(ctx context.Context, tx *gorm.DB, sh *model.Shipment) error {
	args := m.Called(ctx, tx, sh)
	return args.Error(0)
}

func shipmentRows(id uuid.UUID, state model.ShipmentState) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "call_sign", "container_size", "state"}).
		AddRow(id, "MBL-2025-001", "YBNM", "20", string(state))
}

func TestShipmentService_CreateRejectsDuplicateMasterNo(t *testing.T) {
	db, sqlMock := setupTestDB(t)
	service := NewShipmentService(db, new(MockGateExchangeDeriver))

	sqlMock.ExpectBegin()
	sqlMock.ExpectQuery(`SELECT count\(\*\) FROM "shipments"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	sqlMock.ExpectRollback()

	err := service.Create(context.Background(), &model.Shipment{Name: "MBL-2025-001"})
	assert.ErrorIs(t, err, ErrDuplicateMasterNo)
}

func TestShipmentService_ConfirmOnlyFromDraft(t *testing.T) {
	db, sqlMock := setupTestDB(t)
	service := NewShipmentService(db, new(MockGateExchangeDeriver))
	id := uuid.New()

	sqlMock.ExpectBegin()
	sqlMock.ExpectQuery(`SELECT \* FROM "shipments"`).
		WillReturnRows(shipmentRows(id, model.ShipmentStateIn))
	sqlMock.ExpectRollback()

	_, err := service.Confirm(context.Background(), id.String())
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestShipmentService_ClearanceFollowsGateIn(t *testing.T) {
	db, sqlMock := setupTestDB(t)
	service := NewShipmentService(db, new(MockGateExchangeDeriver))
	id := uuid.New()

	sqlMock.ExpectBegin()
	sqlMock.ExpectQuery(`SELECT \* FROM "shipments"`).
		WillReturnRows(shipmentRows(id, model.ShipmentStateIn))
	sqlMock.ExpectExec(`UPDATE "shipments"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	sqlMock.ExpectCommit()

	shipment, err := service.StartClearance(context.Background(), id.String())
	assert.NoError(t, err)
	assert.Equal(t, model.ShipmentStateOnClearance, shipment.State)
}

func TestShipmentService_CompleteClearanceOnlyWhileOnClearance(t *testing.T) {
	db, sqlMock := setupTestDB(t)
	service := NewShipmentService(db, new(MockGateExchangeDeriver))
	id := uuid.New()

	sqlMock.ExpectBegin()
	sqlMock.ExpectQuery(`SELECT \* FROM "shipments"`).
		WillReturnRows(shipmentRows(id, model.ShipmentStateConfirmed))
	sqlMock.ExpectRollback()

	_, err := service.CompleteClearance(context.Background(), id.String())
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestShipmentService_GateInRequiresTimeAndPlate(t *testing.T) {
	db, _ := setupTestDB(t)
	service := NewShipmentService(db, new(MockGateExchangeDeriver))

	_, err := service.GateIn(context.Background(), uuid.NewString(), &GateInRequest{PlateNo: "B 9090 XY"})
	assert.ErrorIs(t, err, ErrMissingGateData)

	_, err = service.GateIn(context.Background(), uuid.NewString(), &GateInRequest{GateInTime: time.Now()})
	assert.ErrorIs(t, err, ErrMissingGateData)
}

func TestShipmentService_GateInDerivesExchange(t *testing.T) {
	db, sqlMock := setupTestDB(t)
	deriver := new(MockGateExchangeDeriver)
	service := NewShipmentService(db, deriver)
	id := uuid.New()

	sqlMock.ExpectBegin()
	sqlMock.ExpectQuery(`SELECT \* FROM "shipments"`).
		WillReturnRows(shipmentRows(id, model.ShipmentStateConfirmed))
	sqlMock.ExpectExec(`UPDATE "shipments"`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	sqlMock.ExpectCommit()

	deriver.On("DeriveGateIn", mock.Anything, mock.Anything, mock.Anything, "B 9090 XY").Return(nil)

	shipment, err := service.GateIn(context.Background(), id.String(), &GateInRequest{
		GateInTime: time.Date(2025, 3, 15, 9, 30, 0, 0, time.UTC),
		PlateNo:    "B 9090 XY",
		PLPNo:      "PLP-000777",
	})
	require.NoError(t, err)
	assert.Equal(t, model.ShipmentStateIn, shipment.State)
	assert.Equal(t, "PLP-000777", shipment.PLPNo)
	require.NotNil(t, shipment.GateInTime)
	deriver.AssertExpectations(t)
}

func TestShipmentService_GateOutRequiresGateInData(t *testing.T) {
	db, sqlMock := setupTestDB(t)
	service := NewShipmentService(db, new(MockGateExchangeDeriver))
	id := uuid.New()

	// Call sign was never recorded
	sqlMock.ExpectBegin()
	sqlMock.ExpectQuery(`SELECT \* FROM "shipments"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "call_sign", "container_size", "state"}).
			AddRow(id, "MBL-2025-001", "", "20", string(model.ShipmentStateIn)))
	sqlMock.ExpectRollback()

	_, err := service.GateOut(context.Background(), id.String(), &GateOutRequest{GateOutTime: time.Now()})
	assert.ErrorIs(t, err, ErrMissingGateData)
}

func TestShipmentService_GateOutDerivesExchange(t *testing.T) {
	db, sqlMock := setupTestDB(t)
	deriver := new(MockGateExchangeDeriver)
	service := NewShipmentService(db, deriver)
	id := uuid.New()

	sqlMock.ExpectBegin()
	sqlMock.ExpectQuery(`SELECT \* FROM "shipments"`).
		WillReturnRows(shipmentRows(id, model.ShipmentStateIn))
	sqlMock.ExpectExec(`UPDATE "shipments"`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	sqlMock.ExpectCommit()

	deriver.On("DeriveGateOut", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	shipment, err := service.GateOut(context.Background(), id.String(), &GateOutRequest{
		GateOutTime: time.Date(2025, 3, 20, 16, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.NotNil(t, shipment.GateOutTime)
	deriver.AssertExpectations(t)
}
