package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dandeat/barkir-core/internal/archive"
	"github.com/dandeat/barkir-core/internal/audit"
	"github.com/dandeat/barkir-core/internal/config"
	"github.com/dandeat/barkir-core/internal/exchange/model"
	"github.com/dandeat/barkir-core/internal/sequence"
	shipmodel "github.com/dandeat/barkir-core/internal/shipment/model"
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

// memDriver archives payloads into a map.
type memDriver struct {
	saved map[string]string
}

func newMemDriver() *memDriver {
	return &memDriver{saved: map[string]string{}}
}

func (m *memDriver) Save(ctx context.Context, key string, body io.Reader, contentType string) error {
	payload, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.saved[key] = string(payload)
	return nil
}

func (m *memDriver) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	return nil, "", errors.New("not implemented")
}

// MockBeacukaiClient is a mock implementation of BeacukaiClient
type MockBeacukaiClient struct {
	mock.Mock
}

func (m *MockBeacukaiClient) SubmitCoco(ctx context.Context, documentXML string) (string, error) {
	args := m.Called(ctx, documentXML)
	return args.String(0), args.Error(1)
}

func (m *MockBeacukaiClient) SubmitPLP(ctx context.Context, documentXML string) (string, error) {
	args := m.Called(ctx, documentXML)
	return args.String(0), args.Error(1)
}

func (m *MockBeacukaiClient) GetPLPResponse(ctx context.Context, warehouseCode, refNumber string) (string, error) {
	args := m.Called(ctx, warehouseCode, refNumber)
	return args.String(0), args.Error(1)
}

func testBeacukaiConfig() *config.BeacukaiConfig {
	return &config.BeacukaiConfig{
		Username: "tpsuser",
		Password: "secret",
		KodeTPS:  "TPS1",
	}
}

func newTestCocoService(db *gorm.DB, client BeacukaiClient) (*CocoService, *memDriver) {
	driver := newMemDriver()
	svc := NewCocoService(
		db,
		testBeacukaiConfig(),
		client,
		sequence.NewService(db),
		audit.NewRecorder(db),
		archive.NewService(driver),
		nil,
	)
	return svc, driver
}

func cocoExchangeRows(id uuid.UUID, state model.ExchangeState) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "ref_number", "doc_code", "terminal_code", "state", "response_count"}).
		AddRow(id, "COCO000123", "5", "TPS1", string(state), 0)
}

func emptyDetailRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "coco_exchange_id", "container_no"})
}

func TestIsCocoSuccess(t *testing.T) {
	cases := []struct {
		response string
		want     bool
	}{
		{"Berhasil disimpan", true},
		{"berhasil", true},
		{"Data sudah pernah diajukan", true},
		{"Gagal: data tidak lengkap", false},
		{"", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, isCocoSuccess(tc.response), "response %q", tc.response)
	}
}

func TestCocoService_SendSuccess(t *testing.T) {
	db, sqlMock := setupTestDB(t)
	client := new(MockBeacukaiClient)
	svc, driver := newTestCocoService(db, client)
	id := uuid.New()

	sqlMock.ExpectQuery(`SELECT \* FROM "coco_exchanges"`).
		WillReturnRows(cocoExchangeRows(id, model.ExchangeStateReady))
	sqlMock.ExpectQuery(`SELECT \* FROM "coco_container_details"`).
		WillReturnRows(emptyDetailRows())

	client.On("SubmitCoco", mock.Anything, mock.Anything).Return("Berhasil disimpan", nil)

	sqlMock.ExpectBegin()
	sqlMock.ExpectExec(`INSERT INTO "audit_notes"`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	sqlMock.ExpectExec(`UPDATE "coco_exchanges"`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	sqlMock.ExpectCommit()

	ex, err := svc.Send(context.Background(), id.String())
	require.NoError(t, err)
	assert.Equal(t, model.ExchangeStateCompleted, ex.State)
	assert.Equal(t, 1, ex.ResponseCount)
	assert.Equal(t, "Berhasil disimpan", ex.LastResponse)
	assert.Len(t, driver.saved, 2) // request and response payloads archived
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestCocoService_SendRejectedKeepsResponseText(t *testing.T) {
	db, sqlMock := setupTestDB(t)
	client := new(MockBeacukaiClient)
	svc, _ := newTestCocoService(db, client)
	id := uuid.New()

	sqlMock.ExpectQuery(`SELECT \* FROM "coco_exchanges"`).
		WillReturnRows(cocoExchangeRows(id, model.ExchangeStateReady))
	sqlMock.ExpectQuery(`SELECT \* FROM "coco_container_details"`).
		WillReturnRows(emptyDetailRows())

	client.On("SubmitCoco", mock.Anything, mock.Anything).Return("Gagal: nomor container tidak dikenal", nil)

	sqlMock.ExpectBegin()
	sqlMock.ExpectExec(`INSERT INTO "audit_notes"`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	sqlMock.ExpectExec(`UPDATE "coco_exchanges"`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	sqlMock.ExpectCommit()

	ex, err := svc.Send(context.Background(), id.String())
	assert.ErrorIs(t, err, ErrSubmissionRejected)
	assert.Equal(t, model.ExchangeStateError, ex.State)
	assert.Equal(t, "Gagal: nomor container tidak dikenal", ex.LastResponse)
}

func TestCocoService_SendResubmissionNoticeCompletes(t *testing.T) {
	db, sqlMock := setupTestDB(t)
	client := new(MockBeacukaiClient)
	svc, _ := newTestCocoService(db, client)
	id := uuid.New()

	sqlMock.ExpectQuery(`SELECT \* FROM "coco_exchanges"`).
		WillReturnRows(cocoExchangeRows(id, model.ExchangeStateReady))
	sqlMock.ExpectQuery(`SELECT \* FROM "coco_container_details"`).
		WillReturnRows(emptyDetailRows())

	client.On("SubmitCoco", mock.Anything, mock.Anything).Return("Data sudah pernah diajukan", nil)

	sqlMock.ExpectBegin()
	sqlMock.ExpectExec(`INSERT INTO "audit_notes"`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	sqlMock.ExpectExec(`UPDATE "coco_exchanges"`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	sqlMock.ExpectCommit()

	ex, err := svc.Send(context.Background(), id.String())
	require.NoError(t, err)
	assert.Equal(t, model.ExchangeStateCompleted, ex.State)
}

func TestCocoService_SendTransportFailureLeavesStateUntouched(t *testing.T) {
	db, sqlMock := setupTestDB(t)
	client := new(MockBeacukaiClient)
	svc, _ := newTestCocoService(db, client)
	id := uuid.New()

	sqlMock.ExpectQuery(`SELECT \* FROM "coco_exchanges"`).
		WillReturnRows(cocoExchangeRows(id, model.ExchangeStateReady))
	sqlMock.ExpectQuery(`SELECT \* FROM "coco_container_details"`).
		WillReturnRows(emptyDetailRows())

	client.On("SubmitCoco", mock.Anything, mock.Anything).Return("", errors.New("connection refused"))

	_, err := svc.Send(context.Background(), id.String())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrSubmissionRejected)
	// No UPDATE was expected or executed
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestCocoService_DeriveGateOutRequiresPlateNo(t *testing.T) {
	db, sqlMock := setupTestDB(t)
	svc, _ := newTestCocoService(db, new(MockBeacukaiClient))

	inID := uuid.New()
	gateOut := time.Now()

	sqlMock.ExpectQuery(`SELECT count\(\*\) FROM "coco_exchanges"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	sqlMock.ExpectQuery(`SELECT \* FROM "coco_exchanges"`).
		WillReturnRows(cocoExchangeRows(inID, model.ExchangeStateCompleted))
	sqlMock.ExpectQuery(`SELECT \* FROM "coco_container_details"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "coco_exchange_id", "container_no", "plate_no"}).
			AddRow(uuid.New(), inID, "TEMU1234567", ""))

	sh := &shipmodel.Shipment{Name: "MBL-2025-001", GateOutTime: &gateOut}
	sh.ID = uuid.New()

	err := svc.DeriveGateOut(context.Background(), db, sh)
	assert.ErrorIs(t, err, ErrMissingPlateNo)
}

func TestCocoService_SendRequiresCredentials(t *testing.T) {
	db, _ := setupTestDB(t)
	client := new(MockBeacukaiClient)
	driver := newMemDriver()
	svc := NewCocoService(
		db,
		&config.BeacukaiConfig{},
		client,
		sequence.NewService(db),
		audit.NewRecorder(db),
		archive.NewService(driver),
		nil,
	)

	_, err := svc.Send(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, ErrMissingCredentials)
	client.AssertNotCalled(t, "SubmitCoco")
}
