package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dandeat/barkir-core/internal/archive"
	"github.com/dandeat/barkir-core/internal/audit"
	"github.com/dandeat/barkir-core/internal/exchange/model"
	"github.com/dandeat/barkir-core/internal/sequence"
)

func newTestPLPService(db *gorm.DB, client BeacukaiClient) *PLPService {
	return NewPLPService(
		db,
		testBeacukaiConfig(),
		client,
		sequence.NewService(db),
		audit.NewRecorder(db),
		archive.NewService(newMemDriver()),
	)
}

func plpRequestRows(id uuid.UUID, state model.ExchangeState, shipmentID *uuid.UUID) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "ref_number", "state", "shipment_id"}).
		AddRow(id, "PLP000042", string(state), shipmentID)
}

func TestPLPService_SuratNoSerial(t *testing.T) {
	db, sqlMock := setupTestDB(t)
	svc := newTestPLPService(db, new(MockBeacukaiClient))

	sqlMock.ExpectQuery(`SELECT count\(\*\) FROM "plp_requests"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	suratNo, err := svc.nextSuratNo(context.Background(), db)
	require.NoError(t, err)

	now := time.Now()
	want := fmt.Sprintf("00017/PLP/UTPK/%s/%d", romanMonths[now.Month()], now.Year())
	assert.Equal(t, want, suratNo)
}

func TestPLPService_DuplicateAlwaysFails(t *testing.T) {
	db, _ := setupTestDB(t)
	svc := newTestPLPService(db, new(MockBeacukaiClient))

	err := svc.Duplicate(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, ErrCopyForbidden)
}

func TestIsPLPSubmitSuccess(t *testing.T) {
	cases := []struct {
		response string
		want     bool
	}{
		{"Berhasil diproses", true},
		{"017 - permohonan diterima", true},
		{"018 - permohonan diterima", true},
		{"Gagal: dokumen tidak lengkap", false},
		{"", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, isPLPSubmitSuccess(tc.response), "response %q", tc.response)
	}
}

func TestPLPService_SendOnlyFromReady(t *testing.T) {
	db, sqlMock := setupTestDB(t)
	client := new(MockBeacukaiClient)
	svc := newTestPLPService(db, client)
	id := uuid.New()

	sqlMock.ExpectQuery(`SELECT \* FROM "plp_requests"`).
		WillReturnRows(plpRequestRows(id, model.ExchangeStateDraft, nil))

	_, err := svc.Send(context.Background(), id.String())
	assert.ErrorIs(t, err, ErrWrongState)
	client.AssertNotCalled(t, "SubmitPLP")
}

func TestPLPService_SendMovesToKirim(t *testing.T) {
	db, sqlMock := setupTestDB(t)
	client := new(MockBeacukaiClient)
	svc := newTestPLPService(db, client)
	id := uuid.New()

	sqlMock.ExpectQuery(`SELECT \* FROM "plp_requests"`).
		WillReturnRows(plpRequestRows(id, model.ExchangeStateReady, nil))

	client.On("SubmitPLP", mock.Anything, mock.Anything).Return("017 - permohonan diterima", nil)

	sqlMock.ExpectBegin()
	sqlMock.ExpectExec(`UPDATE "plp_requests"`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	sqlMock.ExpectExec(`INSERT INTO "audit_notes"`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	sqlMock.ExpectCommit()

	req, err := svc.Send(context.Background(), id.String())
	require.NoError(t, err)
	assert.Equal(t, model.ExchangeStateKirim, req.State)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestPLPService_SendRejectionLeavesStateUnchanged(t *testing.T) {
	db, sqlMock := setupTestDB(t)
	client := new(MockBeacukaiClient)
	svc := newTestPLPService(db, client)
	id := uuid.New()

	sqlMock.ExpectQuery(`SELECT \* FROM "plp_requests"`).
		WillReturnRows(plpRequestRows(id, model.ExchangeStateReady, nil))

	client.On("SubmitPLP", mock.Anything, mock.Anything).Return("Gagal: dokumen tidak lengkap", nil)

	// The failure note is posted outside a transaction
	sqlMock.ExpectExec(`INSERT INTO "audit_notes"`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	_, err := svc.Send(context.Background(), id.String())
	assert.ErrorIs(t, err, ErrSubmissionRejected)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestPLPService_PollOnlyFromKirim(t *testing.T) {
	db, sqlMock := setupTestDB(t)
	client := new(MockBeacukaiClient)
	svc := newTestPLPService(db, client)
	id := uuid.New()

	sqlMock.ExpectQuery(`SELECT \* FROM "plp_requests"`).
		WillReturnRows(plpRequestRows(id, model.ExchangeStateReady, nil))

	_, err := svc.Poll(context.Background(), id.String())
	assert.ErrorIs(t, err, ErrWrongState)
	client.AssertNotCalled(t, "GetPLPResponse")
}

func TestPLPService_PollApprovalPropagatesToShipment(t *testing.T) {
	db, sqlMock := setupTestDB(t)
	client := new(MockBeacukaiClient)
	svc := newTestPLPService(db, client)
	id := uuid.New()
	shipmentID := uuid.New()

	sqlMock.ExpectQuery(`SELECT \* FROM "plp_requests"`).
		WillReturnRows(plpRequestRows(id, model.ExchangeStateKirim, &shipmentID))

	fragment := `&lt;PLP&gt;&lt;HEADER&gt;&lt;NO_PLP&gt;PLP-000777&lt;/NO_PLP&gt;&lt;TGL_PLP&gt;20250601&lt;/TGL_PLP&gt;&lt;FL_SETUJU&gt;Y&lt;/FL_SETUJU&gt;&lt;/HEADER&gt;&lt;CONT&gt;&lt;NO_CONT&gt;TGHU1234567&lt;/NO_CONT&gt;&lt;/CONT&gt;&lt;/PLP&gt;`
	client.On("GetPLPResponse", mock.Anything, "TPS1", "PLP000042").Return(fragment, nil)

	sqlMock.ExpectBegin()
	sqlMock.ExpectExec(`INSERT INTO "audit_notes"`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	sqlMock.ExpectExec(`UPDATE "shipments"`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	sqlMock.ExpectExec(`UPDATE "plp_requests"`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	sqlMock.ExpectCommit()

	req, err := svc.Poll(context.Background(), id.String())
	require.NoError(t, err)
	assert.Equal(t, model.ExchangeStateCompleted, req.State)
	assert.Equal(t, "PLP-000777", req.PLPNo)
	require.NotNil(t, req.PLPDate)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), *req.PLPDate)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestPLPService_PollRejectionStoresReason(t *testing.T) {
	db, sqlMock := setupTestDB(t)
	client := new(MockBeacukaiClient)
	svc := newTestPLPService(db, client)
	id := uuid.New()

	sqlMock.ExpectQuery(`SELECT \* FROM "plp_requests"`).
		WillReturnRows(plpRequestRows(id, model.ExchangeStateKirim, nil))

	fragment := `&lt;PLP&gt;&lt;HEADER&gt;&lt;NO_PLP&gt;PLP-000778&lt;/NO_PLP&gt;&lt;TGL_PLP&gt;20250601&lt;/TGL_PLP&gt;&lt;FL_SETUJU&gt;T&lt;/FL_SETUJU&gt;&lt;ALASAN_REJECT&gt;Dokumen tidak lengkap&lt;/ALASAN_REJECT&gt;&lt;/HEADER&gt;&lt;/PLP&gt;`
	client.On("GetPLPResponse", mock.Anything, "TPS1", "PLP000042").Return(fragment, nil)

	sqlMock.ExpectBegin()
	sqlMock.ExpectExec(`INSERT INTO "audit_notes"`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	sqlMock.ExpectExec(`UPDATE "plp_requests"`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	sqlMock.ExpectCommit()

	req, err := svc.Poll(context.Background(), id.String())
	require.NoError(t, err)
	assert.Equal(t, model.ExchangeStateReject, req.State)
	assert.Equal(t, "Dokumen tidak lengkap", req.RejectReason)
}

func TestPLPService_PollEmptyResponse(t *testing.T) {
	db, sqlMock := setupTestDB(t)
	client := new(MockBeacukaiClient)
	svc := newTestPLPService(db, client)
	id := uuid.New()

	sqlMock.ExpectQuery(`SELECT \* FROM "plp_requests"`).
		WillReturnRows(plpRequestRows(id, model.ExchangeStateKirim, nil))

	client.On("GetPLPResponse", mock.Anything, "TPS1", "PLP000042").Return("  ", nil)

	_, err := svc.Poll(context.Background(), id.String())
	assert.ErrorIs(t, err, ErrEmptyResponse)
}
