package sequence

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
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

func TestSequenceService_NextByCode(t *testing.T) {
	db, sqlMock := setupTestDB(t)
	service := NewService(db)

	sqlMock.ExpectQuery(`SELECT \* FROM "sequences".*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "prefix", "padding", "next_number"}).
			AddRow(1, "coco.exchange", "COCO", 6, 42))
	sqlMock.ExpectExec(`UPDATE "sequences"`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	ref, err := service.NextByCode(context.Background(), db, "coco.exchange")
	require.NoError(t, err)
	assert.Equal(t, "COCO000042", ref)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestSequenceService_NextByCodePadding(t *testing.T) {
	db, sqlMock := setupTestDB(t)
	service := NewService(db)

	sqlMock.ExpectQuery(`SELECT \* FROM "sequences"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "prefix", "padding", "next_number"}).
			AddRow(2, "plp.request", "PLP", 6, 1234567))
	sqlMock.ExpectExec(`UPDATE "sequences"`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	ref, err := service.NextByCode(context.Background(), db, "plp.request")
	require.NoError(t, err)
	// Larger than the padding width, the number is not truncated
	assert.Equal(t, "PLP1234567", ref)
}

func TestSequenceService_UnknownCode(t *testing.T) {
	db, sqlMock := setupTestDB(t)
	service := NewService(db)

	sqlMock.ExpectQuery(`SELECT \* FROM "sequences"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "prefix", "padding", "next_number"}))

	_, err := service.NextByCode(context.Background(), db, "nope")
	assert.ErrorIs(t, err, ErrUnknownSequence)
}
