package persistence

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newMockDatabase creates a Database instance with a mocked SQL connection
func newMockDatabase(t *testing.T) (*Database, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	return &Database{DB: gormDB}, mock, mockDB
}

func TestDatabase_Ping(t *testing.T) {
	db, _, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	assert.NoError(t, db.Ping())
}

func TestDatabase_AutoMigrateSQLite(t *testing.T) {
	db := setupTestDB(t)
	for _, table := range []string{"tickets", "ticket_lines", "ticket_discounts", "ticket_services",
		"ticket_payments", "ticket_paid_items", "menu_items", "menu_portions", "tax_templates",
		"departments", "numerators"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}

func TestDatabase_Stats(t *testing.T) {
	db, _, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	stats, err := db.Stats()
	assert.NoError(t, err)
	assert.IsType(t, ConnectionStats{}, stats)
}

func TestGormTicketRepository_DatabaseErrors(t *testing.T) {
	t.Run("find propagates query errors", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "tickets"`).WillReturnError(errors.New("db down"))

		_, err := NewGormTicketRepository(db.DB).FindByID(context.Background(), uuid.New())
		require.Error(t, err)
		assert.NotErrorIs(t, err, shared.ErrNotFound)
		assert.Contains(t, err.Error(), "db down")
	})

	t.Run("save rolls back when the version lookup fails", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT "id","version" FROM "tickets"`).WillReturnError(errors.New("lock timeout"))
		mock.ExpectRollback()

		err := NewGormTicketRepository(db.DB).Save(context.Background(), newTestTicket(shared.SystemClock()))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "lock timeout")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormNumeratorRepository_DatabaseError(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "numerators"`).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := NewGormNumeratorRepository(db.DB, nil).Next(context.Background(), "Order Numbers")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}
