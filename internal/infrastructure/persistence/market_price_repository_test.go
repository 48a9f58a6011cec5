package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/JBeggs/fambrifarms-backend-sub002/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockMarketPriceRepository creates a GormMarketPriceRepository with a mocked SQL connection
func newMockMarketPriceRepository(t *testing.T) (*GormMarketPriceRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormMarketPriceRepository(gormDB), mock, mockDB
}

func TestGormMarketPriceRepository_FindLatestForProduct(t *testing.T) {
	t.Run("finds most recent observation up to cutoff", func(t *testing.T) {
		repo, mock, mockDB := newMockMarketPriceRepository(t)
		defer mockDB.Close()

		productID := uuid.New()
		asOf := time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC)
		invoiceDate := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)

		rows := sqlmock.NewRows([]string{"id", "supplier_name", "invoice_date", "product_name", "product_id", "unit_price_excl_vat", "vat_amount", "unit_price_incl_vat", "quantity_unit"}).
			AddRow(uuid.New(), "Tshwane Market", invoiceDate, "Tomatoes", productID, decimal.NewFromInt(20), decimal.NewFromInt(3), decimal.NewFromInt(23), "kg")

		mock.ExpectQuery(`SELECT \* FROM "market_prices" WHERE product_id = \$1 AND invoice_date <= \$2 ORDER BY invoice_date DESC, created_at DESC,.* LIMIT .*`).
			WithArgs(productID, asOf, 1).
			WillReturnRows(rows)

		price, err := repo.FindLatestForProduct(context.Background(), productID, asOf)

		assert.NoError(t, err)
		assert.NotNil(t, price)
		assert.Equal(t, "Tomatoes", price.ProductName)
		assert.True(t, invoiceDate.Equal(price.InvoiceDate))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound when product has no observations", func(t *testing.T) {
		repo, mock, mockDB := newMockMarketPriceRepository(t)
		defer mockDB.Close()

		productID := uuid.New()
		asOf := time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC)

		mock.ExpectQuery(`SELECT \* FROM "market_prices" WHERE product_id = \$1 AND invoice_date <= \$2 ORDER BY .* LIMIT .*`).
			WithArgs(productID, asOf, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		price, err := repo.FindLatestForProduct(context.Background(), productID, asOf)

		assert.Error(t, err)
		assert.Nil(t, price)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormMarketPriceRepository_FindHistoryForProduct(t *testing.T) {
	t.Run("returns window ordered oldest first", func(t *testing.T) {
		repo, mock, mockDB := newMockMarketPriceRepository(t)
		defer mockDB.Close()

		productID := uuid.New()
		from := time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC)
		to := time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC)

		rows := sqlmock.NewRows([]string{"id", "supplier_name", "invoice_date", "product_name", "product_id", "unit_price_excl_vat", "unit_price_incl_vat", "quantity_unit"}).
			AddRow(uuid.New(), "Tshwane Market", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), "Tomatoes", productID, decimal.NewFromInt(18), decimal.NewFromFloat(20.7), "kg").
			AddRow(uuid.New(), "Tshwane Market", time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC), "Tomatoes", productID, decimal.NewFromInt(22), decimal.NewFromFloat(25.3), "kg")

		mock.ExpectQuery(`SELECT \* FROM "market_prices" WHERE product_id = \$1 AND invoice_date >= \$2 AND invoice_date <= \$3 ORDER BY invoice_date ASC, created_at ASC`).
			WithArgs(productID, from, to).
			WillReturnRows(rows)

		history, err := repo.FindHistoryForProduct(context.Background(), productID, from, to)

		assert.NoError(t, err)
		require.Len(t, history, 2)
		assert.True(t, history[0].InvoiceDate.Before(history[1].InvoiceDate))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormMarketPriceRepository_ExistsObservation(t *testing.T) {
	t.Run("reports existing supplier+date+product triple", func(t *testing.T) {
		repo, mock, mockDB := newMockMarketPriceRepository(t)
		defer mockDB.Close()

		invoiceDate := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)

		mock.ExpectQuery(`SELECT count\(\*\) FROM "market_prices" WHERE supplier_name = \$1 AND invoice_date = \$2 AND product_name = \$3`).
			WithArgs("Tshwane Market", invoiceDate, "Tomatoes").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		exists, err := repo.ExistsObservation(context.Background(), "Tshwane Market", invoiceDate, "Tomatoes")

		assert.NoError(t, err)
		assert.True(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reports missing observation", func(t *testing.T) {
		repo, mock, mockDB := newMockMarketPriceRepository(t)
		defer mockDB.Close()

		invoiceDate := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)

		mock.ExpectQuery(`SELECT count\(\*\) FROM "market_prices" WHERE supplier_name = \$1 AND invoice_date = \$2 AND product_name = \$3`).
			WithArgs("Tshwane Market", invoiceDate, "Dragon Fruit").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		exists, err := repo.ExistsObservation(context.Background(), "Tshwane Market", invoiceDate, "Dragon Fruit")

		assert.NoError(t, err)
		assert.False(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
