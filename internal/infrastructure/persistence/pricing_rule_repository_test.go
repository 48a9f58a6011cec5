package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/JBeggs/fambrifarms-backend-sub002/internal/domain/partner"
	"github.com/JBeggs/fambrifarms-backend-sub002/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockPricingRuleRepository creates a GormPricingRuleRepository with a mocked SQL connection
func newMockPricingRuleRepository(t *testing.T) (*GormPricingRuleRepository, sqlmock.Sqlmock, *sql.DB) {
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

	return NewGormPricingRuleRepository(gormDB), mock, mockDB
}

func TestGormPricingRuleRepository_FindByID(t *testing.T) {
	t.Run("finds existing rule", func(t *testing.T) {
		repo, mock, mockDB := newMockPricingRuleRepository(t)
		defer mockDB.Close()

		ruleID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "name", "segment", "base_markup_percentage", "minimum_margin_percentage", "trend_multiplier", "category_adjustments", "effective_from", "is_active"}).
			AddRow(ruleID, "Restaurant Standard", "standard", decimal.NewFromInt(35), decimal.NewFromInt(25), decimal.NewFromInt(1), []byte(`{"vegetables": 10}`), time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), true)

		mock.ExpectQuery(`SELECT \* FROM "pricing_rules" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(ruleID, 1).
			WillReturnRows(rows)

		rule, err := repo.FindByID(context.Background(), ruleID)

		assert.NoError(t, err)
		assert.NotNil(t, rule)
		assert.Equal(t, ruleID, rule.ID)
		assert.Equal(t, "Restaurant Standard", rule.Name)
		assert.True(t, decimal.NewFromInt(10).Equal(rule.CategoryAdjustments["vegetables"]))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound for missing rule", func(t *testing.T) {
		repo, mock, mockDB := newMockPricingRuleRepository(t)
		defer mockDB.Close()

		ruleID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "pricing_rules" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(ruleID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		rule, err := repo.FindByID(context.Background(), ruleID)

		assert.Error(t, err)
		assert.Nil(t, rule)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPricingRuleRepository_FindByName(t *testing.T) {
	t.Run("finds rule by unique name", func(t *testing.T) {
		repo, mock, mockDB := newMockPricingRuleRepository(t)
		defer mockDB.Close()

		ruleID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "name", "segment", "base_markup_percentage", "trend_multiplier", "effective_from", "is_active"}).
			AddRow(ruleID, "Premium Plus", "premium", decimal.NewFromInt(40), decimal.NewFromInt(1), time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), true)

		mock.ExpectQuery(`SELECT \* FROM "pricing_rules" WHERE name = \$1 ORDER BY .* LIMIT .*`).
			WithArgs("Premium Plus", 1).
			WillReturnRows(rows)

		rule, err := repo.FindByName(context.Background(), "Premium Plus")

		assert.NoError(t, err)
		assert.NotNil(t, rule)
		assert.Equal(t, partner.SegmentPremium, rule.Segment)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPricingRuleRepository_FindEffectiveBySegment(t *testing.T) {
	t.Run("orders effective rules newest first", func(t *testing.T) {
		repo, mock, mockDB := newMockPricingRuleRepository(t)
		defer mockDB.Close()

		asOf := time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC)
		newerID := uuid.New()
		olderID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "name", "segment", "base_markup_percentage", "trend_multiplier", "effective_from", "is_active", "created_at"}).
			AddRow(newerID, "Standard v2", "standard", decimal.NewFromInt(30), decimal.NewFromInt(1), time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), true, time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)).
			AddRow(olderID, "Standard v1", "standard", decimal.NewFromInt(25), decimal.NewFromInt(1), time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), true, time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC))

		mock.ExpectQuery(`SELECT \* FROM "pricing_rules" WHERE \(segment = \$1 AND is_active = \$2\) AND effective_from <= \$3 AND \(effective_until IS NULL OR effective_until >= \$4\) ORDER BY created_at DESC`).
			WithArgs("standard", true, asOf, asOf).
			WillReturnRows(rows)

		rules, err := repo.FindEffectiveBySegment(context.Background(), partner.SegmentStandard, asOf)

		assert.NoError(t, err)
		require.Len(t, rules, 2)
		assert.Equal(t, newerID, rules[0].ID)
		assert.Equal(t, olderID, rules[1].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns empty slice when nothing is effective", func(t *testing.T) {
		repo, mock, mockDB := newMockPricingRuleRepository(t)
		defer mockDB.Close()

		asOf := time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC)

		mock.ExpectQuery(`SELECT \* FROM "pricing_rules" WHERE .* ORDER BY created_at DESC`).
			WithArgs("wholesale", true, asOf, asOf).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		rules, err := repo.FindEffectiveBySegment(context.Background(), partner.SegmentWholesale, asOf)

		assert.NoError(t, err)
		assert.Empty(t, rules)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPricingRuleRepository_Count(t *testing.T) {
	t.Run("counts rules with segment filter", func(t *testing.T) {
		repo, mock, mockDB := newMockPricingRuleRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "pricing_rules" WHERE segment = \$1`).
			WithArgs("premium").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

		count, err := repo.Count(context.Background(), shared.Filter{
			Filters: map[string]interface{}{"segment": "premium"},
		})

		assert.NoError(t, err)
		assert.Equal(t, int64(3), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
