package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/shared"
	"github.com/pos/backend/internal/domain/ticket"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormMenuCatalog(t *testing.T) {
	db := setupTestDB(t)
	catalog := NewGormMenuCatalog(db)
	ctx := context.Background()

	vat := &ticket.TaxTemplate{ID: uuid.New(), Name: "VAT", Rate: dec("18"), TaxIncluded: true}
	pizza := &ticket.MenuItem{
		ID:        uuid.New(),
		Name:      "Pizza",
		GroupCode: "Mains",
		Portions: []ticket.Portion{
			{Name: "Small", Multiplier: 1, Price: dec("8")},
			{Name: "Large", Multiplier: 2, Price: dec("12"), Prices: map[string]decimal.Decimal{"Happy Hour": dec("10")}},
		},
		Properties: []ticket.MenuItemProperty{{Name: "Olives", Price: dec("0.5")}},
		Tax:        vat,
	}
	cola := &ticket.MenuItem{
		ID:        uuid.New(),
		Name:      "Cola",
		GroupCode: "Drinks",
		Portions:  []ticket.Portion{{Name: "Can", Multiplier: 1, Price: dec("2")}},
	}
	require.NoError(t, catalog.Save(ctx, pizza))
	require.NoError(t, catalog.Save(ctx, cola))

	t.Run("loads portions in order with tax template", func(t *testing.T) {
		item, err := catalog.GetMenuItem(ctx, pizza.ID)
		require.NoError(t, err)

		assert.Equal(t, "Pizza", item.Name)
		require.Len(t, item.Portions, 2)
		assert.Equal(t, "Small", item.Portions[0].Name)
		assert.Equal(t, "Large", item.Portions[1].Name)
		assertDecimal(t, "10", item.Portions[1].PriceFor("Happy Hour"))
		assertDecimal(t, "12", item.Portions[1].PriceFor(""))
		require.Len(t, item.Properties, 1)
		assertDecimal(t, "0.5", item.Properties[0].Price)
		require.NotNil(t, item.Tax)
		assert.True(t, item.Tax.TaxIncluded)
		assertDecimal(t, "18", item.Tax.Rate)
	})

	t.Run("save replaces portions", func(t *testing.T) {
		pizza.Portions = pizza.Portions[:1]
		pizza.Name = "Pizza Margherita"
		require.NoError(t, catalog.Save(ctx, pizza))

		item, err := catalog.GetMenuItem(ctx, pizza.ID)
		require.NoError(t, err)
		assert.Equal(t, "Pizza Margherita", item.Name)
		assert.Len(t, item.Portions, 1)
	})

	t.Run("lists by group", func(t *testing.T) {
		drinks, err := catalog.ListByGroup(ctx, "Drinks")
		require.NoError(t, err)
		require.Len(t, drinks, 1)
		assert.Equal(t, "Cola", drinks[0].Name)
		assert.Nil(t, drinks[0].Tax)

		all, err := catalog.ListByGroup(ctx, "")
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "Cola", all[0].Name)
	})

	t.Run("unknown item", func(t *testing.T) {
		_, err := catalog.GetMenuItem(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrMenuItemNotFound)
	})
}

func TestGormDepartmentRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormDepartmentRepository(db, shared.NewFakeClock(testStart))
	ctx := context.Background()

	dept := &ticket.Department{
		Name:            "Restaurant",
		TicketNumerator: "Ticket Numbers",
		OrderNumerator:  "Order Numbers",
		ServiceTemplates: []ticket.ServiceTemplate{
			{ServiceID: uuid.New(), Name: "Service", Method: ticket.MethodRunningTotalPercent, Amount: dec("12.5")},
		},
	}
	require.NoError(t, repo.Save(ctx, dept))
	assert.NotEqual(t, uuid.Nil, dept.ID)

	found, err := repo.FindByName(ctx, "Restaurant")
	require.NoError(t, err)
	assert.Equal(t, dept.ID, found.ID)
	assert.Equal(t, "Order Numbers", found.OrderNumerator)
	require.Len(t, found.ServiceTemplates, 1)
	assert.Equal(t, ticket.MethodRunningTotalPercent, found.ServiceTemplates[0].Method)
	assertDecimal(t, "12.5", found.ServiceTemplates[0].Amount)

	dept.PriceTag = "Happy Hour"
	require.NoError(t, repo.Save(ctx, dept))
	found, err = repo.FindByID(ctx, dept.ID)
	require.NoError(t, err)
	assert.Equal(t, "Happy Hour", found.PriceTag)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormNumeratorRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormNumeratorRepository(db, shared.NewFakeClock(testStart))
	ctx := context.Background()

	for want := 1; want <= 3; want++ {
		got, err := repo.Next(ctx, "Order Numbers")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	got, err := repo.Next(ctx, "Ticket Numbers")
	require.NoError(t, err)
	assert.Equal(t, 1, got)

	current, err := repo.Current(ctx, "Order Numbers")
	require.NoError(t, err)
	assert.Equal(t, 3, current)

	current, err = repo.Current(ctx, "Unknown")
	require.NoError(t, err)
	assert.Equal(t, 0, current)

	_, err = repo.Next(ctx, "")
	assert.Error(t, err)
}
