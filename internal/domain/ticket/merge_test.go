package ticket

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicket_Merge_UnitLinesCollapse(t *testing.T) {
	tk, _ := createTestTicket(t)
	tea := testMenuItem("Tea", "2")
	first := addTestLine(t, tk, tea, "1")
	addTestLine(t, tk, tea, "1")

	tk.MergeLinesAndUpdateOrderNumbers(7)

	require.Equal(t, 1, tk.GetItemCount())
	assert.Same(t, first, tk.Lines[0])
	assertDecimal(t, "2", first.Quantity)
	assert.Equal(t, 7, first.OrderNumber)
	assert.Empty(t, tk.PopRemovedLines(), "absorbed lines were never persisted")
}

func TestTicket_Merge_NonUnitSiblingPinsUnitLines(t *testing.T) {
	tk, _ := createTestTicket(t)
	tea := testMenuItem("Tea", "2")
	addTestLine(t, tk, tea, "1")
	addTestLine(t, tk, tea, "1")
	addTestLine(t, tk, tea, "3")

	tk.MergeLinesAndUpdateOrderNumbers(1)

	require.Equal(t, 3, tk.GetItemCount())
	for _, l := range tk.Lines {
		assert.Equal(t, 1, l.OrderNumber)
	}
}

func TestTicket_Merge_KeepsDistinctGroups(t *testing.T) {
	tk, _ := createTestTicket(t)
	tea := testMenuItem("Tea", "2")
	tea.Properties = []MenuItemProperty{{Name: "Lemon", Price: dec("0.5")}}
	plain := addTestLine(t, tk, tea, "1")
	_, err := tk.AddLine(uuid.New(), tea, "", "", dec("1"), []string{"Lemon"})
	require.NoError(t, err)
	gifted := addTestLine(t, tk, tea, "1")
	gifted.Gifted = true
	other := addTestLine(t, tk, testMenuItem("Coffee", "3"), "1")
	addTestLine(t, tk, tea, "1")

	tk.MergeLinesAndUpdateOrderNumbers(2)

	require.Equal(t, 4, tk.GetItemCount())
	assertDecimal(t, "2", plain.Quantity)
	assertDecimal(t, "1", gifted.Quantity)
	assertDecimal(t, "1", other.Quantity)
}

func TestTicket_Merge_IgnoresSubmittedLines(t *testing.T) {
	tk, _ := createTestTicket(t)
	tea := testMenuItem("Tea", "2")
	old := addTestLine(t, tk, tea, "1")
	tk.MergeLinesAndUpdateOrderNumbers(1)
	tk.LockTicket()
	old.MarkPersisted()

	fresh := addTestLine(t, tk, tea, "1")
	tk.MergeLinesAndUpdateOrderNumbers(2)

	require.Equal(t, 2, tk.GetItemCount())
	assert.Equal(t, 1, old.OrderNumber)
	assert.Equal(t, 2, fresh.OrderNumber)
}

func TestTicket_Merge_Idempotent(t *testing.T) {
	tk, _ := createTestTicket(t)
	tea := testMenuItem("Tea", "2")
	addTestLine(t, tk, tea, "1")
	addTestLine(t, tk, tea, "1")
	addTestLine(t, tk, testMenuItem("Cake", "4"), "2")

	tk.MergeLinesAndUpdateOrderNumbers(5)
	snapshot := make(map[uuid.UUID]string)
	for _, l := range tk.Lines {
		snapshot[l.ID] = l.Quantity.String()
	}
	tk.ClearDomainEvents()

	tk.MergeLinesAndUpdateOrderNumbers(6)

	require.Len(t, tk.Lines, len(snapshot))
	for _, l := range tk.Lines {
		assert.Equal(t, snapshot[l.ID], l.Quantity.String())
		assert.Equal(t, 5, l.OrderNumber)
	}
	assert.Empty(t, tk.GetDomainEvents(), "nothing new to submit")
}

func TestTicket_Merge_RaisesOrderSubmitted(t *testing.T) {
	tk, _ := createTestTicket(t)
	addTestLine(t, tk, testMenuItem("Tea", "2"), "1")
	tk.ClearDomainEvents()

	tk.MergeLinesAndUpdateOrderNumbers(3)

	events := tk.GetDomainEvents()
	require.Len(t, events, 1)
	evt, ok := events[0].(*OrderSubmittedEvent)
	require.True(t, ok)
	assert.Equal(t, 3, evt.OrderNumber)
	assert.Len(t, evt.LineIDs, 1)
}

func TestMergePrintLines(t *testing.T) {
	menuID := uuid.New()
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	lines := []*LineItem{
		{ID: uuid.New(), MenuItemID: menuID, MenuItemName: "Tea", Price: dec("2"), Quantity: dec("1"), CreatedAt: base, OrderNumber: 1},
		{ID: uuid.New(), MenuItemID: menuID, MenuItemName: "Tea", Price: dec("2.00"), Quantity: dec("2"), CreatedAt: base.Add(2 * time.Minute), OrderNumber: 2},
		{ID: uuid.New(), MenuItemID: menuID, MenuItemName: "Tea", Price: dec("2"), Quantity: dec("1"), Voided: true, CreatedAt: base.Add(time.Minute)},
		{ID: uuid.New(), MenuItemID: menuID, MenuItemName: "Tea", Price: dec("2"), Quantity: dec("1"), CreatedAt: base.Add(30 * time.Second),
			Properties: []LineProperty{{Name: "Milk", Price: dec("0.3")}}},
	}

	merged := MergePrintLines(lines)

	require.Len(t, merged, 3)
	assert.True(t, merged[0].HasProperties())
	assert.True(t, merged[1].Voided)
	assertDecimal(t, "3", merged[2].Quantity)
	assert.Equal(t, 2, merged[2].OrderNumber)
	assertDecimal(t, "1", lines[0].Quantity, "input is not modified")
}
