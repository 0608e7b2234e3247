package cart

import (
	"testing"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func product(id, title string) domain.Product {
	return domain.Product{ID: id, Title: title, Price: decimal.NewFromInt(100)}
}

func TestAddLine(t *testing.T) {
	tests := []struct {
		name     string
		adds     []domain.Product
		expected []domain.CartLine
	}{
		{
			name: "new product gets quantity 1",
			adds: []domain.Product{product("p1", "Syltherine")},
			expected: []domain.CartLine{
				{ProductID: "p1", Title: "Syltherine", Price: decimal.NewFromInt(100), Quantity: 1},
			},
		},
		{
			name: "same product twice merges",
			adds: []domain.Product{product("p1", "Syltherine"), product("p1", "Syltherine")},
			expected: []domain.CartLine{
				{ProductID: "p1", Title: "Syltherine", Price: decimal.NewFromInt(100), Quantity: 2},
			},
		},
		{
			name: "distinct products keep insertion order",
			adds: []domain.Product{product("p2", "Leviosa"), product("p1", "Syltherine"), product("p2", "Leviosa")},
			expected: []domain.CartLine{
				{ProductID: "p2", Title: "Leviosa", Price: decimal.NewFromInt(100), Quantity: 2},
				{ProductID: "p1", Title: "Syltherine", Price: decimal.NewFromInt(100), Quantity: 1},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var lines []domain.CartLine
			for _, p := range tt.adds {
				lines = AddLine(lines, p)
			}
			assert.Equal(t, tt.expected, lines)
		})
	}
}

func TestAddLine_KeepsStaleSnapshot(t *testing.T) {
	lines := AddLine(nil, product("p1", "Old title"))
	lines = AddLine(lines, product("p1", "New title"))

	assert.Len(t, lines, 1)
	assert.Equal(t, "Old title", lines[0].Title)
}

func TestRemoveLine(t *testing.T) {
	lines := AddLine(AddLine(nil, product("p1", "a")), product("p2", "b"))

	lines = RemoveLine(lines, "missing")
	assert.Len(t, lines, 2)

	lines = RemoveLine(lines, "p1")
	assert.Len(t, lines, 1)
	assert.Equal(t, "p2", lines[0].ProductID)
}

func TestSetLineQuantity(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		quantity int
		expected int
	}{
		{"positive", "p1", 5, 5},
		{"zero is stored", "p1", 0, 0},
		{"negative is stored", "p1", -3, -3},
		{"unknown id is ignored", "nope", 9, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := AddLine(nil, product("p1", "a"))
			lines = SetLineQuantity(lines, tt.id, tt.quantity)
			assert.Len(t, lines, 1)
			assert.Equal(t, tt.expected, lines[0].Quantity)
		})
	}
}
