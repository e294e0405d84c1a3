package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestCart_Total(t *testing.T) {
	cart := &Cart{
		Items: []CartItem{
			{ProductID: 1, Quantity: 2, PriceAtAdd: decimal.RequireFromString("9.99")},
			{ProductID: 7, Quantity: 1, PriceAtAdd: decimal.RequireFromString("0.02")},
		},
	}

	want := decimal.RequireFromString("20.00")
	if !cart.Total().Equal(want) {
		t.Errorf("Total() = %s, want %s", cart.Total(), want)
	}
	if cart.ItemCount() != 2 {
		t.Errorf("ItemCount() = %d, want 2", cart.ItemCount())
	}
}

func TestCart_NilCart(t *testing.T) {
	var cart *Cart

	if cart.ItemCount() != 0 {
		t.Errorf("ItemCount() = %d, want 0", cart.ItemCount())
	}
	if !cart.Total().IsZero() {
		t.Errorf("Total() = %s, want 0", cart.Total())
	}
	if _, ok := cart.Item(1); ok {
		t.Error("Item() on nil cart should report false")
	}
}

func TestCart_Item(t *testing.T) {
	cart := &Cart{Items: []CartItem{{ProductID: 7, Quantity: 3}}}

	item, ok := cart.Item(7)
	if !ok {
		t.Fatal("Item(7) not found")
	}
	if item.Quantity != 3 {
		t.Errorf("Quantity = %d, want 3", item.Quantity)
	}
	if _, ok := cart.Item(8); ok {
		t.Error("Item(8) should not be found")
	}
}

func TestCart_DecodeWirePrices(t *testing.T) {
	// The API may send money as numbers or as numeric strings.
	body := `{"id":1,"user_id":2,"items":[
		{"id":10,"product_id":7,"quantity":2,"price_at_add":"12.50","created_at":"2024-01-02T03:04:05Z"},
		{"id":11,"product_id":8,"quantity":1,"price_at_add":3.25,"created_at":"2024-01-02T03:04:05Z"}
	],"created_at":"2024-01-02T03:04:05Z","updated_at":"2024-01-02T03:04:05Z"}`

	var cart Cart
	if err := json.Unmarshal([]byte(body), &cart); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if cart.ItemCount() != 2 {
		t.Fatalf("ItemCount() = %d, want 2", cart.ItemCount())
	}
	if !cart.Total().Equal(decimal.RequireFromString("28.25")) {
		t.Errorf("Total() = %s, want 28.25", cart.Total())
	}
}

func TestOrderStatus_Label(t *testing.T) {
	tests := []struct {
		status OrderStatus
		want   string
	}{
		{OrderPending, "Pending"},
		{OrderCompleted, "Completed"},
		{OrderStatus("shipped"), "Shipped"},
		{OrderStatus(""), ""},
	}

	for _, tt := range tests {
		if got := tt.status.Label(); got != tt.want {
			t.Errorf("%q.Label() = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestOrderItem_Subtotal(t *testing.T) {
	item := OrderItem{Quantity: 3, PriceAtPurchase: decimal.RequireFromString("1.10")}

	if !item.Subtotal().Equal(decimal.RequireFromString("3.30")) {
		t.Errorf("Subtotal() = %s, want 3.30", item.Subtotal())
	}
}
