package catalog

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/felixgeelhaar/shopnetic/internal/api"
	"github.com/felixgeelhaar/shopnetic/internal/api/apitest"
	"github.com/felixgeelhaar/shopnetic/internal/notify"
)

func newTestStore(t *testing.T) (*Store, *apitest.Server, *notify.Store) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := apitest.NewServer(t)
	notes := notify.NewStore(notify.Config{ErrorTTL: time.Minute, SuccessTTL: time.Minute, Logger: logger})
	client := api.New(api.Config{BaseURL: srv.URL, Logger: logger})
	return NewStore(client, notes), srv, notes
}

func TestRefresh(t *testing.T) {
	store, srv, notes := newTestStore(t)
	srv.AddProduct(1, "Kettle", "39.90", 5)
	srv.AddProduct(7, "Mug", "12.00", 0)

	if !store.Refresh(context.Background()) {
		t.Fatal("Refresh() = false")
	}

	products := store.Products()
	if len(products) != 2 {
		t.Fatalf("len(Products()) = %d, want 2", len(products))
	}
	if products[0].Name != "Kettle" || products[0].Price.String() != "39.9" {
		t.Errorf("first product = %+v", products[0])
	}
	if store.Loading() {
		t.Error("Loading() should be false after Refresh")
	}
	if snap := notes.Snapshot(); snap.Success != "" || snap.Error != "" {
		t.Errorf("reads should not notify, got %+v", snap)
	}
}

func TestRefresh_FailureKeepsList(t *testing.T) {
	store, srv, notes := newTestStore(t)
	srv.AddProduct(1, "Kettle", "39.90", 5)
	store.Refresh(context.Background())

	srv.Fail(http.MethodGet, "/products", http.StatusInternalServerError, "upstream exploded")

	if store.Refresh(context.Background()) {
		t.Fatal("Refresh() = true, want false")
	}
	if len(store.Products()) != 1 {
		t.Error("previous list should be kept")
	}
	if got := notes.Snapshot().Error; got != "upstream exploded" {
		t.Errorf("error = %q", got)
	}
}

func TestFind(t *testing.T) {
	store, srv, _ := newTestStore(t)
	srv.AddProduct(7, "Mug", "12.00", 3)
	store.Refresh(context.Background())

	p, ok := store.Find(7)
	if !ok || p.Name != "Mug" {
		t.Errorf("Find(7) = %+v, %v", p, ok)
	}
	if _, ok := store.Find(99); ok {
		t.Error("Find(99) should miss")
	}
}

func TestProducts_ReturnsCopy(t *testing.T) {
	store, srv, _ := newTestStore(t)
	srv.AddProduct(1, "Kettle", "39.90", 5)
	store.Refresh(context.Background())

	products := store.Products()
	products[0].Name = "changed"

	if store.Products()[0].Name != "Kettle" {
		t.Error("Products() must not expose internal state")
	}
}
