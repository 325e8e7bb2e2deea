package cart

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/veloramarket/cartsync-backend/api/middleware"
	cartsvc "github.com/veloramarket/cartsync-backend/internal/cart"
	"github.com/veloramarket/cartsync-backend/internal/identity"
	"github.com/veloramarket/cartsync-backend/pkg/db/models"
	pkgerrors "github.com/veloramarket/cartsync-backend/pkg/errors"
	"github.com/veloramarket/cartsync-backend/pkg/types"
)

type stubService struct {
	getOrCreateFn func(ctx context.Context, key identity.CartKey) (*models.Cart, error)
	syncFn        func(ctx context.Context, key identity.CartKey, input cartsvc.SyncInput) (*cartsvc.SyncResult, error)
	migrateFn     func(ctx context.Context, userKey identity.CartKey, sessionID string, items []cartsvc.ItemInput) (*cartsvc.MigrationResult, error)
	clearFn       func(ctx context.Context, key identity.CartKey) error
}

func (s *stubService) GetOrCreate(ctx context.Context, key identity.CartKey) (*models.Cart, error) {
	return s.getOrCreateFn(ctx, key)
}

func (s *stubService) Sync(ctx context.Context, key identity.CartKey, input cartsvc.SyncInput) (*cartsvc.SyncResult, error) {
	return s.syncFn(ctx, key, input)
}

func (s *stubService) MigrateGuestCart(ctx context.Context, userKey identity.CartKey, sessionID string, items []cartsvc.ItemInput) (*cartsvc.MigrationResult, error) {
	return s.migrateFn(ctx, userKey, sessionID, items)
}

func (s *stubService) Clear(ctx context.Context, key identity.CartKey) error {
	return s.clearFn(ctx, key)
}

func sampleCart() *models.Cart {
	now := time.Now().UTC()
	productID := uuid.New()
	return &models.Cart{
		ID:         uuid.New(),
		Version:    2,
		TotalCents: 2198,
		TotalItems: 2,
		Items: []models.CartItem{{
			ID:             uuid.New(),
			ItemID:         productID.String(),
			ProductID:      productID,
			Name:           "French Press",
			UnitPriceCents: 1099,
			Quantity:       2,
		}},
		LastSyncedAt: &now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func withGuestSession(req *http.Request, sessionID string) *http.Request {
	return req.WithContext(middleware.WithSessionID(req.Context(), sessionID))
}

func withUser(req *http.Request, userID string) *http.Request {
	return req.WithContext(middleware.WithUserID(req.Context(), userID))
}

func TestGuestCartFetch(t *testing.T) {
	record := sampleCart()
	var captured identity.CartKey
	svc := &stubService{
		getOrCreateFn: func(_ context.Context, key identity.CartKey) (*models.Cart, error) {
			captured = key
			return record, nil
		},
	}

	req := withGuestSession(httptest.NewRequest(http.MethodGet, "/api/v1/cart/guest", nil), "sess-9")
	resp := httptest.NewRecorder()
	GuestCartFetch(svc, nil)(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", resp.Code, resp.Body.String())
	}
	if captured.Kind != "guest" || captured.ID != "sess-9" {
		t.Fatalf("unexpected cart key: %+v", captured)
	}

	var envelope struct {
		Data CartView `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if envelope.Data.TotalItems != 2 {
		t.Fatalf("unexpected payload: %+v", envelope.Data)
	}
	if envelope.Data.TotalPrice.String() != "21.98" {
		t.Fatalf("expected decimal total 21.98, got %s", envelope.Data.TotalPrice)
	}
}

func TestGuestCartFetch_MissingSession(t *testing.T) {
	svc := &stubService{
		getOrCreateFn: func(context.Context, identity.CartKey) (*models.Cart, error) {
			t.Fatal("service must not be called")
			return nil, nil
		},
	}

	resp := httptest.NewRecorder()
	GuestCartFetch(svc, nil)(resp, httptest.NewRequest(http.MethodGet, "/api/v1/cart/guest", nil))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCartSync(t *testing.T) {
	record := sampleCart()
	syncedAt := time.Now().UTC()
	var captured cartsvc.SyncInput
	svc := &stubService{
		syncFn: func(_ context.Context, _ identity.CartKey, input cartsvc.SyncInput) (*cartsvc.SyncResult, error) {
			captured = input
			return &cartsvc.SyncResult{Cart: record, SyncedAt: syncedAt}, nil
		},
	}

	body := `{"localCart":[{"productId":"` + record.Items[0].ProductID.String() + `","quantity":2,"price":10.99}],"mergeStrategy":"merge"}`
	req := withGuestSession(httptest.NewRequest(http.MethodPost, "/api/v1/cart/sync", strings.NewReader(body)), "sess-9")
	resp := httptest.NewRecorder()
	CartSync(svc, nil)(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", resp.Code, resp.Body.String())
	}
	if len(captured.Items) != 1 {
		t.Fatalf("expected one item forwarded, got %+v", captured.Items)
	}
	if captured.Items[0].UnitPriceCents != 1099 {
		t.Fatalf("expected price converted to cents, got %d", captured.Items[0].UnitPriceCents)
	}
	if captured.Strategy != "merge" {
		t.Fatalf("unexpected strategy: %s", captured.Strategy)
	}
}

func TestCartSync_DefaultStrategy(t *testing.T) {
	var captured cartsvc.SyncInput
	svc := &stubService{
		syncFn: func(_ context.Context, _ identity.CartKey, input cartsvc.SyncInput) (*cartsvc.SyncResult, error) {
			captured = input
			return &cartsvc.SyncResult{Cart: sampleCart(), SyncedAt: time.Now().UTC()}, nil
		},
	}

	req := withGuestSession(httptest.NewRequest(http.MethodPost, "/api/v1/cart/sync", strings.NewReader(`{"localCart":[]}`)), "sess-9")
	resp := httptest.NewRecorder()
	CartSync(svc, nil)(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if captured.Strategy != "merge" {
		t.Fatalf("expected default merge strategy, got %q", captured.Strategy)
	}
}

func TestCartSync_RejectsUnknownStrategy(t *testing.T) {
	svc := &stubService{
		syncFn: func(context.Context, identity.CartKey, cartsvc.SyncInput) (*cartsvc.SyncResult, error) {
			t.Fatal("service must not be called")
			return nil, nil
		},
	}

	req := withGuestSession(httptest.NewRequest(http.MethodPost, "/api/v1/cart/sync", strings.NewReader(`{"localCart":[],"mergeStrategy":"theirs"}`)), "sess-9")
	resp := httptest.NewRecorder()
	CartSync(svc, nil)(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCartSync_RejectsSubCentPrice(t *testing.T) {
	svc := &stubService{
		syncFn: func(context.Context, identity.CartKey, cartsvc.SyncInput) (*cartsvc.SyncResult, error) {
			t.Fatal("service must not be called")
			return nil, nil
		},
	}

	body := `{"localCart":[{"productId":"` + uuid.NewString() + `","quantity":1,"price":10.999}]}`
	req := withGuestSession(httptest.NewRequest(http.MethodPost, "/api/v1/cart/sync", strings.NewReader(body)), "sess-9")
	resp := httptest.NewRecorder()
	CartSync(svc, nil)(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCartSync_SurfacesDomainError(t *testing.T) {
	svc := &stubService{
		syncFn: func(context.Context, identity.CartKey, cartsvc.SyncInput) (*cartsvc.SyncResult, error) {
			return nil, pkgerrors.New(pkgerrors.CodeSyncConflict, "cart changed concurrently, retry the sync")
		},
	}

	req := withGuestSession(httptest.NewRequest(http.MethodPost, "/api/v1/cart/sync", strings.NewReader(`{"localCart":[]}`)), "sess-9")
	resp := httptest.NewRecorder()
	CartSync(svc, nil)(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
	var envelope types.ErrorEnvelope
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if envelope.Error.Code != "SYNC_CONFLICT" {
		t.Fatalf("unexpected error code: %s", envelope.Error.Code)
	}
}

func TestCartMigrate(t *testing.T) {
	record := sampleCart()
	userID := uuid.NewString()
	var capturedKey identity.CartKey
	var capturedSession string
	droppedID := uuid.New()
	svc := &stubService{
		migrateFn: func(_ context.Context, userKey identity.CartKey, sessionID string, _ []cartsvc.ItemInput) (*cartsvc.MigrationResult, error) {
			capturedKey = userKey
			capturedSession = sessionID
			return &cartsvc.MigrationResult{
				Cart:        record,
				MergedItems: []string{"p3"},
				Issues: []cartsvc.ItemIssueReport{{
					ItemID:    droppedID.String(),
					ProductID: droppedID,
					Issue:     "PRODUCT_NOT_FOUND",
				}},
				Dropped: []string{droppedID.String()},
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/migrate", strings.NewReader(`{"guestCart":[]}`))
	req = withUser(withGuestSession(req, "sess-9"), userID)
	resp := httptest.NewRecorder()
	CartMigrate(svc, nil)(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", resp.Code, resp.Body.String())
	}
	if !capturedKey.IsUser() || capturedKey.ID != userID {
		t.Fatalf("unexpected user key: %+v", capturedKey)
	}
	if capturedSession != "sess-9" {
		t.Fatalf("unexpected session: %s", capturedSession)
	}

	var envelope struct {
		Data MigrateResponse `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if len(envelope.Data.MergedItems) != 1 || envelope.Data.MergedItems[0] != "p3" {
		t.Fatalf("unexpected merged items: %v", envelope.Data.MergedItems)
	}
	if len(envelope.Data.DroppedItems) != 1 || envelope.Data.DroppedItems[0] != droppedID.String() {
		t.Fatalf("expected trimmed guest line reported, got %v", envelope.Data.DroppedItems)
	}
	if len(envelope.Data.Issues) != 1 || envelope.Data.Issues[0].Issue != "PRODUCT_NOT_FOUND" {
		t.Fatalf("expected issue report surfaced, got %+v", envelope.Data.Issues)
	}
}

func TestCartMigrate_RequiresUser(t *testing.T) {
	svc := &stubService{
		migrateFn: func(context.Context, identity.CartKey, string, []cartsvc.ItemInput) (*cartsvc.MigrationResult, error) {
			t.Fatal("service must not be called")
			return nil, nil
		},
	}

	req := withGuestSession(httptest.NewRequest(http.MethodPost, "/api/v1/cart/migrate", strings.NewReader(`{"guestCart":[]}`)), "sess-9")
	resp := httptest.NewRecorder()
	CartMigrate(svc, nil)(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestCartClear(t *testing.T) {
	var captured identity.CartKey
	svc := &stubService{
		clearFn: func(_ context.Context, key identity.CartKey) error {
			captured = key
			return nil
		},
	}

	req := withUser(httptest.NewRequest(http.MethodDelete, "/api/v1/cart", nil), "user-1")
	resp := httptest.NewRecorder()
	CartClear(svc, nil)(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !captured.IsUser() || captured.ID != "user-1" {
		t.Fatalf("unexpected key: %+v", captured)
	}
}
