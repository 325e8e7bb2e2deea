package cart

import (
	"testing"

	"github.com/google/uuid"

	"github.com/veloramarket/cartsync-backend/internal/catalog"
	"github.com/veloramarket/cartsync-backend/pkg/db/models"
	"github.com/veloramarket/cartsync-backend/pkg/enums"
	pkgerrors "github.com/veloramarket/cartsync-backend/pkg/errors"
)

func line(productID uuid.UUID, qty int, priceCents int64) models.CartItem {
	return models.CartItem{
		ItemID:         productID.String(),
		ProductID:      productID,
		Quantity:       qty,
		UnitPriceCents: priceCents,
	}
}

func TestLineID(t *testing.T) {
	t.Parallel()

	productID := uuid.New()
	if got := LineID(productID, nil); got != productID.String() {
		t.Fatalf("unexpected plain line id: %s", got)
	}

	variant := "large"
	if got := LineID(productID, &variant); got != productID.String()+"::large" {
		t.Fatalf("unexpected variant line id: %s", got)
	}

	blank := "  "
	if got := LineID(productID, &blank); got != productID.String() {
		t.Fatalf("blank variant should collapse to plain id, got %s", got)
	}
}

func TestReconcileMerge_QuantityConflictKeepsLarger(t *testing.T) {
	t.Parallel()

	p1 := uuid.New()
	server := []models.CartItem{line(p1, 3, 1000)}
	client := []models.CartItem{line(p1, 5, 1000)}

	out := reconcile(enums.MergeStrategyMerge, server, client)
	if len(out.items) != 1 || out.items[0].Quantity != 5 {
		t.Fatalf("expected single line with qty 5, got %+v", out.items)
	}
	if len(out.conflicts) != 1 {
		t.Fatalf("expected one conflict, got %d", len(out.conflicts))
	}
	c := out.conflicts[0]
	if c.LocalQuantity != 5 || c.ServerQuantity != 3 || c.Resolution != enums.ConflictResolvedLocal {
		t.Fatalf("unexpected conflict entry: %+v", c)
	}
	if len(out.added) != 0 {
		t.Fatalf("nothing was added, got %v", out.added)
	}
}

func TestReconcileMerge_ServerWinsLargerQuantity(t *testing.T) {
	t.Parallel()

	p1 := uuid.New()
	out := reconcile(enums.MergeStrategyMerge,
		[]models.CartItem{line(p1, 7, 1000)},
		[]models.CartItem{line(p1, 2, 1000)})

	if out.items[0].Quantity != 7 {
		t.Fatalf("expected server quantity to win, got %d", out.items[0].Quantity)
	}
	if out.conflicts[0].Resolution != enums.ConflictResolvedServer {
		t.Fatalf("unexpected resolution: %s", out.conflicts[0].Resolution)
	}
}

func TestReconcileMerge_DisjointUnion(t *testing.T) {
	t.Parallel()

	p1, p2 := uuid.New(), uuid.New()
	out := reconcile(enums.MergeStrategyMerge,
		[]models.CartItem{line(p1, 1, 500)},
		[]models.CartItem{line(p2, 2, 300)})

	if len(out.items) != 2 {
		t.Fatalf("expected union of both sides, got %+v", out.items)
	}
	if len(out.conflicts) != 0 {
		t.Fatalf("disjoint sets cannot conflict, got %+v", out.conflicts)
	}
	if len(out.added) != 1 || out.added[0] != p2.String() {
		t.Fatalf("expected client line flagged as added, got %v", out.added)
	}
}

func TestReconcileMerge_EqualQuantityNoConflict(t *testing.T) {
	t.Parallel()

	p1 := uuid.New()
	out := reconcile(enums.MergeStrategyMerge,
		[]models.CartItem{line(p1, 4, 250)},
		[]models.CartItem{line(p1, 4, 250)})

	if len(out.items) != 1 || len(out.conflicts) != 0 {
		t.Fatalf("expected one line and no conflicts, got %+v / %+v", out.items, out.conflicts)
	}
}

func TestReconcileLocal_ReplacesWholesale(t *testing.T) {
	t.Parallel()

	p1, p2 := uuid.New(), uuid.New()
	out := reconcile(enums.MergeStrategyLocal,
		[]models.CartItem{line(p1, 3, 100)},
		[]models.CartItem{line(p2, 1, 200)})

	if len(out.items) != 1 || out.items[0].ItemID != p2.String() {
		t.Fatalf("expected client set to replace server set, got %+v", out.items)
	}
	if len(out.conflicts) != 0 {
		t.Fatalf("local strategy produces no conflicts, got %+v", out.conflicts)
	}
	if len(out.added) != 1 || out.added[0] != p2.String() {
		t.Fatalf("expected new line reported as added, got %v", out.added)
	}
}

func TestReconcileServer_DiscardsClient(t *testing.T) {
	t.Parallel()

	p1, p2 := uuid.New(), uuid.New()
	out := reconcile(enums.MergeStrategyServer,
		[]models.CartItem{line(p1, 3, 100)},
		[]models.CartItem{line(p2, 9, 200)})

	if len(out.items) != 1 || out.items[0].ItemID != p1.String() {
		t.Fatalf("expected server set preserved, got %+v", out.items)
	}
	if len(out.added) != 0 {
		t.Fatalf("server strategy adds nothing, got %v", out.added)
	}
}

func TestApplyCatalog_TrimsUnderMerge(t *testing.T) {
	t.Parallel()

	gone, depleted, ok := uuid.New(), uuid.New(), uuid.New()
	items := []models.CartItem{line(gone, 1, 100), line(depleted, 2, 200), line(ok, 3, 300)}
	truth := map[uuid.UUID]catalog.ProductInfo{
		depleted: {ID: depleted, Exists: true, InStock: false, PriceCents: 200},
		ok:       {ID: ok, Exists: true, InStock: true, PriceCents: 300},
	}

	kept, issues, dropped, err := applyCatalog(enums.MergeStrategyMerge, items, truth)
	if err != nil {
		t.Fatalf("merge strategy must trim, not fail: %v", err)
	}
	if len(kept) != 1 || kept[0].ItemID != ok.String() {
		t.Fatalf("expected only the sellable line, got %+v", kept)
	}
	if len(dropped) != 2 {
		t.Fatalf("expected two dropped line ids, got %v", dropped)
	}
	if len(issues) != 2 {
		t.Fatalf("expected two issues, got %+v", issues)
	}
	if issues[0].Issue != enums.ItemIssueProductNotFound || issues[1].Issue != enums.ItemIssueProductOutOfStock {
		t.Fatalf("unexpected issue tags: %+v", issues)
	}
}

func TestApplyCatalog_PriceMismatchOverwrites(t *testing.T) {
	t.Parallel()

	p1 := uuid.New()
	items := []models.CartItem{line(p1, 2, 999)}
	truth := map[uuid.UUID]catalog.ProductInfo{
		p1: {ID: p1, Exists: true, InStock: true, PriceCents: 1099, Name: "Kettle"},
	}

	kept, issues, dropped, err := applyCatalog(enums.MergeStrategyMerge, items, truth)
	if err != nil {
		t.Fatalf("price drift is informational: %v", err)
	}
	if len(dropped) != 0 {
		t.Fatalf("price drift must not drop the line, got %v", dropped)
	}
	if kept[0].UnitPriceCents != 1099 {
		t.Fatalf("expected catalog price to win, got %d", kept[0].UnitPriceCents)
	}
	if kept[0].Name != "Kettle" {
		t.Fatalf("expected snapshot backfill from catalog, got %q", kept[0].Name)
	}
	if len(issues) != 1 || issues[0].Issue != enums.ItemIssuePriceMismatch {
		t.Fatalf("expected a price mismatch issue, got %+v", issues)
	}
	if issues[0].SnapshotPriceCents != 999 || issues[0].CatalogPriceCents != 1099 {
		t.Fatalf("unexpected price report: %+v", issues[0])
	}
}

func TestApplyCatalog_FatalUnderLocalAndServer(t *testing.T) {
	t.Parallel()

	missing := uuid.New()
	depleted := uuid.New()
	truth := map[uuid.UUID]catalog.ProductInfo{
		depleted: {ID: depleted, Exists: true, InStock: false},
	}

	for _, strategy := range []enums.MergeStrategy{enums.MergeStrategyLocal, enums.MergeStrategyServer} {
		_, _, _, err := applyCatalog(strategy, []models.CartItem{line(missing, 1, 100)}, truth)
		if !pkgerrors.IsCode(err, pkgerrors.CodeProductNotFound) {
			t.Fatalf("strategy %s: expected PRODUCT_NOT_FOUND, got %v", strategy, err)
		}

		_, _, _, err = applyCatalog(strategy, []models.CartItem{line(depleted, 1, 100)}, truth)
		if !pkgerrors.IsCode(err, pkgerrors.CodeOutOfStock) {
			t.Fatalf("strategy %s: expected PRODUCT_OUT_OF_STOCK, got %v", strategy, err)
		}
	}
}
