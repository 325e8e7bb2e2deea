package cart

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sethvargo/go-retry"
	"gorm.io/gorm"

	"github.com/veloramarket/cartsync-backend/internal/catalog"
	"github.com/veloramarket/cartsync-backend/internal/identity"
	"github.com/veloramarket/cartsync-backend/pkg/config"
	"github.com/veloramarket/cartsync-backend/pkg/db"
	"github.com/veloramarket/cartsync-backend/pkg/db/models"
	"github.com/veloramarket/cartsync-backend/pkg/enums"
	pkgerrors "github.com/veloramarket/cartsync-backend/pkg/errors"
	"github.com/veloramarket/cartsync-backend/pkg/logger"
	"github.com/veloramarket/cartsync-backend/pkg/metrics"
	"github.com/veloramarket/cartsync-backend/pkg/types"
)

const retryBackoff = 15 * time.Millisecond

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CartRepository exposes the persistence operations the sync engine needs.
type CartRepository interface {
	FindByKey(ctx context.Context, key identity.CartKey) (*models.Cart, error)
	Create(ctx context.Context, key identity.CartKey) (*models.Cart, error)
	UpdateVersioned(ctx context.Context, cartID uuid.UUID, expectedVersion int64, update VersionedUpdate) error
	Delete(ctx context.Context, key identity.CartKey) error
	RecordAudit(ctx context.Context, audit *models.SyncAudit) error
	WithTx(tx *gorm.DB) CartRepository
}

// ItemInput is one client-submitted cart line. Prices here are snapshots;
// catalog truth wins at merge time.
type ItemInput struct {
	ProductID      uuid.UUID
	Quantity       int
	UnitPriceCents int64
	Name           string
	Image          string
	Category       string
	Description    string
	Variant        *string
	SubItems       types.SubItems
}

// SyncInput is the payload of one reconciliation call.
type SyncInput struct {
	Items        []ItemInput
	LastSyncedAt *time.Time
	Strategy     enums.MergeStrategy
}

// SyncResult is the committed outcome of one reconciliation.
type SyncResult struct {
	Cart      *models.Cart
	Conflicts []Conflict
	Issues    []ItemIssueReport
	Dropped   []string
	Added     []string
	SyncedAt  time.Time
}

// MigrationResult reports a guest-to-user cart migration. MergedItems lists
// the line ids the guest side newly introduced into the user cart; guest
// lines the catalog trimmed show up in Issues and Dropped instead.
type MigrationResult struct {
	Cart        *models.Cart
	MergedItems []string
	Issues      []ItemIssueReport
	Dropped     []string
}

// Service exposes the cart synchronization engine.
type Service interface {
	GetOrCreate(ctx context.Context, key identity.CartKey) (*models.Cart, error)
	Sync(ctx context.Context, key identity.CartKey, input SyncInput) (*SyncResult, error)
	MigrateGuestCart(ctx context.Context, userKey identity.CartKey, sessionID string, clientItems []ItemInput) (*MigrationResult, error)
	Clear(ctx context.Context, key identity.CartKey) error
}

type service struct {
	repo    CartRepository
	tx      txRunner
	catalog catalog.Gateway
	log     *logger.Logger
	metrics *metrics.SyncMetrics
	cfg     config.SyncConfig
	now     func() time.Time
}

// NewService builds the sync engine backed by the provided stack.
func NewService(repo CartRepository, tx txRunner, gw catalog.Gateway, log *logger.Logger, m *metrics.SyncMetrics, cfg config.SyncConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if gw == nil {
		return nil, fmt.Errorf("catalog gateway required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cfg.CommitAttempts < 1 {
		return nil, fmt.Errorf("commit attempts must be at least 1")
	}
	return &service{
		repo:    repo,
		tx:      tx,
		catalog: gw,
		log:     log,
		metrics: m,
		cfg:     cfg,
		now:     time.Now,
	}, nil
}

// GetOrCreate returns the cart for the identity, lazily materializing an
// empty one on first access.
func (s *service) GetOrCreate(ctx context.Context, key identity.CartKey) (*models.Cart, error) {
	if key.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart identity is required")
	}
	record, err := s.repo.FindByKey(ctx, key)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load cart")
	}
	if record != nil {
		return record, nil
	}

	record, err = s.repo.Create(ctx, key)
	if err != nil {
		if db.IsUniqueViolation(err, "idx_carts_owner") {
			// Lost the creation race; the other writer's record is ours.
			record, err = s.repo.FindByKey(ctx, key)
			if err == nil && record != nil {
				return record, nil
			}
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to create cart")
	}
	return record, nil
}

// Sync reconciles a client item list against the stored cart and commits
// the result under optimistic concurrency.
func (s *service) Sync(ctx context.Context, key identity.CartKey, input SyncInput) (*SyncResult, error) {
	started := s.now()
	ctx = s.log.WithCartKey(ctx, key.String())

	strategy := input.Strategy
	if strategy == "" {
		strategy = enums.MergeStrategyMerge
	}
	if !strategy.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid merge strategy")
	}

	clientItems, err := s.buildClientItems(input.Items)
	if err != nil {
		s.metrics.IncFailure(string(strategy), string(pkgerrors.As(err).Code()))
		return nil, err
	}

	var result *SyncResult
	backoff := retry.WithMaxRetries(uint64(s.cfg.CommitAttempts-1), retry.NewConstant(retryBackoff))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt, attemptErr := s.syncOnce(ctx, key, strategy, clientItems, input.LastSyncedAt)
		if attemptErr != nil {
			if stderrors.Is(attemptErr, ErrVersionConflict) {
				s.metrics.IncRetry()
				return retry.RetryableError(attemptErr)
			}
			return attemptErr
		}
		result = attempt
		return nil
	})
	if err != nil {
		if stderrors.Is(err, ErrVersionConflict) {
			err = pkgerrors.Wrap(pkgerrors.CodeSyncConflict, err, "cart changed concurrently, retry the sync")
		}
		code := pkgerrors.CodeInternal
		if typed := pkgerrors.As(err); typed != nil {
			code = typed.Code()
		}
		s.metrics.IncFailure(string(strategy), string(code))
		s.log.Error(ctx, "cart sync failed", err)
		return nil, err
	}

	s.metrics.ObserveDuration(string(strategy), s.now().Sub(started))
	s.metrics.IncSuccess(string(strategy))
	s.metrics.AddConflicts(len(result.Conflicts))
	for _, issue := range result.Issues {
		if issue.Issue.Drops() {
			s.metrics.IncTrimmed(string(issue.Issue))
		}
	}
	s.log.Info(ctx, "cart sync committed")
	return result, nil
}

// syncOnce runs one full read-merge-validate-write pass.
func (s *service) syncOnce(ctx context.Context, key identity.CartKey, strategy enums.MergeStrategy, clientItems []models.CartItem, lastSyncedAt *time.Time) (*SyncResult, error) {
	record, err := s.GetOrCreate(ctx, key)
	if err != nil {
		return nil, err
	}

	if unchanged(record, clientItems, lastSyncedAt) {
		syncedAt := record.UpdatedAt
		if record.LastSyncedAt != nil {
			syncedAt = *record.LastSyncedAt
		}
		return &SyncResult{Cart: record, SyncedAt: syncedAt}, nil
	}

	outcome := reconcile(strategy, record.Items, clientItems)

	truth, err := catalog.LookupAll(ctx, s.catalog, productIDs(outcome.items))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "catalog validation failed")
	}
	kept, issues, dropped, err := applyCatalog(strategy, outcome.items, truth)
	if err != nil {
		return nil, err
	}

	// A client-only line the catalog trimmed was never added anywhere.
	keptIDs := make(map[string]struct{}, len(kept))
	for _, item := range kept {
		keptIDs[item.ItemID] = struct{}{}
	}
	added := make([]string, 0, len(outcome.added))
	for _, id := range outcome.added {
		if _, ok := keptIDs[id]; ok {
			added = append(added, id)
		}
	}

	totals := computeTotals(kept)
	syncedAt := s.now().UTC()

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.UpdateVersioned(ctx, record.ID, record.Version, VersionedUpdate{
			Items:        kept,
			TotalCents:   totals.TotalCents,
			TotalItems:   totals.TotalItems,
			LastSyncedAt: syncedAt,
		}); err != nil {
			return err
		}
		return repo.RecordAudit(ctx, &models.SyncAudit{
			CartID:         record.ID,
			Strategy:       strategy,
			ConflictCount:  len(outcome.conflicts),
			DroppedItemIDs: pq.StringArray(dropped),
			MergedItemIDs:  pq.StringArray(added),
			CommittedAt:    syncedAt,
		})
	})
	if err != nil {
		return nil, err
	}

	committed, err := s.repo.FindByKey(ctx, key)
	if err != nil || committed == nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to reload committed cart")
	}
	return &SyncResult{
		Cart:      committed,
		Conflicts: outcome.conflicts,
		Issues:    issues,
		Dropped:   dropped,
		Added:     added,
		SyncedAt:  syncedAt,
	}, nil
}

// MigrateGuestCart folds a guest session's cart into the authenticated
// user's cart exactly once. The guest record is deleted only after the
// commit succeeds, so a retried login flow finds it absent and becomes a
// no-op instead of double-applying quantities.
func (s *service) MigrateGuestCart(ctx context.Context, userKey identity.CartKey, sessionID string, clientItems []ItemInput) (*MigrationResult, error) {
	if !userKey.IsUser() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "migration requires an authenticated user")
	}
	guestKey, err := identity.GuestKey(sessionID)
	if err != nil {
		return nil, err
	}
	ctx = s.log.WithSessionID(ctx, sessionID)

	guest, err := s.repo.FindByKey(ctx, guestKey)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load guest cart")
	}

	// The stored guest record is authoritative; the request body only backs
	// the first call of a session that never persisted server-side.
	guestItems := clientItems
	if guest != nil {
		guestItems = itemInputs(guest.Items)
	}

	if guest == nil && len(guestItems) == 0 {
		record, err := s.GetOrCreate(ctx, userKey)
		if err != nil {
			return nil, err
		}
		s.log.Info(ctx, "guest migration no-op, guest cart already retired")
		return &MigrationResult{Cart: record, MergedItems: []string{}}, nil
	}

	result, err := s.Sync(ctx, userKey, SyncInput{
		Items:    guestItems,
		Strategy: enums.MergeStrategyMerge,
	})
	if err != nil {
		return nil, err
	}

	if guest != nil {
		if err := s.repo.Delete(ctx, guestKey); err != nil {
			// The merge is committed; a dangling guest record re-merges
			// idempotently on the next attempt.
			s.log.Warn(ctx, "failed to retire guest cart after migration")
		}
	}

	merged := result.Added
	if merged == nil {
		merged = []string{}
	}
	s.log.Info(ctx, "guest cart migrated")
	return &MigrationResult{
		Cart:        result.Cart,
		MergedItems: merged,
		Issues:      result.Issues,
		Dropped:     result.Dropped,
	}, nil
}

// Clear removes the cart for the identity. Clearing an absent cart succeeds.
func (s *service) Clear(ctx context.Context, key identity.CartKey) error {
	if key.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart identity is required")
	}
	if err := s.repo.Delete(ctx, key); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to clear cart")
	}
	return nil
}

// buildClientItems validates raw inputs and normalizes them into cart lines
// keyed for the merge. Validation failures reject the call before any store
// access.
func (s *service) buildClientItems(inputs []ItemInput) ([]models.CartItem, error) {
	if s.cfg.MaxItems > 0 && len(inputs) > s.cfg.MaxItems {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("cart exceeds %d lines", s.cfg.MaxItems))
	}

	items := make([]models.CartItem, 0, len(inputs))
	seen := make(map[string]struct{}, len(inputs))
	for _, input := range inputs {
		if input.ProductID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item product id is required")
		}
		if input.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeInvalidQuantity, "item quantity must be a positive integer").
				WithDetails(map[string]any{"productId": input.ProductID, "quantity": input.Quantity})
		}
		if s.cfg.MaxQuantity > 0 && input.Quantity > s.cfg.MaxQuantity {
			return nil, pkgerrors.New(pkgerrors.CodeInvalidQuantity, fmt.Sprintf("item quantity exceeds %d", s.cfg.MaxQuantity)).
				WithDetails(map[string]any{"productId": input.ProductID, "quantity": input.Quantity})
		}
		if input.UnitPriceCents < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item price must be non-negative")
		}

		lineID := LineID(input.ProductID, input.Variant)
		if _, dup := seen[lineID]; dup {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "duplicate cart line").
				WithDetails(map[string]any{"itemId": lineID})
		}
		seen[lineID] = struct{}{}

		items = append(items, models.CartItem{
			ItemID:         lineID,
			ProductID:      input.ProductID,
			Name:           input.Name,
			Image:          input.Image,
			Category:       input.Category,
			Description:    input.Description,
			UnitPriceCents: input.UnitPriceCents,
			Quantity:       input.Quantity,
			Variant:        input.Variant,
			SubItems:       input.SubItems,
		})
	}
	return items, nil
}

// unchanged implements the idempotence short-circuit: a replayed sync whose
// snapshot is no older than the stored cart and whose lines match it exactly
// returns the stored cart with no write.
func unchanged(record *models.Cart, clientItems []models.CartItem, lastSyncedAt *time.Time) bool {
	if lastSyncedAt == nil || record.LastSyncedAt == nil {
		return false
	}
	if lastSyncedAt.Before(record.UpdatedAt) {
		return false
	}
	if len(clientItems) != len(record.Items) {
		return false
	}
	stored := make(map[string]models.CartItem, len(record.Items))
	for _, item := range record.Items {
		stored[item.ItemID] = item
	}
	for _, item := range clientItems {
		match, ok := stored[item.ItemID]
		if !ok || match.Quantity != item.Quantity || match.UnitPriceCents != item.UnitPriceCents {
			return false
		}
	}
	return true
}

func productIDs(items []models.CartItem) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(items))
	seen := make(map[uuid.UUID]struct{}, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}

func itemInputs(items []models.CartItem) []ItemInput {
	inputs := make([]ItemInput, 0, len(items))
	for _, item := range items {
		inputs = append(inputs, ItemInput{
			ProductID:      item.ProductID,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
			Name:           item.Name,
			Image:          item.Image,
			Category:       item.Category,
			Description:    item.Description,
			Variant:        item.Variant,
			SubItems:       item.SubItems,
		})
	}
	return inputs
}
