package product

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/georgemunganga/pulse-backend/internal/modules/access"
	"github.com/georgemunganga/pulse-backend/internal/modules/store"
	"github.com/google/uuid"
)

// Service defines product business logic. Every operation runs as actorID
// inside storeID and is checked against the actor's store role.
type Service interface {
	AddProduct(ctx context.Context, actorID, storeID string, req AddProductRequest) (*Product, error)
	GetProduct(ctx context.Context, actorID, storeID, id string) (*Product, error)
	ListProducts(ctx context.Context, actorID, storeID string, page Page) (*ProductPage, error)
	UpdateProduct(ctx context.Context, actorID, storeID, id string, req UpdateProductRequest) (*Product, error)
	UpdateInventory(ctx context.Context, actorID, storeID, id string, left int) (*Product, error)
	RemoveProduct(ctx context.Context, actorID, storeID, id string) error
}

// Authorizer checks an actor's store permissions.
type Authorizer interface {
	Authorize(ctx context.Context, storeID, actorID string, perms ...access.Permission) (*store.Store, error)
}

// Notifier is told after a store's products change.
type Notifier interface {
	ProductsChanged(ctx context.Context, storeID string)
}

// Option configures the product service.
type Option func(*service)

// WithNotifier pushes product changes to live subscribers.
func WithNotifier(n Notifier) Option { return func(s *service) { s.notifier = n } }

type service struct {
	repo     Repository
	stores   Authorizer
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates a new product service. logger may be nil.
func NewService(repo Repository, stores Authorizer, logger *slog.Logger, opts ...Option) Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &service{
		repo:   repo,
		stores: stores,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) AddProduct(ctx context.Context, actorID, storeID string, req AddProductRequest) (*Product, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errInvalid("product name is required")
	}
	if req.Price < 0 {
		return nil, errInvalid("price cannot be negative")
	}
	if req.AvailableStock < 0 {
		return nil, errInvalid("available stock cannot be negative")
	}
	if _, err := s.stores.Authorize(ctx, storeID, actorID, access.PermAddProduct); err != nil {
		return nil, err
	}

	now := s.now()
	p := &Product{
		ID:          uuid.NewString(),
		StoreID:     storeID,
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		Price:       req.Price,
		Tags:        cleanTags(req.Tags),
		Inventory: Inventory{
			Total: req.AvailableStock,
			Sold:  0,
			Left:  req.AvailableStock,
		},
		AddedBy:   actorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateProduct(ctx, p); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "product added", "store_id", storeID, "product_id", p.ID, "actor_id", actorID)
	s.notify(ctx, storeID)
	return p, nil
}

func (s *service) GetProduct(ctx context.Context, actorID, storeID, id string) (*Product, error) {
	// No permissions requested: any member may read.
	if _, err := s.stores.Authorize(ctx, storeID, actorID); err != nil {
		return nil, err
	}
	return s.repo.GetProduct(ctx, storeID, id)
}

func (s *service) ListProducts(ctx context.Context, actorID, storeID string, page Page) (*ProductPage, error) {
	if _, err := s.stores.Authorize(ctx, storeID, actorID); err != nil {
		return nil, err
	}
	page = page.normalized()

	// One extra row tells whether another page follows.
	items, err := s.repo.ListProducts(ctx, storeID, page.After, page.Limit+1)
	if err != nil {
		return nil, err
	}
	out := &ProductPage{Items: items}
	if len(items) > page.Limit {
		out.Items = items[:page.Limit]
		out.NextCursor = out.Items[page.Limit-1].ID
	}
	return out, nil
}

func (s *service) UpdateProduct(ctx context.Context, actorID, storeID, id string, req UpdateProductRequest) (*Product, error) {
	if _, err := s.stores.Authorize(ctx, storeID, actorID, access.PermUpdateProduct); err != nil {
		return nil, err
	}
	p, err := s.repo.GetProduct(ctx, storeID, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, errInvalid("product name is required")
		}
		p.Name = name
	}
	if req.Description != nil {
		p.Description = strings.TrimSpace(*req.Description)
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return nil, errInvalid("price cannot be negative")
		}
		p.Price = *req.Price
	}
	if req.Tags != nil {
		p.Tags = cleanTags(*req.Tags)
	}
	p.UpdatedAt = s.now()
	if err := s.repo.UpdateProduct(ctx, p); err != nil {
		return nil, err
	}
	s.notify(ctx, storeID)
	return p, nil
}

func (s *service) UpdateInventory(ctx context.Context, actorID, storeID, id string, left int) (*Product, error) {
	if left < 0 {
		return nil, errInvalid("units left cannot be negative")
	}
	if _, err := s.stores.Authorize(ctx, storeID, actorID, access.PermUpdateInventory); err != nil {
		return nil, err
	}
	p, err := s.repo.GetProduct(ctx, storeID, id)
	if err != nil {
		return nil, err
	}
	p.Inventory.Left = left
	p.Inventory.Total = p.Inventory.Sold + left
	p.UpdatedAt = s.now()
	if err := s.repo.UpdateProduct(ctx, p); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "inventory updated", "store_id", storeID, "product_id", id, "left", left)
	s.notify(ctx, storeID)
	return p, nil
}

func (s *service) RemoveProduct(ctx context.Context, actorID, storeID, id string) error {
	if _, err := s.stores.Authorize(ctx, storeID, actorID, access.PermRemoveProduct); err != nil {
		return err
	}
	if err := s.repo.DeleteProduct(ctx, storeID, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "product removed", "store_id", storeID, "product_id", id, "actor_id", actorID)
	s.notify(ctx, storeID)
	return nil
}

func (s *service) notify(ctx context.Context, storeID string) {
	if s.notifier != nil {
		s.notifier.ProductsChanged(ctx, storeID)
	}
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
