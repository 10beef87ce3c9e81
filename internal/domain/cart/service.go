package cart

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
)

// syncTimeout bounds a background push to the server copy.
const syncTimeout = 5 * time.Second

// Service reconciles client-cached carts with the server copy and applies
// mutations to the server copy.
type Service struct {
	repo Repository
	lg   *zap.Logger
}

// NewService creates a cart Service.
func NewService(repo Repository, lg *zap.Logger) *Service {
	return &Service{repo: repo, lg: lg}
}

// Get returns the server copy of the user's cart. A user with no cart yet
// gets an empty one.
func (s *Service) Get(ctx context.Context, userID string) ([]Item, error) {
	items, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "get cart")
	}
	if items == nil {
		items = []Item{}
	}
	return items, nil
}

// Reconcile merges a client-cached cart with the server copy at sign-in.
// A non-empty server cart wins outright and the client cache is discarded.
// When the server cart is empty, a non-empty client cache is pushed up and
// becomes the server cart. Either way both copies converge on the result,
// with at most one entry per product.
func (s *Service) Reconcile(ctx context.Context, userID string, clientItems []Item) ([]Item, error) {
	server, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "get server cart")
	}

	if len(server) > 0 {
		return server, nil
	}

	if len(clientItems) == 0 {
		return []Item{}, nil
	}

	merged := Dedupe(clientItems)
	if err := s.repo.Replace(ctx, userID, merged); err != nil {
		return nil, errors.Wrap(err, "push client cart")
	}
	return merged, nil
}

// SyncAsync pushes the given items to the server copy in the background.
// The push is best-effort: a failure is logged and the client-local state
// stands, to be retried by the next mutation's push. Callers get no error.
func (s *Service) SyncAsync(userID string, items []Item) {
	items = Dedupe(items)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
		defer cancel()

		if err := s.repo.Replace(ctx, userID, items); err != nil {
			s.lg.Warn("cart sync failed",
				zap.String("user_id", userID),
				zap.Error(err),
			)
		}
	}()
}

// AddItem merges an item into the server copy and persists the result.
func (s *Service) AddItem(ctx context.Context, userID string, it Item) ([]Item, error) {
	return s.mutate(ctx, userID, func(items []Item) []Item {
		return Add(items, it)
	})
}

// UpdateItemQuantity changes an item's quantity on the server copy. The
// resulting quantity never drops below 1.
func (s *Service) UpdateItemQuantity(ctx context.Context, userID, productID string, quantity int) ([]Item, error) {
	return s.mutate(ctx, userID, func(items []Item) []Item {
		return UpdateQuantity(items, productID, quantity)
	})
}

// RemoveItem deletes an item from the server copy.
func (s *Service) RemoveItem(ctx context.Context, userID, productID string) ([]Item, error) {
	return s.mutate(ctx, userID, func(items []Item) []Item {
		return Remove(items, productID)
	})
}

// Clear empties the server copy.
func (s *Service) Clear(ctx context.Context, userID string) error {
	if err := s.repo.Replace(ctx, userID, []Item{}); err != nil {
		return errors.Wrap(err, "clear cart")
	}
	return nil
}

func (s *Service) mutate(ctx context.Context, userID string, fn func([]Item) []Item) ([]Item, error) {
	items, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "get cart")
	}

	items = fn(items)
	if items == nil {
		items = []Item{}
	}
	if err := s.repo.Replace(ctx, userID, items); err != nil {
		return nil, errors.Wrap(err, "store cart")
	}
	return items, nil
}
