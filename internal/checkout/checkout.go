package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/azaliaz/bookly-storefront/internal/cart"
	"github.com/azaliaz/bookly-storefront/internal/domain/models"
	"github.com/azaliaz/bookly-storefront/internal/logger"
)

var (
	ErrInFlight  = errors.New("checkout already in progress")
	ErrEmptyCart = errors.New("cart is empty")
)

// ValidationError reports one cart line that no longer fits the live
// inventory.
type ValidationError struct {
	Title     string
	Requested int
	Available int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("not enough inventory for %q: requested %d, available %d", e.Title, e.Requested, e.Available)
}

type State int32

const (
	StateIdle State = iota
	StateValidating
	StateSubmitting
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Backend is the slice of the API client the flow needs.
type Backend interface {
	GetBook(ctx context.Context, id string) (models.Book, error)
	Checkout(ctx context.Context, items []models.CartItem) error
}

// Flow drives one checkout attempt over the cart. Every item is
// re-validated against a fresh book fetch before the single mutating
// request goes out; any violation or fetch failure aborts the whole
// attempt with the cart untouched.
type Flow struct {
	backend Backend
	cart    *cart.Cart
	state   atomic.Int32
	busy    atomic.Bool
}

func NewFlow(backend Backend, c *cart.Cart) *Flow {
	return &Flow{backend: backend, cart: c}
}

func (f *Flow) State() State {
	return State(f.state.Load())
}

func (f *Flow) setState(s State) {
	f.state.Store(int32(s))
}

// Run executes the attempt. Re-entrant calls while one is in flight
// are refused so duplicate clicks cannot double-submit.
func (f *Flow) Run(ctx context.Context) error {
	if !f.busy.CompareAndSwap(false, true) {
		return ErrInFlight
	}
	defer f.busy.Store(false)

	log := logger.Get()
	items := f.cart.Items()
	if len(items) == 0 {
		return ErrEmptyCart
	}

	f.setState(StateValidating)
	var mu sync.Mutex
	var violations *multierror.Error
	group, gCtx := errgroup.WithContext(ctx)
	for _, item := range items {
		group.Go(func() error {
			book, err := f.backend.GetBook(gCtx, item.BookID)
			if err != nil {
				return fmt.Errorf("fetch book %s: %w", item.BookID, err)
			}
			if item.Quantity > book.Inventory {
				mu.Lock()
				violations = multierror.Append(violations, &ValidationError{
					Title:     book.Title,
					Requested: item.Quantity,
					Available: book.Inventory,
				})
				mu.Unlock()
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		f.setState(StateFailed)
		return err
	}
	if err := violations.ErrorOrNil(); err != nil {
		log.Debug().Err(err).Msg("checkout validation failed")
		f.setState(StateFailed)
		return err
	}

	f.setState(StateSubmitting)
	if err := f.backend.Checkout(ctx, items); err != nil {
		f.setState(StateFailed)
		return err
	}
	f.cart.Clear()
	f.setState(StateSucceeded)
	log.Info().Int("items", len(items)).Msg("checkout succeeded")
	return nil
}
