package checkout_test

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azaliaz/bookly-storefront/internal/cart"
	"github.com/azaliaz/bookly-storefront/internal/checkout"
	"github.com/azaliaz/bookly-storefront/internal/checkout/mocks"
	"github.com/azaliaz/bookly-storefront/internal/domain/models"
)

func fillCart(t *testing.T, quantities map[string]int) *cart.Cart {
	t.Helper()
	c := cart.New()
	for id, qty := range quantities {
		require.NoError(t, c.SetQuantity(id, qty, qty))
	}
	return c
}

func TestRun_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	backend := mocks.NewMockBackend(ctrl)
	c := fillCart(t, map[string]int{"a": 2, "b": 5})
	flow := checkout.NewFlow(backend, c)

	backend.EXPECT().GetBook(gomock.Any(), "a").
		Return(models.Book{ID: "a", Title: "Dune", Inventory: 10}, nil)
	backend.EXPECT().GetBook(gomock.Any(), "b").
		Return(models.Book{ID: "b", Title: "Solaris", Inventory: 5}, nil)
	backend.EXPECT().Checkout(gomock.Any(), gomock.Len(2)).Return(nil)

	require.NoError(t, flow.Run(context.Background()))
	assert.True(t, c.Empty())
	assert.Equal(t, checkout.StateSucceeded, flow.State())
}

func TestRun_AllOrNothing(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	backend := mocks.NewMockBackend(ctrl)
	c := fillCart(t, map[string]int{"a": 2, "b": 5})
	flow := checkout.NewFlow(backend, c)

	backend.EXPECT().GetBook(gomock.Any(), "a").
		Return(models.Book{ID: "a", Title: "Dune", Inventory: 10}, nil)
	// live inventory for b dropped below the cart quantity
	backend.EXPECT().GetBook(gomock.Any(), "b").
		Return(models.Book{ID: "b", Title: "Solaris", Inventory: 3}, nil)
	// no Checkout expectation: the mutating call must never be issued

	err := flow.Run(context.Background())
	require.Error(t, err)

	var verr *checkout.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "Solaris", verr.Title)
	assert.Equal(t, 5, verr.Requested)
	assert.Equal(t, 3, verr.Available)

	// cart untouched
	assert.Equal(t, 2, c.Quantity("a"))
	assert.Equal(t, 5, c.Quantity("b"))
	assert.Equal(t, checkout.StateFailed, flow.State())
}

func TestRun_FetchFailureAborts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	backend := mocks.NewMockBackend(ctrl)
	c := fillCart(t, map[string]int{"a": 1})
	flow := checkout.NewFlow(backend, c)

	backend.EXPECT().GetBook(gomock.Any(), "a").
		Return(models.Book{}, errors.New("boom"))

	err := flow.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, c.Quantity("a"))
	assert.Equal(t, checkout.StateFailed, flow.State())
}

func TestRun_SubmitFailureKeepsCart(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	backend := mocks.NewMockBackend(ctrl)
	c := fillCart(t, map[string]int{"a": 1})
	flow := checkout.NewFlow(backend, c)

	backend.EXPECT().GetBook(gomock.Any(), "a").
		Return(models.Book{ID: "a", Title: "Dune", Inventory: 4}, nil)
	backend.EXPECT().Checkout(gomock.Any(), gomock.Any()).
		Return(errors.New("server error"))

	err := flow.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, c.Quantity("a"))
	assert.Equal(t, checkout.StateFailed, flow.State())
}

func TestRun_EmptyCart(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	backend := mocks.NewMockBackend(ctrl)
	flow := checkout.NewFlow(backend, cart.New())

	err := flow.Run(context.Background())
	assert.ErrorIs(t, err, checkout.ErrEmptyCart)
}

func TestRun_RefusesReentry(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	backend := mocks.NewMockBackend(ctrl)
	c := fillCart(t, map[string]int{"a": 1})
	flow := checkout.NewFlow(backend, c)

	started := make(chan struct{})
	release := make(chan struct{})
	backend.EXPECT().GetBook(gomock.Any(), "a").
		DoAndReturn(func(context.Context, string) (models.Book, error) {
			close(started)
			<-release
			return models.Book{ID: "a", Title: "Dune", Inventory: 4}, nil
		})
	backend.EXPECT().Checkout(gomock.Any(), gomock.Any()).Return(nil)

	done := make(chan error, 1)
	go func() { done <- flow.Run(context.Background()) }()

	<-started
	err := flow.Run(context.Background())
	assert.ErrorIs(t, err, checkout.ErrInFlight)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, checkout.StateSucceeded, flow.State())
}
