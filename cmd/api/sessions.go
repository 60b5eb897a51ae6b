package main

import (
	"context"

	"github.com/hpglow/storefront-backend/internal/modules/cart"
	"github.com/hpglow/storefront-backend/internal/modules/checkout"
	"github.com/hpglow/storefront-backend/internal/modules/session"
)

// shopper is everything kept alive for one cart session.
type shopper struct {
	cart     *cart.Manager
	checkout *checkout.Controller
}

type carts struct{ r *session.Registry[*shopper] }

func (c carts) Get(ctx context.Context) (*cart.Manager, error) {
	s, err := c.r.Get(ctx)
	if err != nil {
		return nil, err
	}
	return s.cart, nil
}

type checkouts struct{ r *session.Registry[*shopper] }

func (c checkouts) Get(ctx context.Context) (*checkout.Controller, error) {
	s, err := c.r.Get(ctx)
	if err != nil {
		return nil, err
	}
	return s.checkout, nil
}
