package service

import (
	"context"
	"errors"

	"github.com/Engarr/Windmill-backend/internal/apperr"
	"github.com/Engarr/Windmill-backend/internal/models"
	"github.com/Engarr/Windmill-backend/internal/repo"
)

type CartService struct {
	Cart     *repo.CartRepo
	Wishlist *repo.WishlistRepo
	Products *repo.ProductRepo
}

// CartLine pairs a cart entry with the full product it points at.
type CartLine struct {
	Product  models.Product `json:"product"`
	Quantity uint           `json:"quantity"`
}

func (s *CartService) Add(ctx context.Context, userID, productID, quantity uint) (*models.CartItem, error) {
	if _, err := s.Products.FindByID(ctx, productID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperr.NotFound("product not found")
		}
		return nil, apperr.Internal("could not add to cart", err)
	}

	item, err := s.Cart.Add(ctx, userID, productID, quantity)
	if err != nil {
		return nil, apperr.Internal("could not add to cart", err)
	}
	return item, nil
}

// Lines resolves the cart into product/quantity pairs. A line whose
// product has been removed from the catalog is skipped rather than
// failing the whole cart.
func (s *CartService) Lines(ctx context.Context, userID uint) ([]CartLine, error) {
	items, err := s.Cart.Items(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("could not load cart", err)
	}

	lines := make([]CartLine, 0, len(items))
	for _, item := range items {
		product, err := s.Products.FindByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				continue
			}
			return nil, apperr.Internal("could not load cart", err)
		}
		lines = append(lines, CartLine{Product: *product, Quantity: item.Quantity})
	}
	return lines, nil
}

// IncreaseQty and DecreaseQty adjust a line by one unit. Decreasing the
// last unit removes the line and returns a nil item.
func (s *CartService) IncreaseQty(ctx context.Context, userID, productID uint) (*models.CartItem, error) {
	item, err := s.Cart.Increase(ctx, userID, productID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperr.NotFound("product not in cart")
		}
		return nil, apperr.Internal("could not update cart", err)
	}
	return item, nil
}

func (s *CartService) DecreaseQty(ctx context.Context, userID, productID uint) (*models.CartItem, error) {
	item, err := s.Cart.Decrease(ctx, userID, productID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperr.NotFound("product not in cart")
		}
		return nil, apperr.Internal("could not update cart", err)
	}
	return item, nil
}

func (s *CartService) Remove(ctx context.Context, userID, productID uint) error {
	if err := s.Cart.Remove(ctx, userID, productID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return apperr.NotFound("product not in cart")
		}
		return apperr.Internal("could not remove from cart", err)
	}
	return nil
}

func (s *CartService) WishlistAdd(ctx context.Context, userID, productID uint) error {
	if _, err := s.Products.FindByID(ctx, productID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return apperr.NotFound("product not found")
		}
		return apperr.Internal("could not add to wishlist", err)
	}
	if err := s.Wishlist.Add(ctx, userID, productID); err != nil {
		return apperr.Internal("could not add to wishlist", err)
	}
	return nil
}

func (s *CartService) WishlistProducts(ctx context.Context, userID uint) ([]models.Product, error) {
	items, err := s.Wishlist.Items(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("could not load wishlist", err)
	}

	products := make([]models.Product, 0, len(items))
	for _, item := range items {
		product, err := s.Products.FindByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				continue
			}
			return nil, apperr.Internal("could not load wishlist", err)
		}
		products = append(products, *product)
	}
	return products, nil
}

func (s *CartService) WishlistRemove(ctx context.Context, userID, productID uint) error {
	if err := s.Wishlist.Remove(ctx, userID, productID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return apperr.NotFound("product not in wishlist")
		}
		return apperr.Internal("could not remove from wishlist", err)
	}
	return nil
}
