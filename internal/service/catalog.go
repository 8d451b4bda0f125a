package service

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/Engarr/Windmill-backend/internal/apperr"
	"github.com/Engarr/Windmill-backend/internal/logging"
	"github.com/Engarr/Windmill-backend/internal/models"
	"github.com/Engarr/Windmill-backend/internal/repo"
	"github.com/Engarr/Windmill-backend/internal/search"
	"github.com/Engarr/Windmill-backend/internal/storage"
)

type CatalogService struct {
	Products *repo.ProductRepo
	Storage  storage.ObjectStorage
	Index    search.Indexer
}

type ProductInput struct {
	Name        string
	Description string
	Category    string
	Price       float64
}

type ImageUpload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

func allowedImage(filename string) bool {
	switch strings.ToLower(path.Ext(filename)) {
	case ".jpg", ".jpeg", ".png":
		return true
	default:
		return false
	}
}

func (s *CatalogService) Create(ctx context.Context, creatorID uint, in ProductInput, img *ImageUpload) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.create")

	if img == nil {
		return nil, apperr.Validation("product image is required")
	}
	if !allowedImage(img.Filename) {
		return nil, apperr.Validation("allowed image extensions are .jpg, .jpeg, .png")
	}

	key := "images/" + uuid.NewString() + img.Filename
	url, err := s.Storage.Upload(ctx, key, img.ContentType, img.Body)
	if err != nil {
		l.Error("image upload failed", "error", err)
		return nil, apperr.Internal("could not store product image", err)
	}

	product := models.Product{
		Name:        in.Name,
		Description: in.Description,
		Category:    in.Category,
		Price:       in.Price,
		ImageURL:    url,
		ImageKey:    key,
		CreatorID:   creatorID,
	}
	if err := s.Products.Create(ctx, &product); err != nil {
		l.Error("product create failed", "error", err)
		return nil, apperr.Internal("could not create product", err)
	}

	s.reindex(ctx, &product)
	l.Info("product created", "product_id", product.ID)
	return &product, nil
}

func (s *CatalogService) Update(ctx context.Context, userID, productID uint, in ProductInput, img *ImageUpload) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.update", "product_id", productID)

	product, err := s.Products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperr.NotFound("product not found")
		}
		return nil, apperr.Internal("could not update product", err)
	}

	if product.CreatorID != userID {
		return nil, apperr.Authorization("not authorized to edit this product")
	}

	if img != nil {
		if !allowedImage(img.Filename) {
			return nil, apperr.Validation("allowed image extensions are .jpg, .jpeg, .png")
		}
		if product.ImageKey != "" {
			if err := s.Storage.Delete(ctx, product.ImageKey); err != nil {
				l.Warn("could not delete old image", "key", product.ImageKey, "error", err)
			}
		}
		key := "images/" + uuid.NewString() + img.Filename
		url, err := s.Storage.Upload(ctx, key, img.ContentType, img.Body)
		if err != nil {
			l.Error("image upload failed", "error", err)
			return nil, apperr.Internal("could not store product image", err)
		}
		product.ImageURL = url
		product.ImageKey = key
	}

	product.Name = in.Name
	product.Description = in.Description
	product.Category = in.Category
	product.Price = in.Price

	if err := s.Products.Save(ctx, product); err != nil {
		return nil, apperr.Internal("could not update product", err)
	}

	s.reindex(ctx, product)
	l.Info("product updated")
	return product, nil
}

func (s *CatalogService) Delete(ctx context.Context, userID, productID uint) error {
	l := logging.FromContext(ctx).With("svc", "catalog.delete", "product_id", productID)

	product, err := s.Products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return apperr.NotFound("product not found")
		}
		return apperr.Internal("could not delete product", err)
	}

	if product.CreatorID != userID {
		return apperr.Authorization("not authorized to delete this product")
	}

	if err := s.Products.Delete(ctx, productID); err != nil {
		return apperr.Internal("could not delete product", err)
	}

	if product.ImageKey != "" {
		if err := s.Storage.Delete(ctx, product.ImageKey); err != nil {
			l.Warn("could not delete image", "key", product.ImageKey, "error", err)
		}
	}
	if s.Index != nil {
		if err := s.Index.DeleteProduct(ctx, productID); err != nil {
			l.Warn("could not remove product from search index", "error", err)
		}
	}

	l.Info("product deleted")
	return nil
}

func (s *CatalogService) Get(ctx context.Context, productID uint) (*models.Product, error) {
	product, err := s.Products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperr.NotFound("product not found")
		}
		return nil, apperr.Internal("could not load product", err)
	}
	return product, nil
}

// Index writes are best-effort: the catalog row is the source of truth
// and a stale search index heals on the next write.
func (s *CatalogService) reindex(ctx context.Context, p *models.Product) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexProduct(ctx, p); err != nil {
		logging.FromContext(ctx).Warn("could not index product", "product_id", p.ID, "error", err)
	}
}
