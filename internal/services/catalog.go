package services

import (
	"context"

	"go.uber.org/zap"

	"mobilenest_back_end/internal/apperror"
	"mobilenest_back_end/internal/models"
)

// ProductCache garde les fiches produit consultées dans le catalogue.
type ProductCache interface {
	GetProduct(ctx context.Context, id uint) (*models.Product, bool)
	SetProduct(ctx context.Context, p models.Product)
}

// CatalogService expose le catalogue en lecture seule.
type CatalogService struct {
	deps  Deps
	cache ProductCache
}

// NewCatalogService accepte un cache nil.
func NewCatalogService(deps Deps, cache ProductCache) *CatalogService {
	return &CatalogService{deps: deps.withDefaults(), cache: cache}
}

func (s *CatalogService) ListProducts(ctx context.Context, category string) ([]models.Product, error) {
	products := []models.Product{}
	q := s.deps.DB.WithContext(ctx).Order("nama_produk ASC")
	if category != "" {
		q = q.Where("kategori = ?", category)
	}
	if err := q.Find(&products).Error; err != nil {
		return nil, apperror.Infrastructure("list products", err)
	}
	return products, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	if s.cache != nil {
		if p, ok := s.cache.GetProduct(ctx, id); ok {
			return p, nil
		}
	}

	var product models.Product
	if err := s.deps.DB.WithContext(ctx).First(&product, id).Error; err != nil {
		return nil, notFoundOr(err, apperror.ErrProductNotFound, "load product")
	}

	if s.cache != nil {
		s.cache.SetProduct(ctx, product)
		s.deps.Logger.Debug("produit mis en cache", zap.Uint("id_produk", id))
	}
	return &product, nil
}
