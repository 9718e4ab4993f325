package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/monterra-as/installer-api/internal/domain"
	"github.com/monterra-as/installer-api/internal/mapper"
	"github.com/monterra-as/installer-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CatalogService handles categories and products
type CatalogService struct {
	catalogRepo *repository.CatalogRepository
	logger      *zap.Logger
}

// NewCatalogService creates a new CatalogService instance
func NewCatalogService(catalogRepo *repository.CatalogRepository, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		catalogRepo: catalogRepo,
		logger:      logger,
	}
}

// CreateCategory creates a new category
func (s *CatalogService) CreateCategory(ctx context.Context, req *domain.CreateCategoryRequest) (*domain.CategoryDTO, error) {
	category := &domain.Category{
		Name:        req.Name,
		Description: req.Description,
		Active:      true,
	}

	if err := s.catalogRepo.CreateCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.logger.Info("category created",
		zap.String("categoryID", category.ID.String()),
		zap.String("name", category.Name),
	)

	dto := mapper.ToCategoryDTO(category)
	return &dto, nil
}

// ListCategories returns all active categories
func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.CategoryDTO, error) {
	categories, err := s.catalogRepo.ListCategories(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	dtos := make([]domain.CategoryDTO, len(categories))
	for i, category := range categories {
		dtos[i] = mapper.ToCategoryDTO(&category)
	}
	return dtos, nil
}

// GetCategory returns a category with its active products
func (s *CatalogService) GetCategory(ctx context.Context, id uuid.UUID) (*domain.CategoryDTO, error) {
	category, err := s.catalogRepo.GetCategoryByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	dto := mapper.ToCategoryDTO(category)
	return &dto, nil
}

// UpdateCategory updates a category
func (s *CatalogService) UpdateCategory(ctx context.Context, id uuid.UUID, req *domain.UpdateCategoryRequest) (*domain.CategoryDTO, error) {
	category, err := s.catalogRepo.GetCategoryByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	category.Name = req.Name
	category.Description = req.Description
	if req.Active != nil {
		category.Active = *req.Active
	}

	if err := s.catalogRepo.UpdateCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	dto := mapper.ToCategoryDTO(category)
	return &dto, nil
}

// CreateProduct creates a new product in a category
func (s *CatalogService) CreateProduct(ctx context.Context, req *domain.CreateProductRequest) (*domain.ProductDTO, error) {
	if _, err := s.catalogRepo.GetCategoryByID(ctx, req.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: category not found", ErrInvalidInput)
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	product := &domain.Product{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		UnitPrice:   req.UnitPrice,
		Unit:        req.Unit,
		Active:      true,
	}

	if err := s.catalogRepo.CreateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info("product created",
		zap.String("productID", product.ID.String()),
		zap.String("name", product.Name),
	)

	dto := mapper.ToProductDTO(product)
	return &dto, nil
}

// ListProducts returns active products, optionally filtered by category
func (s *CatalogService) ListProducts(ctx context.Context, categoryID *uuid.UUID) ([]domain.ProductDTO, error) {
	products, err := s.catalogRepo.ListProducts(ctx, categoryID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	dtos := make([]domain.ProductDTO, len(products))
	for i, product := range products {
		dtos[i] = mapper.ToProductDTO(&product)
	}
	return dtos, nil
}

// GetProduct returns a product by ID
func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*domain.ProductDTO, error) {
	product, err := s.catalogRepo.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	dto := mapper.ToProductDTO(product)
	return &dto, nil
}

// UpdateProduct updates a product
func (s *CatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, req *domain.UpdateProductRequest) (*domain.ProductDTO, error) {
	product, err := s.catalogRepo.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	product.CategoryID = req.CategoryID
	product.Name = req.Name
	product.Description = req.Description
	product.UnitPrice = req.UnitPrice
	product.Unit = req.Unit
	if req.Active != nil {
		product.Active = *req.Active
	}

	if err := s.catalogRepo.UpdateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	dto := mapper.ToProductDTO(product)
	return &dto, nil
}
