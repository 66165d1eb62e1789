package catalog

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/grocerypos/backend/internal/domain/catalog"
	"github.com/grocerypos/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ProductService handles product-related business operations
type ProductService struct {
	productRepo catalog.ProductRepository
	publisher   shared.EventPublisher
	logger      *zap.Logger
}

// ProductServiceOption configures a ProductService
type ProductServiceOption func(*ProductService)

// WithEventPublisher publishes product events after each successful write
func WithEventPublisher(publisher shared.EventPublisher) ProductServiceOption {
	return func(s *ProductService) {
		s.publisher = publisher
	}
}

// WithServiceLogger sets the service logger
func WithServiceLogger(logger *zap.Logger) ProductServiceOption {
	return func(s *ProductService) {
		s.logger = logger
	}
}

// NewProductService creates a new ProductService
func NewProductService(productRepo catalog.ProductRepository, opts ...ProductServiceOption) *ProductService {
	s := &ProductService{
		productRepo: productRepo,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns products newest first
func (s *ProductService) List(ctx context.Context, filter ProductListFilter) ([]ProductResponse, error) {
	products, err := s.productRepo.FindAll(ctx, filter.ToFilter())
	if err != nil {
		return nil, err
	}
	return ToProductResponses(products), nil
}

// GetByID returns one product
func (s *ProductService) GetByID(ctx context.Context, id int64) (*ProductResponse, error) {
	product, err := s.findProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// Lookup resolves a scanned code: barcode first, then numeric id
func (s *ProductService) Lookup(ctx context.Context, code string) (*ProductResponse, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrProductNotFound
	}

	product, err := s.productRepo.FindByBarcode(ctx, code)
	if err == nil {
		resp := ToProductResponse(product)
		return &resp, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	id, convErr := strconv.ParseInt(code, 10, 64)
	if convErr != nil || id <= 0 {
		return nil, ErrProductNotFound
	}
	return s.GetByID(ctx, id)
}

// Create creates a new product
func (s *ProductService) Create(ctx context.Context, req ProductRequest) (*ProductResponse, error) {
	if req.Price == nil {
		return nil, ErrMissingFields
	}

	product, err := catalog.NewProduct(req.Name, *req.Price, req.Category)
	if err != nil {
		return nil, err
	}
	if err := product.SetBarcode(req.Barcode); err != nil {
		return nil, err
	}
	if err := product.SetImage(req.Image); err != nil {
		return nil, err
	}

	if err := s.ensureBarcodeAvailable(ctx, product, 0); err != nil {
		return nil, err
	}

	if err := s.save(ctx, product); err != nil {
		return nil, err
	}

	product.RecordCreated()
	s.publishEvents(ctx, product)

	s.logger.Info("product created",
		zap.Int64("product_id", product.ID),
		zap.String("name", product.Name),
	)

	resp := ToProductResponse(product)
	return &resp, nil
}

// Update replaces a product's fields
func (s *ProductService) Update(ctx context.Context, id int64, req ProductRequest) (*ProductResponse, error) {
	if req.Price == nil {
		return nil, ErrMissingFields
	}

	product, err := s.findProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := product.Update(req.Name, *req.Price, req.Category, req.Barcode, req.Image); err != nil {
		return nil, err
	}

	if err := s.ensureBarcodeAvailable(ctx, product, id); err != nil {
		return nil, err
	}

	if err := s.save(ctx, product); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, product)

	resp := ToProductResponse(product)
	return &resp, nil
}

// Delete removes a product from the catalog
func (s *ProductService) Delete(ctx context.Context, id int64) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	product := &catalog.Product{}
	product.ID = id
	product.MarkDeleted()
	s.publishEvents(ctx, product)

	s.logger.Info("product deleted", zap.Int64("product_id", id))
	return nil
}

func (s *ProductService) findProduct(ctx context.Context, id int64) (*catalog.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *ProductService) ensureBarcodeAvailable(ctx context.Context, product *catalog.Product, excludeID int64) error {
	if !product.HasBarcode() {
		return nil
	}
	exists, err := s.productRepo.ExistsByBarcode(ctx, product.BarcodeValue(), excludeID)
	if err != nil {
		return err
	}
	if exists {
		return ErrDuplicateBarcode
	}
	return nil
}

func (s *ProductService) save(ctx context.Context, product *catalog.Product) error {
	if err := s.productRepo.Save(ctx, product); err != nil {
		switch {
		case errors.Is(err, shared.ErrNotFound):
			return ErrProductNotFound
		case errors.Is(err, shared.ErrAlreadyExists):
			// the unique index caught a barcode race the pre-check missed
			return ErrDuplicateBarcode
		}
		return err
	}
	return nil
}

func (s *ProductService) publishEvents(ctx context.Context, product *catalog.Product) {
	events := product.GetDomainEvents()
	product.ClearDomainEvents()
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish product events", zap.Error(err))
	}
}
