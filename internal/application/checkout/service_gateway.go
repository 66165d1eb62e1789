package checkout

import (
	"context"

	appcatalog "github.com/grocerypos/backend/internal/application/catalog"
	"github.com/grocerypos/backend/internal/domain/catalog"
	"github.com/grocerypos/backend/internal/domain/shared"
)

// ErrUploadsDisabled is returned by ServiceGateway.UploadImage when the
// gateway has no image service
var ErrUploadsDisabled = shared.NewDomainError("UPLOADS_DISABLED", "Image uploads are not available")

// ServiceGateway serves the register straight from a ProductService,
// for a register sharing the catalog's database
type ServiceGateway struct {
	service *appcatalog.ProductService
	images  *appcatalog.ImageService
}

// NewServiceGateway creates a gateway over an in-process ProductService.
// images may be nil, which disables uploads
func NewServiceGateway(service *appcatalog.ProductService, images *appcatalog.ImageService) *ServiceGateway {
	return &ServiceGateway{service: service, images: images}
}

// ListProducts returns the whole catalog, newest first
func (g *ServiceGateway) ListProducts(ctx context.Context) ([]*catalog.Product, error) {
	responses, err := g.service.List(ctx, appcatalog.ProductListFilter{})
	if err != nil {
		return nil, err
	}
	return responsesToDomain(responses)
}

// LookupProduct resolves a barcode or product id
func (g *ServiceGateway) LookupProduct(ctx context.Context, code string) (*catalog.Product, error) {
	resp, err := g.service.Lookup(ctx, code)
	if err != nil {
		return nil, err
	}
	return resp.ToDomain()
}

// DeleteProduct removes a product from the catalog
func (g *ServiceGateway) DeleteProduct(ctx context.Context, id int64) error {
	return g.service.Delete(ctx, id)
}

// CreateProduct adds a product and returns its id
func (g *ServiceGateway) CreateProduct(ctx context.Context, req appcatalog.ProductRequest) (int64, error) {
	resp, err := g.service.Create(ctx, req)
	if err != nil {
		return 0, err
	}
	return resp.ID, nil
}

// UpdateProduct replaces a product's fields
func (g *ServiceGateway) UpdateProduct(ctx context.Context, id int64, req appcatalog.ProductRequest) error {
	_, err := g.service.Update(ctx, id, req)
	return err
}

// UploadImage stores a product image through the image service
func (g *ServiceGateway) UploadImage(ctx context.Context, req *appcatalog.UploadImageRequest) (string, error) {
	if g.images == nil {
		return "", ErrUploadsDisabled
	}
	resp, err := g.images.Upload(ctx, req)
	if err != nil {
		return "", err
	}
	return resp.URL, nil
}

func responsesToDomain(responses []appcatalog.ProductResponse) ([]*catalog.Product, error) {
	products := make([]*catalog.Product, 0, len(responses))
	for _, r := range responses {
		p, err := r.ToDomain()
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

var (
	_ CatalogGateway = (*ServiceGateway)(nil)
	_ CatalogEditor  = (*ServiceGateway)(nil)
)
