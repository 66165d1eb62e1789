package models

import (
	"github.com/grocerypos/backend/internal/domain/catalog"
	"github.com/grocerypos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for the Product aggregate.
// Barcode and Image are NULL when unset, so the unique index only
// constrains products that actually carry a barcode.
type ProductModel struct {
	BaseModel
	Barcode  *string         `gorm:"type:varchar(50);uniqueIndex:idx_products_barcode"`
	Name     string          `gorm:"type:varchar(200);not null"`
	Price    decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Category string          `gorm:"type:varchar(100);not null;index:idx_products_category"`
	Image    *string         `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: m.BaseModel.ToDomain(),
		},
		Barcode:  m.Barcode,
		Name:     m.Name,
		Price:    m.Price,
		Category: m.Category,
		Image:    m.Image,
	}
}

// FromDomain populates the persistence model from a domain Product
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.Barcode = p.Barcode
	m.Name = p.Name
	m.Price = p.Price
	m.Category = p.Category
	m.Image = p.Image
}

// ProductModelFromDomain creates a new persistence model from a domain Product
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}

// AllModels lists every model for AutoMigrate
func AllModels() []any {
	return []any{&ProductModel{}}
}
