package model

import "time"

// Catalog tables mirror the e-commerce dataset. The API never reads them; they
// are created with the schema and filled by cmd/loader.

type DistributionCenter struct {
	Id        uint    `gorm:"primaryKey;autoIncrement"`
	Name      *string `gorm:"type:varchar(255)"`
	Latitude  *float64
	Longitude *float64
}

func (DistributionCenter) TableName() string {
	return "distribution_centers"
}

type Product struct {
	Id                   uint `gorm:"primaryKey;autoIncrement"`
	Cost                 *float64
	Category             *string `gorm:"type:varchar(255)"`
	Name                 *string `gorm:"type:text"`
	Brand                *string `gorm:"type:varchar(255)"`
	RetailPrice          *float64
	Department           *string `gorm:"type:varchar(255)"`
	Sku                  *string `gorm:"type:varchar(255)"`
	DistributionCenterId *uint   `gorm:"index"`

	Center *DistributionCenter `gorm:"foreignKey:DistributionCenterId"`
}

func (Product) TableName() string {
	return "products"
}

type Order struct {
	OrderId     uint    `gorm:"primaryKey;autoIncrement;column:order_id"`
	UserId      *uint   `gorm:"index"`
	Status      *string `gorm:"type:varchar(64)"`
	Gender      *string `gorm:"type:varchar(16)"`
	CreatedAt   *time.Time
	ReturnedAt  *time.Time
	ShippedAt   *time.Time
	DeliveredAt *time.Time
	NumOfItem   *int

	User *User `gorm:"foreignKey:UserId"`
}

func (Order) TableName() string {
	return "orders"
}

type InventoryItem struct {
	Id                          uint  `gorm:"primaryKey;autoIncrement"`
	ProductId                   *uint `gorm:"index"`
	CreatedAt                   *time.Time
	SoldAt                      *time.Time
	Cost                        *float64
	ProductCategory             *string `gorm:"type:varchar(255)"`
	ProductName                 *string `gorm:"type:text"`
	ProductBrand                *string `gorm:"type:varchar(255)"`
	ProductRetailPrice          *float64
	ProductDepartment           *string `gorm:"type:varchar(255)"`
	ProductSku                  *string `gorm:"type:varchar(255)"`
	ProductDistributionCenterId *uint   `gorm:"index"`

	Product *Product            `gorm:"foreignKey:ProductId"`
	Center  *DistributionCenter `gorm:"foreignKey:ProductDistributionCenterId"`
}

func (InventoryItem) TableName() string {
	return "inventory_items"
}

type OrderItem struct {
	Id              uint    `gorm:"primaryKey;autoIncrement"`
	OrderId         *uint   `gorm:"index"`
	UserId          *uint   `gorm:"index"`
	ProductId       *uint   `gorm:"index"`
	InventoryItemId *uint   `gorm:"index"`
	Status          *string `gorm:"type:varchar(64)"`
	CreatedAt       *time.Time
	ShippedAt       *time.Time
	DeliveredAt     *time.Time
	ReturnedAt      *time.Time
	SalePrice       *float64

	Order         *Order         `gorm:"foreignKey:OrderId;references:OrderId"`
	User          *User          `gorm:"foreignKey:UserId"`
	Product       *Product       `gorm:"foreignKey:ProductId"`
	InventoryItem *InventoryItem `gorm:"foreignKey:InventoryItemId"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

// All returns every model in foreign-key dependency order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&ChatSession{},
		&Message{},
		&DistributionCenter{},
		&Product{},
		&Order{},
		&InventoryItem{},
		&OrderItem{},
	}
}
