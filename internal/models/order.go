package models

const DefaultOrderStatus = "Pending"

type OrderFields struct {
	Date                 Date   `json:"date" gorm:"not null"`
	ExpectedDeliveryDate *Date  `json:"expected_delivery_date"`
	Status               string `json:"status" gorm:"size:50"`
	CustomerID           uint   `json:"customer_id" gorm:"index;not null"`
}

type Order struct {
	ID uint `json:"id" gorm:"primaryKey"`
	OrderFields
	Customer *Customer `json:"-"`
	Products []Product `json:"products" gorm:"many2many:order_products"`
}

// OrderProduct is a row of the order/product join table created for Order.Products.
type OrderProduct struct {
	OrderID   uint `gorm:"primaryKey"`
	ProductID uint `gorm:"primaryKey"`
}

// TrackingInfo is the reduced order view served by the track endpoint.
type TrackingInfo struct {
	OrderDate            Date      `json:"order_date"`
	ExpectedDeliveryDate *Date     `json:"expected_delivery_date"`
	Status               string    `json:"status"`
	Products             []Product `json:"products"`
}

func (o Order) Tracking() TrackingInfo {
	products := o.Products
	if products == nil {
		products = []Product{}
	}
	return TrackingInfo{
		OrderDate:            o.Date,
		ExpectedDeliveryDate: o.ExpectedDeliveryDate,
		Status:               o.Status,
		Products:             products,
	}
}

// All lists every persisted model in dependency order.
func All() []any {
	return []any{&Customer{}, &CustomerAccount{}, &Product{}, &Order{}}
}
