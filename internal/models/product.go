package models

type ProductFields struct {
	Name  string  `json:"name" gorm:"size:255;not null"`
	Price float64 `json:"price" gorm:"not null"`
}

// ProductInput is the request form of ProductFields. A zero price is a price.
type ProductInput struct {
	Name  *string  `json:"name" binding:"required,max=255"`
	Price *float64 `json:"price" binding:"required,gte=0"`
}

func (in ProductInput) Fields() ProductFields {
	return ProductFields{Name: *in.Name, Price: *in.Price}
}

type Product struct {
	ID uint `json:"id" gorm:"primaryKey"`
	ProductFields
}
