package models

// AccountFields are the client-writable account attributes. Password holds the
// bcrypt hash once persisted.
type AccountFields struct {
	Username   string `json:"username" gorm:"size:255;uniqueIndex;not null"`
	Password   string `json:"password" gorm:"size:255;not null"`
	CustomerID *uint  `json:"customer_id" gorm:"index"`
}

type AccountInput struct {
	Username   *string `json:"username" binding:"required,max=255"`
	Password   *string `json:"password" binding:"required,max=72"`
	CustomerID *uint   `json:"customer_id"`
}

func (in AccountInput) Fields() AccountFields {
	return AccountFields{Username: *in.Username, Password: *in.Password, CustomerID: in.CustomerID}
}

type CustomerAccount struct {
	ID uint `json:"id" gorm:"primaryKey"`
	AccountFields
	Customer *Customer `json:"-" gorm:"constraint:OnDelete:SET NULL"`
}
