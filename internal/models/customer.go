package models

// CustomerFields are the client-writable customer attributes.
type CustomerFields struct {
	Name  string `json:"name" gorm:"size:255;not null"`
	Email string `json:"email" gorm:"size:320"`
	Phone string `json:"phone" gorm:"size:15"`
}

// CustomerInput is the request form of CustomerFields. Pointers tell an absent
// field from an empty one.
type CustomerInput struct {
	Name  *string `json:"name" binding:"required,max=255"`
	Email *string `json:"email" binding:"required,max=320"`
	Phone *string `json:"phone" binding:"required,max=15"`
}

// Fields must only be called once the input passed validation.
func (in CustomerInput) Fields() CustomerFields {
	return CustomerFields{Name: *in.Name, Email: *in.Email, Phone: *in.Phone}
}

type Customer struct {
	ID uint `json:"id" gorm:"primaryKey"`
	CustomerFields
	OIDCID *string `json:"-" gorm:"column:oidc_id;uniqueIndex"` // OpenID Connect subject, set on sign-in
}
