package request

// CreateCustomerRequest represents a customer creation request
type CreateCustomerRequest struct {
	Name           string  `json:"name" binding:"required,min=2,max=255"`
	DocumentType   string  `json:"document_type" binding:"omitempty,max=20"`
	DocumentNumber string  `json:"document_number" binding:"omitempty,max=50"`
	Address        *string `json:"address"`
	Phone          *string `json:"phone"`
	Email          *string `json:"email" binding:"omitempty,email"`
}

// UpdateCustomerRequest represents a customer update request
type UpdateCustomerRequest struct {
	Name           *string `json:"name" binding:"omitempty,min=2,max=255"`
	DocumentType   *string `json:"document_type" binding:"omitempty,max=20"`
	DocumentNumber *string `json:"document_number" binding:"omitempty,max=50"`
	Address        *string `json:"address"`
	Phone          *string `json:"phone"`
	Email          *string `json:"email" binding:"omitempty,email"`
}

// CustomerFilterRequest represents customer filter parameters
type CustomerFilterRequest struct {
	Search  string `form:"search"`
	Page    int    `form:"page"`
	PerPage int    `form:"per_page"`
}
