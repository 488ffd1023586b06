package customers

type CreateCustomerRequest struct {
	Name          string `json:"name" validate:"required,max=200"`
	Phone         string `json:"phone" validate:"max=50"`
	Email         string `json:"email" validate:"omitempty,email,max=100"`
	Address       string `json:"address"`
	SourceChannel string `json:"source_channel" validate:"max=50"`
	Notes         string `json:"notes"`
}

type UpdateCustomerRequest struct {
	Name          *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Phone         *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Email         *string `json:"email,omitempty" validate:"omitempty,email,max=100"`
	Address       *string `json:"address,omitempty"`
	SourceChannel *string `json:"source_channel,omitempty" validate:"omitempty,max=50"`
	Notes         *string `json:"notes,omitempty"`
	IsActive      *bool   `json:"is_active,omitempty"`
}

type ListCustomersRequest struct {
	Query      string
	OnlyActive bool
}
