package dto

// CategoryRequest creates or replaces a waste category.
type CategoryRequest struct {
	Name                  string   `json:"name" validate:"required,max=100"`
	PricePerKg            *float64 `json:"pricePerKg" validate:"required,gte=0"`
	IsUserPaymentRequired *bool    `json:"isUserPaymentRequired" validate:"required"`
	IsActive              *bool    `json:"isActive"`
}

// DistrictRequest creates or replaces a district.
type DistrictRequest struct {
	Name     string   `json:"name" validate:"required,max=120"`
	Cities   []string `json:"cities" validate:"required,min=1,dive,required,max=120"`
	IsActive *bool    `json:"isActive"`
}

// DriverRequest creates or replaces a driver profile. UserID is fixed after creation.
type DriverRequest struct {
	UserID     string `json:"userId" validate:"required"`
	Name       string `json:"name" validate:"required,max=120"`
	Phone      string `json:"phone" validate:"omitempty,max=32"`
	DistrictID string `json:"districtId" validate:"required"`
	City       string `json:"city" validate:"required,max=120"`
	Active     *bool  `json:"active"`
}
