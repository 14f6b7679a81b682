package models

// BusinessAddress is the merchant's contact block printed on labels and
// invoices and used as the UPI payee name.
type BusinessAddress struct {
	Name    string `json:"name" validate:"required"`
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
	Phone   string `json:"phone"`
}

// StoreSettings is the single-row store configuration.
type StoreSettings struct {
	UPIID              string          `json:"upi_id"`
	BusinessAddress    BusinessAddress `json:"business_address"`
	EnableCOD          bool            `json:"enable_cod"`
	EnableBankTransfer bool            `json:"enable_bank_transfer"`
}
