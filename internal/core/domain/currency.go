package domain

// Currency represents a currency tracked by the rate service.
type Currency struct {
	CurrencyCode string `json:"currencyCode"` // Primary Key (e.g., "USD")
	Symbol       string `json:"symbol"`       // e.g., "$"
	Name         string `json:"name"`         // e.g., "US Dollar"
	Precision    int16  `json:"precision"`    // display decimal places, presentation hint only
	AuditFields
}
