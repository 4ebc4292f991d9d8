package model

import "time"

// Material represents a product type. Individual physical units are tracked
// as serial units under a material.
type Material struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name"`
	Model          string   `json:"model"`
	Producer       string   `json:"producer,omitempty"`
	Description    string   `json:"description,omitempty"`
	RetailPrice    *float64 `json:"retail_price,omitempty"`
	Used           bool     `json:"used"`
	WarrantyMonths *int     `json:"warranty_months,omitempty"`

	// Category is set manually by an operator. The Auto* fields are owned
	// by the categorizer and overwritten on every recategorization.
	Category       string  `json:"category,omitempty"`
	AutoCategory   string  `json:"auto_category,omitempty"`
	AutoConfidence float64 `json:"auto_confidence"`
	ModelFamily    string  `json:"model_family,omitempty"`

	ImageMime    string    `json:"image_mime,omitempty"`
	LastModified time.Time `json:"last_modified"`

	// Serial counts, populated by list queries.
	AvailableSerials int `json:"available_serials"`
	TotalSerials     int `json:"total_serials"`
}

// MaterialUpdate enumerates the mutable material fields.
// Nil fields are left unchanged. The used flag only moves from new to used,
// never back; category fields derived by the categorizer are not updatable
// through this struct.
type MaterialUpdate struct {
	Name           *string  `json:"name"`
	Model          *string  `json:"model"`
	Producer       *string  `json:"producer"`
	Description    *string  `json:"description"`
	RetailPrice    *float64 `json:"retail_price"`
	WarrantyMonths *int     `json:"warranty_months"`
}
