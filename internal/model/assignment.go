package model

import "time"

// Assignment is a historical record linking a serial unit to a customer for
// a period of custody. Material name/model and warranty expiration are
// denormalized at assignment time so the record survives later edits or
// deletion of the serial. Unassignment normally soft-deletes the record to
// preserve the audit trail.
type Assignment struct {
	ID                 int64     `json:"id"`
	CustomerID         string    `json:"customer_id"`
	Serial             string    `json:"serial"`
	AssignedDate       string    `json:"assigned_date"`
	MaterialID         int64     `json:"material_id"`
	MaterialName       string    `json:"material_name"`
	MaterialModel      string    `json:"material_model"`
	WarrantyExpiration string    `json:"warranty_expiration,omitempty"`
	Deleted            bool      `json:"deleted"`
	Extra              string    `json:"extra,omitempty"`
	LastModified       time.Time `json:"last_modified"`

	// Joined fields (not always populated).
	ProductionDate  string `json:"production_date,omitempty"`
	AcquisitionDate string `json:"acquisition_date,omitempty"`
}
