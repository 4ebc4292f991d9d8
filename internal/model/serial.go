package model

import "time"

// SerialUnit represents one physically trackable instance of a material,
// identified by its serial number. AssignedTo is empty while the unit is
// available.
type SerialUnit struct {
	Serial             string    `json:"serial"`
	MaterialID         int64     `json:"material_id"`
	ProductionDate     string    `json:"production_date,omitempty"`
	AcquisitionDate    string    `json:"acquisition_date,omitempty"`
	WarrantyExpiration string    `json:"warranty_expiration,omitempty"`
	AssignedTo         string    `json:"assigned_to,omitempty"`
	RetailPrice        *float64  `json:"retail_price,omitempty"`
	Extra              string    `json:"extra,omitempty"`
	LastModified       time.Time `json:"last_modified"`
}

// Available reports whether the unit can be assigned to a customer.
func (s *SerialUnit) Available() bool {
	return s.AssignedTo == ""
}
