package models

// Represents the hospital details captured on the hospital login form
type HospitalIdentity struct {
	HospitalName  string `json:"hospitalName" form:"hospitalName" validate:"notblank"`
	UserName      string `json:"userName" form:"userName" validate:"notblank"`
	ContactNumber string `json:"contactNumber" form:"contactNumber" validate:"notblank,phone10"`
	Location      string `json:"location" form:"location" validate:"notblank"`
}

// VendorIdentity represents the pickup vendor captured on the vendor login form
type VendorIdentity struct {
	VendorName    string `json:"vendorName" form:"vendorName" validate:"notblank"`
	Place         string `json:"place" form:"place" validate:"notblank"`
	VehicleNumber string `json:"vehicleNumber" form:"vehicleNumber" validate:"notblank"`
	ContactNumber string `json:"contactNumber" form:"contactNumber" validate:"notblank,phone10"`
}
