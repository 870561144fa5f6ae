package models

import "time"

// LeadType classifies the distress signal a property lead came from.
type LeadType string

const (
	LeadTypeForeclosureNOD LeadType = "foreclosure_nod"
	LeadTypeForeclosureNOT LeadType = "foreclosure_not"
	LeadTypeProbate        LeadType = "probate"
	LeadTypeTaxLien        LeadType = "tax_lien"
	LeadTypeTaxSale        LeadType = "tax_sale"
)

// ValidLeadType reports whether t is one of the accepted lead types.
func ValidLeadType(t LeadType) bool {
	switch t {
	case LeadTypeForeclosureNOD, LeadTypeForeclosureNOT, LeadTypeProbate, LeadTypeTaxLien, LeadTypeTaxSale:
		return true
	}
	return false
}

// County is one of the Southern California counties the product covers.
type County string

const (
	CountyLosAngeles    County = "Los Angeles"
	CountyOrange        County = "Orange"
	CountyRiverside     County = "Riverside"
	CountySanBernardino County = "San Bernardino"
	CountySanDiego      County = "San Diego"
	CountyVentura       County = "Ventura"
)

// ValidCounty reports whether c is one of the covered counties.
func ValidCounty(c County) bool {
	switch c {
	case CountyLosAngeles, CountyOrange, CountyRiverside, CountySanBernardino, CountySanDiego, CountyVentura:
		return true
	}
	return false
}

// PropertyStatus is the lifecycle state of a lead. Investors only ever see
// active properties.
type PropertyStatus string

const (
	PropertyStatusActive   PropertyStatus = "active"
	PropertyStatusSold     PropertyStatus = "sold"
	PropertyStatusRedeemed PropertyStatus = "redeemed"
	PropertyStatusExpired  PropertyStatus = "expired"
	PropertyStatusRemoved  PropertyStatus = "removed"
)

// ValidPropertyStatus reports whether s is one of the accepted statuses.
func ValidPropertyStatus(s PropertyStatus) bool {
	switch s {
	case PropertyStatusActive, PropertyStatusSold, PropertyStatusRedeemed, PropertyStatusExpired, PropertyStatusRemoved:
		return true
	}
	return false
}

// DistressedProperty is one lead, created singly by an admin or in bulk from
// a county CSV export. Date fields stay as strings on the way in; the
// database column types parse them.
type DistressedProperty struct {
	ID                  string         `json:"id" db:"id"`
	LeadType            LeadType       `json:"lead_type" db:"lead_type"`
	County              County         `json:"county" db:"county"`
	PropertyAddress     *string        `json:"property_address" db:"property_address"`
	City                *string        `json:"city" db:"city"`
	Zip                 *string        `json:"zip" db:"zip"`
	APN                 *string        `json:"apn" db:"apn"`
	OwnerName           *string        `json:"owner_name" db:"owner_name"`
	OwnerMailingAddress *string        `json:"owner_mailing_address" db:"owner_mailing_address"`
	EstimatedValue      *float64       `json:"estimated_value" db:"estimated_value"`
	OutstandingDebt     *float64       `json:"outstanding_debt" db:"outstanding_debt"`
	EstimatedEquity     *float64       `json:"estimated_equity" db:"estimated_equity"`
	OpeningBid          *float64       `json:"opening_bid" db:"opening_bid"`
	RecordingDate       *string        `json:"recording_date" db:"recording_date"`
	DocumentNumber      *string        `json:"document_number" db:"document_number"`
	CaseNumber          *string        `json:"case_number" db:"case_number"`
	SaleDate            *string        `json:"sale_date" db:"sale_date"`
	Notes               *string        `json:"notes" db:"notes"`
	Source              *string        `json:"source" db:"source"`
	Status              PropertyStatus `json:"status" db:"status"`
	UploadedBy          *string        `json:"uploaded_by" db:"uploaded_by"`
	CreatedAt           time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at" db:"updated_at"`
}
