package csvimport

import (
	"strings"
	"testing"

	"github.com/HighviewOne/sonderbe/internal/models"
)

func TestParseSkipsRowsMissingAddressAndAPN(t *testing.T) {
	input := "property_address,apn,owner_name\n" +
		"123 Main St,111-222-333,Jane Smith\n" +
		",,John Doe\n" +
		",444-555-666,Empty Address\n"

	result, err := Parse(strings.NewReader(input), models.LeadTypeForeclosureNOD, models.CountyLosAngeles, "admin-1")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if result.Total != 3 {
		t.Errorf("expected 3 data rows, got %d", result.Total)
	}
	if len(result.Properties) != 2 {
		t.Fatalf("expected 2 accepted rows, got %d", len(result.Properties))
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 row error, got %d", len(result.Errors))
	}
	// The bad row is the second data row, reported as row 3 counting the header.
	if result.Errors[0].Row != 3 {
		t.Errorf("expected error at row 3, got %d", result.Errors[0].Row)
	}
	// An APN alone is enough to accept a row.
	if result.Properties[1].APN == nil || *result.Properties[1].APN != "444-555-666" {
		t.Errorf("expected APN-only row to be accepted, got %+v", result.Properties[1])
	}
}

func TestParseHeaderAliases(t *testing.T) {
	input := "Address,Zip_Code,Owner,Mailing_Address\n" +
		"456 Oak Ave,90210,Acme Trust,PO Box 12\n"

	result, err := Parse(strings.NewReader(input), models.LeadTypeProbate, models.CountyOrange, "admin-1")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(result.Properties) != 1 {
		t.Fatalf("expected 1 accepted row, got %d", len(result.Properties))
	}
	p := result.Properties[0]
	if p.PropertyAddress == nil || *p.PropertyAddress != "456 Oak Ave" {
		t.Errorf("address alias not mapped: %+v", p.PropertyAddress)
	}
	if p.Zip == nil || *p.Zip != "90210" {
		t.Errorf("zip_code alias not mapped: %+v", p.Zip)
	}
	if p.OwnerName == nil || *p.OwnerName != "Acme Trust" {
		t.Errorf("owner alias not mapped: %+v", p.OwnerName)
	}
	if p.OwnerMailingAddress == nil || *p.OwnerMailingAddress != "PO Box 12" {
		t.Errorf("mailing_address alias not mapped: %+v", p.OwnerMailingAddress)
	}
}

func TestParseInvalidNumericIsRowError(t *testing.T) {
	input := "property_address,estimated_value\n" +
		"1 First St,500000\n" +
		"2 Second St,not-a-number\n" +
		"3 Third St,\n"

	result, err := Parse(strings.NewReader(input), models.LeadTypeTaxLien, models.CountyRiverside, "admin-1")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(result.Properties) != 2 {
		t.Fatalf("expected bad numeric to skip only its own row, got %d accepted", len(result.Properties))
	}
	if len(result.Errors) != 1 || result.Errors[0].Row != 3 {
		t.Fatalf("expected one error at row 3, got %+v", result.Errors)
	}
	if result.Properties[0].EstimatedValue == nil || *result.Properties[0].EstimatedValue != 500000 {
		t.Errorf("estimated_value not parsed: %+v", result.Properties[0].EstimatedValue)
	}
	// Empty numeric cells stay null, they are not zero.
	if result.Properties[1].EstimatedValue != nil {
		t.Errorf("expected nil estimated_value for empty cell, got %v", *result.Properties[1].EstimatedValue)
	}
}

func TestParseCurrencyFormatting(t *testing.T) {
	input := "property_address,estimated_value,opening_bid\n" +
		"7 Palm Dr,\"$1,250,000\",\"$420,500.50\"\n"

	result, err := Parse(strings.NewReader(input), models.LeadTypeTaxSale, models.CountySanDiego, "admin-1")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(result.Properties) != 1 {
		t.Fatalf("expected 1 accepted row, got %d", len(result.Properties))
	}
	p := result.Properties[0]
	if p.EstimatedValue == nil || *p.EstimatedValue != 1250000 {
		t.Errorf("dollar amount not parsed: %+v", p.EstimatedValue)
	}
	if p.OpeningBid == nil || *p.OpeningBid != 420500.50 {
		t.Errorf("decimal amount not parsed: %+v", p.OpeningBid)
	}
}

func TestParseAppliesBatchFields(t *testing.T) {
	input := "property_address\n9 Elm St\n"

	result, err := Parse(strings.NewReader(input), models.LeadTypeForeclosureNOT, models.CountyVentura, "admin-9")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	p := result.Properties[0]
	if p.LeadType != models.LeadTypeForeclosureNOT {
		t.Errorf("lead type not applied: %s", p.LeadType)
	}
	if p.County != models.CountyVentura {
		t.Errorf("county not applied: %s", p.County)
	}
	if p.Status != models.PropertyStatusActive {
		t.Errorf("new rows should be active, got %s", p.Status)
	}
	if p.UploadedBy == nil || *p.UploadedBy != "admin-9" {
		t.Errorf("uploaded_by not applied: %+v", p.UploadedBy)
	}
}

func TestParseRejectsEmptyFiles(t *testing.T) {
	if _, err := Parse(strings.NewReader(""), models.LeadTypeProbate, models.CountyOrange, "admin-1"); err == nil {
		t.Error("expected error for empty file")
	}
	if _, err := Parse(strings.NewReader("property_address,apn\n"), models.LeadTypeProbate, models.CountyOrange, "admin-1"); err == nil {
		t.Error("expected error for header-only file")
	}
}
