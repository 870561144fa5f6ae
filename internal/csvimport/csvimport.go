package csvimport

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/HighviewOne/sonderbe/internal/models"
)

// RowError records one rejected CSV row. Row is the 1-based position in the
// file counting the header line, so the first data row reports as row 2.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// Result is the outcome of mapping one uploaded file: the rows ready for
// bulk insert, the per-row rejections, and the total data rows seen.
type Result struct {
	Properties []models.DistressedProperty
	Errors     []RowError
	Total      int
}

// headerAliases maps each accepted column name onto its canonical field.
// County exports disagree on header naming, so common variants are accepted.
var headerAliases = map[string]string{
	"property_address":      "property_address",
	"address":               "property_address",
	"city":                  "city",
	"zip":                   "zip",
	"zip_code":              "zip",
	"apn":                   "apn",
	"owner_name":            "owner_name",
	"owner":                 "owner_name",
	"owner_mailing_address": "owner_mailing_address",
	"mailing_address":       "owner_mailing_address",
	"estimated_value":       "estimated_value",
	"outstanding_debt":      "outstanding_debt",
	"estimated_equity":      "estimated_equity",
	"opening_bid":           "opening_bid",
	"recording_date":        "recording_date",
	"document_number":       "document_number",
	"case_number":           "case_number",
	"sale_date":             "sale_date",
	"notes":                 "notes",
	"source":                "source",
}

// Parse reads one delimited file with a header row and maps every data row
// onto a property record. A row missing both property_address and apn is
// rejected without halting the batch; an empty file or a file with no data
// rows is an error.
func Parse(r io.Reader, leadType models.LeadType, county models.County, uploadedBy string) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse header row: %w", err)
	}

	// Column position -> canonical field name.
	fields := make(map[int]string, len(header))
	for i, col := range header {
		name := strings.ToLower(strings.TrimSpace(col))
		if canonical, ok := headerAliases[name]; ok {
			fields[i] = canonical
		}
	}

	result := &Result{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse row %d: %w", result.Total+2, err)
		}

		row := make(map[string]string, len(fields))
		for i, value := range record {
			if name, ok := fields[i]; ok {
				if v := strings.TrimSpace(value); v != "" && row[name] == "" {
					row[name] = v
				}
			}
		}
		result.Total++
		// Reported row number: 1-based data index plus the header line.
		rowNum := result.Total + 1

		if row["property_address"] == "" && row["apn"] == "" {
			result.Errors = append(result.Errors, RowError{Row: rowNum, Message: "Missing property_address and apn"})
			continue
		}

		p := models.DistressedProperty{
			LeadType:            leadType,
			County:              county,
			Status:              models.PropertyStatusActive,
			UploadedBy:          optional(uploadedBy),
			PropertyAddress:     optional(row["property_address"]),
			City:                optional(row["city"]),
			Zip:                 optional(row["zip"]),
			APN:                 optional(row["apn"]),
			OwnerName:           optional(row["owner_name"]),
			OwnerMailingAddress: optional(row["owner_mailing_address"]),
			RecordingDate:       optional(row["recording_date"]),
			DocumentNumber:      optional(row["document_number"]),
			CaseNumber:          optional(row["case_number"]),
			SaleDate:            optional(row["sale_date"]),
			Notes:               optional(row["notes"]),
			Source:              optional(row["source"]),
		}

		bad := false
		for field, dest := range map[string]**float64{
			"estimated_value":  &p.EstimatedValue,
			"outstanding_debt": &p.OutstandingDebt,
			"estimated_equity": &p.EstimatedEquity,
			"opening_bid":      &p.OpeningBid,
		} {
			v, err := parseAmount(row[field])
			if err != nil {
				result.Errors = append(result.Errors, RowError{
					Row:     rowNum,
					Message: fmt.Sprintf("Invalid numeric value for %s: %q", field, row[field]),
				})
				bad = true
				break
			}
			*dest = v
		}
		if bad {
			continue
		}

		result.Properties = append(result.Properties, p)
	}

	if result.Total == 0 {
		return nil, fmt.Errorf("file has no data rows")
	}
	return result, nil
}

// parseAmount coerces a currency-ish cell to a float, treating empty as null.
// Thousands separators and a leading dollar sign are tolerated.
func parseAmount(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	cleaned := strings.TrimPrefix(strings.ReplaceAll(s, ",", ""), "$")
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
