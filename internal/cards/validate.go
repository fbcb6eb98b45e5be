package cards

import "fmt"

// ValidationError reports the first record that is missing a required field.
// Row is zero based and counts data rows only (the header is not a row).
type ValidationError struct {
	Row   int
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("row %d: missing required field %q", e.Row, e.Field)
}

// Validate checks the card-mode invariant on every record and returns a
// *ValidationError for the first offender. With strictQR the qr_url field is
// required too; otherwise a missing URL is left to the renderer, which draws
// a placeholder in its place.
func Validate(records []Record, strictQR bool) error {
	for i, r := range records {
		switch {
		case r.Artist == "":
			return &ValidationError{Row: i, Field: "artist"}
		case r.Title == "":
			return &ValidationError{Row: i, Field: "title"}
		case r.Year == "":
			return &ValidationError{Row: i, Field: "year"}
		case strictQR && r.QRURL == "":
			return &ValidationError{Row: i, Field: "qr_url"}
		}
	}
	return nil
}
