package domain

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// Upload is a result sheet submitted by an operator.
type Upload struct {
	// Content is the document bytes.
	Content []byte

	// Date is the draw date. Empty means detect it from the sheet heading.
	Date string

	// Start and End optionally bound the accepted draw date.
	Start string
	End   string

	// Filename is recorded in blob metadata only.
	Filename string

	// Force ingests even when the record already holds the official sheet.
	Force bool
}

// DecodeUpload accepts plain base64 or a data URL such as
// "data:application/pdf;base64,JVBERi0...".
func DecodeUpload(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, "base64,"); i >= 0 {
		s = s[i+len("base64,"):]
	}
	if s == "" {
		return nil, fmt.Errorf("%w: empty upload", ErrInvalidInput)
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: upload is not base64: %v", ErrInvalidInput, err)
	}
	return data, nil
}
