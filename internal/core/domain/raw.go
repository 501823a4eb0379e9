package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
)

// DocumentRoot is the blob prefix for stored result sheets.
const DocumentRoot = "lottery_pdfs/"

var documentDatePattern = regexp.MustCompile(`^` + regexp.QuoteMeta(DocumentRoot) + `(\d{4}-\d{2}-\d{2})(?:_|\.pdf$)`)

// RawDocument is the bytes of a result sheet as a source adapter fetched them,
// before text extraction.
type RawDocument struct {
	// Kind is the provenance of the bytes.
	Kind Provenance

	// Origin is the URL or identifier the bytes came from.
	Origin string

	// ID is the source-specific identifier used in the blob path.
	ID string

	// Content is the raw bytes.
	Content []byte
}

// SHA256 returns the hex digest of the content.
func (d *RawDocument) SHA256() string {
	sum := sha256.Sum256(d.Content)
	return hex.EncodeToString(sum[:])
}

// BlobPath is where the document for date is stored. Namespaced ids such
// as "lotteryco:670616" keep their namespace as a file name segment.
func (d *RawDocument) BlobPath(date string) string {
	return fmt.Sprintf("%s%s_%s.pdf", DocumentRoot, date, strings.ReplaceAll(d.ID, ":", "_"))
}

// DocumentDate returns the draw date encoded in a stored document path.
func DocumentDate(path string) (string, bool) {
	m := documentDatePattern.FindStringSubmatch(path)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// DocumentKind infers the provenance of a stored document from its path.
func DocumentKind(path string) Provenance {
	switch {
	case strings.Contains(path, "_lotteryco_"):
		return ProvenanceMirrorDocument
	case strings.Contains(path, "_upload_"):
		return ProvenanceUpload
	default:
		return ProvenanceOfficialDocument
	}
}

// Ref builds the document reference once the bytes are stored at path.
func (d *RawDocument) Ref(path string) *DocumentRef {
	return &DocumentRef{
		Kind:     d.Kind,
		Origin:   d.Origin,
		ID:       d.ID,
		SHA256:   d.SHA256(),
		Size:     int64(len(d.Content)),
		BlobPath: path,
	}
}

// APIDraw is a draw as the structured results API reports it.
// Fields the API left out are empty.
type APIDraw struct {
	Date string

	// DocumentURL is the official PDF link, when published.
	DocumentURL string

	Prizes  Prizes
	Amounts Amounts
}

// Extraction maps the API payload into mergeable fields.
func (a *APIDraw) Extraction() *Extraction {
	if a == nil {
		return nil
	}
	return &Extraction{
		Source:  ProvenanceAPI,
		Prizes:  a.Prizes,
		Amounts: a.Amounts,
	}
}
