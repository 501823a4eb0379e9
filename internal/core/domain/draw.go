package domain

import "time"

// Category identifies one prize list on a result sheet.
type Category string

// Prize categories of the Thai government lottery.
const (
	CategoryFirst  Category = "first"
	CategoryLast2  Category = "last2"
	CategoryLast3F Category = "last3f"
	CategoryLast3B Category = "last3b"
	CategoryNear1  Category = "near1"
	CategoryTier2  Category = "tier2"
	CategoryTier3  Category = "tier3"
	CategoryTier4  Category = "tier4"
	CategoryTier5  Category = "tier5"
)

// AmountKey names one prize tier in the amounts table.
type AmountKey string

// Amount keys. AmountLast3 is the back three digits tier.
const (
	AmountFirst  AmountKey = "first"
	AmountNear1  AmountKey = "near1"
	AmountSecond AmountKey = "second"
	AmountThird  AmountKey = "third"
	AmountFourth AmountKey = "fourth"
	AmountFifth  AmountKey = "fifth"
	AmountLast3  AmountKey = "last3"
	AmountLast3F AmountKey = "last3f"
	AmountLast2  AmountKey = "last2"
)

// Provenance tags where a record's data came from.
// Tags are ranked; a record's tag only moves up.
type Provenance string

const (
	ProvenanceNone             Provenance = ""
	ProvenanceAPI              Provenance = "api"
	ProvenanceMirrorDocument   Provenance = "mirror-document"
	ProvenanceUpload           Provenance = "upload"
	ProvenanceOfficialDocument Provenance = "official-document"
)

// Rank orders provenance tags by trust. Unknown tags rank lowest.
func (p Provenance) Rank() int {
	switch p {
	case ProvenanceAPI:
		return 1
	case ProvenanceMirrorDocument:
		return 2
	case ProvenanceUpload:
		return 3
	case ProvenanceOfficialDocument:
		return 4
	default:
		return 0
	}
}

// Valid reports whether p is a known non-empty tag.
func (p Provenance) Valid() bool {
	return p.Rank() > 0
}

// Prizes maps each category to its winning numbers.
// Numbers are kept as strings; leading zeros are significant.
type Prizes map[Category][]string

// Clone returns a deep copy.
func (p Prizes) Clone() Prizes {
	if p == nil {
		return nil
	}
	out := make(Prizes, len(p))
	for k, v := range p {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// Amounts maps prize tiers to baht per ticket.
// A non-nil Amounts is only built from a complete set of keys.
type Amounts map[AmountKey]int64

// Clone returns a copy.
func (a Amounts) Clone() Amounts {
	if a == nil {
		return nil
	}
	out := make(Amounts, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// DocumentRef points at a stored copy of a result sheet.
type DocumentRef struct {
	// Kind is the provenance of the document bytes.
	Kind Provenance `json:"kind"`

	// Origin is the URL or identifier the bytes came from.
	Origin string `json:"origin"`

	// ID is a source-specific identifier (GLO pdf id, mirror file key, upload hash prefix).
	ID string `json:"id"`

	// SHA256 is the hex digest of the bytes.
	SHA256 string `json:"sha256"`

	// Size is the byte length.
	Size int64 `json:"size"`

	// BlobPath is where the bytes live in the blob store.
	BlobPath string `json:"blob_path"`
}

// Diagnostics summarises what a record is missing.
type Diagnostics struct {
	Complete bool     `json:"complete"`
	Warnings []string `json:"warnings"`
}

// DrawRecord is the canonical result for one draw date.
type DrawRecord struct {
	// Date is the canonical YYYY-MM-DD key.
	Date string `json:"date"`

	// Source is the highest provenance that contributed data.
	Source Provenance `json:"source"`

	// Document is the stored result sheet, if any.
	Document *DocumentRef `json:"document,omitempty"`

	Prizes      Prizes      `json:"prizes"`
	Amounts     Amounts     `json:"amounts,omitempty"`
	Diagnostics Diagnostics `json:"diagnostics"`

	// UpdatedAt is the last write time.
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a deep copy of the record.
func (r *DrawRecord) Clone() *DrawRecord {
	if r == nil {
		return nil
	}
	out := *r
	out.Prizes = r.Prizes.Clone()
	out.Amounts = r.Amounts.Clone()
	out.Diagnostics.Warnings = append([]string(nil), r.Diagnostics.Warnings...)
	if r.Document != nil {
		doc := *r.Document
		out.Document = &doc
	}
	return &out
}

// HasOfficialDocument reports whether the record carries the GLO document.
func (r *DrawRecord) HasOfficialDocument() bool {
	return r != nil && r.Document != nil && r.Document.Kind == ProvenanceOfficialDocument
}

// Extraction is what one stage contributes to a date.
// It is the only shape that crosses into the merge engine.
type Extraction struct {
	Source   Provenance
	Prizes   Prizes
	Amounts  Amounts
	Document *DocumentRef
}

// Empty reports whether the extraction carries nothing to merge.
func (e *Extraction) Empty() bool {
	if e == nil {
		return true
	}
	if e.Document != nil || len(e.Amounts) > 0 {
		return false
	}
	for _, v := range e.Prizes {
		if len(v) > 0 {
			return false
		}
	}
	return true
}
