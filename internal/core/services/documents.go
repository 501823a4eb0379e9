package services

import (
	"bytes"
	"context"
	"fmt"
	"maps"

	"github.com/vittaya051733-boop/tungtong1/internal/core/domain"
	"github.com/vittaya051733-boop/tungtong1/internal/core/ports/driven"
	"github.com/vittaya051733-boop/tungtong1/internal/extract"
	"github.com/vittaya051733-boop/tungtong1/internal/logger"
)

// DocumentReader stores result sheets and turns them into extractions.
type DocumentReader struct {
	schema  domain.Schema
	blobs   driven.BlobStore
	text    driven.TextExtractor
	ocr     *OCR
	parser  *extract.Parser
	metrics driven.Metrics
}

// NewDocumentReader creates a reader. A nil ocr disables recognition.
func NewDocumentReader(
	schema domain.Schema,
	blobs driven.BlobStore,
	text driven.TextExtractor,
	ocr *OCR,
	metrics driven.Metrics,
) *DocumentReader {
	if metrics == nil {
		metrics = driven.NopMetrics{}
	}
	return &DocumentReader{
		schema:  schema,
		blobs:   blobs,
		text:    text,
		ocr:     ocr,
		parser:  extract.NewParser(schema),
		metrics: metrics,
	}
}

// Store writes raw under its path for date. The path is write-once: when
// it already holds different bytes, those are kept and returned in place of
// raw, so the reference always describes what is stored.
func (r *DocumentReader) Store(
	ctx context.Context,
	date string,
	raw *domain.RawDocument,
	extra map[string]string,
) (*domain.RawDocument, *domain.DocumentRef, error) {
	ref := raw.Ref(raw.BlobPath(date))
	metadata := map[string]string{
		"date":         date,
		"kind":         string(raw.Kind),
		"pdfId":        raw.ID,
		"sourcePdfUrl": raw.Origin,
		"sha256":       ref.SHA256,
	}
	maps.Copy(metadata, extra)

	if err := r.blobs.Put(ctx, ref.BlobPath, raw.Content, documentMIMEType, metadata); err != nil {
		return nil, nil, fmt.Errorf("store document %s: %w", ref.BlobPath, err)
	}
	return r.stored(ctx, raw, ref)
}

// stored checks the object at ref.BlobPath against raw. The recorded
// sha256 metadata is trusted when present; otherwise the bytes are read.
func (r *DocumentReader) stored(
	ctx context.Context,
	raw *domain.RawDocument,
	ref *domain.DocumentRef,
) (*domain.RawDocument, *domain.DocumentRef, error) {
	infos, err := r.blobs.List(ctx, ref.BlobPath, 1)
	if err != nil {
		return nil, nil, fmt.Errorf("check document %s: %w", ref.BlobPath, err)
	}
	if len(infos) == 1 && infos[0].Path == ref.BlobPath && infos[0].Metadata["sha256"] == ref.SHA256 {
		return raw, ref, nil
	}

	data, err := r.blobs.Get(ctx, ref.BlobPath)
	if err != nil {
		return nil, nil, fmt.Errorf("check document %s: %w", ref.BlobPath, err)
	}
	if bytes.Equal(data, raw.Content) {
		return raw, ref, nil
	}

	kept := *raw
	kept.Content = data
	keptRef := kept.Ref(ref.BlobPath)
	logger.Warn("%s already holds sha256 %s; ignoring reissued bytes %s",
		ref.BlobPath, keptRef.SHA256[:12], ref.SHA256[:12])
	return &kept, keptRef, nil
}

// Read stores raw and parses what ends up stored.
func (r *DocumentReader) Read(ctx context.Context, date string, raw *domain.RawDocument) (*domain.Extraction, error) {
	doc, ref, err := r.Store(ctx, date, raw, nil)
	if err != nil {
		return nil, err
	}
	return r.Parse(ctx, date, doc, ref), nil
}

// Parse reads prizes from a stored document. When the text layer is
// implausible or short, OCR output is parsed too and the better result kept.
// OCR failures only lose the OCR result.
func (r *DocumentReader) Parse(
	ctx context.Context,
	date string,
	raw *domain.RawDocument,
	ref *domain.DocumentRef,
) *domain.Extraction {
	text := r.Text(ctx, raw)
	prizes := r.parser.Parse(text)

	if r.ocr != nil && (!extract.Plausible(text) || !r.schema.PrizesFull(prizes)) {
		ocrText, err := r.ocr.Text(ctx, date, ref)
		if err != nil {
			r.metrics.StageFailed("ocr")
			logger.Warn("%s: ocr of %s failed: %v", date, ref.BlobPath, err)
		} else {
			prizes = r.parser.ParseBest(text, ocrText)
		}
	}

	return &domain.Extraction{
		Source:   raw.Kind,
		Prizes:   prizes,
		Document: ref,
	}
}

// Text returns the document's embedded text, or "" when it has none.
func (r *DocumentReader) Text(ctx context.Context, raw *domain.RawDocument) string {
	if r.text == nil {
		return ""
	}
	text, err := r.text.Extract(ctx, raw)
	if err != nil {
		r.metrics.StageFailed("text")
		logger.Warn("text extraction of %s failed: %v", raw.Origin, err)
		return ""
	}
	return text
}

// Recognise parses only the OCR output of a document already on record.
func (r *DocumentReader) Recognise(ctx context.Context, date string, ref *domain.DocumentRef) (*domain.Extraction, error) {
	if r.ocr == nil {
		return nil, fmt.Errorf("ocr %s: %w: recognition disabled", date, domain.ErrStageUnavailable)
	}
	text, err := r.ocr.Text(ctx, date, ref)
	if err != nil {
		return nil, err
	}
	return &domain.Extraction{
		Source: ref.Kind,
		Prizes: r.parser.Parse(text),
	}, nil
}

// Load reads a stored document back from the blob store.
func (r *DocumentReader) Load(ctx context.Context, info driven.BlobInfo) (*domain.RawDocument, error) {
	data, err := r.blobs.Get(ctx, info.Path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", info.Path, err)
	}

	kind := domain.Provenance(info.Metadata["kind"])
	if !kind.Valid() {
		kind = domain.DocumentKind(info.Path)
	}
	return &domain.RawDocument{
		Kind:    kind,
		Origin:  info.Metadata["sourcePdfUrl"],
		ID:      info.Metadata["pdfId"],
		Content: data,
	}, nil
}

// Parser exposes the sheet parser for non-document sources.
func (r *DocumentReader) Parser() *extract.Parser {
	return r.parser
}
