package services

import (
	"context"
	"fmt"

	"github.com/vittaya051733-boop/tungtong1/internal/core/domain"
	"github.com/vittaya051733-boop/tungtong1/internal/core/ports/driven"
)

// Stage names, also used as metric labels.
const (
	StageAPI              = "api"
	StageOfficialDocument = "official-document"
	StageDocumentOCR      = "document-ocr"
	StageMirrorDocument   = "mirror-document"
	StageWebPage          = "web-page"
	StageUpload           = "upload"
	StageStoredDocument   = "stored-document"
)

func unavailable(stage, why string) error {
	return fmt.Errorf("%s: %w: %s", stage, domain.ErrStageUnavailable, why)
}

// apiStage maps the results API payload, fetching it by date unless the
// run already holds it.
func (s *JobService) apiStage() Stage {
	return Stage{Name: StageAPI, Run: func(ctx context.Context, st *DateState) (*domain.Extraction, error) {
		if st.API == nil {
			if s.sources.API == nil {
				return nil, unavailable(StageAPI, "not configured")
			}
			draw, err := s.sources.API.ByDate(ctx, st.Date)
			if err != nil {
				return nil, err
			}
			if draw.Date != st.Date {
				return nil, fmt.Errorf("%w: api answered for %s", domain.ErrNotFound, draw.Date)
			}
			st.API = draw
		}
		if st.API.DocumentURL != "" {
			st.DocumentURL = st.API.DocumentURL
		}
		return st.API.Extraction(), nil
	}}
}

// officialStage downloads the sheet the API linked, unless the record
// already holds that exact sheet.
func (s *JobService) officialStage() Stage {
	return Stage{Name: StageOfficialDocument, Run: func(ctx context.Context, st *DateState) (*domain.Extraction, error) {
		if s.sources.Official == nil {
			return nil, unavailable(StageOfficialDocument, "not configured")
		}
		if st.DocumentURL == "" {
			return nil, unavailable(StageOfficialDocument, "no document url")
		}
		id := s.sources.Official.DocumentID(st.DocumentURL)
		if !st.Force && st.Record.HasOfficialDocument() && st.Record.Document.ID == id {
			return nil, unavailable(StageOfficialDocument, "already stored")
		}
		raw, err := s.sources.Official.Download(ctx, st.DocumentURL)
		if err != nil {
			return nil, err
		}
		return s.documents.Read(ctx, st.Date, raw)
	}}
}

// documentOCRStage re-reads the record's own document through OCR.
func (s *JobService) documentOCRStage() Stage {
	return Stage{Name: StageDocumentOCR, Run: func(ctx context.Context, st *DateState) (*domain.Extraction, error) {
		if st.Record == nil || st.Record.Document == nil {
			return nil, unavailable(StageDocumentOCR, "no stored document")
		}
		return s.documents.Recognise(ctx, st.Date, st.Record.Document)
	}}
}

func (s *JobService) mirrorStage() Stage {
	return Stage{Name: StageMirrorDocument, Run: func(ctx context.Context, st *DateState) (*domain.Extraction, error) {
		if s.sources.Mirror == nil {
			return nil, unavailable(StageMirrorDocument, "not configured")
		}
		raw, err := s.sources.Mirror.Fetch(ctx, st.Date)
		if err != nil {
			return nil, err
		}
		return s.documents.Read(ctx, st.Date, raw)
	}}
}

// webPageStage scrapes the result page. It carries no provenance tag,
// so it never moves the record's source.
func (s *JobService) webPageStage() Stage {
	return Stage{Name: StageWebPage, Run: func(ctx context.Context, st *DateState) (*domain.Extraction, error) {
		if s.sources.Pages == nil {
			return nil, unavailable(StageWebPage, "not configured")
		}
		text, err := s.sources.Pages.Text(ctx, st.Date)
		if err != nil {
			return nil, err
		}
		return &domain.Extraction{Prizes: s.documents.Parser().Parse(text)}, nil
	}}
}

// storedStage reads a document already in the blob store.
func (s *JobService) storedStage(info driven.BlobInfo) Stage {
	return Stage{Name: StageStoredDocument, Run: func(ctx context.Context, st *DateState) (*domain.Extraction, error) {
		raw, err := s.documents.Load(ctx, info)
		if err != nil {
			return nil, err
		}
		if err := validateDocument(raw.Content); err != nil {
			return nil, fmt.Errorf("%s: %w", info.Path, err)
		}
		ref := raw.Ref(info.Path)
		if raw.ID == "" {
			ref.ID = info.Path
		}
		return s.documents.Parse(ctx, st.Date, raw, ref), nil
	}}
}

// fallbacks is the chain tried while prizes are short, in trust order.
func (s *JobService) fallbacks() []Stage {
	return []Stage{s.documentOCRStage(), s.mirrorStage(), s.webPageStage()}
}
