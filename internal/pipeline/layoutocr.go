package pipeline

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"

	"github.com/visarchlab/visextract/internal/caption"
	"github.com/visarchlab/visextract/internal/config"
	"github.com/visarchlab/visextract/internal/geometry"
	"github.com/visarchlab/visextract/internal/layout"
	"github.com/visarchlab/visextract/internal/ocr"
	"github.com/visarchlab/visextract/internal/render"
	"github.com/visarchlab/visextract/internal/visual"
)

// LayoutOCR runs layout analysis first, then sends every page without
// embedded images through Tesseract: the page is rasterized, recognized
// regions without text are filtered down to figure candidates, and captions
// are matched against the recognized text regions. Documents the layout pass
// cannot parse at all have every page promoted to an OCR candidate when the
// fallback is enabled.
type LayoutOCR struct {
	opts          Options
	source        LayoutSource
	openRaster    RasterizerFactory
	newRecognizer RecognizerFactory

	recognizer Recognizer // created on first OCR candidate
}

func NewLayoutOCR(opts Options) *LayoutOCR {
	source := layout.NewAnalyzer(layout.Settings{
		MinImageWidth:  opts.Config.Layout.MinImageWidth,
		MinImageHeight: opts.Config.Layout.MinImageHeight,
	})
	openRaster := func(path string) (Rasterizer, error) { return render.Open(path) }
	newRecognizer := func() (Recognizer, error) {
		return ocr.NewEngine(ocr.EngineConfig{
			Languages:   opts.Config.OCR.Languages,
			PageSegMode: gosseract.PSM_AUTO,
		})
	}
	return newLayoutOCRWith(opts, source, openRaster, newRecognizer)
}

func newLayoutOCRWith(opts Options, source LayoutSource,
	openRaster RasterizerFactory, newRecognizer RecognizerFactory,
) *LayoutOCR {
	return &LayoutOCR{opts: opts, source: source, openRaster: openRaster, newRecognizer: newRecognizer}
}

// Run processes every PDF found under the data directory as one entry.
func (p *LayoutOCR) Run() (*Result, error) {
	start := time.Now()
	entryID := p.opts.entryID()
	entryDir := filepath.Join(p.opts.OutputDir, entryID)
	if err := os.MkdirAll(entryDir, 0o755); err != nil {
		return nil, fmt.Errorf("create entry directory: %w", err)
	}

	logger, logFile, err := entryLogger(p.opts.Logger, entryDir, entryID, parseLevel(p.opts.Config.LogLevel))
	if err != nil {
		return nil, err
	}
	defer logFile.Close()
	defer p.closeRecognizer(logger)

	layoutCap, err := captionParams(p.opts.Config.Layout.Caption, p.opts.Config.OCR.Resolution)
	if err != nil {
		return nil, fmt.Errorf("layout caption settings: %w", err)
	}
	ocrCap, err := captionParams(p.opts.Config.OCR.Caption, p.opts.Config.OCR.Resolution)
	if err != nil {
		return nil, fmt.Errorf("ocr caption settings: %w", err)
	}

	entry := loadEntry(&p.opts, logger)
	pdfs, err := findPDFs(p.opts.DataDir, p.opts.pdfPrefix())
	if err != nil {
		return nil, err
	}
	logger.Info("starting layout+ocr pipeline", "entry", entryID, "documents", len(pdfs))

	progress := p.opts.progress()
	progress.OnStart(len(pdfs))

	result := &Result{Entry: entry, Documents: len(pdfs)}
	for i, pdf := range pdfs {
		doc := newDocument(p.opts.DataDir, pdf)
		entry.AddDocument(doc)

		relDir := documentDir(entryID, i+1)
		if err := os.MkdirAll(filepath.Join(p.opts.OutputDir, relDir), 0o755); err != nil {
			return nil, fmt.Errorf("create image directory: %w", err)
		}

		candidates, failed := p.layoutPass(entry, doc, pdf, layoutCap, relDir, logger)
		if failed {
			result.FailedDocuments = append(result.FailedDocuments, pdf)
			progress.OnError(i+1, fmt.Errorf("document failed: %s", pdf))
			continue
		}
		if len(candidates) > 0 {
			logger.Info("running ocr fallback", "document", doc.Location.Full(), "pages", len(candidates))
			p.ocrPass(entry, doc, pdf, candidates, ocrCap, relDir, logger)
		}
		progress.OnProgress(i+1, len(pdfs))
	}

	if err := writeEntryOutputs(&p.opts, entry, result); err != nil {
		return nil, err
	}
	progress.OnComplete()

	result.Duration = time.Since(start)
	logger.Info("layout+ocr pipeline finished",
		"entry", entryID,
		"visuals", entry.TotalVisuals(),
		"failed_documents", len(result.FailedDocuments),
		"elapsed", result.Duration.Round(time.Millisecond))
	return result, nil
}

// layoutPass extracts the document's layout visuals and returns the page
// numbers needing OCR. A parse failure promotes every page to a candidate
// when the fallback is enabled; otherwise the document counts as failed.
func (p *LayoutOCR) layoutPass(entry *visual.Entry, doc *visual.Document, pdf string,
	layoutCap caption.Config, relDir string, logger *slog.Logger,
) (candidates []int, failed bool) {
	pages, err := p.source.ExtractPages(pdf)
	if err != nil {
		if !p.opts.Config.OCR.FallbackOnParseError {
			logger.Error("layout analysis failed", "document", pdf, "error", err)
			return nil, true
		}
		logger.Warn("layout analysis failed, sending all pages to ocr", "document", pdf, "error", err)
		raster, rerr := p.openRaster(pdf)
		if rerr != nil {
			logger.Error("document not readable", "document", pdf, "error", rerr)
			return nil, true
		}
		n := raster.NumPages()
		if cerr := raster.Close(); cerr != nil {
			logger.Warn("closing rasterizer", "document", pdf, "error", cerr)
		}
		for i := 1; i <= n; i++ {
			candidates = append(candidates, i)
		}
		return candidates, false
	}

	addLayoutVisuals(entry, doc, pages, layoutCap, p.opts.OutputDir, relDir, logger)
	for _, page := range pages {
		if page.NeedsOCR() {
			candidates = append(candidates, page.Number)
		}
	}
	return candidates, false
}

// ocrPass rasterizes the candidate pages and extracts figure candidates from
// the recognition output. Page-level failures are logged and skipped.
func (p *LayoutOCR) ocrPass(entry *visual.Entry, doc *visual.Document, pdf string,
	candidates []int, ocrCap caption.Config, relDir string, logger *slog.Logger,
) {
	cfg := p.opts.Config.OCR

	raster, err := p.openRaster(pdf)
	if err != nil {
		logger.Warn("could not open document for rasterization", "document", pdf, "error", err)
		return
	}
	defer func() {
		if err := raster.Close(); err != nil {
			logger.Warn("closing rasterizer", "document", pdf, "error", err)
		}
	}()

	rec, err := p.ensureRecognizer()
	if err != nil {
		logger.Error("could not start ocr engine", "error", err)
		return
	}

	for _, pageNum := range candidates {
		img, err := raster.PageImage(pageNum, cfg.Resolution)
		if err != nil {
			logger.Warn("could not rasterize page", "document", pdf, "page", pageNum, "error", err)
			continue
		}
		img = ocr.FitWithin(img, cfg.ResizeLimit)

		regions, err := rec.AnalyzePage(img)
		if err != nil {
			logger.Warn("recognition failed", "document", pdf, "page", pageNum, "error", err)
			continue
		}

		boxes := filterFigureCandidates(regions.Images, cfg)
		ids := make([]string, 0, len(boxes))
		for id := range boxes {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		pageID := fmt.Sprintf("%s-page-%d", entry.ID, pageNum)
		for _, id := range ids {
			box := boxes[id]
			v := visual.NewVisual(doc, pageNum, box)
			if text, ok := caption.Resolve(box, regions.Texts, ocrCap); ok {
				_ = v.SetCaption(text)
			}

			if min(box.Width(), box.Height()) >= cfg.MinCropSize {
				name := fmt.Sprintf("%s-%s.png", pageID, id)
				relPath := filepath.Join(relDir, name)
				crop := ocr.CropRegion(img, box)
				if err := imaging.Save(crop, filepath.Join(p.opts.OutputDir, relPath)); err != nil {
					logger.Warn("could not save cropped region, visual dropped",
						"document", pdf, "page", pageNum, "region", id, "error", err)
					continue
				}
				_ = v.SetLocation(visual.FilePath{Root: p.opts.OutputDir, Path: relPath})
			}
			entry.AddVisual(v)
		}
	}
}

// filterFigureCandidates applies the noise filters in their fixed order:
// minimum size, overly wide regions, overly tall regions, then nested
// duplicates.
func filterFigureCandidates(boxes map[string]geometry.BoundingBox, cfg config.OCRConfig) map[string]geometry.BoundingBox {
	boxes = geometry.FilterBySize(boxes, geometry.SizeFilter{
		MinWidth:  cfg.MinImageWidth,
		MinHeight: cfg.MinImageHeight,
	})
	boxes = geometry.FilterBySize(boxes, geometry.SizeFilter{
		AspectRatio:      cfg.WideAspect,
		AspectComparison: geometry.CompareGreater,
	})
	boxes = geometry.FilterBySize(boxes, geometry.SizeFilter{
		AspectRatio:      cfg.TallAspect,
		AspectComparison: geometry.CompareLess,
	})
	return geometry.FilterContained(boxes)
}

func (p *LayoutOCR) ensureRecognizer() (Recognizer, error) {
	if p.recognizer != nil {
		return p.recognizer, nil
	}
	rec, err := p.newRecognizer()
	if err != nil {
		return nil, err
	}
	p.recognizer = rec
	return rec, nil
}

func (p *LayoutOCR) closeRecognizer(logger *slog.Logger) {
	if p.recognizer == nil {
		return
	}
	if err := p.recognizer.Close(); err != nil {
		logger.Warn("closing ocr engine", "error", err)
	}
	p.recognizer = nil
}
