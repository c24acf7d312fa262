package pipeline

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"

	"github.com/visarchlab/visextract/internal/caption"
	"github.com/visarchlab/visextract/internal/layout"
	"github.com/visarchlab/visextract/internal/visual"
)

// Layout is the extraction pipeline for born-digital PDFs: embedded images
// are read from the page description together with positioned text, captions
// are matched by proximity, and every surviving image is saved as PNG.
type Layout struct {
	opts   Options
	source LayoutSource
}

func NewLayout(opts Options) *Layout {
	source := layout.NewAnalyzer(layout.Settings{
		MinImageWidth:  opts.Config.Layout.MinImageWidth,
		MinImageHeight: opts.Config.Layout.MinImageHeight,
	})
	return newLayoutWith(opts, source)
}

func newLayoutWith(opts Options, source LayoutSource) *Layout {
	return &Layout{opts: opts, source: source}
}

// Run processes every PDF found under the data directory as one entry.
// Documents that fail to parse are recorded and skipped; the run itself only
// fails when the output directory cannot be prepared or written.
func (p *Layout) Run() (*Result, error) {
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

	capCfg, err := captionParams(p.opts.Config.Layout.Caption, p.opts.Config.OCR.Resolution)
	if err != nil {
		return nil, fmt.Errorf("caption settings: %w", err)
	}

	entry := loadEntry(&p.opts, logger)
	pdfs, err := findPDFs(p.opts.DataDir, p.opts.pdfPrefix())
	if err != nil {
		return nil, err
	}
	logger.Info("starting layout pipeline", "entry", entryID, "documents", len(pdfs))

	progress := p.opts.progress()
	progress.OnStart(len(pdfs))

	result := &Result{Entry: entry, Documents: len(pdfs)}
	for i, pdf := range pdfs {
		doc := newDocument(p.opts.DataDir, pdf)
		entry.AddDocument(doc)

		pages, err := p.source.ExtractPages(pdf)
		if err != nil {
			logger.Error("layout analysis failed", "document", pdf, "error", err)
			result.FailedDocuments = append(result.FailedDocuments, pdf)
			progress.OnError(i+1, err)
			continue
		}

		relDir := documentDir(entryID, i+1)
		if err := os.MkdirAll(filepath.Join(p.opts.OutputDir, relDir), 0o755); err != nil {
			return nil, fmt.Errorf("create image directory: %w", err)
		}
		addLayoutVisuals(entry, doc, pages, capCfg, p.opts.OutputDir, relDir, logger)
		progress.OnProgress(i+1, len(pdfs))
	}

	if err := writeEntryOutputs(&p.opts, entry, result); err != nil {
		return nil, err
	}
	progress.OnComplete()

	result.Duration = time.Since(start)
	logger.Info("layout pipeline finished",
		"entry", entryID,
		"visuals", entry.TotalVisuals(),
		"failed_documents", len(result.FailedDocuments),
		"elapsed", result.Duration.Round(time.Millisecond))
	return result, nil
}

// newDocument records a source PDF relative to the data directory.
func newDocument(dataDir, path string) *visual.Document {
	rel, err := filepath.Rel(dataDir, path)
	if err != nil {
		return &visual.Document{Location: visual.FilePath{Path: path}}
	}
	return &visual.Document{Location: visual.FilePath{Root: dataDir, Path: rel}}
}

// addLayoutVisuals turns the image regions of parsed pages into visuals:
// each gets its caption resolved, is exported as PNG, and joins the entry.
// Regions whose image cannot be decoded or saved are logged and dropped.
func addLayoutVisuals(entry *visual.Entry, doc *visual.Document, pages []*visual.Page,
	capCfg caption.Config, outputDir, relDir string, logger *slog.Logger,
) {
	for _, page := range pages {
		for _, region := range page.Images {
			v := visual.NewVisual(doc, page.Number, region.Box)
			if text, ok := caption.Resolve(region.Box, page.Texts, capCfg); ok {
				_ = v.SetCaption(text)
			}

			if region.Image == nil {
				logger.Warn("image stream not decodable, visual dropped",
					"document", doc.Location.Full(),
					"page", page.Number,
					"region", region.ID,
					"error", region.DecodeErr)
				continue
			}
			name := fmt.Sprintf("%s-page%d-%s.png", entry.ID, page.Number, region.ID)
			relPath := filepath.Join(relDir, name)
			if err := imaging.Save(region.Image, filepath.Join(outputDir, relPath)); err != nil {
				logger.Warn("could not save image, visual dropped",
					"document", doc.Location.Full(),
					"page", page.Number,
					"region", region.ID,
					"error", err)
				continue
			}
			_ = v.SetLocation(visual.FilePath{Root: outputDir, Path: relPath})
			entry.AddVisual(v)
		}
	}
}
