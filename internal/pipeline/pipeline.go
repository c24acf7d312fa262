// Package pipeline wires layout analysis, OCR fallback, caption matching and
// export into the two extraction pipelines visextract ships.
package pipeline

import (
	"fmt"
	"image"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/visarchlab/visextract/internal/caption"
	"github.com/visarchlab/visextract/internal/config"
	"github.com/visarchlab/visextract/internal/export"
	"github.com/visarchlab/visextract/internal/geometry"
	"github.com/visarchlab/visextract/internal/mods"
	"github.com/visarchlab/visextract/internal/ocr"
	"github.com/visarchlab/visextract/internal/visual"
)

// LayoutSource produces positioned regions for every page of a PDF.
type LayoutSource interface {
	ExtractPages(path string) ([]*visual.Page, error)
}

// Rasterizer renders pages of one open PDF for the OCR pass.
type Rasterizer interface {
	NumPages() int
	PageImage(number int, dpi float64) (image.Image, error)
	Close() error
}

// RasterizerFactory opens a PDF for rasterization.
type RasterizerFactory func(path string) (Rasterizer, error)

// Recognizer runs OCR on a rasterized page.
type Recognizer interface {
	AnalyzePage(img image.Image) (*ocr.PageRegions, error)
	Close() error
}

// RecognizerFactory creates a Recognizer on first use, so pipelines that
// never reach the OCR pass do not require a Tesseract installation.
type RecognizerFactory func() (Recognizer, error)

// Options configures one pipeline run over a single entry.
type Options struct {
	// DataDir is searched recursively for the entry's PDF files.
	DataDir string
	// OutputDir receives the per-entry output directory.
	OutputDir string
	// MODSFile is the path to the entry's MODS metadata. Optional; without
	// it the entry carries no bibliographic data.
	MODSFile string
	// EntryID identifies the entry. Derived from MODSFile when empty,
	// falling back to "00000".
	EntryID string

	Config   *config.Config
	Logger   *slog.Logger
	Progress ProgressCallback
}

// Result summarizes one pipeline run.
type Result struct {
	Entry           *visual.Entry
	Documents       int
	FailedDocuments []string
	Duration        time.Duration
	SettingsFile    string
	MetadataFiles   []string
}

// DefaultEntryID is used when no MODS file provides one.
const DefaultEntryID = "00000"

// EntryIDFromMODS derives the entry id from a MODS filename, taking the stem
// up to the first underscore: "00123_mods.xml" yields "00123".
func EntryIDFromMODS(path string) string {
	if path == "" {
		return DefaultEntryID
	}
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if i := strings.Index(stem, "_"); i > 0 {
		return stem[:i]
	}
	if stem == "" {
		return DefaultEntryID
	}
	return stem
}

func (o *Options) entryID() string {
	if o.EntryID != "" {
		return o.EntryID
	}
	return EntryIDFromMODS(o.MODSFile)
}

// pdfPrefix restricts PDF discovery to the entry's own files, but only when
// a MODS file ties the entry id to a filename convention.
func (o *Options) pdfPrefix() string {
	if o.MODSFile == "" {
		return ""
	}
	return o.entryID()
}

func (o *Options) progress() ProgressCallback {
	if o.Progress != nil {
		return o.Progress
	}
	return NoOpProgressCallback{}
}

// loadEntry builds the entry aggregate, attaching MODS metadata when a file
// was given. A broken MODS record degrades to an entry without metadata.
func loadEntry(opts *Options, logger *slog.Logger) *visual.Entry {
	entry := visual.NewEntry(opts.entryID())
	if opts.MODSFile == "" {
		return entry
	}
	record, err := mods.ExtractFile(opts.MODSFile)
	if err != nil {
		logger.Warn("could not read MODS metadata", "file", opts.MODSFile, "error", err)
		return entry
	}
	entry.Bibliographic = record.Bibliographic(opts.MODSFile)
	entry.SetWebURL(opts.Config.Resolver.BaseURL)
	return entry
}

// findPDFs walks dataDir and returns every .pdf file, sorted for stable
// processing order. A non-empty prefix restricts the result to filenames
// starting with it, so entries sharing a data directory stay separate.
func findPDFs(dataDir, prefix string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dataDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".pdf") {
			return nil
		}
		if prefix != "" && !strings.HasPrefix(filepath.Base(path), prefix) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dataDir, err)
	}
	sort.Strings(paths)
	return paths, nil
}

// entryLogger returns a logger writing both to the run's base logger and to
// {entry}.log inside the entry directory.
func entryLogger(base *slog.Logger, entryDir, entryID string, level slog.Level) (*slog.Logger, io.Closer, error) {
	path := filepath.Join(entryDir, entryID+".log")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open entry log: %w", err)
	}
	fileLogger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	return newTeeLogger(base, fileLogger), f, nil
}

// captionParams converts a caption configuration into matcher parameters.
func captionParams(cfg config.CaptionConfig, dpi float64) (caption.Config, error) {
	dir, err := geometry.ParseDirection(cfg.Direction)
	if err != nil {
		return caption.Config{}, err
	}
	return caption.Config{
		Offset:    geometry.Offset{Magnitude: cfg.Offset, Unit: geometry.Unit(cfg.OffsetUnit)},
		Direction: dir,
		Keywords:  cfg.Keywords,
		DPI:       dpi,
	}, nil
}

// documentDir names the image output directory for the i-th PDF of an entry,
// counting from one: {entry}/pdf-001, {entry}/pdf-002, ...
func documentDir(entryID string, index int) string {
	return filepath.Join(entryID, fmt.Sprintf("pdf-%03d", index))
}

// writeEntryOutputs writes the metadata CSV and JSON plus the settings
// snapshot for a finished entry.
func writeEntryOutputs(opts *Options, entry *visual.Entry, result *Result) error {
	entryDir := filepath.Join(opts.OutputDir, entry.ID)

	csvPath := filepath.Join(entryDir, entry.ID+"-metadata.csv")
	if err := export.WriteCSV(csvPath, entry); err != nil {
		return err
	}
	jsonPath := filepath.Join(entryDir, entry.ID+"-metadata.json")
	if err := export.WriteJSON(jsonPath, entry); err != nil {
		return err
	}
	settingsPath := filepath.Join(entryDir, entry.ID+"-settings.json")
	if err := export.WriteSettings(settingsPath, opts.Config); err != nil {
		return err
	}

	result.MetadataFiles = []string{csvPath, jsonPath}
	result.SettingsFile = settingsPath
	return nil
}

// parseLevel maps the configured log level to slog. Unknown values fall back
// to info; Validate has rejected them already.
func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
