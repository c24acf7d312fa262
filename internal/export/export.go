// Package export writes per-entry metadata as CSV and JSON, plus a snapshot
// of the settings a run was produced with.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/visarchlab/visextract/internal/visual"
)

var csvHeader = []string{
	"entry_id", "document", "page",
	"bbox_x0", "bbox_y0", "bbox_x1", "bbox_y1", "bbox_units",
	"caption", "image_file",
	"title", "authors", "date", "uuid", "web_url",
}

// WriteCSV appends one row per visual to the CSV file at path, creating it
// with a header first. Repeated runs against the same file accumulate rows.
func WriteCSV(path string, entry *visual.Entry) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open metadata csv: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat metadata csv: %w", err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(csvHeader); err != nil {
			return fmt.Errorf("write csv header: %w", err)
		}
	}
	for _, v := range entry.Visuals() {
		if err := w.Write(visualRow(entry, v)); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush metadata csv: %w", err)
	}
	return nil
}

func visualRow(entry *visual.Entry, v *visual.Visual) []string {
	caption, _ := v.Caption()
	var location string
	if loc, ok := v.Location(); ok {
		location = loc.Full()
	}
	var authors []string
	for _, p := range entry.Bibliographic.Persons {
		authors = append(authors, p.Name)
	}
	box := v.Box()
	return []string{
		entry.ID,
		v.Document().Location.Full(),
		strconv.Itoa(v.Page()),
		formatCoord(box.X0), formatCoord(box.Y0),
		formatCoord(box.X1), formatCoord(box.Y1),
		string(box.Unit),
		caption,
		location,
		entry.Bibliographic.Title,
		strings.Join(authors, "; "),
		entry.Bibliographic.Date,
		entry.Bibliographic.UUID,
		entry.Bibliographic.WebURL,
	}
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// entryRecord is the JSON shape of one processed entry.
type entryRecord struct {
	EntryID       string               `json:"entry_id"`
	Bibliographic visual.Bibliographic `json:"bibliographic"`
	Documents     []string             `json:"documents"`
	TotalVisuals  int                  `json:"total_visuals"`
	Visuals       []visualRecord       `json:"visuals"`
}

type visualRecord struct {
	Document string     `json:"document"`
	Page     int        `json:"page"`
	BBox     [4]float64 `json:"bbox"`
	Units    string     `json:"bbox_units"`
	Caption  string     `json:"caption,omitempty"`
	Location string     `json:"image_file,omitempty"`
}

// WriteJSON writes the entry's full metadata as indented JSON, replacing any
// previous file at path.
func WriteJSON(path string, entry *visual.Entry) error {
	rec := entryRecord{
		EntryID:       entry.ID,
		Bibliographic: entry.Bibliographic,
		TotalVisuals:  entry.TotalVisuals(),
	}
	for _, doc := range entry.Documents() {
		rec.Documents = append(rec.Documents, doc.Location.Full())
	}
	for _, v := range entry.Visuals() {
		caption, _ := v.Caption()
		var location string
		if loc, ok := v.Location(); ok {
			location = loc.Full()
		}
		box := v.Box()
		rec.Visuals = append(rec.Visuals, visualRecord{
			Document: v.Document().Location.Full(),
			Page:     v.Page(),
			BBox:     [4]float64{box.X0, box.Y0, box.X1, box.Y1},
			Units:    string(box.Unit),
			Caption:  caption,
			Location: location,
		})
	}

	data, err := sonic.ConfigStd.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal entry metadata: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write entry metadata: %w", err)
	}
	return nil
}

// WriteSettings snapshots the configuration a run used, so results stay
// reproducible after defaults change.
func WriteSettings(path string, settings any) error {
	data, err := sonic.ConfigStd.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}
