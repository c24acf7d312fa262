// Package mods extracts bibliographic metadata from MODS 3.6 XML records,
// the descriptive format used by the library repository the entries come
// from. Only the fields carried into the exported metadata are parsed.
package mods

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
)

// Record mirrors the subset of a MODS record the pipeline uses.
type Record struct {
	Title     string
	Abstracts []string
	Date      string
	Genres    []string
	Faculties []FacultyNote
	Subjects  []string
	Names     []Name
	Rights    string
	UUID      string
	IID       string
}

// FacultyNote is a faculty with the department notes of the same record.
type FacultyNote struct {
	Name        string
	Departments []string
}

// Name is a person with their repository role.
type Name struct {
	Full string
	Role string
}

type modsXML struct {
	TitleInfos []struct {
		Title string `xml:"title"`
	} `xml:"titleInfo"`
	Abstracts  []string `xml:"abstract"`
	OriginInfo []struct {
		DatesIssued []string `xml:"dateIssued"`
	} `xml:"originInfo"`
	Genres []string `xml:"genre"`
	Notes  []struct {
		Type  string `xml:"type,attr"`
		Value string `xml:",chardata"`
	} `xml:"note"`
	Subjects []struct {
		Topics []string `xml:"topic"`
	} `xml:"subject"`
	Names []struct {
		Parts []string `xml:"namePart"`
		Roles []string `xml:"role>roleTerm"`
	} `xml:"name"`
	AccessConditions []string `xml:"accessCondition"`
	Identifiers      []struct {
		Type  string `xml:"type,attr"`
		Value string `xml:",chardata"`
	} `xml:"identifier"`
}

type modsCollection struct {
	Records []modsXML `xml:"mods"`
}

// ExtractFile parses the MODS file at path.
func ExtractFile(path string) (Record, error) {
	f, err := os.Open(path) //nolint:gosec // G304: user-provided metadata file path is expected
	if err != nil {
		return Record{}, fmt.Errorf("failed to open MODS file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Extract(f)
}

// Extract parses a MODS record from r. Both a bare <mods> document and a
// <modsCollection> wrapper are accepted; for a collection the first record
// is used.
func Extract(r io.Reader) (Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Record{}, fmt.Errorf("failed to read MODS data: %w", err)
	}

	var record modsXML
	if err := xml.Unmarshal(data, &record); err != nil {
		return Record{}, fmt.Errorf("failed to parse MODS XML: %w", err)
	}
	if isEmpty(record) {
		var coll modsCollection
		if err := xml.Unmarshal(data, &coll); err == nil && len(coll.Records) > 0 {
			record = coll.Records[0]
		}
	}

	return mapRecord(record)
}

func isEmpty(m modsXML) bool {
	return len(m.TitleInfos) == 0 && len(m.Names) == 0 && len(m.Identifiers) == 0
}

func mapRecord(m modsXML) (Record, error) {
	var rec Record

	if len(m.TitleInfos) > 0 {
		rec.Title = strings.TrimSpace(m.TitleInfos[0].Title)
	}
	for _, a := range m.Abstracts {
		if s := strings.TrimSpace(a); s != "" {
			rec.Abstracts = append(rec.Abstracts, s)
		}
	}

	var dates []string
	for _, oi := range m.OriginInfo {
		for _, d := range oi.DatesIssued {
			if s := strings.TrimSpace(d); s != "" {
				dates = append(dates, s)
			}
		}
	}
	if len(dates) > 1 {
		return Record{}, fmt.Errorf("more than one date found in MODS record: %v", dates)
	}
	if len(dates) == 1 {
		rec.Date = dates[0]
	}

	for _, g := range m.Genres {
		if s := strings.TrimSpace(g); s != "" {
			rec.Genres = append(rec.Genres, s)
		}
	}

	var departments []string
	for _, n := range m.Notes {
		if n.Type == "department" {
			if s := strings.TrimSpace(n.Value); s != "" {
				departments = append(departments, s)
			}
		}
	}
	for _, n := range m.Notes {
		if n.Type == "faculty" {
			if s := strings.TrimSpace(n.Value); s != "" {
				rec.Faculties = append(rec.Faculties, FacultyNote{Name: s, Departments: departments})
			}
		}
	}

	for _, s := range m.Subjects {
		for _, topic := range s.Topics {
			if t := strings.TrimSpace(topic); t != "" {
				rec.Subjects = append(rec.Subjects, t)
			}
		}
	}

	for _, n := range m.Names {
		name := Name{Full: strings.TrimSpace(strings.Join(n.Parts, ", "))}
		if len(n.Roles) > 0 {
			name.Role = strings.TrimSpace(n.Roles[0])
		}
		if name.Full != "" {
			rec.Names = append(rec.Names, name)
		}
	}

	if len(m.AccessConditions) > 0 {
		rec.Rights = strings.TrimSpace(m.AccessConditions[0])
	}

	for _, id := range m.Identifiers {
		value := strings.TrimSpace(id.Value)
		switch {
		case id.Type == "uuid" || strings.HasPrefix(value, "uuid:"):
			if rec.UUID == "" {
				rec.UUID = value
			}
		case id.Type == "iid":
			rec.IID = value
		}
	}

	return rec, nil
}
