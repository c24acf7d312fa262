package visual

import "strings"

// Person is a name with its repository role (author, mentor, ...).
type Person struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// Department is an organizational unit within a faculty.
type Department struct {
	Name string `json:"name"`
}

// Faculty groups the departments associated with an entry.
type Faculty struct {
	Name        string       `json:"name"`
	Departments []Department `json:"departments,omitempty"`
}

// Bibliographic carries the descriptive metadata of a repository entry,
// extracted from its MODS record.
type Bibliographic struct {
	MODSFile  string    `json:"mods_file,omitempty"`
	Title     string    `json:"title,omitempty"`
	Abstracts []string  `json:"abstracts,omitempty"`
	Date      string    `json:"date,omitempty"`
	Genres    []string  `json:"genres,omitempty"`
	Faculties []Faculty `json:"faculties,omitempty"`
	Subjects  []string  `json:"subjects,omitempty"`
	Persons   []Person  `json:"persons,omitempty"`
	Rights    string    `json:"rights,omitempty"`
	UUID      string    `json:"uuid,omitempty"`
	IID       string    `json:"iid,omitempty"`
	WebURL    string    `json:"web_url,omitempty"`
}

// Entry aggregates everything extracted for one bibliographic unit: its
// metadata, the documents processed, and the visuals that survived
// processing. Visual records outlive the pages they were extracted from.
type Entry struct {
	ID            string
	Bibliographic Bibliographic

	documents []*Document
	visuals   []*Visual
}

// NewEntry creates an empty entry aggregate.
func NewEntry(id string) *Entry {
	return &Entry{ID: id}
}

// SetWebURL derives the repository resolver URL from the entry UUID.
// MODS records store identifiers both with and without the uuid: prefix.
func (e *Entry) SetWebURL(baseURL string) {
	if e.Bibliographic.UUID == "" {
		return
	}
	id := e.Bibliographic.UUID
	if !strings.HasPrefix(id, "uuid:") {
		id = "uuid:" + id
	}
	e.Bibliographic.WebURL = baseURL + id
}

// AddDocument registers a processed source document.
func (e *Entry) AddDocument(doc *Document) {
	e.documents = append(e.documents, doc)
}

// AddVisual registers a fully resolved visual.
func (e *Entry) AddVisual(v *Visual) {
	e.visuals = append(e.visuals, v)
}

// Documents returns the registered documents.
func (e *Entry) Documents() []*Document { return e.documents }

// Visuals returns the registered visuals.
func (e *Entry) Visuals() []*Visual { return e.visuals }

// TotalVisuals returns the number of visuals extracted so far.
func (e *Entry) TotalVisuals() int { return len(e.visuals) }
