package mods

import "github.com/visarchlab/visextract/internal/visual"

// Bibliographic converts a parsed MODS record into the entry metadata shape
// carried through exports. modsFile records where the metadata came from.
func (r Record) Bibliographic(modsFile string) visual.Bibliographic {
	bib := visual.Bibliographic{
		MODSFile:  modsFile,
		Title:     r.Title,
		Abstracts: r.Abstracts,
		Date:      r.Date,
		Genres:    r.Genres,
		Subjects:  r.Subjects,
		Rights:    r.Rights,
		UUID:      r.UUID,
		IID:       r.IID,
	}
	for _, f := range r.Faculties {
		faculty := visual.Faculty{Name: f.Name}
		for _, d := range f.Departments {
			faculty.Departments = append(faculty.Departments, visual.Department{Name: d})
		}
		bib.Faculties = append(bib.Faculties, faculty)
	}
	for _, n := range r.Names {
		bib.Persons = append(bib.Persons, visual.Person{Name: n.Full, Role: n.Role})
	}
	return bib
}
