package mods

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleMODS = `<?xml version="1.0" encoding="UTF-8"?>
<mods xmlns="http://www.loc.gov/mods/v3" version="3.6">
  <titleInfo><title>The Revival of the Just City</title></titleInfo>
  <abstract>A study of urban renewal strategies.</abstract>
  <originInfo><dateIssued>2019-06-28</dateIssued></originInfo>
  <genre>master thesis</genre>
  <note type="faculty">Architecture and the Built Environment</note>
  <note type="department">Urbanism</note>
  <subject><topic>urban renewal</topic></subject>
  <subject><topic>public space</topic></subject>
  <name>
    <namePart>Luesink, A.</namePart>
    <role><roleTerm>author</roleTerm></role>
  </name>
  <name>
    <namePart>De Ridder, E.</namePart>
    <role><roleTerm>mentor</roleTerm></role>
  </name>
  <accessCondition>(c) 2019 Luesink, A.</accessCondition>
  <identifier type="uri">uuid:7a2f90f1-3b1c-4f55-9f07-cc43e1234567</identifier>
  <identifier type="iid">1234567</identifier>
</mods>`

func TestExtractMODSRecord(t *testing.T) {
	rec, err := Extract(strings.NewReader(sampleMODS))
	require.NoError(t, err)

	assert.Equal(t, "The Revival of the Just City", rec.Title)
	assert.Equal(t, []string{"A study of urban renewal strategies."}, rec.Abstracts)
	assert.Equal(t, "2019-06-28", rec.Date)
	assert.Equal(t, []string{"master thesis"}, rec.Genres)
	assert.Equal(t, []string{"urban renewal", "public space"}, rec.Subjects)
	assert.Equal(t, "(c) 2019 Luesink, A.", rec.Rights)
	assert.Equal(t, "uuid:7a2f90f1-3b1c-4f55-9f07-cc43e1234567", rec.UUID)
	assert.Equal(t, "1234567", rec.IID)

	require.Len(t, rec.Faculties, 1)
	assert.Equal(t, "Architecture and the Built Environment", rec.Faculties[0].Name)
	assert.Equal(t, []string{"Urbanism"}, rec.Faculties[0].Departments)

	require.Len(t, rec.Names, 2)
	assert.Equal(t, Name{Full: "Luesink, A.", Role: "author"}, rec.Names[0])
	assert.Equal(t, Name{Full: "De Ridder, E.", Role: "mentor"}, rec.Names[1])
}

func TestExtractModsCollectionWrapper(t *testing.T) {
	wrapped := `<modsCollection xmlns="http://www.loc.gov/mods/v3">` + sampleMODS[strings.Index(sampleMODS, "<mods"):] + `</modsCollection>`
	rec, err := Extract(strings.NewReader(wrapped))
	require.NoError(t, err)
	assert.Equal(t, "The Revival of the Just City", rec.Title)
}

func TestExtractRejectsMultipleDates(t *testing.T) {
	doc := `<mods>
  <titleInfo><title>T</title></titleInfo>
  <originInfo><dateIssued>2019</dateIssued><dateIssued>2020</dateIssued></originInfo>
</mods>`
	_, err := Extract(strings.NewReader(doc))
	assert.Error(t, err)
}

func TestExtractInvalidXML(t *testing.T) {
	_, err := Extract(strings.NewReader("not xml"))
	assert.Error(t, err)
}

func TestBibliographicMapping(t *testing.T) {
	rec, err := Extract(strings.NewReader(sampleMODS))
	require.NoError(t, err)

	bib := rec.Bibliographic("/data/00001_mods.xml")
	assert.Equal(t, "/data/00001_mods.xml", bib.MODSFile)
	assert.Equal(t, rec.Title, bib.Title)
	require.Len(t, bib.Persons, 2)
	assert.Equal(t, "author", bib.Persons[0].Role)
	require.Len(t, bib.Faculties, 1)
	require.Len(t, bib.Faculties[0].Departments, 1)
	assert.Equal(t, "Urbanism", bib.Faculties[0].Departments[0].Name)
}
