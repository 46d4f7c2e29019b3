package slides_test

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"slidecast/internal/services"
	"slidecast/internal/slides"
)

const presentationXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:presentation xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">
  <p:sldIdLst>
    <p:sldId id="256" r:id="rId3"/>
    <p:sldId id="257" r:id="rId2"/>
    <p:sldId id="258" r:id="rId4"/>
  </p:sldIdLst>
</p:presentation>`

const presentationRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster" Target="slideMasters/slideMaster1.xml"/>
  <Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide" Target="slides/slide2.xml"/>
  <Relationship Id="rId3" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide" Target="slides/slide1.xml"/>
  <Relationship Id="rId4" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide" Target="slides/slide3.xml"/>
</Relationships>`

func slideRels(notes string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout" Target="../slideLayouts/slideLayout1.xml"/>
  <Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/notesSlide" Target="../notesSlides/` + notes + `"/>
</Relationships>`
}

func notesPart(paragraphs string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:notes xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">
  <p:cSld><p:spTree>
    <p:sp>
      <p:nvSpPr><p:cNvPr id="2" name="Slide Image"/><p:cNvSpPr/><p:nvPr><p:ph type="sldImg"/></p:nvPr></p:nvSpPr>
    </p:sp>
    <p:sp>
      <p:nvSpPr><p:cNvPr id="3" name="Notes"/><p:cNvSpPr/><p:nvPr><p:ph type="body" idx="1"/></p:nvPr></p:nvSpPr>
      <p:txBody><a:bodyPr/>` + paragraphs + `</p:txBody>
    </p:sp>
  </p:spTree></p:cSld>
</p:notes>`
}

func writeDeck(t *testing.T, parts map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "deck.pptx")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create deck: %v", err)
	}
	zw := zip.NewWriter(f)
	for name, body := range parts {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("zip write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close deck: %v", err)
	}
	return path
}

func TestNotesFollowsPresentationOrder(t *testing.T) {
	deck := writeDeck(t, map[string]string{
		"ppt/presentation.xml":             presentationXML,
		"ppt/_rels/presentation.xml.rels":  presentationRels,
		"ppt/slides/slide1.xml":            "<p:sld/>",
		"ppt/slides/_rels/slide1.xml.rels": slideRels("notesSlide1.xml"),
		"ppt/slides/slide2.xml":            "<p:sld/>",
		"ppt/slides/slide3.xml":            "<p:sld/>",
		"ppt/slides/_rels/slide3.xml.rels": slideRels("notesSlide3.xml"),
		"ppt/notesSlides/notesSlide1.xml": notesPart(
			`<a:p><a:r><a:t>Welcome </a:t></a:r><a:r><a:t>everyone.</a:t></a:r></a:p><a:p><a:r><a:t>Second line</a:t></a:r><a:endParaRPr/></a:p>`),
		"ppt/notesSlides/notesSlide3.xml": notesPart(`<a:p><a:r><a:t>Wrap up</a:t></a:r><a:br/><a:r><a:t>thanks</a:t></a:r></a:p>`),
	})

	got, err := slides.Notes(deck)
	if err != nil {
		t.Fatalf("Notes: %v", err)
	}
	want := []string{"Welcome everyone.\nSecond line", "", "Wrap up\nthanks"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Notes = %q, want %q", got, want)
	}
}

func TestNotesRejectsMissingOrBrokenDeck(t *testing.T) {
	if _, err := slides.Notes(filepath.Join(t.TempDir(), "missing.pptx")); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	deck := writeDeck(t, map[string]string{"ppt/_rels/presentation.xml.rels": presentationRels})
	if _, err := slides.Notes(deck); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for deck without presentation.xml, got %v", err)
	}
}
