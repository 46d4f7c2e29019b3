package slides

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"

	"slidecast/internal/services"
)

const notesSlideRelSuffix = "/notesSlide"

type presentationXML struct {
	SlideIDs []struct {
		RelID string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
	} `xml:"sldIdLst>sldId"`
}

type relationshipsXML struct {
	Relationships []struct {
		ID     string `xml:"Id,attr"`
		Type   string `xml:"Type,attr"`
		Target string `xml:"Target,attr"`
	} `xml:"Relationship"`
}

type notesXML struct {
	Shapes []struct {
		Placeholder *struct {
			Type string `xml:"type,attr"`
		} `xml:"nvSpPr>nvPr>ph"`
		Paragraphs []struct {
			Items []struct {
				XMLName xml.Name
				Text    string `xml:"t"`
			} `xml:",any"`
		} `xml:"txBody>p"`
	} `xml:"cSld>spTree>sp"`
}

// Notes returns the speaker notes of every slide in the .pptx deck at
// deckPath, in presentation order. Paragraphs are joined with newlines and
// slides without notes yield "".
func Notes(deckPath string) ([]string, error) {
	zr, err := zip.OpenReader(deckPath)
	if err != nil {
		msg := "open deck"
		if errors.Is(err, fs.ErrNotExist) {
			msg = fmt.Sprintf("deck %q does not exist", deckPath)
		}
		return nil, services.Wrap(services.ErrValidation, "slides", "notes", msg, err)
	}
	defer zr.Close()

	deck := deckArchive{files: make(map[string]*zip.File, len(zr.File))}
	for _, f := range zr.File {
		deck.files[f.Name] = f
	}

	var pres presentationXML
	if err := deck.decode("ppt/presentation.xml", &pres); err != nil {
		return nil, notesError("read presentation", err)
	}
	presRels, err := deck.relationships("ppt/presentation.xml")
	if err != nil {
		return nil, notesError("read presentation relationships", err)
	}

	notes := make([]string, 0, len(pres.SlideIDs))
	for _, id := range pres.SlideIDs {
		slidePart, ok := presRels[id.RelID]
		if !ok {
			return nil, notesError(fmt.Sprintf("slide relationship %q missing", id.RelID), nil)
		}
		text, err := deck.slideNotes(slidePart)
		if err != nil {
			return nil, notesError(fmt.Sprintf("read notes for %s", slidePart), err)
		}
		notes = append(notes, text)
	}
	return notes, nil
}

func notesError(msg string, err error) error {
	return services.Wrap(services.ErrValidation, "slides", "notes", msg, err)
}

type deckArchive struct {
	files map[string]*zip.File
}

func (d deckArchive) decode(name string, v any) error {
	f, ok := d.files[name]
	if !ok {
		return fmt.Errorf("%s: %w", name, fs.ErrNotExist)
	}
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return err
	}
	return xml.Unmarshal(data, v)
}

// relationships maps relationship ids of part to the resolved part names of
// their targets. A part without a relationships file has none.
func (d deckArchive) relationships(part string) (map[string]string, error) {
	dir, base := path.Split(part)
	relsName := dir + "_rels/" + base + ".rels"
	if _, ok := d.files[relsName]; !ok {
		return map[string]string{}, nil
	}
	var rels relationshipsXML
	if err := d.decode(relsName, &rels); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rels.Relationships))
	for _, rel := range rels.Relationships {
		out[rel.ID] = resolvePart(dir, rel.Target)
	}
	return out, nil
}

func (d deckArchive) slideNotes(slidePart string) (string, error) {
	dir, base := path.Split(slidePart)
	relsName := dir + "_rels/" + base + ".rels"
	if _, ok := d.files[relsName]; !ok {
		return "", nil
	}
	var rels relationshipsXML
	if err := d.decode(relsName, &rels); err != nil {
		return "", err
	}
	for _, rel := range rels.Relationships {
		if !strings.HasSuffix(rel.Type, notesSlideRelSuffix) {
			continue
		}
		var notes notesXML
		if err := d.decode(resolvePart(dir, rel.Target), &notes); err != nil {
			return "", err
		}
		return notes.bodyText(), nil
	}
	return "", nil
}

func (n notesXML) bodyText() string {
	for _, shape := range n.Shapes {
		if shape.Placeholder == nil || shape.Placeholder.Type != "body" {
			continue
		}
		lines := make([]string, 0, len(shape.Paragraphs))
		for _, p := range shape.Paragraphs {
			var b strings.Builder
			for _, item := range p.Items {
				switch item.XMLName.Local {
				case "r", "fld":
					b.WriteString(item.Text)
				case "br":
					b.WriteByte('\n')
				}
			}
			lines = append(lines, b.String())
		}
		return strings.Join(lines, "\n")
	}
	return ""
}

func resolvePart(baseDir, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Clean(path.Join(baseDir, target))
}
