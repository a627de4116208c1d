package document

import (
	"archive/zip"
	"bytes"
	"image"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// readPart extracts one file from a serialized document package.
func readPart(t *testing.T, data []byte, name string) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		defer rc.Close()
		content, err := io.ReadAll(rc)
		require.NoError(t, err)
		return string(content)
	}
	t.Fatalf("part %s not found in package", name)
	return ""
}

func partNames(t *testing.T, data []byte) []string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	return names
}

func TestDocx_PackageStructure(t *testing.T) {
	d := NewDocx()
	d.AddParagraph("hello")
	data, err := d.Bytes()
	require.NoError(t, err)

	names := partNames(t, data)
	assert.Contains(t, names, "[Content_Types].xml")
	assert.Contains(t, names, "_rels/.rels")
	assert.Contains(t, names, "word/document.xml")
	assert.Contains(t, names, "word/styles.xml")
	assert.Contains(t, names, "word/_rels/document.xml.rels")
}

func TestDocx_ParagraphsAndHeadings(t *testing.T) {
	d := NewDocx()
	d.AddHeading("My Title", 0)
	d.AddHeading("Section", 1)
	d.AddParagraph("body text")
	data, err := d.Bytes()
	require.NoError(t, err)

	doc := readPart(t, data, "word/document.xml")
	assert.Contains(t, doc, `<w:pStyle w:val="Title"/>`)
	assert.Contains(t, doc, `<w:pStyle w:val="Heading1"/>`)
	assert.Contains(t, doc, "<w:t>My Title</w:t>")
	assert.Contains(t, doc, "<w:t>body text</w:t>")
}

func TestDocx_EscapesSpecialCharacters(t *testing.T) {
	d := NewDocx()
	d.AddParagraph(`a < b & "c" > 'd'`)
	data, err := d.Bytes()
	require.NoError(t, err)

	doc := readPart(t, data, "word/document.xml")
	assert.Contains(t, doc, "a &lt; b &amp; &quot;c&quot; &gt; &apos;d&apos;")
	assert.NotContains(t, doc, `<w:t>a < b`)
}

func TestDocx_Table(t *testing.T) {
	d := NewDocx()
	d.AddTable([][]string{{"h1", "h2"}, {"v1", "v2"}}, true)
	data, err := d.Bytes()
	require.NoError(t, err)

	doc := readPart(t, data, "word/document.xml")
	assert.Contains(t, doc, "<w:tbl>")
	assert.Contains(t, doc, "<w:t>h1</w:t>")
	assert.Contains(t, doc, "<w:t>v2</w:t>")
	// Header cell is shaded and bold.
	assert.Contains(t, doc, `w:fill="D9D9D9"`)
	assert.Contains(t, doc, "<w:rPr><w:b/></w:rPr>")
}

func TestDocx_TableEmptyRowsSkipped(t *testing.T) {
	d := NewDocx()
	d.AddTable(nil, true)
	data, err := d.Bytes()
	require.NoError(t, err)
	assert.NotContains(t, readPart(t, data, "word/document.xml"), "<w:tbl>")
}

func TestDocx_Image(t *testing.T) {
	d := NewDocx()
	img := image.NewNRGBA(image.Rect(0, 0, 100, 50))
	require.NoError(t, d.AddImage(img))
	data, err := d.Bytes()
	require.NoError(t, err)

	names := partNames(t, data)
	assert.Contains(t, names, "word/media/image1.png")

	doc := readPart(t, data, "word/document.xml")
	assert.Contains(t, doc, `r:embed="rId2"`)
	assert.Contains(t, doc, "<w:drawing>")

	rels := readPart(t, data, "word/_rels/document.xml.rels")
	assert.Contains(t, rels, `Id="rId2"`)
	assert.Contains(t, rels, "media/image1.png")
}

func TestDocx_ImageScaledToPageWidth(t *testing.T) {
	d := NewDocx()
	img := image.NewNRGBA(image.Rect(0, 0, 2000, 1000))
	require.NoError(t, d.AddImage(img))
	data, err := d.Bytes()
	require.NoError(t, err)

	doc := readPart(t, data, "word/document.xml")
	// 624 px wide at 9525 EMU per pixel, height keeps the 2:1 ratio.
	assert.Contains(t, doc, `cx="5943600"`)
	assert.Contains(t, doc, `cy="2971800"`)
}

func TestDocx_NilImage(t *testing.T) {
	assert.Error(t, NewDocx().AddImage(nil))
}
