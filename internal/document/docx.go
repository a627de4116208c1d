// Package document renders processing results into Word documents. The
// writer emits the minimal WordprocessingML package a .docx needs: content
// types, relationships, styles, the document body, and embedded media.
package document

import (
	"archive/zip"
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"strings"
)

// emuPerPixel converts 96-dpi pixels to English Metric Units.
const emuPerPixel = 9525

// pageContentWidthPx is the usable width of a default letter page at 96 dpi;
// embedded images are scaled down to fit it.
const pageContentWidthPx = 624

// Docx builds a Word document part by part. Zero value is not usable; create
// one with NewDocx.
type Docx struct {
	body  strings.Builder
	media [][]byte // PNG-encoded images, 1-based rId offset after styles
}

// NewDocx returns an empty document.
func NewDocx() *Docx {
	return &Docx{}
}

// Text runs must not contain raw newlines or tabs; callers split on
// newlines before adding paragraphs.
var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func escapeXML(s string) string {
	return xmlEscaper.Replace(s)
}

// runProps renders run properties for the given formatting flags.
// halfPoints is the font size in half-points; zero keeps the default.
func runProps(bold, italic bool, halfPoints int, color string) string {
	if !bold && !italic && halfPoints == 0 && color == "" {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("<w:rPr>")
	if bold {
		sb.WriteString("<w:b/>")
	}
	if italic {
		sb.WriteString("<w:i/>")
	}
	if color != "" {
		fmt.Fprintf(&sb, `<w:color w:val="%s"/>`, color)
	}
	if halfPoints > 0 {
		fmt.Fprintf(&sb, `<w:sz w:val="%d"/><w:szCs w:val="%d"/>`, halfPoints, halfPoints)
	}
	sb.WriteString("</w:rPr>")
	return sb.String()
}

// TextFormat controls the appearance of a paragraph's single run.
type TextFormat struct {
	Bold      bool
	Italic    bool
	SizePt    int    // font size in points; 0 keeps the document default
	Color     string // RRGGBB hex without '#'
	StyleID   string // paragraph style, e.g. "Title", "Heading1"
	Centered  bool
	SpaceText bool // preserve leading/trailing spaces in the run
}

// AddParagraph appends a plain paragraph.
func (d *Docx) AddParagraph(text string) {
	d.AddFormattedParagraph(text, TextFormat{})
}

// AddHeading appends a heading paragraph. Level 0 uses the Title style,
// levels 1 and 2 the corresponding heading styles.
func (d *Docx) AddHeading(text string, level int) {
	style := "Title"
	switch level {
	case 1:
		style = "Heading1"
	case 2:
		style = "Heading2"
	}
	d.AddFormattedParagraph(text, TextFormat{StyleID: style})
}

// AddFormattedParagraph appends one paragraph with a single formatted run.
func (d *Docx) AddFormattedParagraph(text string, f TextFormat) {
	d.body.WriteString("<w:p>")
	if f.StyleID != "" || f.Centered {
		d.body.WriteString("<w:pPr>")
		if f.StyleID != "" {
			fmt.Fprintf(&d.body, `<w:pStyle w:val="%s"/>`, f.StyleID)
		}
		if f.Centered {
			d.body.WriteString(`<w:jc w:val="center"/>`)
		}
		d.body.WriteString("</w:pPr>")
	}
	d.body.WriteString("<w:r>")
	d.body.WriteString(runProps(f.Bold, f.Italic, f.SizePt*2, f.Color))
	space := ""
	if f.SpaceText {
		space = ` xml:space="preserve"`
	}
	fmt.Fprintf(&d.body, "<w:t%s>%s</w:t>", space, escapeXML(text))
	d.body.WriteString("</w:r></w:p>")
}

// AddTable appends a bordered table. When headerBold is set the first row is
// rendered bold on a shaded background.
func (d *Docx) AddTable(rows [][]string, headerBold bool) {
	if len(rows) == 0 {
		return
	}
	d.body.WriteString(`<w:tbl><w:tblPr><w:tblStyle w:val="TableGrid"/>` +
		`<w:tblW w:w="0" w:type="auto"/>` +
		`<w:tblBorders>` +
		`<w:top w:val="single" w:sz="4" w:space="0" w:color="auto"/>` +
		`<w:left w:val="single" w:sz="4" w:space="0" w:color="auto"/>` +
		`<w:bottom w:val="single" w:sz="4" w:space="0" w:color="auto"/>` +
		`<w:right w:val="single" w:sz="4" w:space="0" w:color="auto"/>` +
		`<w:insideH w:val="single" w:sz="4" w:space="0" w:color="auto"/>` +
		`<w:insideV w:val="single" w:sz="4" w:space="0" w:color="auto"/>` +
		`</w:tblBorders></w:tblPr>`)
	for i, row := range rows {
		d.body.WriteString("<w:tr>")
		for _, cell := range row {
			d.body.WriteString("<w:tc>")
			if headerBold && i == 0 {
				d.body.WriteString(`<w:tcPr><w:shd w:val="clear" w:color="auto" w:fill="D9D9D9"/></w:tcPr>`)
			}
			d.body.WriteString("<w:p><w:r>")
			if headerBold && i == 0 {
				d.body.WriteString("<w:rPr><w:b/></w:rPr>")
			}
			fmt.Fprintf(&d.body, "<w:t>%s</w:t>", escapeXML(cell))
			d.body.WriteString("</w:r></w:p></w:tc>")
		}
		d.body.WriteString("</w:tr>")
	}
	d.body.WriteString("</w:tbl>")
}

// AddImage embeds the image as an inline PNG, scaled down to the page
// content width when wider.
func (d *Docx) AddImage(img image.Image) error {
	if img == nil {
		return fmt.Errorf("add image: input image is nil")
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("add image: encode: %w", err)
	}
	d.media = append(d.media, buf.Bytes())

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > pageContentWidthPx {
		h = h * pageContentWidthPx / w
		w = pageContentWidthPx
	}
	cx, cy := w*emuPerPixel, h*emuPerPixel

	n := len(d.media) // image index, rId is offset by the styles relationship
	fmt.Fprintf(&d.body,
		`<w:p><w:pPr><w:jc w:val="center"/></w:pPr><w:r><w:drawing>`+
			`<wp:inline distT="0" distB="0" distL="0" distR="0">`+
			`<wp:extent cx="%d" cy="%d"/>`+
			`<wp:docPr id="%d" name="Picture %d"/>`+
			`<a:graphic xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main">`+
			`<a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/picture">`+
			`<pic:pic xmlns:pic="http://schemas.openxmlformats.org/drawingml/2006/picture">`+
			`<pic:nvPicPr><pic:cNvPr id="%d" name="Picture %d"/><pic:cNvPicPr/></pic:nvPicPr>`+
			`<pic:blipFill><a:blip r:embed="rId%d"/><a:stretch><a:fillRect/></a:stretch></pic:blipFill>`+
			`<pic:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="%d" cy="%d"/></a:xfrm>`+
			`<a:prstGeom prst="rect"><a:avLst/></a:prstGeom></pic:spPr>`+
			`</pic:pic></a:graphicData></a:graphic></wp:inline></w:drawing></w:r></w:p>`,
		cx, cy, n, n, n, n, n+1, cx, cy)
	return nil
}

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Default Extension="png" ContentType="image/png"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>
</Types>`

const rootRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

const stylesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/></w:style>
<w:style w:type="paragraph" w:styleId="Title"><w:name w:val="Title"/><w:basedOn w:val="Normal"/>
<w:rPr><w:b/><w:sz w:val="48"/><w:szCs w:val="48"/></w:rPr></w:style>
<w:style w:type="paragraph" w:styleId="Heading1"><w:name w:val="heading 1"/><w:basedOn w:val="Normal"/>
<w:pPr><w:spacing w:before="240" w:after="120"/></w:pPr>
<w:rPr><w:b/><w:sz w:val="32"/><w:szCs w:val="32"/></w:rPr></w:style>
<w:style w:type="paragraph" w:styleId="Heading2"><w:name w:val="heading 2"/><w:basedOn w:val="Normal"/>
<w:pPr><w:spacing w:before="200" w:after="100"/></w:pPr>
<w:rPr><w:b/><w:sz w:val="28"/><w:szCs w:val="28"/></w:rPr></w:style>
<w:style w:type="table" w:styleId="TableGrid"><w:name w:val="Table Grid"/></w:style>
</w:styles>`

func (d *Docx) documentRelsXML() string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	sb.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` + "\n")
	sb.WriteString(`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>` + "\n")
	for i := range d.media {
		fmt.Fprintf(&sb,
			`<Relationship Id="rId%d" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/image" Target="media/image%d.png"/>`+"\n",
			i+2, i+1)
	}
	sb.WriteString(`</Relationships>`)
	return sb.String()
}

func (d *Docx) documentXML() string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	sb.WriteString(`<w:document` +
		` xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"` +
		` xmlns:wp="http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"` +
		` xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">` +
		`<w:body>`)
	sb.WriteString(d.body.String())
	sb.WriteString(`<w:sectPr><w:pgSz w:w="12240" w:h="15840"/>` +
		`<w:pgMar w:top="1440" w:right="1440" w:bottom="1440" w:left="1440"/></w:sectPr>`)
	sb.WriteString(`</w:body></w:document>`)
	return sb.String()
}

// Write serializes the document package to w.
func (d *Docx) Write(w io.Writer) error {
	zw := zip.NewWriter(w)
	parts := []struct {
		name string
		data []byte
	}{
		{"[Content_Types].xml", []byte(contentTypesXML)},
		{"_rels/.rels", []byte(rootRelsXML)},
		{"word/styles.xml", []byte(stylesXML)},
		{"word/_rels/document.xml.rels", []byte(d.documentRelsXML())},
		{"word/document.xml", []byte(d.documentXML())},
	}
	for i, m := range d.media {
		parts = append(parts, struct {
			name string
			data []byte
		}{fmt.Sprintf("word/media/image%d.png", i+1), m})
	}
	for _, p := range parts {
		f, err := zw.Create(p.name)
		if err != nil {
			return fmt.Errorf("create part %s: %w", p.name, err)
		}
		if _, err := f.Write(p.data); err != nil {
			return fmt.Errorf("write part %s: %w", p.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalize document: %w", err)
	}
	return nil
}

// Bytes serializes the document package into memory.
func (d *Docx) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
