package export

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/SscSPs/budget_approval_app/internal/core/domain"
)

// DocxContentType is the media type of generated letters.
const DocxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

const (
	wordNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	docFont       = "Arial"
	headerFill    = "E2EFDA"
	bodySize      = "22"
)

// LetterOptions personalizes the cover letter around the summary table.
type LetterOptions struct {
	RecipientName  string
	RecipientTitle string
	// Beneficiary is the unit the limits were granted to.
	Beneficiary string
}

// BuildDocx renders summary as a WordprocessingML letter.
func BuildDocx(summary domain.BudgetSummary, opts LetterOptions) ([]byte, error) {
	doc := wDocument{W: wordNamespace}
	years := yearRange(summary.Years)

	doc.Body.Content = append(doc.Body.Content,
		paragraph(withBorder(plain("right"), "FF0000"), run("Minister", true, "")),
		paragraph(plain("right"), run("Cyfryzacji", true, "")),
		paragraph(plain("left"), run("Nr sprawy w EZD", false, "")),
		paragraph(plain("right"), run("Warszawa, data podpisu r.", false, "")),
		paragraph(plain("left"), run("Pan", false, "")),
		paragraph(plain("left"), run(opts.RecipientName, true, "")),
		paragraph(plain("left"), run(opts.RecipientTitle, false, "")),
		paragraph(plain("left"), run("Szanowny Panie Dyrektorze,", false, "")),
		paragraph(plain("both"),
			run(fmt.Sprintf("informuję, iż w ramach wskazanego przez Ministra Finansów limitu wydatków budżetu państwa na lata %s, przyznano dla ", years), false, ""),
			run(opts.Beneficiary, true, ""),
			run(" następujący limit wydatków w poszczególnych grupach wydatków:", false, ""),
		),
		paragraph(plain("right"), run("w tys. zł", false, "18")),
		summaryTable(summary),
		paragraph(plain("left")),
		paragraph(plain("both"),
			run(fmt.Sprintf("W związku z powyższym, uprzejmie proszę o rozdysponowanie podanych wielkości we wskazanych grupach wydatków na zadania, które powinny zostać sfinansowane w latach %s, w szczególnych paragrafach klasyfikacji budżetowej.", years), false, ""),
		),
	)

	body, err := xml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	parts := []struct {
		name    string
		content []byte
	}{
		{"[Content_Types].xml", []byte(contentTypesXML)},
		{"_rels/.rels", []byte(rootRelsXML)},
		{"word/document.xml", append([]byte(xml.Header), body...)},
	}
	for _, p := range parts {
		w, err := zw.Create(p.name)
		if err != nil {
			return nil, fmt.Errorf("failed to add %s: %w", p.name, err)
		}
		if _, err := w.Write(p.content); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", p.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish docx archive: %w", err)
	}
	return buf.Bytes(), nil
}

func yearRange(years []int) string {
	parts := make([]string, len(years))
	for i, y := range years {
		parts[i] = strconv.Itoa(y)
	}
	return strings.Join(parts, "-")
}

func summaryTable(summary domain.BudgetSummary) wTable {
	headers := []string{"Część budżetowa", "Dział", "Rozdział", "Grupa wydatków"}
	for _, y := range summary.Years {
		headers = append(headers, fmt.Sprintf("%d rok", y))
	}

	t := wTable{
		Props: wTableProps{
			Width: wWidth{W: 5000, Type: "pct"},
			Borders: wTableBorders{
				Top: singleBorder, Left: singleBorder, Bottom: singleBorder,
				Right: singleBorder, InsideH: singleBorder, InsideV: singleBorder,
			},
		},
	}
	for range headers {
		t.Grid.Cols = append(t.Grid.Cols, wGridCol{W: 9000 / len(headers)})
	}

	header := wRow{}
	for _, h := range headers {
		header.Cells = append(header.Cells, cell(h, true, "center", headerFill))
	}
	t.Rows = append(t.Rows, header)

	for _, rec := range summary.Records {
		row := wRow{Cells: []wCell{
			cell(rec.PartCode, false, "center", ""),
			cell(rec.DeptCode, false, "center", ""),
			cell(rec.ChapterCode, false, "center", ""),
			cell(rec.Group, false, "left", ""),
		}}
		for _, y := range summary.Years {
			row.Cells = append(row.Cells, cell(formatThousands(rec.Amounts[y]), false, "right", ""))
		}
		t.Rows = append(t.Rows, row)
	}

	total := wRow{Cells: []wCell{
		cell("x", true, "center", headerFill),
		cell("x", true, "center", headerFill),
		cell("x", true, "center", headerFill),
		cell("OGÓŁEM:", true, "left", headerFill),
	}}
	for _, y := range summary.Years {
		total.Cells = append(total.Cells, cell(formatThousands(summary.Totals[y]), true, "right", headerFill))
	}
	t.Rows = append(t.Rows, total)
	return t
}

// formatThousands groups digits with a space, as in Polish documents.
func formatThousands(v int64) string {
	s := strconv.FormatInt(v, 10)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// --- WordprocessingML ---

type wDocument struct {
	XMLName xml.Name `xml:"w:document"`
	W       string   `xml:"xmlns:w,attr"`
	Body    wBody    `xml:"w:body"`
}

type wBody struct {
	Content []any   `xml:""`
	SectPr  wSectPr `xml:"w:sectPr"`
}

type wSectPr struct {
	PageMargins wPageMargins `xml:"w:pgMar"`
}

type wPageMargins struct {
	Top    int `xml:"w:top,attr"`
	Right  int `xml:"w:right,attr"`
	Bottom int `xml:"w:bottom,attr"`
	Left   int `xml:"w:left,attr"`
}

type wParagraph struct {
	XMLName xml.Name         `xml:"w:p"`
	Props   *wParagraphProps `xml:"w:pPr,omitempty"`
	Runs    []wRun           `xml:"w:r"`
}

type wParagraphProps struct {
	Border  *wParagraphBorder `xml:"w:pBdr,omitempty"`
	Spacing *wSpacing         `xml:"w:spacing,omitempty"`
	Justify *wVal             `xml:"w:jc,omitempty"`
}

type wParagraphBorder struct {
	Bottom wBorder `xml:"w:bottom"`
}

type wSpacing struct {
	After int `xml:"w:after,attr"`
}

type wVal struct {
	Val string `xml:"w:val,attr"`
}

type wBorder struct {
	Val   string `xml:"w:val,attr"`
	Size  int    `xml:"w:sz,attr"`
	Space int    `xml:"w:space,attr"`
	Color string `xml:"w:color,attr"`
}

var singleBorder = wBorder{Val: "single", Size: 4, Color: "000000"}

type wRun struct {
	Props *wRunProps `xml:"w:rPr,omitempty"`
	Text  wText      `xml:"w:t"`
}

type wRunProps struct {
	Fonts *wFonts   `xml:"w:rFonts,omitempty"`
	Bold  *struct{} `xml:"w:b,omitempty"`
	Size  *wVal     `xml:"w:sz,omitempty"`
}

type wFonts struct {
	ASCII string `xml:"w:ascii,attr"`
	HAnsi string `xml:"w:hAnsi,attr"`
	CS    string `xml:"w:cs,attr"`
}

type wText struct {
	Space string `xml:"xml:space,attr,omitempty"`
	Value string `xml:",chardata"`
}

type wTable struct {
	XMLName xml.Name    `xml:"w:tbl"`
	Props   wTableProps `xml:"w:tblPr"`
	Grid    wTableGrid  `xml:"w:tblGrid"`
	Rows    []wRow      `xml:"w:tr"`
}

type wTableProps struct {
	Width   wWidth        `xml:"w:tblW"`
	Borders wTableBorders `xml:"w:tblBorders"`
}

type wWidth struct {
	W    int    `xml:"w:w,attr"`
	Type string `xml:"w:type,attr"`
}

type wTableBorders struct {
	Top     wBorder `xml:"w:top"`
	Left    wBorder `xml:"w:left"`
	Bottom  wBorder `xml:"w:bottom"`
	Right   wBorder `xml:"w:right"`
	InsideH wBorder `xml:"w:insideH"`
	InsideV wBorder `xml:"w:insideV"`
}

type wTableGrid struct {
	Cols []wGridCol `xml:"w:gridCol"`
}

type wGridCol struct {
	W int `xml:"w:w,attr"`
}

type wRow struct {
	Cells []wCell `xml:"w:tc"`
}

type wCell struct {
	Props      *wCellProps  `xml:"w:tcPr,omitempty"`
	Paragraphs []wParagraph `xml:"w:p"`
}

type wCellProps struct {
	Shading *wShading `xml:"w:shd,omitempty"`
}

type wShading struct {
	Val   string `xml:"w:val,attr"`
	Color string `xml:"w:color,attr"`
	Fill  string `xml:"w:fill,attr"`
}

func plain(justify string) *wParagraphProps {
	return &wParagraphProps{Spacing: &wSpacing{After: 120}, Justify: &wVal{Val: justify}}
}

func withBorder(p *wParagraphProps, color string) *wParagraphProps {
	p.Border = &wParagraphBorder{Bottom: wBorder{Val: "single", Size: 12, Space: 1, Color: color}}
	return p
}

func paragraph(props *wParagraphProps, runs ...wRun) wParagraph {
	return wParagraph{Props: props, Runs: runs}
}

func run(text string, bold bool, size string) wRun {
	if size == "" {
		size = bodySize
	}
	props := &wRunProps{
		Fonts: &wFonts{ASCII: docFont, HAnsi: docFont, CS: docFont},
		Size:  &wVal{Val: size},
	}
	if bold {
		props.Bold = &struct{}{}
	}
	return wRun{Props: props, Text: wText{Space: "preserve", Value: text}}
}

func cell(text string, bold bool, justify, fill string) wCell {
	c := wCell{Paragraphs: []wParagraph{{
		Props: &wParagraphProps{Justify: &wVal{Val: justify}},
		Runs:  []wRun{run(text, bold, "20")},
	}}}
	if fill != "" {
		c.Props = &wCellProps{Shading: &wShading{Val: "clear", Color: "auto", Fill: fill}}
	}
	return c
}

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/><Default Extension="xml" ContentType="application/xml"/><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/></Types>`

const rootRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/></Relationships>`
