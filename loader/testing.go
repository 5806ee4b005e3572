package loader

import (
	"bytes"
	"fmt"
	"os"
	"strings"
)

// PDFInfo holds the Info dictionary entries written by WritePDF.
type PDFInfo struct {
	Title    string
	Author   string
	Subject  string
	Creator  string
	Producer string
}

// BuildPDF renders a minimal PDF 1.4 document with one page per entry in
// pages, using the standard Helvetica font. Lines within a page are split on
// "\n". An empty entry produces a blank page. It exists for tests that need
// a real file to load.
func BuildPDF(pages []string, info PDFInfo) []byte {
	// Object layout: 1 catalog, 2 page tree, 3 font, 4 info,
	// then a page object and a content stream per page.
	const firstPage = 5
	objects := make([]string, firstPage-1, firstPage-1+2*len(pages))

	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", firstPage+2*i)
	}

	objects[0] = "<< /Type /Catalog /Pages 2 0 R >>"
	objects[1] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages))
	objects[2] = "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>"
	objects[3] = infoDict(info)

	for i, text := range pages {
		content := pageContent(text)
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] "+
				"/Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", firstPage+2*i+1),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		)
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R /Info 4 0 R >>\n", len(objects)+1)
	fmt.Fprintf(&buf, "startxref\n%d\n%%%%EOF\n", xref)
	return buf.Bytes()
}

// WritePDF writes BuildPDF's output to path.
func WritePDF(path string, pages []string, info PDFInfo) error {
	return os.WriteFile(path, BuildPDF(pages, info), 0o644)
}

func pageContent(text string) string {
	if text == "" {
		return ""
	}
	var b strings.Builder
	b.WriteString("BT\n/F1 10 Tf\n14 TL\n40 750 Td\n")
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			b.WriteString("T*\n")
		}
		fmt.Fprintf(&b, "(%s) Tj\n", escapeString(line))
	}
	b.WriteString("ET")
	return b.String()
}

func infoDict(info PDFInfo) string {
	var b strings.Builder
	b.WriteString("<<")
	for _, e := range []struct{ key, value string }{
		{"Title", info.Title},
		{"Author", info.Author},
		{"Subject", info.Subject},
		{"Creator", info.Creator},
		{"Producer", info.Producer},
	} {
		if e.value != "" {
			fmt.Fprintf(&b, " /%s (%s)", e.key, escapeString(e.value))
		}
	}
	b.WriteString(" >>")
	return b.String()
}

var stringEscaper = strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)

func escapeString(s string) string {
	return stringEscaper.Replace(s)
}
