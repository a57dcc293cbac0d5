package compile

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

var placeholderPDF = buildPlaceholder()

// PlaceholderPDF returns a copy of the fixed one-page document served when every
// compilation attempt failed.
func PlaceholderPDF() []byte {
	return append([]byte(nil), placeholderPDF...)
}

// IsPlaceholder reports whether data is the placeholder document.
func IsPlaceholder(data []byte) bool {
	return bytes.Equal(data, placeholderPDF)
}

// IsPDF reports whether data starts with the PDF magic header.
func IsPDF(data []byte) bool {
	return bytes.HasPrefix(data, pdfMagic)
}

// PageCount parses data and returns its number of pages.
func PageCount(data []byte) (int, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("failed to parse PDF: %w", err)
	}
	return r.NumPage(), nil
}

// buildPlaceholder assembles a minimal PDF 1.4 file with a correct xref table.
func buildPlaceholder() []byte {
	content := "BT /F1 18 Tf 72 720 Td (Resume preview unavailable) Tj " +
		"0 -28 Td /F1 11 Tf (The document could not be compiled. Download the LaTeX source instead.) Tj ET"

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
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
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	return buf.Bytes()
}
