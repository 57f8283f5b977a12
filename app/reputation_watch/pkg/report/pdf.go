package report

import (
	"fmt"

	"github.com/go-pdf/fpdf"
)

const pdfFontFamily = "report"

// writePDF 生成 PDF；没有配置字体时使用内置 Arial，只能正确显示 cp1252 字符
func writePDF(path string, p page, chartPath, fontFile string) error {
	pdf := fpdf.New("P", "mm", "A4", "")

	family := "Arial"
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	if fontFile != "" {
		pdf.AddUTF8Font(pdfFontFamily, "", fontFile)
		family = pdfFontFamily
		tr = func(s string) string { return s }
	}

	pdf.AddPage()
	pdf.SetFont(family, "", 12)
	pdf.CellFormat(0, 10, tr(p.Title), "", 1, "L", false, 0, "")

	pdf.SetFont(family, "", 10)
	for _, row := range p.Rows {
		pdf.MultiCell(0, 6, tr(row.Line()), "", "L", false)
	}

	pdf.Ln(4)
	pdf.ImageOptions(chartPath, 10, pdf.GetY(), 180, 0, true, fpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}, 0, "")

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
