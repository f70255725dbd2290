package exporter

import (
	"bytes"
	"fmt"

	"github.com/Death-Raider13/CAPS-TEAM/app/models"
	"github.com/Death-Raider13/CAPS-TEAM/internal/pkg/draft"
	"github.com/Death-Raider13/CAPS-TEAM/internal/pkg/imageprocessor"
	"github.com/Death-Raider13/CAPS-TEAM/internal/pkg/richtext"
	"github.com/go-pdf/fpdf"
	"github.com/gofiber/fiber/v2/log"
	"github.com/spf13/afero"
)

// A4 layout in millimetres
const (
	pageMargin   = 20.0
	lineHeight   = 5.5
	gridGap      = 10.0
	photoHeight  = 55.0
	captionLines = 4
	headerHeight = 25.0 // tallest header banner
	footerHeight = 15.0 // tallest footer banner
	signatureH   = 20.0
)

// Fixed page artwork, looked up by file name in Config.Assets.
const (
	headerAsset    = "header.png"
	footerAsset    = "footer.png"
	signatureAsset = "signature.png"
)

func loadAssets(fs afero.Fs) map[string][]byte {
	assets := map[string][]byte{}
	if fs == nil {
		return assets
	}
	for _, name := range []string{headerAsset, footerAsset, signatureAsset} {
		data, err := afero.ReadFile(fs, name)
		if err != nil {
			log.Warnf("[Export] %s not loaded, PDF renders without it: %v", name, err)
			continue
		}
		assets[name] = data
	}
	return assets
}

// pdfWriter keeps the document and the code page translator together.
type pdfWriter struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func (w *pdfWriter) contentWidth() float64 {
	pageW, _ := w.pdf.GetPageSize()
	return pageW - 2*pageMargin
}

func (w *pdfWriter) heading(text string) {
	w.pdf.SetFont("Helvetica", "B", 11)
	w.pdf.CellFormat(0, lineHeight+1, w.tr(text), "", 1, "L", false, 0, "")
	w.pdf.Ln(1)
}

func (w *pdfWriter) paragraph(text string) {
	w.pdf.SetFont("Helvetica", "", 10)
	w.pdf.MultiCell(0, lineHeight, w.tr(text), "", "J", false)
	w.pdf.Ln(2)
}

// narrative writes the observation lines keeping bold and underline runs.
func (w *pdfWriter) narrative(markup string) {
	doc := richtext.ParseHTML(markup)
	if doc.IsEmpty() {
		w.paragraph("No observations recorded")
		return
	}
	for _, line := range doc.Lines {
		w.pdf.SetFont("Helvetica", "", 10)
		if prefix := line.Prefix(); prefix != "" {
			w.pdf.Write(lineHeight, w.tr(prefix))
		}
		for _, run := range line.Runs {
			style := ""
			if run.Bold {
				style += "B"
			}
			if run.Underline {
				style += "U"
			}
			w.pdf.SetFont("Helvetica", style, 10)
			w.pdf.Write(lineHeight, w.tr(run.Text))
		}
		w.pdf.Ln(lineHeight)
	}
	w.pdf.Ln(2)
}

func (w *pdfWriter) fieldTable(rec models.InspectionRecord) {
	labelW := w.contentWidth() * 0.35
	valueW := w.contentWidth() - labelW
	for _, row := range fieldRows(rec) {
		w.pdf.SetFont("Helvetica", "B", 10)
		w.pdf.CellFormat(labelW, lineHeight, w.tr(row.Label), "", 0, "L", false, 0, "")
		w.pdf.SetFont("Helvetica", "", 10)
		w.pdf.MultiCell(valueW, lineHeight, w.tr(row.Value), "", "L", false)
	}
	w.pdf.Ln(4)
}

// photoGrid lays photos out two per row, starting a new page when a row does not fit.
func (w *pdfWriter) photoGrid(photos []models.Photo) {
	cellW := (w.contentWidth() - gridGap) / 2
	rowH := photoHeight + captionLines*lineHeight + 6
	_, pageH := w.pdf.GetPageSize()
	_, bottom := w.pdf.GetAutoPageBreak()

	for i, p := range photos {
		col := i % 2
		if col == 0 && w.pdf.GetY()+rowH > pageH-bottom {
			w.pdf.AddPage()
		}
		top := w.pdf.GetY()
		x := pageMargin + float64(col)*(cellW+gridGap)

		w.pdf.SetDrawColor(221, 221, 221)
		w.pdf.Rect(x, top, cellW, rowH-2, "D")
		w.photo(p, fmt.Sprintf("photo-%d", i), x+2, top+2, cellW-4, photoHeight)

		w.pdf.SetXY(x+2, top+photoHeight+3)
		w.pdf.SetFont("Helvetica", "B", 10)
		w.pdf.CellFormat(cellW-4, lineHeight, w.tr(fmt.Sprintf("APPENDIX %d", i+1)), "", 2, "C", false, 0, "")
		w.pdf.SetFont("Helvetica", "I", 8)
		w.pdf.CellFormat(cellW-4, lineHeight, w.tr(p.Title), "", 2, "C", false, 0, "")
		w.pdf.SetFont("Helvetica", "", 8)
		w.pdf.SetTextColor(102, 102, 102)
		w.pdf.CellFormat(cellW-4, lineHeight, w.tr("GPS: "+p.GPS), "", 2, "C", false, 0, "")
		w.pdf.SetTextColor(153, 153, 153)
		w.pdf.CellFormat(cellW-4, lineHeight, w.tr(p.Timestamp), "", 2, "C", false, 0, "")
		w.pdf.SetTextColor(0, 0, 0)

		if col == 1 || i == len(photos)-1 {
			w.pdf.SetXY(pageMargin, top+rowH)
		} else {
			w.pdf.SetXY(pageMargin, top)
		}
	}
}

// photo draws one image scaled to fit the box, or a placeholder when it cannot be decoded.
func (w *pdfWriter) photo(p models.Photo, name string, x, y, boxW, boxH float64) {
	thumb, err := imageprocessor.ThumbnailJPEG(p.Data, imageprocessor.ExportThumbnailSize)
	if err != nil {
		log.Warnf("[Export] photo %s skipped: %v", p.ID, err)
		w.pdf.SetXY(x, y+boxH/2)
		w.pdf.SetFont("Helvetica", "I", 8)
		w.pdf.CellFormat(boxW, lineHeight, "Image unavailable", "", 0, "C", false, 0, "")
		return
	}

	opts := fpdf.ImageOptions{ImageType: "JPG"}
	info := w.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(thumb))
	if info == nil {
		return
	}
	imgW, imgH := info.Width(), info.Height()
	scale := boxW / imgW
	if imgH*scale > boxH {
		scale = boxH / imgH
	}
	drawW, drawH := imgW*scale, imgH*scale
	w.pdf.ImageOptions(name, x+(boxW-drawW)/2, y+(boxH-drawH)/2, drawW, drawH, false, opts, 0, "")
}

// registerAssets adds the available artwork to the document and returns the
// names that can be drawn.
func (r *Renderer) registerAssets(pdf *fpdf.Fpdf) map[string]bool {
	ok := map[string]bool{}
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	for name, data := range r.assets {
		if info := pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data)); info == nil || !pdf.Ok() {
			log.Warnf("[Export] %s is not a usable PNG: %v", name, pdf.Error())
			pdf.ClearError()
			continue
		}
		ok[name] = true
	}
	return ok
}

// bannerHeight is the height of a full-width banner keeping its aspect
// ratio, capped at max. Zero when the image is not available.
func (w *pdfWriter) bannerHeight(art map[string]bool, name string, limit float64) float64 {
	if !art[name] {
		return 0
	}
	info := w.pdf.GetImageInfo(name)
	if info == nil || info.Width() == 0 {
		return 0
	}
	return min(w.contentWidth()*info.Height()/info.Width(), limit)
}

// RenderPDF builds the PDF version of a report with the same sections as the HTML document.
func (r *Renderer) RenderPDF(report models.Report) ([]byte, error) {
	if !r.cfg.PDF {
		return nil, ErrPDFUnavailable
	}
	rec := report.InspectionRecord
	if err := draft.ValidateForExport(rec); err != nil {
		return nil, err
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	w := &pdfWriter{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}

	pdf.SetTitle(Title(rec), true)
	pdf.SetCreator("CAPS Monitoring Team", true)
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.AliasNbPages("")

	art := r.registerAssets(pdf)
	imgOpts := fpdf.ImageOptions{ImageType: "PNG"}
	headerH := w.bannerHeight(art, headerAsset, headerHeight)
	footerH := w.bannerHeight(art, footerAsset, footerHeight)
	bottom := pageMargin + footerH
	pdf.SetAutoPageBreak(true, bottom)

	pdf.SetHeaderFunc(func() {
		if headerH == 0 {
			return
		}
		pdf.ImageOptions(headerAsset, pageMargin, 8, w.contentWidth(), headerH, false, imgOpts, 0, "")
		pdf.SetY(8 + headerH + 4)
	})
	pdf.SetFooterFunc(func() {
		_, pageH := pdf.GetPageSize()
		if footerH > 0 {
			pdf.ImageOptions(footerAsset, pageMargin, pageH-8-footerH, w.contentWidth(), footerH, false, imgOpts, 0, "")
		}
		pdf.SetY(pageH - 8 - footerH - 7)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 6, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, "CAP OBSERVATION SHEET", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, lineHeight, "Monitoring and Regulation of Buildings Report", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(0, lineHeight, w.tr("Report No: "+DisplayNumber(rec, "DRAFT")), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	w.fieldTable(rec)

	w.heading("OBSERVATIONS")
	w.paragraph("Based on our evaluation, of the current state of work, at the above site, we report as follows:")
	w.narrative(rec.ObservationsRichText)

	pdf.AddPage()
	w.heading("1. EXECUTIVE SUMMARY")
	w.paragraph(orNA(rec.ExecutiveSummary))
	w.heading("2. CHALLENGES AND LIMITATIONS")
	w.paragraph(orNA(rec.ChallengesAndLimitations))

	pdf.AddPage()
	w.heading("3. APPENDICES - PHOTOGRAPHIC EVIDENCE")
	w.photoGrid(rec.Photos)

	pdf.Ln(8)
	if art[signatureAsset] {
		_, pageH := pdf.GetPageSize()
		if pdf.GetY()+signatureH+lineHeight > pageH-bottom {
			pdf.AddPage()
		}
		pdf.ImageOptions(signatureAsset, pageMargin, pdf.GetY(), 0, signatureH, true, imgOpts, 0, "")
		pdf.Ln(2)
	}
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, lineHeight, "AUTHORIZED SIGNATORY", "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf for report %d: %w", rec.ID, err)
	}
	return buf.Bytes(), nil
}
