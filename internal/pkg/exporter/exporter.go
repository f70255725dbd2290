package exporter

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/Death-Raider13/CAPS-TEAM/app/models"
	"github.com/Death-Raider13/CAPS-TEAM/internal/pkg/draft"
	"github.com/Death-Raider13/CAPS-TEAM/internal/pkg/imageprocessor"
	"github.com/Death-Raider13/CAPS-TEAM/internal/pkg/richtext"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/template/html/v2"
	"github.com/spf13/afero"
)

//go:embed templates
var templatesFS embed.FS

// PrintDelay lets images settle before the print dialog opens.
const PrintDelay = 500 * time.Millisecond

var ErrPDFUnavailable = errors.New("PDF rendering is not available")

// Config controls the renderer
type Config struct {
	// AssetBase prefixes header.png, footer.png and signature.png.
	AssetBase string
	// PDF enables the PDF tier. When off, exports fall back to the print page.
	PDF bool
	// WebPThumbnails shrinks embedded photos in the HTML document.
	WebPThumbnails bool
	// Assets holds header.png, footer.png and signature.png for the PDF tier.
	// Images missing from it are left out of the PDF.
	Assets afero.Fs
}

// Document is a rendered report page
type Document struct {
	Title    string
	Filename string
	HTML     []byte
}

// Renderer turns finalized reports into documents
type Renderer struct {
	cfg    Config
	engine *html.Engine
	assets map[string][]byte
}

// New loads the embedded templates
func New(cfg Config) (*Renderer, error) {
	if cfg.AssetBase == "" {
		cfg.AssetBase = "/"
	}
	if !strings.HasSuffix(cfg.AssetBase, "/") {
		cfg.AssetBase += "/"
	}

	sub, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		return nil, err
	}
	engine := html.NewFileSystem(http.FS(sub), ".html")
	if err := engine.Load(); err != nil {
		return nil, fmt.Errorf("load export templates: %w", err)
	}
	return &Renderer{cfg: cfg, engine: engine, assets: loadAssets(cfg.Assets)}, nil
}

// DisplayNumber is the report number as printed, or the fallback for unnumbered records.
func DisplayNumber(rec models.InspectionRecord, fallback string) string {
	if rec.ReportNumber == "" {
		return fallback
	}
	return rec.ReportNumber
}

// Title returns the document title of a report
func Title(rec models.InspectionRecord) string {
	return "CAP Observation Report - " + DisplayNumber(rec, "Draft")
}

// Filename returns the download name of the PDF
func Filename(rec models.InspectionRecord) string {
	return "CAP_Report_" + DisplayNumber(rec, "Draft") + ".pdf"
}

type fieldRow struct {
	Label string
	Value string
}

type photoView struct {
	Appendix  int
	Src       template.URL
	Title     string
	GPS       string
	Timestamp string
}

type reportView struct {
	Title            string
	ReportNo         string
	AssetBase        string
	Rows             []fieldRow
	Narrative        template.HTML
	ExecutiveSummary string
	Challenges       string
	Photos           []photoView
	AutoPrint        bool
	PrintDelayMS     int64
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

// fieldRows is the attribute table shared by the HTML and PDF output.
func fieldRows(rec models.InspectionRecord) []fieldRow {
	return []fieldRow{
		{"DISTRICT", orNA(rec.District)},
		{"CAP PRACTITIONER", orNA(rec.CapPractitioner)},
		{"ADDRESS OF INFRACTION", orNA(rec.AddressOfInfraction)},
		{"NEAREST LANDMARK (IF ANY)", orNA(rec.NearestLandmark)},
		{"GPS COORDINATES", orNA(rec.GPSCoordinates)},
		{"DATE OF IDENTIFICATION", orNA(rec.DateOfIdentification)},
		{"NO. OF FLOORS", orNA(rec.NumberOfFloors)},
		{"STAGE OF WORK", orNA(rec.StageOfWork)},
		{"STATE OF BUILDING", orNA(strings.Join(rec.StateOfBuilding.Labels(), ", "))},
	}
}

// photoSrc only lets image data URIs through; anything else renders as a broken image.
func (r *Renderer) photoSrc(data string) template.URL {
	if !strings.HasPrefix(data, "data:image/") {
		return ""
	}
	if r.cfg.WebPThumbnails {
		thumb, err := imageprocessor.ThumbnailWebPDataURI(data, imageprocessor.ExportThumbnailSize)
		if err == nil {
			return template.URL(thumb)
		}
		log.Warnf("[Export] thumbnail failed, embedding original: %v", err)
	}
	return template.URL(data)
}

func (r *Renderer) view(rec models.InspectionRecord, autoPrint bool) reportView {
	v := reportView{
		Title:            Title(rec),
		ReportNo:         DisplayNumber(rec, "DRAFT"),
		AssetBase:        r.cfg.AssetBase,
		Rows:             fieldRows(rec),
		ExecutiveSummary: orNA(rec.ExecutiveSummary),
		Challenges:       orNA(rec.ChallengesAndLimitations),
		AutoPrint:        autoPrint,
		PrintDelayMS:     PrintDelay.Milliseconds(),
	}
	// The stored narrative is re-serialized so only line breaks, bold and
	// underline reach the page.
	if rec.ObservationsRichText != "" {
		v.Narrative = template.HTML(richtext.ParseHTML(rec.ObservationsRichText).HTML())
	}
	for i, p := range rec.Photos {
		v.Photos = append(v.Photos, photoView{
			Appendix:  i + 1,
			Src:       r.photoSrc(p.Data),
			Title:     p.Title,
			GPS:       p.GPS,
			Timestamp: p.Timestamp,
		})
	}
	return v
}

func (r *Renderer) render(rec models.InspectionRecord, autoPrint bool) (Document, error) {
	var buf bytes.Buffer
	if err := r.engine.Render(&buf, "report", r.view(rec, autoPrint)); err != nil {
		return Document{}, fmt.Errorf("render report %d: %w", rec.ID, err)
	}
	return Document{
		Title:    Title(rec),
		Filename: Filename(rec),
		HTML:     buf.Bytes(),
	}, nil
}

// Render builds the static HTML document of a report. The report must have
// a report number and at least one photo.
func (r *Renderer) Render(report models.Report) (Document, error) {
	if err := draft.ValidateForExport(report.InspectionRecord); err != nil {
		return Document{}, err
	}
	return r.render(report.InspectionRecord, false)
}
