package exporter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Death-Raider13/CAPS-TEAM/app/models"
	"github.com/Death-Raider13/CAPS-TEAM/internal/pkg/draft"
	"github.com/gofiber/fiber/v2/log"
)

// Format is the export format a caller asks for
type Format string

const (
	FormatAuto  Format = "auto"
	FormatPDF   Format = "pdf"
	FormatPrint Format = "print"
	FormatHTML  Format = "html"
)

// ParseFormat maps a query value to a Format. Empty means auto.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatAuto, nil
	case FormatAuto, FormatPDF, FormatPrint, FormatHTML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown export format %q", s)
	}
}

// Tier is the delivery path an export ended up on
type Tier int

const (
	// TierPDF is a direct file download.
	TierPDF Tier = iota + 1
	// TierPrint is a page that opens the print dialog once loaded.
	TierPrint
	// TierRaw is the bare document for runtimes that cannot do either.
	TierRaw
)

func (t Tier) String() string {
	switch t {
	case TierPDF:
		return "pdf"
	case TierPrint:
		return "print"
	case TierRaw:
		return "html"
	default:
		return "unknown"
	}
}

// Delivery is an export ready to send
type Delivery struct {
	Tier        Tier
	ContentType string
	Filename    string
	Body        []byte
}

// Attachment reports whether the body should be downloaded rather than shown.
func (d Delivery) Attachment() bool {
	return d.Tier == TierPDF
}

// IsConstrainedClient reports user agents that get the raw document.
func IsConstrainedClient(userAgent string) bool {
	return strings.Contains(strings.ToLower(userAgent), "opera mini")
}

// Deliver renders a report along the first tier that works: PDF, then the
// print page, with constrained clients going straight to the raw document.
// Validation runs before any rendering.
func (r *Renderer) Deliver(report models.Report, format Format, userAgent string) (Delivery, error) {
	if err := draft.ValidateForExport(report.InspectionRecord); err != nil {
		return Delivery{}, err
	}

	if format == FormatAuto && IsConstrainedClient(userAgent) {
		format = FormatHTML
	}

	switch format {
	case FormatHTML:
		return r.deliverHTML(report, TierRaw)
	case FormatPrint:
		return r.deliverHTML(report, TierPrint)
	case FormatPDF:
		return r.deliverPDF(report)
	default:
		d, err := r.deliverPDF(report)
		if err == nil {
			return d, nil
		}
		if !errors.Is(err, ErrPDFUnavailable) {
			log.Warnf("[Export] PDF for report %d failed, falling back to print: %v", report.ID, err)
		}
		return r.deliverHTML(report, TierPrint)
	}
}

func (r *Renderer) deliverPDF(report models.Report) (Delivery, error) {
	body, err := r.RenderPDF(report)
	if err != nil {
		return Delivery{}, err
	}
	return Delivery{
		Tier:        TierPDF,
		ContentType: "application/pdf",
		Filename:    Filename(report.InspectionRecord),
		Body:        body,
	}, nil
}

func (r *Renderer) deliverHTML(report models.Report, tier Tier) (Delivery, error) {
	doc, err := r.render(report.InspectionRecord, tier == TierPrint)
	if err != nil {
		return Delivery{}, err
	}
	return Delivery{
		Tier:        tier,
		ContentType: "text/html; charset=utf-8",
		Filename:    strings.TrimSuffix(doc.Filename, ".pdf") + ".html",
		Body:        doc.HTML,
	}, nil
}
