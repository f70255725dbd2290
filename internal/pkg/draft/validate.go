package draft

import (
	"errors"

	"github.com/Death-Raider13/CAPS-TEAM/app/models"
	"github.com/go-playground/validator/v10"
)

var (
	ErrNoPhotos            = errors.New("Please add at least 1 photo with GPS location before generating PDF")
	ErrMissingReportNumber = errors.New("Please enter a Report Number before generating PDF")
)

// exportRequirements lists what a record needs before it can be rendered.
// Field order is the order problems are reported in.
type exportRequirements struct {
	Photos       []models.Photo `validate:"min=1"`
	ReportNumber string         `validate:"required"`
}

var validate = validator.New()

// ValidateForExport returns the first user-facing reason rec cannot be exported.
func ValidateForExport(rec models.InspectionRecord) error {
	err := validate.Struct(exportRequirements{
		Photos:       rec.Photos,
		ReportNumber: rec.ReportNumber,
	})
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	switch verrs[0].Field() {
	case "Photos":
		return ErrNoPhotos
	case "ReportNumber":
		return ErrMissingReportNumber
	default:
		return err
	}
}
