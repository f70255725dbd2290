package models

import (
	"gorm.io/datatypes"
)

// BuildingState holds the four independent building-state flags.
type BuildingState struct {
	Abandoned         bool `json:"abandoned"`
	Completed         bool `json:"completed"`
	UnderConstruction bool `json:"underConstruction"`
	Distressed        bool `json:"distressed"`
}

// Labels returns the printed label of every flag that is set, in form order.
func (s BuildingState) Labels() []string {
	var labels []string
	if s.Abandoned {
		labels = append(labels, "ABANDONED")
	}
	if s.Completed {
		labels = append(labels, "COMPLETED")
	}
	if s.UnderConstruction {
		labels = append(labels, "UNDER CONSTRUCTION/RENOVATION")
	}
	if s.Distressed {
		labels = append(labels, "DISTRESSED/DEFECTIVE")
	}
	return labels
}

// Observations is the infraction checklist. It is kept in the data model even
// though the current form no longer exposes it.
type Observations struct {
	NoticeLetter              bool   `json:"noticeLetter"`
	NoPlanningPermit          bool   `json:"noPlanningPermit"`
	NoStageCertification      bool   `json:"noStageCertification"`
	NoInsurance               bool   `json:"noInsurance"`
	NoProjectBoard            bool   `json:"noProjectBoard"`
	NonConformity             bool   `json:"nonConformity"`
	Harassment                bool   `json:"harassment"`
	FalseInformation          bool   `json:"falseInformation"`
	BreakOfSeal               bool   `json:"breakOfSeal"`
	NoCertificateOfCompletion bool   `json:"noCertificateOfCompletion"`
	NoFireSafety              bool   `json:"noFireSafety"`
	DistressedStructure       bool   `json:"distressedStructure"`
	NoDemolitionPermit        bool   `json:"noDemolitionPermit"`
	NoAuthorizationToDemolish bool   `json:"noAuthorizationToDemolish"`
	OtherObservations         string `json:"otherObservations"`
}

// InspectionRecord is the denormalized content shared by drafts and reports.
type InspectionRecord struct {
	ID                       int64                      `gorm:"column:id;primaryKey;autoIncrement:false" json:"id"`
	ReportNumber             string                     `gorm:"column:report_number;type:varchar(255);index" json:"reportNumber"`
	District                 string                     `gorm:"column:district;type:text" json:"district"`
	CapPractitioner          string                     `gorm:"column:cap_practitioner;type:text" json:"capPractitioner"`
	AddressOfInfraction      string                     `gorm:"column:address_of_infraction;type:text" json:"addressOfInfraction"`
	NearestLandmark          string                     `gorm:"column:nearest_landmark;type:text" json:"nearestLandmark"`
	GPSCoordinates           string                     `gorm:"column:gps_coordinates;type:text" json:"gpsCoordinates"`
	DateOfIdentification     string                     `gorm:"column:date_of_identification;type:varchar(64)" json:"dateOfIdentification"`
	NumberOfFloors           string                     `gorm:"column:number_of_floors;type:varchar(64)" json:"numberOfFloors"`
	StageOfWork              string                     `gorm:"column:stage_of_work;type:text" json:"stageOfWork"`
	StateOfBuilding          BuildingState              `gorm:"column:state_of_building;type:text;serializer:json" json:"stateOfBuilding"`
	Observations             Observations               `gorm:"column:observations;type:text;serializer:json" json:"observations"`
	ObservationsRichText     string                     `gorm:"column:observations_rich_text;type:text" json:"observationsRichText"`
	ExecutiveSummary         string                     `gorm:"column:executive_summary;type:text" json:"executiveSummary"`
	SiteLocation             string                     `gorm:"column:site_location;type:text" json:"siteLocation"`
	TypeOfBuilding           string                     `gorm:"column:type_of_building;type:text" json:"typeOfBuilding"`
	RecommendationStatus     string                     `gorm:"column:recommendation_status;type:text" json:"recommendationStatus"`
	ChallengesAndLimitations string                     `gorm:"column:challenges_and_limitations;type:text" json:"challengesAndLimitations"`
	Photos                   datatypes.JSONSlice[Photo] `gorm:"column:photos" json:"photos,omitempty"`
}

// Normalize replaces a nil photo list with an empty one so stores never persist JSON null.
func (r *InspectionRecord) Normalize() {
	if r.Photos == nil {
		r.Photos = datatypes.JSONSlice[Photo]{}
	}
}

// Clone returns a copy that shares no photo slice with r.
func (r InspectionRecord) Clone() InspectionRecord {
	out := r
	if r.Photos != nil {
		out.Photos = make(datatypes.JSONSlice[Photo], len(r.Photos))
		copy(out.Photos, r.Photos)
	}
	return out
}

// WithoutPhotos returns a copy with the photo list dropped, as list queries return it.
func (r InspectionRecord) WithoutPhotos() InspectionRecord {
	out := r
	out.Photos = nil
	return out
}

// Draft is an editable, non-final inspection record.
type Draft struct {
	InspectionRecord
	SavedAt Timestamp `gorm:"column:saved_at;index" json:"savedAt"`
}

// TableName specifies the table name for the Draft model
func (Draft) TableName() string {
	return "drafts"
}

// Record exposes the shared record content.
func (d *Draft) Record() *InspectionRecord {
	return &d.InspectionRecord
}

// Stamp exposes the collection-specific timestamp.
func (d *Draft) Stamp() *Timestamp {
	return &d.SavedAt
}

// Report is a finalized inspection record eligible for export.
type Report struct {
	InspectionRecord
	GeneratedAt Timestamp `gorm:"column:generated_at;index" json:"generatedAt"`
}

// TableName specifies the table name for the Report model
func (Report) TableName() string {
	return "reports"
}

// Record exposes the shared record content.
func (r *Report) Record() *InspectionRecord {
	return &r.InspectionRecord
}

// Stamp exposes the collection-specific timestamp.
func (r *Report) Stamp() *Timestamp {
	return &r.GeneratedAt
}
