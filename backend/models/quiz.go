package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Test struct {
	gorm.Model
	Name          string
	Description   string
	IsRetakeable  bool
	IsReady       bool
	CreatedByID   uint
	CreatedByUser User `gorm:"foreignKey:CreatedByID"`
	Sections      []Section
}

type Section struct {
	gorm.Model
	TestID               uint
	Name                 string
	Timer                int    // seconds allotted, 0 = no limit
	Description          string
	MetaDescription      string // JSON object: category -> question count
	IsExam               bool
	ResultsAvailableFrom *time.Time
	Questions            []Question
}

// Question type codes. Anything else renders as an unknown type.
const (
	QuestionTypePractice = 0
	QuestionTypeVariable = 1
	QuestionTypeSorting  = 2
	QuestionTypeMatching = 3
)

type Question struct {
	gorm.Model
	SectionID        uint
	Text             string // entity-escaped HTML
	QuestionType     int
	Images           []QuestionImage
	PracticeQuestion *PracticeQuestion
}

type QuestionImage struct {
	gorm.Model
	QuestionID uint
	FilePath   string
}

type Answer struct {
	gorm.Model
	QuestionID uint
	Variant    string // free-form/sorting choice text
	Left       string // matching pair, left half
	Right      string // matching pair, right half
	IsCorrect  bool
	IsDeleted  bool `gorm:"default:false"`
}

type PracticeQuestion struct {
	gorm.Model
	QuestionID         uint
	Description        string
	AvailableHost      bool
	AvailableL1Hub     bool
	AvailableServer    bool
	AvailableL2Switch  bool
	AvailableL3Router  bool
	StartConfiguration string         // guid of the template network
	Requirements       datatypes.JSON // grading requirement tree with "points" leaves
}

type QuizSession struct {
	gorm.Model
	CreatedByID uint
	SectionID   uint
	Guid        string
	CreatedOn   time.Time
	FinishedAt  *time.Time
	Sessions    []SessionQuestion
}

type SessionQuestion struct {
	gorm.Model
	QuizSessionID uint
	QuestionID    uint
	IsCorrect     *bool   // nil until answered
	NetworkGuid   *string // per-attempt network copy, bound on first render
}
