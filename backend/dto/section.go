package dto

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"netquiz/backend/models"
)

// Result availability is always judged in this zone, regardless of how the
// timestamp column was stored.
var moscowTZ = mustLoadLocation("Europe/Moscow")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

// CalculateQuestionCount returns the displayed question count for a section.
// Sections generated from a meta description carry per-category counts as a
// JSON object; those are summed. Malformed JSON counts as zero. Sections
// without a meta description fall back to their literal question list.
func CalculateQuestionCount(section *models.Section) int {
	if section.MetaDescription != "" {
		var meta map[string]int
		if err := json.Unmarshal([]byte(section.MetaDescription), &meta); err != nil {
			return 0
		}
		total := 0
		for _, count := range meta {
			total += count
		}
		return total
	}
	return len(section.Questions)
}

// IsAnswerAvailable reports whether section results may be shown right now.
// A section with no threshold is always available.
func IsAnswerAvailable(section *models.Section) bool {
	return isAnswerAvailableAt(section, time.Now())
}

func isAnswerAvailableAt(section *models.Section, now time.Time) bool {
	if section == nil || section.ResultsAvailableFrom == nil {
		return true
	}

	// The column is stored without a zone, so the wall clock is read as
	// Moscow time.
	t := *section.ResultsAvailableFrom
	resultsTime := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), moscowTZ)

	return !resultsTime.After(now.In(moscowTZ))
}

// SectionDto is the per-user section summary: display fields plus the
// requesting user's attempt history for the section.
type SectionDto struct {
	SectionID            uint
	SectionName          string
	Timer                int
	Description          string
	QuestionCount        int
	IsExam               bool
	AnswerAvailable      bool
	ResultsAvailableFrom *time.Time
	SessionsCount        int64
	LastCorrectCount     *int64
	SessionGuid          string
	ThereIsUnfinished    bool
	LastQuestion         *uint
}

// NewSectionDto builds the summary for one section as seen by userID.
func NewSectionDto(db *gorm.DB, userID uint, section *models.Section) (*SectionDto, error) {
	d := &SectionDto{
		SectionID:            section.ID,
		SectionName:          section.Name,
		Timer:                section.Timer,
		Description:          section.Description,
		QuestionCount:        CalculateQuestionCount(section),
		IsExam:               section.IsExam,
		AnswerAvailable:      IsAnswerAvailable(section),
		ResultsAvailableFrom: section.ResultsAvailableFrom,
	}

	if err := db.Model(&models.QuizSession{}).
		Where("created_by_id = ? AND section_id = ?", userID, section.ID).
		Count(&d.SessionsCount).Error; err != nil {
		return nil, err
	}

	// Most recently finished attempt, if any.
	var last models.QuizSession
	err := db.Where("created_by_id = ? AND section_id = ? AND finished_at IS NOT NULL", userID, section.ID).
		Order("finished_at DESC").
		First(&last).Error
	if err == nil {
		var correct int64
		if err := db.Model(&models.SessionQuestion{}).
			Where("quiz_session_id = ? AND is_correct = ?", last.ID, true).
			Count(&correct).Error; err != nil {
			return nil, err
		}
		d.LastCorrectCount = &correct
		if last.Guid != "" {
			d.SessionGuid = last.Guid
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var test models.Test
	if err := db.First(&test, section.TestID).Error; err != nil {
		return nil, err
	}

	// An unfinished attempt only blocks a new one on non-retakeable exams.
	var unfinished models.QuizSession
	err = db.Where("created_by_id = ? AND section_id = ? AND finished_at IS NULL", userID, section.ID).
		Order("created_on DESC").
		First(&unfinished).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return d, nil
		}
		return nil, err
	}

	if section.IsExam && !test.IsRetakeable {
		d.ThereIsUnfinished = true

		var unanswered models.SessionQuestion
		err := db.Where("quiz_session_id = ? AND is_correct IS NULL", unfinished.ID).
			Order("id ASC").
			First(&unanswered).Error
		if err == nil {
			id := unanswered.ID
			d.LastQuestion = &id
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	return d, nil
}

func (d *SectionDto) ToDict() fiber.Map {
	data := fiber.Map{
		"section_id":             d.SectionID,
		"section_name":           d.SectionName,
		"timer":                  d.Timer,
		"description":            d.Description,
		"question_count":         d.QuestionCount,
		"is_exam":                d.IsExam,
		"answer_available":       d.AnswerAvailable,
		"results_available_from": d.ResultsAvailableFrom,
		"sessions_count":         d.SessionsCount,
		"there_is_unfinished":    d.ThereIsUnfinished,
	}
	if d.LastCorrectCount != nil {
		data["last_correct_count"] = *d.LastCorrectCount
	}
	if d.SessionGuid != "" {
		data["session_guid"] = d.SessionGuid
	}
	if d.LastQuestion != nil {
		data["last_question"] = *d.LastQuestion
	}
	return data
}

// ToSectionDtoList maps sections to summaries, preserving input order.
func ToSectionDtoList(db *gorm.DB, userID uint, sections []models.Section) ([]*SectionDto, error) {
	dtos := make([]*SectionDto, 0, len(sections))
	for i := range sections {
		d, err := NewSectionDto(db, userID, &sections[i])
		if err != nil {
			return nil, err
		}
		dtos = append(dtos, d)
	}
	return dtos, nil
}
