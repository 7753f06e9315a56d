package dto

import (
	"reflect"
	"time"

	"github.com/gofiber/fiber/v2"

	"netquiz/backend/models"
)

type TestDto struct {
	TestID       uint
	TestName     string
	AuthorName   string
	Description  string
	IsRetakeable bool
	IsReady      bool
	SectionCount int
}

// ToTestDtoList maps tests to their summaries, preserving input order.
func ToTestDtoList(tests []models.Test) []*TestDto {
	dtos := make([]*TestDto, 0, len(tests))
	for i := range tests {
		test := &tests[i]
		dtos = append(dtos, &TestDto{
			TestID:       test.ID,
			TestName:     test.Name,
			AuthorName:   test.CreatedByUser.Nick,
			Description:  test.Description,
			IsRetakeable: test.IsRetakeable,
			IsReady:      test.IsReady,
			SectionCount: len(test.Sections),
		})
	}
	return dtos
}

func (d *TestDto) ToDict() fiber.Map {
	return fiber.Map{
		"test_id":       d.TestID,
		"test_name":     d.TestName,
		"author_name":   d.AuthorName,
		"description":   d.Description,
		"is_retakeable": d.IsRetakeable,
		"is_ready":      d.IsReady,
		"section_count": d.SectionCount,
	}
}

type QuestionForEditorDto struct {
	QuestionID   uint
	QuestionText string
}

func ToQuestionForEditorDtoList(questions []models.Question) []*QuestionForEditorDto {
	dtos := make([]*QuestionForEditorDto, 0, len(questions))
	for i := range questions {
		dtos = append(dtos, &QuestionForEditorDto{
			QuestionID:   questions[i].ID,
			QuestionText: questions[i].Text,
		})
	}
	return dtos
}

func (d *QuestionForEditorDto) ToDict() fiber.Map {
	return fiber.Map{
		"question_id":   d.QuestionID,
		"question_text": d.QuestionText,
	}
}

type PracticeAnswerResultDto struct {
	Score       int
	Explanation string
	MaxScore    int
	Hints       []string
}

func (d *PracticeAnswerResultDto) ToDict() fiber.Map {
	return fiber.Map{
		"score":       d.Score,
		"explanation": d.Explanation,
		"max_score":   d.MaxScore,
		"hints":       d.Hints,
	}
}

type AnswerResultDto struct {
	Explanation interface{}
	IsCorrect   bool
}

func (d *AnswerResultDto) ToDict() fiber.Map {
	explanation := d.Explanation
	// A list-valued explanation ships wrapped in one extra array level.
	// The frontend depends on this shape; keep it.
	if explanation != nil && reflect.TypeOf(explanation).Kind() == reflect.Slice {
		explanation = []interface{}{d.Explanation}
	}
	return fiber.Map{
		"explanation": explanation,
		"is_correct":  d.IsCorrect,
	}
}

type SessionResultDto struct {
	TestName        string
	SectionName     string
	TheoryCorrect   int
	TheoryCount     int
	PracticeResults []fiber.Map
	Results         []fiber.Map
	StartTime       string
	TimeSpent       string
	IsExam          bool
	AnswerAvailable bool
	AvailableFrom   *time.Time
}

func (d *SessionResultDto) ToDict() fiber.Map {
	return fiber.Map{
		"test_name":              d.TestName,
		"section_name":           d.SectionName,
		"theory_correct":         d.TheoryCorrect,
		"theory_count":           d.TheoryCount,
		"practice_results":       d.PracticeResults,
		"results":                d.Results,
		"start_time":             d.StartTime,
		"time_spent":             d.TimeSpent,
		"is_exam":                d.IsExam,
		"answer_available":       d.AnswerAvailable,
		"results_available_from": d.AvailableFrom,
	}
}
