package dto

import (
	"fmt"
	"html"
	"math/rand"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"netquiz/backend/models"
)

var questionTypeLabels = map[int]string{
	models.QuestionTypePractice: "practice",
	models.QuestionTypeVariable: "variable",
	models.QuestionTypeSorting:  "sorting",
	models.QuestionTypeMatching: "matching",
}

// QuestionTypeLabel maps a stored type code to its label. Unknown codes map
// to an empty string.
func QuestionTypeLabel(questionType int) string {
	return questionTypeLabels[questionType]
}

// AnswerDto is one presentable answer. Matching questions populate the
// left/right pair, every other type populates the single variant.
type AnswerDto struct {
	Variant *string
	Left    *string
	Right   *string
}

func NewAnswerDto(questionType string, answer *models.Answer) *AnswerDto {
	if questionType == "matching" {
		return &AnswerDto{Left: &answer.Left, Right: &answer.Right}
	}
	return &AnswerDto{Variant: &answer.Variant}
}

func (d *AnswerDto) ToDict() fiber.Map {
	data := fiber.Map{}
	if d.Variant != nil {
		data["variant"] = *d.Variant
	}
	if d.Left != nil {
		data["left"] = *d.Left
	}
	if d.Right != nil {
		data["right"] = *d.Right
	}
	return data
}

// QuestionDto is one question as rendered inside a quiz session. Practice
// questions carry a bound network instead of an answer list.
type QuestionDto struct {
	QuestionType     string
	QuestionText     string
	CorrectCount     int
	Images           []string
	PracticeQuestion fiber.Map
	Answers          []fiber.Map
}

// NewQuestionDto assembles the view of question for the session question
// identified by sessionQuestionID, on behalf of userID.
func NewQuestionDto(db *gorm.DB, userID uint, question *models.Question, sessionQuestionID uint) (*QuestionDto, error) {
	d := &QuestionDto{
		QuestionType: QuestionTypeLabel(question.QuestionType),
		QuestionText: html.UnescapeString(question.Text),
		Images:       make([]string, 0, len(question.Images)),
	}
	for _, img := range question.Images {
		d.Images = append(d.Images, img.FilePath)
	}

	switch d.QuestionType {
	case "practice":
		if question.PracticeQuestion == nil {
			return nil, fmt.Errorf("question %d: practice record: %w", question.ID, ErrNotFound)
		}
		practice, err := NewPracticeQuestionDto(db, userID, question.PracticeQuestion, sessionQuestionID)
		if err != nil {
			return nil, err
		}
		d.PracticeQuestion = practice.ToDict()
		return d, nil
	case "":
		// Unrecognized type code: render no answers at all.
		return d, nil
	}

	var answers []models.Answer
	if err := db.Where("question_id = ? AND is_deleted = ?", question.ID, false).
		Find(&answers).Error; err != nil {
		return nil, err
	}

	if d.QuestionType == "variable" {
		for _, answer := range answers {
			if answer.IsCorrect {
				d.CorrectCount++
			}
		}
	}

	d.Answers = make([]fiber.Map, 0, len(answers))
	for i := range answers {
		d.Answers = append(d.Answers, NewAnswerDto(d.QuestionType, &answers[i]).ToDict())
	}

	// Fresh order on every render.
	rand.Shuffle(len(d.Answers), func(i, j int) {
		d.Answers[i], d.Answers[j] = d.Answers[j], d.Answers[i]
	})

	return d, nil
}

func (d *QuestionDto) ToDict() fiber.Map {
	data := fiber.Map{
		"question_type": d.QuestionType,
		"question_text": d.QuestionText,
		"correct_count": d.CorrectCount,
		"images":        d.Images,
	}
	switch {
	case d.PracticeQuestion != nil:
		data["practice_question"] = d.PracticeQuestion
	case d.QuestionType != "":
		data["answers"] = d.Answers
	}
	return data
}
