package controllers

import (
	"errors"
	"html"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"netquiz/backend/config"
	"netquiz/backend/dto"
	"netquiz/backend/models"
	"netquiz/backend/utils"
)

type QuizController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewQuizController(db *gorm.DB, cfg *config.Config) *QuizController {
	return &QuizController{DB: db, Cfg: cfg}
}

// GetTests returns all tests marked ready, as presentation summaries.
func (qc *QuizController) GetTests(c *fiber.Ctx) error {
	if _, err := utils.ExtractUserIDFromToken(c, qc.Cfg); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var tests []models.Test
	if err := qc.DB.Preload("Sections").Preload("CreatedByUser").
		Where("is_ready = ?", true).
		Find(&tests).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	result := make([]fiber.Map, 0, len(tests))
	for _, d := range dto.ToTestDtoList(tests) {
		result = append(result, d.ToDict())
	}

	return c.JSON(result)
}

// GetTestSections returns per-user section summaries for one test.
func (qc *QuizController) GetTestSections(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, qc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	testID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid test ID")
	}

	var test models.Test
	if err := qc.DB.Preload("Sections.Questions").First(&test, testID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Test not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	dtos, err := dto.ToSectionDtoList(qc.DB, userID, test.Sections)
	if err != nil {
		return utils.InternalServerError(c, "Could not build section summaries")
	}

	result := make([]fiber.Map, 0, len(dtos))
	for _, d := range dtos {
		result = append(result, d.ToDict())
	}

	return c.JSON(result)
}

// StartSession creates a quiz session for a section, with one session
// question per section question.
func (qc *QuizController) StartSession(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, qc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var input struct {
		SectionID uint `json:"section_id"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	var section models.Section
	if err := qc.DB.Preload("Questions").First(&section, input.SectionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Section not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	session := models.QuizSession{
		CreatedByID: userID,
		SectionID:   section.ID,
		Guid:        uuid.NewString(),
		CreatedOn:   time.Now(),
	}

	questionIDs := make([]uint, 0, len(section.Questions))
	err = qc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&session).Error; err != nil {
			return err
		}
		for _, question := range section.Questions {
			sq := models.SessionQuestion{
				QuizSessionID: session.ID,
				QuestionID:    question.ID,
			}
			if err := tx.Create(&sq).Error; err != nil {
				return err
			}
			questionIDs = append(questionIDs, sq.ID)
		}
		return nil
	})
	if err != nil {
		return utils.InternalServerError(c, "Could not create session")
	}

	return utils.Created(c, fiber.Map{
		"session_guid": session.Guid,
		"question_ids": questionIDs,
	})
}

// GetSessionQuestion renders one session question. For practice questions
// this is where the working network is bound on first render.
func (qc *QuizController) GetSessionQuestion(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, qc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	sessionQuestionID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid session question ID")
	}

	var sessionQuestion models.SessionQuestion
	if err := qc.DB.First(&sessionQuestion, sessionQuestionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Session question not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var question models.Question
	if err := qc.DB.Preload("Images").Preload("PracticeQuestion").
		First(&question, sessionQuestion.QuestionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Question not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	questionDto, err := dto.NewQuestionDto(qc.DB, userID, &question, sessionQuestion.ID)
	if err != nil {
		if errors.Is(err, dto.ErrNotFound) {
			return utils.NotFound(c, err.Error())
		}
		return utils.InternalServerError(c, "Could not build question view")
	}

	return c.JSON(questionDto.ToDict())
}

// FinishSession stamps the session as finished.
func (qc *QuizController) FinishSession(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, qc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var session models.QuizSession
	if err := qc.DB.Where("guid = ? AND created_by_id = ?", c.Params("guid"), userID).
		First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Session not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if session.FinishedAt == nil {
		now := time.Now()
		if err := qc.DB.Model(&session).Update("finished_at", now).Error; err != nil {
			return utils.InternalServerError(c, "Could not finish session")
		}
	}

	return c.JSON(fiber.Map{"message": "Session finished"})
}

// GetSessionResult composes the result view of a finished (or running)
// session. Per-question results are withheld until the section's results
// become available.
func (qc *QuizController) GetSessionResult(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, qc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var session models.QuizSession
	if err := qc.DB.Preload("Sessions").
		Where("guid = ? AND created_by_id = ?", c.Params("guid"), userID).
		First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Session not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var section models.Section
	if err := qc.DB.First(&section, session.SectionID).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	var test models.Test
	if err := qc.DB.First(&test, section.TestID).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	answerAvailable := dto.IsAnswerAvailable(&section)

	result := dto.SessionResultDto{
		TestName:        test.Name,
		SectionName:     section.Name,
		PracticeResults: make([]fiber.Map, 0),
		Results:         make([]fiber.Map, 0),
		StartTime:       session.CreatedOn.Format(time.RFC3339),
		TimeSpent:       timeSpent(&session),
		IsExam:          section.IsExam,
		AnswerAvailable: answerAvailable,
		AvailableFrom:   section.ResultsAvailableFrom,
	}

	for _, sq := range session.Sessions {
		var question models.Question
		if err := qc.DB.Preload("PracticeQuestion").First(&question, sq.QuestionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NotFound(c, "Question not found")
			}
			return utils.InternalServerError(c, "Could not query database")
		}

		correct := sq.IsCorrect != nil && *sq.IsCorrect

		if question.QuestionType == models.QuestionTypePractice {
			if question.PracticeQuestion == nil {
				return utils.NotFound(c, "Practice question not found")
			}
			maxScore := dto.MaxScoreFromRequirements(question.PracticeQuestion.Requirements)
			score := 0
			if correct {
				score = maxScore
			}
			if answerAvailable {
				practiceResult := dto.PracticeAnswerResultDto{
					Score:       score,
					Explanation: question.PracticeQuestion.Description,
					MaxScore:    maxScore,
					Hints:       []string{},
				}
				result.PracticeResults = append(result.PracticeResults, practiceResult.ToDict())
			}
			continue
		}

		result.TheoryCount++
		if correct {
			result.TheoryCorrect++
		}
		if answerAvailable {
			answerResult := dto.AnswerResultDto{
				Explanation: html.UnescapeString(question.Text),
				IsCorrect:   correct,
			}
			result.Results = append(result.Results, answerResult.ToDict())
		}
	}

	return c.JSON(result.ToDict())
}

func timeSpent(session *models.QuizSession) string {
	end := time.Now()
	if session.FinishedAt != nil {
		end = *session.FinishedAt
	}
	return end.Sub(session.CreatedOn).Round(time.Second).String()
}
