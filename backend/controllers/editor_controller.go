package controllers

import (
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"netquiz/backend/config"
	"netquiz/backend/dto"
	"netquiz/backend/models"
	"netquiz/backend/utils"
)

type EditorController struct {
	DB       *gorm.DB
	Cfg      *config.Config
	Validate *validator.Validate
}

func NewEditorController(db *gorm.DB, cfg *config.Config) *EditorController {
	return &EditorController{DB: db, Cfg: cfg, Validate: validator.New()}
}

func validationDetails(err error) map[string]string {
	details := map[string]string{}
	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) {
		for _, fe := range fieldErrors {
			details[fe.Field()] = fe.Tag()
		}
	}
	return details
}

// CreateTest creates a test owned by the current user.
func (ec *EditorController) CreateTest(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, ec.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var input struct {
		Name         string `json:"name" validate:"required"`
		Description  string `json:"description"`
		IsRetakeable bool   `json:"is_retakeable"`
		IsReady      bool   `json:"is_ready"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := ec.Validate.Struct(input); err != nil {
		return utils.ValidationError(c, validationDetails(err))
	}

	test := models.Test{
		Name:         input.Name,
		Description:  input.Description,
		IsRetakeable: input.IsRetakeable,
		IsReady:      input.IsReady,
		CreatedByID:  userID,
	}
	if err := ec.DB.Create(&test).Error; err != nil {
		return utils.InternalServerError(c, "Could not create test")
	}

	return utils.Created(c, fiber.Map{"test_id": test.ID})
}

// loadOwnedTest fetches a test and checks the current user authored it.
func (ec *EditorController) loadOwnedTest(c *fiber.Ctx, testID int, userID uint) (*models.Test, error) {
	var test models.Test
	if err := ec.DB.First(&test, testID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound(c, "Test not found")
		}
		return nil, utils.InternalServerError(c, "Could not query database")
	}
	if test.CreatedByID != userID {
		return nil, utils.Forbidden(c, "You don't have permission to edit this test")
	}
	return &test, nil
}

// AddSection adds a section to a test owned by the current user.
func (ec *EditorController) AddSection(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, ec.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	testID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid test ID")
	}

	var input struct {
		Name                 string     `json:"name" validate:"required"`
		Timer                int        `json:"timer" validate:"gte=0"`
		Description          string     `json:"description"`
		MetaDescription      string     `json:"meta_description"`
		IsExam               bool       `json:"is_exam"`
		ResultsAvailableFrom *time.Time `json:"results_available_from"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := ec.Validate.Struct(input); err != nil {
		return utils.ValidationError(c, validationDetails(err))
	}

	test, respErr := ec.loadOwnedTest(c, testID, userID)
	if test == nil {
		return respErr
	}

	section := models.Section{
		TestID:               test.ID,
		Name:                 input.Name,
		Timer:                input.Timer,
		Description:          input.Description,
		MetaDescription:      input.MetaDescription,
		IsExam:               input.IsExam,
		ResultsAvailableFrom: input.ResultsAvailableFrom,
	}
	if err := ec.DB.Create(&section).Error; err != nil {
		return utils.InternalServerError(c, "Could not create section")
	}

	return utils.Created(c, fiber.Map{"section_id": section.ID})
}

// GetSectionQuestions lists a section's questions in editor shape.
func (ec *EditorController) GetSectionQuestions(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, ec.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	sectionID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid section ID")
	}

	var section models.Section
	if err := ec.DB.First(&section, sectionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Section not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	test, respErr := ec.loadOwnedTest(c, int(section.TestID), userID)
	if test == nil {
		return respErr
	}

	var questions []models.Question
	if err := ec.DB.Where("section_id = ?", section.ID).Find(&questions).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	result := make([]fiber.Map, 0, len(questions))
	for _, d := range dto.ToQuestionForEditorDtoList(questions) {
		result = append(result, d.ToDict())
	}

	return c.JSON(result)
}

// AddQuestion adds a question with its answers to a section.
func (ec *EditorController) AddQuestion(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, ec.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	sectionID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid section ID")
	}

	var input struct {
		Text         string `json:"text" validate:"required"`
		QuestionType int    `json:"question_type" validate:"gte=0,lte=3"`
		Answers      []struct {
			Variant   string `json:"variant"`
			Left      string `json:"left"`
			Right     string `json:"right"`
			IsCorrect bool   `json:"is_correct"`
		} `json:"answers" validate:"dive"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := ec.Validate.Struct(input); err != nil {
		return utils.ValidationError(c, validationDetails(err))
	}

	var section models.Section
	if err := ec.DB.First(&section, sectionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Section not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	test, respErr := ec.loadOwnedTest(c, int(section.TestID), userID)
	if test == nil {
		return respErr
	}

	question := models.Question{
		SectionID:    section.ID,
		Text:         input.Text,
		QuestionType: input.QuestionType,
	}
	err = ec.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&question).Error; err != nil {
			return err
		}
		for _, a := range input.Answers {
			answer := models.Answer{
				QuestionID: question.ID,
				Variant:    a.Variant,
				Left:       a.Left,
				Right:      a.Right,
				IsCorrect:  a.IsCorrect,
			}
			if err := tx.Create(&answer).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return utils.InternalServerError(c, "Could not create question")
	}

	return utils.Created(c, fiber.Map{"question_id": question.ID})
}
