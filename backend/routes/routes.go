package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"netquiz/backend/config"
	"netquiz/backend/controllers"
	"netquiz/backend/middleware"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Auth routes
	authController := controllers.NewAuthController(db, cfg)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)

	authMiddleware := middleware.AuthMiddleware(cfg)

	// Quiz routes
	quizController := controllers.NewQuizController(db, cfg)
	tests := app.Group("/api/tests", authMiddleware)
	tests.Get("/", quizController.GetTests)
	tests.Get("/:id/sections", quizController.GetTestSections)

	sessions := app.Group("/api/sessions", authMiddleware)
	sessions.Post("/", quizController.StartSession)
	sessions.Get("/questions/:id", quizController.GetSessionQuestion)
	sessions.Post("/:guid/finish", quizController.FinishSession)
	sessions.Get("/:guid/result", quizController.GetSessionResult)

	// Editor routes
	editorController := controllers.NewEditorController(db, cfg)
	editor := app.Group("/api/editor", authMiddleware)
	editor.Post("/tests", editorController.CreateTest)
	editor.Post("/tests/:id/sections", editorController.AddSection)
	editor.Get("/sections/:id/questions", editorController.GetSectionQuestions)
	editor.Post("/sections/:id/questions", editorController.AddQuestion)
}
