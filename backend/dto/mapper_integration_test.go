package dto

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"netquiz/backend/models"
	"netquiz/backend/utils"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	if os.Getenv("NETQUIZ_INTEGRATION") != "1" {
		t.Skip("set NETQUIZ_INTEGRATION=1 to run integration tests")
	}

	dsn := os.Getenv("NETQUIZ_TEST_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5432 user=postgres password=postgres dbname=netquiz_test sslmode=disable"
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := utils.MigrateDB(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	suffix := time.Now().UnixNano()
	user := models.User{
		Username:     fmt.Sprintf("itest_%d", suffix),
		Email:        fmt.Sprintf("itest_%d@example.test", suffix),
		PasswordHash: "x",
		Nick:         "itest",
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return &user
}

func TestPracticeNetworkBindIdempotent(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)

	templateGuid := uuid.NewString()
	template := models.Network{
		Guid:     templateGuid,
		AuthorID: user.ID,
		Network:  `{\"nodes\": [], \"edges\": []}`,
		Title:    "Template",
		IsTask:   true,
	}
	assert.NoError(t, db.Create(&template).Error)

	question := models.Question{Text: "build it", QuestionType: models.QuestionTypePractice}
	assert.NoError(t, db.Create(&question).Error)
	practice := models.PracticeQuestion{
		QuestionID:         question.ID,
		Description:        "connect two hosts",
		AvailableHost:      true,
		StartConfiguration: templateGuid,
	}
	assert.NoError(t, db.Create(&practice).Error)

	session := models.QuizSession{CreatedByID: user.ID, Guid: uuid.NewString(), CreatedOn: time.Now()}
	assert.NoError(t, db.Create(&session).Error)
	sessionQuestion := models.SessionQuestion{QuizSessionID: session.ID, QuestionID: question.ID}
	assert.NoError(t, db.Create(&sessionQuestion).Error)

	first, err := NewPracticeQuestionDto(db, user.ID, &practice, sessionQuestion.ID)
	assert.NoError(t, err)
	assert.NotEqual(t, templateGuid, first.NetworkGuid)
	assert.Equal(t, `{\"nodes\": [], \"edges\": []}`, first.StartConfiguration)

	// Bound guid is persisted on the session question.
	var reloaded models.SessionQuestion
	assert.NoError(t, db.First(&reloaded, sessionQuestion.ID).Error)
	if assert.NotNil(t, reloaded.NetworkGuid) {
		assert.Equal(t, first.NetworkGuid, *reloaded.NetworkGuid)
	}

	// Second render reuses the copy.
	second, err := NewPracticeQuestionDto(db, user.ID, &practice, sessionQuestion.ID)
	assert.NoError(t, err)
	assert.Equal(t, first.NetworkGuid, second.NetworkGuid)

	var copies int64
	assert.NoError(t, db.Model(&models.Network{}).
		Where("author_id = ? AND description = ?", user.ID, "Network copy").
		Count(&copies).Error)
	assert.Equal(t, int64(1), copies)
}

func TestPracticeNetworkBindMissingSessionQuestion(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)

	practice := models.PracticeQuestion{StartConfiguration: uuid.NewString()}
	_, err := NewPracticeQuestionDto(db, user.ID, &practice, 999999999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestQuestionDtoAnswerSetInvariant(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)

	question := models.Question{Text: "pick two", QuestionType: models.QuestionTypeVariable}
	assert.NoError(t, db.Create(&question).Error)
	for i, variant := range []string{"a", "b", "c", "d"} {
		answer := models.Answer{QuestionID: question.ID, Variant: variant, IsCorrect: i < 2}
		assert.NoError(t, db.Create(&answer).Error)
	}
	deleted := models.Answer{QuestionID: question.ID, Variant: "gone", IsDeleted: true, IsCorrect: true}
	assert.NoError(t, db.Create(&deleted).Error)

	for i := 0; i < 5; i++ {
		d, err := NewQuestionDto(db, user.ID, &question, 0)
		assert.NoError(t, err)
		assert.Equal(t, 2, d.CorrectCount)

		variants := map[string]bool{}
		for _, answer := range d.Answers {
			variants[answer["variant"].(string)] = true
		}
		assert.Equal(t, map[string]bool{"a": true, "b": true, "c": true, "d": true}, variants)
	}
}

func TestSectionDtoUnfinishedGating(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)

	cases := []struct {
		isExam        bool
		isRetakeable  bool
		hasUnfinished bool
		want          bool
	}{
		{false, false, false, false},
		{false, false, true, false},
		{false, true, false, false},
		{false, true, true, false},
		{true, false, false, false},
		{true, false, true, true},
		{true, true, false, false},
		{true, true, true, false},
	}

	for i, tc := range cases {
		test := models.Test{
			Name:         fmt.Sprintf("gating %d", i),
			IsRetakeable: tc.isRetakeable,
			CreatedByID:  user.ID,
		}
		assert.NoError(t, db.Create(&test).Error)
		section := models.Section{TestID: test.ID, Name: "s", IsExam: tc.isExam}
		assert.NoError(t, db.Create(&section).Error)

		if tc.hasUnfinished {
			session := models.QuizSession{
				CreatedByID: user.ID,
				SectionID:   section.ID,
				Guid:        uuid.NewString(),
				CreatedOn:   time.Now(),
			}
			assert.NoError(t, db.Create(&session).Error)
			sq := models.SessionQuestion{QuizSessionID: session.ID}
			assert.NoError(t, db.Create(&sq).Error)
		}

		d, err := NewSectionDto(db, user.ID, &section)
		assert.NoError(t, err)
		assert.Equalf(t, tc.want, d.ThereIsUnfinished,
			"case %d: is_exam=%v retakeable=%v unfinished=%v", i, tc.isExam, tc.isRetakeable, tc.hasUnfinished)

		if tc.want {
			assert.NotNil(t, d.LastQuestion)
		} else {
			assert.Nil(t, d.LastQuestion)
		}
	}
}

func TestSectionDtoLastFinishedAttempt(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)

	test := models.Test{Name: "finished attempts", IsRetakeable: true, CreatedByID: user.ID}
	assert.NoError(t, db.Create(&test).Error)
	section := models.Section{TestID: test.ID, Name: "s"}
	assert.NoError(t, db.Create(&section).Error)

	correct := true
	wrong := false

	older := time.Now().Add(-2 * time.Hour)
	newer := time.Now().Add(-1 * time.Hour)

	// Older attempt: one correct answer out of two.
	oldSession := models.QuizSession{
		CreatedByID: user.ID, SectionID: section.ID,
		Guid: uuid.NewString(), CreatedOn: older.Add(-time.Hour), FinishedAt: &older,
	}
	assert.NoError(t, db.Create(&oldSession).Error)
	assert.NoError(t, db.Create(&models.SessionQuestion{QuizSessionID: oldSession.ID, IsCorrect: &correct}).Error)
	assert.NoError(t, db.Create(&models.SessionQuestion{QuizSessionID: oldSession.ID, IsCorrect: &wrong}).Error)

	// Newer attempt: both correct.
	newSession := models.QuizSession{
		CreatedByID: user.ID, SectionID: section.ID,
		Guid: uuid.NewString(), CreatedOn: newer.Add(-time.Hour), FinishedAt: &newer,
	}
	assert.NoError(t, db.Create(&newSession).Error)
	assert.NoError(t, db.Create(&models.SessionQuestion{QuizSessionID: newSession.ID, IsCorrect: &correct}).Error)
	assert.NoError(t, db.Create(&models.SessionQuestion{QuizSessionID: newSession.ID, IsCorrect: &correct}).Error)

	d, err := NewSectionDto(db, user.ID, &section)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), d.SessionsCount)
	if assert.NotNil(t, d.LastCorrectCount) {
		assert.Equal(t, int64(2), *d.LastCorrectCount)
	}
	assert.Equal(t, newSession.Guid, d.SessionGuid)
	assert.False(t, d.ThereIsUnfinished)
}
