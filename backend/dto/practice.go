package dto

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"netquiz/backend/models"
)

// PracticeQuestionDto describes a practice question together with the network
// the user works on for this attempt.
type PracticeQuestionDto struct {
	Description        string
	AvailableHost      bool
	AvailableL1Hub     bool
	AvailableServer    bool
	AvailableL2Switch  bool
	AvailableL3Router  bool
	StartConfiguration string
	NetworkGuid        string
}

// NewPracticeQuestionDto resolves the network for one session question. The
// first render copies the template network into a row owned by userID and
// binds its guid to the session question; later renders reuse that copy.
// The bind runs under a row lock so two concurrent first renders cannot each
// create a copy.
func NewPracticeQuestionDto(db *gorm.DB, userID uint, practice *models.PracticeQuestion, sessionQuestionID uint) (*PracticeQuestionDto, error) {
	d := &PracticeQuestionDto{
		Description:       practice.Description,
		AvailableHost:     practice.AvailableHost,
		AvailableL1Hub:    practice.AvailableL1Hub,
		AvailableServer:   practice.AvailableServer,
		AvailableL2Switch: practice.AvailableL2Switch,
		AvailableL3Router: practice.AvailableL3Router,
	}

	var netCopy models.Network
	err := db.Transaction(func(tx *gorm.DB) error {
		var sessionQuestion models.SessionQuestion
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&sessionQuestion, sessionQuestionID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("session question %d: %w", sessionQuestionID, ErrNotFound)
			}
			return err
		}

		if sessionQuestion.NetworkGuid != nil && *sessionQuestion.NetworkGuid != "" {
			err := tx.Where("guid = ?", *sessionQuestion.NetworkGuid).First(&netCopy).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("network %s: %w", *sessionQuestion.NetworkGuid, ErrNotFound)
			}
			return err
		}

		var template models.Network
		err = tx.Where("guid = ?", practice.StartConfiguration).First(&template).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("template network %s: %w", practice.StartConfiguration, ErrNotFound)
			}
			return err
		}

		netCopy = models.Network{
			Guid:        uuid.NewString(),
			AuthorID:    userID,
			Network:     template.Network,
			Title:       template.Title,
			Description: "Network copy",
			PreviewURI:  template.PreviewURI,
			IsTask:      true,
		}
		if err := tx.Create(&netCopy).Error; err != nil {
			return err
		}

		return tx.Model(&sessionQuestion).Update("network_guid", netCopy.Guid).Error
	})
	if err != nil {
		return nil, err
	}

	d.StartConfiguration = escapeNetworkPayload(netCopy.Network)
	d.NetworkGuid = netCopy.Guid
	return d, nil
}

// The serialized network is embedded as a quoted string on the client, so
// inner double quotes must arrive escaped exactly once.
func escapeNetworkPayload(network string) string {
	unescaped := strings.ReplaceAll(network, `\"`, `"`)
	return strings.ReplaceAll(unescaped, `"`, `\"`)
}

func (d *PracticeQuestionDto) ToDict() fiber.Map {
	return fiber.Map{
		"description":         d.Description,
		"available_host":      d.AvailableHost,
		"available_l1_hub":    d.AvailableL1Hub,
		"available_server":    d.AvailableServer,
		"available_l2_switch": d.AvailableL2Switch,
		"available_l3_router": d.AvailableL3Router,
		"start_configuration": d.StartConfiguration,
		"network_guid":        d.NetworkGuid,
	}
}
