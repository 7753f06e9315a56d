package models

import (
	"gorm.io/gorm"
)

// Network is a stored network topology. Rows with IsTask=true are reusable
// task templates; per-attempt copies are owned by the attempting user and
// referenced from SessionQuestion.NetworkGuid.
type Network struct {
	gorm.Model
	Guid        string `gorm:"uniqueIndex;not null"`
	AuthorID    uint
	Network     string // serialized topology graph
	Title       string
	Description string
	PreviewURI  string
	IsTask      bool
}
