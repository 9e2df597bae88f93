package models

import (
	"time"

	"github.com/lib/pq"
)

// GradeLevels is the ordered set of grade tokens used across the curriculum:
// primary P1-P7, secondary S1-S6 and University.
var GradeLevels = []string{
	"P1", "P2", "P3", "P4", "P5", "P6", "P7",
	"S1", "S2", "S3", "S4", "S5", "S6",
	"University",
}

func IsValidGradeLevel(level string) bool {
	for _, g := range GradeLevels {
		if g == level {
			return true
		}
	}
	return false
}

type Subject struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Name        string         `json:"name" gorm:"not null;size:255"`
	Code        string         `json:"code" gorm:"uniqueIndex;not null;size:50"`
	Description *string        `json:"description" gorm:"type:text"`
	GradeLevels pq.StringArray `json:"grade_levels" gorm:"type:text[];not null"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`

	Topics []Topic `json:"-" gorm:"foreignKey:SubjectID;constraint:OnDelete:CASCADE"`
}

func (Subject) TableName() string {
	return "subjects"
}

// Topic is only read through aggregate counts on its subject.
type Topic struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	SubjectID uint      `json:"subject_id" gorm:"index;not null"`
	Name      string    `json:"name" gorm:"not null;size:255"`
	CreatedAt time.Time `json:"created_at"`
}

func (Topic) TableName() string {
	return "topics"
}

// SubjectSummary is a subject with the number of topics attached to it.
type SubjectSummary struct {
	Subject
	TopicCount int64 `json:"topic_count"`
}
