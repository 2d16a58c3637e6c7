package models

import (
	"fmt"
	"strings"
	"time"
)

const (
	MaxTitleLength = 200
)

// SnowflakeData is the placeholder record exposed by the CRUD endpoints.
type SnowflakeData struct {
	ID          uint      `json:"id" gorm:"primarykey"`
	Title       string    `json:"title" gorm:"size:200;not null"`
	Description string    `json:"description" gorm:"type:text;not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name for the SnowflakeData model
func (SnowflakeData) TableName() string {
	return "snowflake_data_snowflakedata"
}

// String returns the record title
func (d SnowflakeData) String() string {
	return d.Title
}

// ValidationError describes an invalid field value.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// Validate checks the required fields of the record
func (d *SnowflakeData) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return &ValidationError{Field: "title", Message: "is required"}
	}
	if len([]rune(d.Title)) > MaxTitleLength {
		return &ValidationError{Field: "title", Message: fmt.Sprintf("must be at most %d characters", MaxTitleLength)}
	}
	if strings.TrimSpace(d.Description) == "" {
		return &ValidationError{Field: "description", Message: "is required"}
	}
	return nil
}
