package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StringList stores an ordered list of strings as a JSON array column
type StringList []string

// Value implements the driver.Valuer interface
func (a StringList) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal([]string(a))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements the sql.Scanner interface
func (a *StringList) Scan(value interface{}) error {
	if value == nil {
		*a = StringList{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into StringList", value)
	}

	return json.Unmarshal(bytes, a)
}

// Recipe is the single persisted entity of the gallery
type Recipe struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string     `gorm:"size:255;not null;uniqueIndex" json:"title"`
	ImageURL    string     `gorm:"size:1024;not null" json:"imageUrl"`
	Ingredients StringList `gorm:"type:jsonb;not null" json:"ingredients"`
	Preparation string     `gorm:"type:text;not null" json:"preparation"`
	Category    string     `gorm:"size:100;not null;index" json:"category"`
	Subcategory string     `gorm:"size:100" json:"subcategory,omitempty"`
	IsHealthy   bool       `gorm:"not null;default:false" json:"isHealthy"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// BeforeCreate assigns the identifier
func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Ingredients == nil {
		r.Ingredients = StringList{}
	}
	return nil
}

// BeforeSave trims the free-text fields the way the store schema declares them
func (r *Recipe) BeforeSave(tx *gorm.DB) error {
	r.Title = strings.TrimSpace(r.Title)
	r.Preparation = strings.TrimSpace(r.Preparation)
	return nil
}

var stepMarker = regexp.MustCompile(`\d+\.`)

// Steps splits the preparation text on "N." markers and drops blank pieces.
// Incidental "N." substrings inside a step split it too.
func (r *Recipe) Steps() []string {
	var steps []string
	for _, piece := range stepMarker.Split(r.Preparation, -1) {
		if piece = strings.TrimSpace(piece); piece != "" {
			steps = append(steps, piece)
		}
	}
	return steps
}
