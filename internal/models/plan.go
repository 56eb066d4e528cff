package models

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Plan is a global pricing plan. Price is a decimal string with two places,
// nil for plans without a list price.
type Plan struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"size:20;not null" json:"name"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Price       *string   `gorm:"type:decimal;precision:10;scale:2" json:"price"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (p *Plan) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// AfterFind normalizes the price scale; some drivers hand numerics back as floats.
func (p *Plan) AfterFind(tx *gorm.DB) error {
	if p.Price == nil {
		return nil
	}
	if normalized, err := NormalizePrice(*p.Price); err == nil {
		p.Price = &normalized
	}
	return nil
}

func (Plan) TableName() string {
	return "plans"
}

// NormalizePrice parses a decimal price and formats it with two decimal places.
func NormalizePrice(s string) (string, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return "", err
	}
	return strconv.FormatFloat(v, 'f', 2, 64), nil
}
