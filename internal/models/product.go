package models

import (
	"encoding/json"

	"gorm.io/gorm"
)

// Product represents a product in the store. Sizes, Colors and Categories
// are stored as JSON arrays in a single column each.
type Product struct {
	ID          string     `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name        string     `json:"name" validate:"required,min=3,max=100"`
	Description string     `json:"description" validate:"omitempty,max=500"`
	Price       float64    `json:"price" validate:"required,gt=0"` // base currency (NGN)
	Stock       int        `json:"stock" validate:"gte=0"`
	Sizes       StringList `json:"sizes" gorm:"type:text"`
	Colors      StringList `json:"colors" gorm:"type:text"`
	Categories  StringList `json:"categories" gorm:"type:text"`
	// Category is the retired single-category column still present on old
	// rows; NormalizeCategories folds it into Categories on read.
	Category   string `json:"-" gorm:"type:varchar(100)"`
	ImageURL   string `json:"image_url" validate:"omitempty,url"`
	gorm.Model        // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// NormalizeCategories coerces a legacy single-category row into the
// one-element list shape the rest of the code expects.
func (p *Product) NormalizeCategories() {
	if len(p.Categories) == 0 && p.Category != "" {
		p.Categories = StringList{p.Category}
	}
}

// StringList is a []string persisted as a JSON text column.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	}
	*l = nil
	return nil
}
