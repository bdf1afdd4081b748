package entities

import (
	"time"

	"gorm.io/datatypes"
)

type DishIngredient struct {
	Product string  `json:"product"`
	Grams   float64 `json:"grams"`
}

type Dish struct {
	ID          uint                                `gorm:"primaryKey" json:"id"`
	UserID      uint                                `gorm:"index:idx_dishes_user_date;not null" json:"user_id"`
	Date        time.Time                           `gorm:"type:date;index:idx_dishes_user_date;not null" json:"date"`
	Name        string                              `gorm:"size:255;not null" json:"name"`
	Ingredients datatypes.JSONSlice[DishIngredient] `gorm:"type:jsonb" json:"ingredients"`
	Recipe      string                              `gorm:"type:text;not null" json:"recipe"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
	Timestamp
}
