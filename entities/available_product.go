package entities

// AvailableProduct is a catalog entry the menu generator is allowed to use.
type AvailableProduct struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Name   string `gorm:"size:128;uniqueIndex;not null" json:"name"`
	Region string `gorm:"size:64" json:"region"`

	Timestamp
}
