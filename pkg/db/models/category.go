package models

// Category groups materials; ID is the slug used by catalog filters.
type Category struct {
	ID       string `gorm:"column:id;primaryKey"`
	Name     string `gorm:"column:name;not null"`
	Icon     string `gorm:"column:icon;not null;default:''"`
	Position int    `gorm:"column:position;not null;default:0"`
}
