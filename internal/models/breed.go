package models

// Breed represents a breed catalog entry
// DB: breeds
type Breed struct {
	BaseModel
	Name  string  `gorm:"column:name;size:255;not null;uniqueIndex:breeds_name_key" json:"name"`
	Code  *string `gorm:"column:code;size:50" json:"code,omitempty"`
	Group *string `gorm:"column:group;size:100" json:"group,omitempty"`
}

func (Breed) TableName() string {
	return "breeds"
}

// Pet represents an animal registered at a breeding location
// DB: pets
type Pet struct {
	BaseModel
	Name       string `gorm:"column:name;size:255;not null" json:"name"`
	UserID     uint   `gorm:"column:user_id;not null;index:idx_pet_user" json:"user_id"`
	BreedID    *uint  `gorm:"column:breed_id;index:idx_pet_breed" json:"breed_id,omitempty"`
	LocationID *uint  `gorm:"column:location_id;index:idx_pet_location" json:"location_id,omitempty"`
	IsDeleted  bool   `gorm:"column:is_deleted;not null;default:false" json:"is_deleted"`

	// Relations
	Breed    *Breed    `gorm:"foreignKey:BreedID" json:"breed,omitempty"`
	Location *Location `gorm:"foreignKey:LocationID" json:"location,omitempty"`
}

func (Pet) TableName() string {
	return "pets"
}
