package models

// User represents a breeder account
// DB: users
type User struct {
	BaseModel
	Email            string  `gorm:"column:email;size:255;not null;uniqueIndex:users_email_key" json:"email"`
	BreederName      *string `gorm:"column:breeder_name;size:255" json:"breeder_name,omitempty"`
	ProfileImagePath *string `gorm:"column:profile_image_path;type:text" json:"profile_image_path,omitempty"`
	IsActive         bool    `gorm:"column:is_active;not null;default:true" json:"is_active"`

	// Relations
	Locations []Location `gorm:"foreignKey:UserID" json:"locations,omitempty"`
}

func (User) TableName() string {
	return "users"
}
