package models

// Location represents a breeding location on the map
// DB: locations
type Location struct {
	BaseModel
	UserID       uint     `gorm:"column:user_id;not null;index:idx_loc_user" json:"user_id"`
	Name         *string  `gorm:"column:name;size:255" json:"name,omitempty"`
	LocationType string   `gorm:"column:location_type;size:20;not null;default:user;index:idx_loc_type" json:"location_type"`
	Lat          *float64 `gorm:"column:lat;type:double precision;index:idx_loc_lat" json:"lat,omitempty"`
	Lng          *float64 `gorm:"column:lng;type:double precision;index:idx_loc_lng" json:"lng,omitempty"`
	ZipCode      *string  `gorm:"column:zip_code;size:10" json:"zip_code,omitempty"`
	IsPublished  bool     `gorm:"column:is_published;not null;default:false" json:"is_published"`

	// Relations
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Pets []Pet `gorm:"foreignKey:LocationID" json:"pets,omitempty"`
}

func (Location) TableName() string {
	return "locations"
}
