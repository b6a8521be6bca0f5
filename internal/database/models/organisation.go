package models

type Organisation struct {
	Base
	Name string `gorm:"not null" json:"name"`

	// Relationships
	Users     []User     `gorm:"foreignKey:OrganisationID" json:"-"`
	Employees []Employee `gorm:"foreignKey:OrganisationID" json:"-"`
	Teams     []Team     `gorm:"foreignKey:OrganisationID" json:"-"`
}

func (Organisation) TableName() string {
	return "organisations"
}
