package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DeveloperProperty is an off-chain property record owned by a developer partner.
type DeveloperProperty struct {
	PropertyID       uuid.UUID      `gorm:"column:property_id;type:uuid;primaryKey" json:"property_id"`
	DeveloperAddress string         `gorm:"column:developer_address;not null;index" json:"developer_address"`
	PropertyName     string         `gorm:"column:property_name;not null" json:"property_name"`
	PropertyType     string         `gorm:"column:property_type" json:"property_type"`
	AddressStreet    string         `gorm:"column:address_street" json:"address_street"`
	AddressTownCity  string         `gorm:"column:address_town_city" json:"address_town_city"`
	AddressPostcode  string         `gorm:"column:address_postcode" json:"address_postcode"`
	Country          string         `gorm:"column:country" json:"country"`
	PropertyPrice    float64        `gorm:"column:property_price;type:decimal(18,2)" json:"property_price"`
	NumberOfTokens   int64          `gorm:"column:number_of_tokens" json:"number_of_tokens"`
	Status           string         `gorm:"column:status;type:varchar(20);default:'draft'" json:"status"`
	Metadata         datatypes.JSON `gorm:"column:metadata;type:json" json:"metadata"`
	Files            datatypes.JSON `gorm:"column:files;type:json" json:"files"`
	CreatedAt        time.Time      `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt        time.Time      `gorm:"column:updatedAt" json:"updatedAt"`
}

func (DeveloperProperty) TableName() string {
	return "DeveloperProperties"
}

// BeforeCreate sets property_id if not already set (DBs without default uuid).
func (p *DeveloperProperty) BeforeCreate(tx *gorm.DB) error {
	if p.PropertyID == uuid.Nil {
		p.PropertyID = uuid.New()
	}
	return nil
}
