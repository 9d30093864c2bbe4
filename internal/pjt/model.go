package pjt

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Provider is a registered PJT (Penyelenggara Jasa Titipan), the customs
// broker handling consignments on behalf of consignees. The CEISA and sync
// credentials are stored for the downstream document push; the gate
// workflows never read them.
type Provider struct {
	ID        uuid.UUID `gorm:"type:uuid;column:id;not null;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"type:timestamptz;column:created_at;not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"type:timestamptz;column:updated_at;not null" json:"updatedAt"`

	Code string `gorm:"type:varchar(50);column:code;not null;uniqueIndex" json:"code"`
	Name string `gorm:"type:varchar(255);column:name;not null" json:"name"`

	NotifierIDType string `gorm:"type:varchar(10);column:notifier_id_type" json:"notifierIdType"` // reference code, category 7
	NotifierID     string `gorm:"type:varchar(50);column:notifier_id;not null" json:"notifierId"` // NPWP or NIK

	UsernameCEISA string `gorm:"type:varchar(100);column:username_ceisa" json:"usernameCeisa,omitempty"`
	PasswordCEISA string `gorm:"type:varchar(255);column:password_ceisa" json:"-"`
	TokenCEISA    string `gorm:"type:text;column:token_ceisa" json:"-"`

	SyncAPIURL string `gorm:"type:varchar(512);column:sync_api_url" json:"syncApiUrl,omitempty"`
	SyncDBName string `gorm:"type:varchar(100);column:sync_db_name" json:"syncDbName,omitempty"`
	SyncAPIKey string `gorm:"type:varchar(255);column:sync_api_key" json:"-"`

	Email   string `gorm:"type:varchar(255);column:email" json:"email,omitempty"`
	Phone   string `gorm:"type:varchar(50);column:phone" json:"phone,omitempty"`
	Address string `gorm:"type:text;column:address" json:"address,omitempty"`

	LicenseNo    string     `gorm:"type:varchar(100);column:license_no" json:"licenseNo,omitempty"`
	LicenseDate  *time.Time `gorm:"type:date;column:license_date" json:"licenseDate,omitempty"`
	CurrencyCode string     `gorm:"type:varchar(10);column:currency_code" json:"currencyCode,omitempty"` // reference code, category 8

	Active bool   `gorm:"column:active;not null;default:true" json:"active"`
	Notes  string `gorm:"type:text;column:notes" json:"notes,omitempty"`
}

func (Provider) TableName() string {
	return "pjt_providers"
}

// BeforeCreate is a GORM hook that is triggered before a new record is created.
func (p *Provider) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID, err = uuid.NewRandom()
		if err != nil {
			return
		}
	}
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = time.Now().UTC()
	return
}
