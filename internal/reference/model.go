package reference

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Master code categories. Every enumerated domain code in the system
// (document types, ports, warehouses, container sizes, ...) lives in one
// of these buckets.
const (
	CategoryJenisAju       = 1
	CategoryJenisPIBK      = 2
	CategoryJenisAngkut    = 3
	CategoryPelabuhan      = 4
	CategoryGudang         = 5
	CategoryNegara         = 6
	CategoryJenisIdentitas = 7
	CategoryValuta         = 8
	CategoryPungutan       = 9
	CategoryJenisKemasan   = 10
	CategoryJenisTarif     = 11
	CategoryTarif          = 12
	CategoryKantor         = 13
	CategoryUkuranCont     = 14
	CategoryJenisCont      = 15
	CategoryKodeDokumen    = 16
	CategoryAlasanPLP      = 18
)

var categoryNames = map[int]string{
	CategoryJenisAju:       "Jenis Aju",
	CategoryJenisPIBK:      "Kode Jenis PIBK",
	CategoryJenisAngkut:    "Kode Jenis Angkut",
	CategoryPelabuhan:      "Kode Pelabuhan",
	CategoryGudang:         "Kode Gudang",
	CategoryNegara:         "Kode Negara",
	CategoryJenisIdentitas: "Jenis Identitas",
	CategoryValuta:         "Kode Valuta",
	CategoryPungutan:       "Kode Pungutan",
	CategoryJenisKemasan:   "Jenis Kemasan",
	CategoryJenisTarif:     "Jenis Tarif",
	CategoryTarif:          "Kode Tarif",
	CategoryKantor:         "Kode Kantor",
	CategoryUkuranCont:     "Ukuran Container",
	CategoryJenisCont:      "Jenis Container",
	CategoryKodeDokumen:    "Kode Dokumen",
	CategoryAlasanPLP:      "Alasan PLP",
}

// CategoryName returns the human readable name for a master code category.
func CategoryName(category int) string {
	if name, ok := categoryNames[category]; ok {
		return name
	}
	return fmt.Sprintf("Unknown Category (%d)", category)
}

// Code represents one master reference code within a category.
type Code struct {
	ID          uuid.UUID `gorm:"type:uuid;column:id;not null;primaryKey" json:"id"`
	CreatedAt   time.Time `gorm:"type:timestamptz;column:created_at;not null" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"type:timestamptz;column:updated_at;not null" json:"updatedAt"`
	Code        string    `gorm:"type:varchar(50);column:code;not null;index;uniqueIndex:idx_reference_code_category" json:"code"`
	Category    int       `gorm:"column:category;not null;index;uniqueIndex:idx_reference_code_category;check:category > 0" json:"category"`
	Description string    `gorm:"type:varchar(255);column:description;not null" json:"description"`
	Active      bool      `gorm:"column:active;not null;default:true" json:"active"`
	Sequence    int       `gorm:"column:sequence;not null;default:10" json:"sequence"`
	Notes       string    `gorm:"type:text;column:notes" json:"notes,omitempty"`
}

func (Code) TableName() string {
	return "reference_codes"
}

// BeforeCreate is a GORM hook that is triggered before a new record is created.
func (c *Code) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID, err = uuid.NewRandom()
		if err != nil {
			return
		}
	}
	c.CreatedAt = time.Now().UTC()
	c.UpdatedAt = time.Now().UTC()
	return
}

// DisplayName returns the "CODE - Description" rendering used in listings.
func (c *Code) DisplayName() string {
	switch {
	case c.Code != "" && c.Description != "":
		return c.Code + " - " + c.Description
	case c.Code != "":
		return c.Code
	default:
		return c.Description
	}
}

// CategoryDisplayName returns the human readable category of this code.
func (c *Code) CategoryDisplayName() string {
	return CategoryName(c.Category)
}
