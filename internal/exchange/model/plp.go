package model

import (
	"time"

	"github.com/google/uuid"
)

// PlpRequest is a storage-relocation permit request. The system reference
// number is sequence-assigned and globally unique; the surat number is the
// human-facing count-based serial the customs office reads.
type PlpRequest struct {
	BaseModel
	RefNumber string `gorm:"type:varchar(50);column:ref_number;not null;uniqueIndex" json:"refNumber"`

	SuratNo   string     `gorm:"type:varchar(50);column:surat_no" json:"suratNo"` // NNNNN/PLP/UTPK/<roman month>/<year>
	SuratDate *time.Time `gorm:"type:date;column:surat_date" json:"suratDate,omitempty"`

	BC11No   string     `gorm:"type:varchar(50);column:bc11_no" json:"bc11No,omitempty"`
	BC11Date *time.Time `gorm:"type:date;column:bc11_date" json:"bc11Date,omitempty"`

	// Assigned by customs once the request is approved.
	PLPNo   string     `gorm:"type:varchar(50);column:plp_no" json:"plpNo,omitempty"`
	PLPDate *time.Time `gorm:"type:date;column:plp_date" json:"plpDate,omitempty"`

	OfficeCode    string `gorm:"type:varchar(20);column:office_code;not null" json:"officeCode"`
	OriginTPS     string `gorm:"type:varchar(20);column:origin_tps;not null" json:"originTps"`
	OriginGudang  string `gorm:"type:varchar(20);column:origin_gudang;not null" json:"originGudang"`
	DestTPS       string `gorm:"type:varchar(20);column:dest_tps;not null" json:"destTps"`
	DestGudang    string `gorm:"type:varchar(20);column:dest_gudang;not null" json:"destGudang"`
	ReasonCode    string `gorm:"type:varchar(10);column:reason_code;not null" json:"reasonCode"`        // reference code, category 18
	ContainerSize string `gorm:"type:varchar(10);column:container_size" json:"containerSize,omitempty"` // reference code, category 14

	YorAsal   string `gorm:"type:varchar(10);column:yor_asal" json:"yorAsal,omitempty"`
	YorTujuan string `gorm:"type:varchar(10);column:yor_tujuan" json:"yorTujuan,omitempty"`

	CarrierName string     `gorm:"type:varchar(255);column:carrier_name" json:"carrierName,omitempty"`
	VoyFlightNo string     `gorm:"type:varchar(50);column:voy_flight_no" json:"voyFlightNo,omitempty"`
	CallSign    string     `gorm:"type:varchar(50);column:call_sign" json:"callSign,omitempty"`
	ArrivalDate *time.Time `gorm:"type:date;column:arrival_date" json:"arrivalDate,omitempty"`

	PosNo       string `gorm:"type:varchar(50);column:pos_no" json:"posNo,omitempty"`
	ContainerNo string `gorm:"type:varchar(50);column:container_no" json:"containerNo,omitempty"`

	DataType      string `gorm:"type:varchar(5);column:data_type;not null;default:'1'" json:"dataType"` // "1" new, "2" manual
	ApplicantName string `gorm:"type:varchar(255);column:applicant_name;not null" json:"applicantName"`
	RejectReason  string `gorm:"type:text;column:reject_reason" json:"rejectReason,omitempty"`

	State ExchangeState `gorm:"type:varchar(20);column:state;not null;default:'draft'" json:"state"`

	ShipmentID  *uuid.UUID `gorm:"type:uuid;column:shipment_id;index" json:"shipmentId,omitempty"`
	ContainerID *uuid.UUID `gorm:"type:uuid;column:container_id;index" json:"containerId,omitempty"`
}

func (p *PlpRequest) TableName() string {
	return "plp_requests"
}
