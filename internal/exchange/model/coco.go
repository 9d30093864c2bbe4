package model

import (
	"time"

	"github.com/google/uuid"
)

// Document codes (reference category 16) used by the gate movement exchanges.
const (
	DocCodeGateIn  = "5"
	DocCodeGateOut = "6"
)

// ExchangeState represents the lifecycle of a customs exchange record.
type ExchangeState string

const (
	ExchangeStateDraft     ExchangeState = "draft"
	ExchangeStateReady     ExchangeState = "ready"
	ExchangeStateKirim     ExchangeState = "kirim" // sent, awaiting decision (PLP only)
	ExchangeStateCompleted ExchangeState = "completed"
	ExchangeStateReject    ExchangeState = "reject"
	ExchangeStateError     ExchangeState = "error"
)

// CocoExchange is one customs notification of a container entering or leaving
// the yard (COARRI/CODECO). The reference number is assigned once at creation
// and never changes; the state settles from the service's textual response.
type CocoExchange struct {
	BaseModel
	RefNumber  string    `gorm:"type:varchar(50);column:ref_number;not null;uniqueIndex" json:"refNumber"`
	DocCode    string    `gorm:"type:varchar(10);column:doc_code;not null" json:"docCode"` // reference code, category 16
	ShipmentID uuid.UUID `gorm:"type:uuid;column:shipment_id;not null;index" json:"shipmentId"`

	TerminalCode string     `gorm:"type:varchar(20);column:terminal_code" json:"terminalCode"` // KD_TPS, doubles as KD_GUDANG
	CarrierName  string     `gorm:"type:varchar(255);column:carrier_name" json:"carrierName,omitempty"`
	VoyFlightNo  string     `gorm:"type:varchar(50);column:voy_flight_no" json:"voyFlightNo,omitempty"`
	CallSign     string     `gorm:"type:varchar(50);column:call_sign" json:"callSign,omitempty"`
	ArrivalDate  *time.Time `gorm:"type:date;column:arrival_date" json:"arrivalDate,omitempty"`

	ResponseCount int           `gorm:"column:response_count;not null;default:0" json:"responseCount"`
	State         ExchangeState `gorm:"type:varchar(20);column:state;not null;default:'draft'" json:"state"`
	LastResponse  string        `gorm:"type:text;column:last_response" json:"lastResponse,omitempty"`

	Details []ContainerDetail `gorm:"foreignKey:CocoExchangeID" json:"details,omitempty"`
}

func (c *CocoExchange) TableName() string {
	return "coco_exchanges"
}

// ContainerDetail is a denormalized snapshot of the shipment and container
// fields at submission time, one per container in the notification.
type ContainerDetail struct {
	BaseModel
	CocoExchangeID uuid.UUID `gorm:"type:uuid;column:coco_exchange_id;not null;index" json:"cocoExchangeId"`

	ContainerNo   string `gorm:"type:varchar(50);column:container_no" json:"containerNo,omitempty"`
	ContainerSize string `gorm:"type:varchar(10);column:container_size" json:"containerSize,omitempty"` // reference code, category 14
	ContainerType string `gorm:"type:varchar(10);column:container_type" json:"containerType,omitempty"` // reference code, category 15
	SealNo        string `gorm:"type:varchar(50);column:seal_no" json:"sealNo,omitempty"`

	MasterBLNo   string     `gorm:"type:varchar(100);column:master_bl_no" json:"masterBlNo,omitempty"`
	MasterBLDate *time.Time `gorm:"type:date;column:master_bl_date" json:"masterBlDate,omitempty"`

	Brutto   float64    `gorm:"type:numeric;column:brutto" json:"brutto,omitempty"`
	BC11No   string     `gorm:"type:varchar(50);column:bc11_no" json:"bc11No,omitempty"`
	BC11Date *time.Time `gorm:"type:date;column:bc11_date" json:"bc11Date,omitempty"`
	PosNo    string     `gorm:"type:varchar(50);column:pos_no" json:"posNo,omitempty"`

	// In/out movement document (SPPB or PLP). Code 3 covers the normal
	// gate-in case; gate-out lines are derived with placeholder values.
	DocInOutCode string     `gorm:"type:varchar(10);column:doc_inout_code;not null;default:'3'" json:"docInOutCode"`
	DocInOutNo   string     `gorm:"type:varchar(50);column:doc_inout_no" json:"docInOutNo,omitempty"`
	DocInOutDate *time.Time `gorm:"type:date;column:doc_inout_date" json:"docInOutDate,omitempty"`
	InOutTime    *time.Time `gorm:"type:timestamptz;column:inout_time" json:"inOutTime,omitempty"`

	TransportMode  string `gorm:"type:varchar(10);column:transport_mode;not null;default:'1'" json:"transportMode"`
	PlateNo        string `gorm:"type:varchar(20);column:plate_no" json:"plateNo,omitempty"`
	EmptyContainer bool   `gorm:"column:empty_container;not null;default:false" json:"emptyContainer"`

	DestWarehouse string `gorm:"type:varchar(20);column:dest_warehouse;not null;default:'BBLK'" json:"destWarehouse"`
	OfficeCode    string `gorm:"type:varchar(20);column:office_code" json:"officeCode,omitempty"` // reference code, category 13

	SealNoBC   string     `gorm:"type:varchar(50);column:seal_no_bc" json:"sealNoBc,omitempty"`
	SealDateBC *time.Time `gorm:"type:date;column:seal_date_bc" json:"sealDateBc,omitempty"`

	TPSLicenseNo   string     `gorm:"type:varchar(20);column:tps_license_no;not null;default:'1784'" json:"tpsLicenseNo"`
	TPSLicenseDate *time.Time `gorm:"type:date;column:tps_license_date" json:"tpsLicenseDate,omitempty"`
}

func (d *ContainerDetail) TableName() string {
	return "coco_container_details"
}

// DefaultTPSLicenseDate is the operation license date embedded in every
// detail line unless overridden.
var DefaultTPSLicenseDate = time.Date(2016, 10, 10, 0, 0, 0, 0, time.UTC)
