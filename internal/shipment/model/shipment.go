package model

import "time"

// ShipmentState represents the clearance progress of a shipment.
type ShipmentState string

const (
	ShipmentStateDraft         ShipmentState = "draft"
	ShipmentStateConfirmed     ShipmentState = "confirmed"
	ShipmentStateIn            ShipmentState = "in"
	ShipmentStateOnClearance   ShipmentState = "on_clearance"
	ShipmentStateClearanceDone ShipmentState = "clearance_done"
)

// Shipment is the aggregate root for an arriving consignment, keyed by the
// master bill of lading / air waybill number. It owns Containers and Kemasan
// items and carries the denormalized customs fields the exchanges snapshot.
type Shipment struct {
	BaseModel
	Name       string     `gorm:"type:varchar(100);column:name;not null;uniqueIndex" json:"name"` // Master BL/AWB number
	MasterDate *time.Time `gorm:"type:date;column:master_date" json:"masterDate,omitempty"`

	CarrierName string     `gorm:"type:varchar(255);column:carrier_name" json:"carrierName,omitempty"`
	CallSign    string     `gorm:"type:varchar(50);column:call_sign" json:"callSign,omitempty"`
	VoyFlightNo string     `gorm:"type:varchar(50);column:voy_flight_no" json:"voyFlightNo,omitempty"`
	DepartDate  *time.Time `gorm:"type:date;column:depart_date" json:"departDate,omitempty"`
	ArrivalDate *time.Time `gorm:"type:date;column:arrival_date" json:"arrivalDate,omitempty"`

	BC11No   string     `gorm:"type:varchar(50);column:bc11_no" json:"bc11No,omitempty"`
	BC11Date *time.Time `gorm:"type:date;column:bc11_date" json:"bc11Date,omitempty"`
	PosNo    string     `gorm:"type:varchar(50);column:pos_no" json:"posNo,omitempty"`

	ContainerNo   string `gorm:"type:varchar(50);column:container_no" json:"containerNo,omitempty"`
	ContainerSize string `gorm:"type:varchar(10);column:container_size" json:"containerSize,omitempty"` // reference code, category 14
	OfficeCode    string `gorm:"type:varchar(20);column:office_code" json:"officeCode,omitempty"`       // reference code, category 13

	SealNoBC   string     `gorm:"type:varchar(50);column:seal_no_bc" json:"sealNoBc,omitempty"`
	SealDateBC *time.Time `gorm:"type:date;column:seal_date_bc" json:"sealDateBc,omitempty"`
	Brutto     float64    `gorm:"type:numeric;column:brutto" json:"brutto,omitempty"`

	GateInTime  *time.Time `gorm:"type:timestamptz;column:gate_in_time" json:"gateInTime,omitempty"`
	GateOutTime *time.Time `gorm:"type:timestamptz;column:gate_out_time" json:"gateOutTime,omitempty"`

	// PLP permit assigned by customs once a relocation request is approved.
	PLPNo   string     `gorm:"type:varchar(50);column:plp_no" json:"plpNo,omitempty"`
	PLPDate *time.Time `gorm:"type:date;column:plp_date" json:"plpDate,omitempty"`

	State ShipmentState `gorm:"type:varchar(20);column:state;not null;default:'draft'" json:"state"`

	Containers []Container `gorm:"foreignKey:ShipmentID" json:"containers,omitempty"`
	Kemasans   []Kemasan   `gorm:"foreignKey:ShipmentID" json:"kemasans,omitempty"`

	ContainerCount int `gorm:"-" json:"containerCount"`
	KemasanCount   int `gorm:"-" json:"kemasanCount"`
}

func (s *Shipment) TableName() string {
	return "shipments"
}
