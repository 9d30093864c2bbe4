package model

import (
	"time"

	"github.com/google/uuid"
)

// ContainerState represents the gate progress of a physical container.
type ContainerState string

const (
	ContainerStateDraft     ContainerState = "draft"
	ContainerStateArrived   ContainerState = "arrived"
	ContainerStateGateIn    ContainerState = "gate_in"
	ContainerStateGateOut   ContainerState = "gate_out"
	ContainerStateCompleted ContainerState = "completed"
)

// Container is a physical container tied to a Shipment. Gate movement is
// driven exclusively through the container service's transition methods.
type Container struct {
	BaseModel
	ContainerNo string     `gorm:"type:varchar(50);column:container_no;not null;index" json:"containerNo"`
	MasterBLNo  string     `gorm:"type:varchar(100);column:master_bl_no" json:"masterBlNo,omitempty"`
	PJTCode     string     `gorm:"type:varchar(50);column:pjt_code" json:"pjtCode,omitempty"`
	ShipmentID  *uuid.UUID `gorm:"type:uuid;column:shipment_id;index" json:"shipmentId,omitempty"`

	ArrivalTime   *time.Time `gorm:"type:timestamptz;column:arrival_time;index" json:"arrivalTime,omitempty"`
	VesselName    string     `gorm:"type:varchar(255);column:vessel_name" json:"vesselName,omitempty"`
	OriginCountry string     `gorm:"type:varchar(100);column:origin_country" json:"originCountry,omitempty"`

	GateInTime  *time.Time `gorm:"type:timestamptz;column:gate_in_time" json:"gateInTime,omitempty"`
	GateOutTime *time.Time `gorm:"type:timestamptz;column:gate_out_time" json:"gateOutTime,omitempty"`

	State    ContainerState `gorm:"type:varchar(20);column:state;not null;default:'draft'" json:"state"`
	Active   bool           `gorm:"column:active;not null;default:true" json:"active"`
	Notes    string         `gorm:"type:text;column:notes" json:"notes,omitempty"`
	SyncDate *time.Time     `gorm:"type:timestamptz;column:sync_date" json:"syncDate,omitempty"`

	Kemasans []Kemasan `gorm:"foreignKey:ContainerID" json:"kemasans,omitempty"`
}

func (c *Container) TableName() string {
	return "containers"
}
