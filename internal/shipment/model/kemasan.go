package model

import (
	"time"

	"github.com/google/uuid"
)

// KemasanState represents the physical handling status of a packaging item.
type KemasanState string

const (
	KemasanStateDraft     KemasanState = "draft"
	KemasanStateIn        KemasanState = "in"
	KemasanStateXray      KemasanState = "xray"
	KemasanStateAtensi    KemasanState = "atensi"
	KemasanStateSPJM      KemasanState = "spjm"
	KemasanStateCompleted KemasanState = "completed"
	KemasanStateOut       KemasanState = "out"
)

// KnownKemasanStates lists every state a kemasan item may be moved into.
var KnownKemasanStates = []KemasanState{
	KemasanStateDraft,
	KemasanStateIn,
	KemasanStateXray,
	KemasanStateAtensi,
	KemasanStateSPJM,
	KemasanStateCompleted,
	KemasanStateOut,
}

// Kemasan is an individual packaging item inside a Container.
type Kemasan struct {
	BaseModel
	Name        string     `gorm:"type:varchar(100);column:name;not null" json:"name"` // packaging number
	ShipmentID  *uuid.UUID `gorm:"type:uuid;column:shipment_id;index" json:"shipmentId,omitempty"`
	ContainerID *uuid.UUID `gorm:"type:uuid;column:container_id;index" json:"containerId,omitempty"`

	SenderName   string `gorm:"type:varchar(255);column:sender_name;not null" json:"senderName"`
	ReceiverName string `gorm:"type:varchar(255);column:receiver_name;not null" json:"receiverName"`

	GateInTime  *time.Time `gorm:"type:timestamptz;column:gate_in_time" json:"gateInTime,omitempty"`
	GateOutTime *time.Time `gorm:"type:timestamptz;column:gate_out_time" json:"gateOutTime,omitempty"`

	State KemasanState `gorm:"type:varchar(20);column:state;not null;default:'draft'" json:"state"`
}

func (k *Kemasan) TableName() string {
	return "kemasan_items"
}
