package models

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/BearBump/DriverComm/internal/phone"
)

// Статусы, которые предлагает UI. Набор открытый: сервер принимает любую строку.
const (
	LoadStatusPlanned         = "Planned"
	LoadStatusEnRoute         = "En-route"
	LoadStatusArrived         = "Arrived"
	LoadStatusLoaded          = "Loaded"
	LoadStatusEnRouteToUnload = "En-route to unload"
	LoadStatusDelivered       = "Delivered"
)

type Load struct {
	ID                    string    `json:"id"`
	Origin                string    `json:"origin"`
	Destination           string    `json:"destination"`
	Lane                  string    `json:"lane"`
	Driver                string    `json:"driver"`
	DriverPhone           string    `json:"driverPhone"`
	Status                string    `json:"status"`
	ETA                   string    `json:"eta"`
	AgentPhone            string    `json:"agentPhone"`
	MerchantPhone         string    `json:"merchantPhone"`
	ShipperPhone          string    `json:"shipperPhone"`
	ReceiverPhone         string    `json:"receiverPhone"`
	DispatcherPhone       string    `json:"dispatcherPhone"`
	OriginLocationID      *int64    `json:"originLocationId"`
	DestinationLocationID *int64    `json:"destinationLocationId"`
	Commodity             string    `json:"commodity"`
	CreatedAt             time.Time `json:"createdAt"`
	UpdatedAt             time.Time `json:"updatedAt"`
}

// LoadInput: тело POST /api/loads. Отсутствующие поля = пустые значения.
type LoadInput struct {
	ID                    string `json:"id"`
	Origin                string `json:"origin"`
	Destination           string `json:"destination"`
	Driver                string `json:"driver"`
	DriverPhone           string `json:"driverPhone"`
	Status                string `json:"status"`
	ETA                   string `json:"eta"`
	AgentPhone            string `json:"agentPhone"`
	MerchantPhone         string `json:"merchantPhone"`
	ShipperPhone          string `json:"shipperPhone"`
	ReceiverPhone         string `json:"receiverPhone"`
	DispatcherPhone       string `json:"dispatcherPhone"`
	OriginLocationID      *int64 `json:"originLocationId"`
	DestinationLocationID *int64 `json:"destinationLocationId"`
	Commodity             string `json:"commodity"`
}

// ToLoad строит запись для полной замены: дефолтный статус, нормализованные
// телефоны, lane. ID и временные метки проставляет хранилище.
func (in LoadInput) ToLoad() *Load {
	status := in.Status
	if status == "" {
		status = LoadStatusPlanned
	}
	dispatcher := in.DispatcherPhone
	if dispatcher == "" {
		dispatcher = in.AgentPhone
	}
	return &Load{
		Origin:                in.Origin,
		Destination:           in.Destination,
		Lane:                  Lane(in.Origin, in.Destination),
		Driver:                in.Driver,
		DriverPhone:           phone.Normalize(in.DriverPhone),
		Status:                status,
		ETA:                   in.ETA,
		AgentPhone:            phone.Normalize(in.AgentPhone),
		MerchantPhone:         phone.Normalize(in.MerchantPhone),
		ShipperPhone:          phone.Normalize(in.ShipperPhone),
		ReceiverPhone:         phone.Normalize(in.ReceiverPhone),
		DispatcherPhone:       phone.Normalize(dispatcher),
		OriginLocationID:      positiveOrNil(in.OriginLocationID),
		DestinationLocationID: positiveOrNil(in.DestinationLocationID),
		Commodity:             in.Commodity,
	}
}

// LoadPatch: тело PATCH /api/loads/{id}. nil означает "поле не передано".
type LoadPatch struct {
	Origin                *string    `json:"origin"`
	Destination           *string    `json:"destination"`
	Driver                *string    `json:"driver"`
	DriverPhone           *string    `json:"driverPhone"`
	Status                *string    `json:"status"`
	ETA                   *string    `json:"eta"`
	AgentPhone            *string    `json:"agentPhone"`
	MerchantPhone         *string    `json:"merchantPhone"`
	ShipperPhone          *string    `json:"shipperPhone"`
	ReceiverPhone         *string    `json:"receiverPhone"`
	DispatcherPhone       *string    `json:"dispatcherPhone"`
	OriginLocationID      OptionalID `json:"originLocationId"`
	DestinationLocationID OptionalID `json:"destinationLocationId"`
	Commodity             *string    `json:"commodity"`
}

// Apply сливает переданные поля в запись. Lane пересчитывается только
// если в патче есть origin или destination.
func (l *Load) Apply(p LoadPatch) {
	setString(&l.Origin, p.Origin)
	setString(&l.Destination, p.Destination)
	setString(&l.Driver, p.Driver)
	setPhone(&l.DriverPhone, p.DriverPhone)
	setString(&l.Status, p.Status)
	setString(&l.ETA, p.ETA)
	setPhone(&l.AgentPhone, p.AgentPhone)
	setPhone(&l.MerchantPhone, p.MerchantPhone)
	setPhone(&l.ShipperPhone, p.ShipperPhone)
	setPhone(&l.ReceiverPhone, p.ReceiverPhone)
	setPhone(&l.DispatcherPhone, p.DispatcherPhone)
	if p.OriginLocationID.Set {
		l.OriginLocationID = positiveOrNil(p.OriginLocationID.Value)
	}
	if p.DestinationLocationID.Set {
		l.DestinationLocationID = positiveOrNil(p.DestinationLocationID.Value)
	}
	setString(&l.Commodity, p.Commodity)

	if p.Origin != nil || p.Destination != nil {
		l.Lane = Lane(l.Origin, l.Destination)
	}
}

// StatusChanged: статус передан, непустой и отличается от прежнего.
func (p LoadPatch) StatusChanged(before *Load) bool {
	return p.Status != nil && *p.Status != "" && *p.Status != before.Status
}

func (p LoadPatch) ETAChanged(before *Load) bool {
	return p.ETA != nil && *p.ETA != "" && *p.ETA != before.ETA
}

func Lane(origin, destination string) string {
	return origin + " → " + destination
}

// OptionalID различает "поле не передано" и явный null.
type OptionalID struct {
	Set   bool
	Value *int64
}

func (o *OptionalID) UnmarshalJSON(b []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		o.Value = nil
		return nil
	}
	var v int64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setPhone(dst *string, v *string) {
	if v != nil {
		*dst = phone.Normalize(*v)
	}
}

func positiveOrNil(v *int64) *int64 {
	if v == nil || *v <= 0 {
		return nil
	}
	x := *v
	return &x
}
