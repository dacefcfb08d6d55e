// Package orderrepo persists the local projection of paid orders that dispatch reads
// pickup and dropoff from, and writes delivery status to.
package orderrepo

import (
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO is the orders table row. Coordinates are nullable because an order can
// arrive without a resolvable address.
type OrderDTO struct {
	ID       uuid.UUID   `gorm:"type:uuid;primaryKey"`
	Pickup   LocationDTO `gorm:"embedded;embeddedPrefix:pickup_"`
	Dropoff  LocationDTO `gorm:"embedded;embeddedPrefix:dropoff_"`
	Total    int64
	Currency string `gorm:"type:varchar(3)"`
	Status   string `gorm:"type:varchar(32);index"`
}

func (OrderDTO) TableName() string {
	return "orders"
}

// LocationDTO is an optional point in decimal degrees.
type LocationDTO struct {
	Lat *float64 `gorm:"type:double precision"`
	Lng *float64 `gorm:"type:double precision"`
}

func locationFromDomain(loc *kernel.Location) LocationDTO {
	if loc == nil {
		return LocationDTO{}
	}
	lat, lng := loc.Lat(), loc.Lng()
	return LocationDTO{Lat: &lat, Lng: &lng}
}

func (dto LocationDTO) toDomain() (*kernel.Location, error) {
	if dto.Lat == nil || dto.Lng == nil {
		return nil, nil //nolint:nilnil // absent location
	}
	loc, err := kernel.NewLocation(*dto.Lat, *dto.Lng)
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

func fromDomain(o *order.Order) OrderDTO {
	return OrderDTO{
		ID:       o.ID().Google(),
		Pickup:   locationFromDomain(o.Pickup()),
		Dropoff:  locationFromDomain(o.Dropoff()),
		Total:    o.Total(),
		Currency: o.Currency(),
		Status:   o.Status().String(),
	}
}

func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromGoogle(dto.ID)
	if err != nil {
		return nil, err
	}

	pickup, err := dto.Pickup.toDomain()
	if err != nil {
		return nil, err
	}

	dropoff, err := dto.Dropoff.toDomain()
	if err != nil {
		return nil, err
	}

	status, err := order.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}

	return order.RestoreOrder(id, pickup, dropoff, dto.Total, dto.Currency, status)
}
