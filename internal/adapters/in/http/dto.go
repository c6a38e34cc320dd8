package http

import (
	"time"

	"supplychain/internal/core/domain/model/event"
	"supplychain/internal/core/domain/model/kernel"
	"supplychain/internal/core/domain/model/order"
	"supplychain/internal/jobs"
)

type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type NewOrder struct {
	SupplierID         string   `json:"supplierId"`
	BuyerID            string   `json:"buyerId"`
	LogisticsID        string   `json:"logisticsId,omitempty"`
	Quantity           int      `json:"quantity"`
	EncryptedPrice     string   `json:"encryptedPrice"`
	PriceCommitment    string   `json:"priceCommitment,omitempty"`
	QuantityCommitment string   `json:"quantityCommitment,omitempty"`
	Destination        Location `json:"destination"`
}

type ApproveRequest struct {
	Value string `json:"value"`
	Nonce string `json:"nonce"`
}

type DeliverRequest struct {
	Location Location `json:"location"`
}

type PayRequest struct {
	Evidence string `json:"evidence"`
}

type CancelRequest struct {
	Reason string `json:"reason"`
}

type Order struct {
	ID                 string     `json:"id"`
	SupplierID         string     `json:"supplierId"`
	BuyerID            string     `json:"buyerId"`
	LogisticsID        string     `json:"logisticsId,omitempty"`
	Quantity           int        `json:"quantity"`
	EncryptedPrice     string     `json:"encryptedPrice"`
	PriceCommitment    string     `json:"priceCommitment,omitempty"`
	QuantityCommitment string     `json:"quantityCommitment,omitempty"`
	Destination        Location   `json:"destination"`
	CurrentLocation    *Location  `json:"currentLocation,omitempty"`
	Progress           *float64   `json:"progress,omitempty"`
	Status             string     `json:"status"`
	CancelReason       string     `json:"cancelReason,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	ApprovedAt         *time.Time `json:"approvedAt,omitempty"`
	InTransitAt        *time.Time `json:"inTransitAt,omitempty"`
	DeliveredAt        *time.Time `json:"deliveredAt,omitempty"`
	PaidAt             *time.Time `json:"paidAt,omitempty"`
	CancelledAt        *time.Time `json:"cancelledAt,omitempty"`
}

type Event struct {
	ID        string         `json:"id"`
	Seq       uint64         `json:"seq"`
	OrderID   string         `json:"orderId,omitempty"`
	Type      string         `json:"type"`
	Payload   map[string]any `json:"payload"`
	CreatedAt time.Time      `json:"createdAt"`
}

type SchedulerStatus struct {
	Running            bool   `json:"running"`
	TickPeriod         string `json:"tickPeriod"`
	ActiveSessionCount int    `json:"activeSessionCount"`
}

type Error struct {
	Code    int    `json:"code"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func toLocation(l kernel.Location) Location {
	return Location{Lat: l.Latitude(), Lng: l.Longitude()}
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func toOrder(o *order.Order) Order {
	parties := o.Parties()
	terms := o.Terms()

	resp := Order{
		ID:             o.ID().String(),
		SupplierID:     parties.Supplier(),
		BuyerID:        parties.Buyer(),
		LogisticsID:    parties.Logistics(),
		Quantity:       terms.Quantity(),
		EncryptedPrice: terms.EncryptedPrice(),
		Destination:    toLocation(o.Destination()),
		Status:         o.Status().String(),
		CancelReason:   o.CancelReason(),
		CreatedAt:      o.CreatedAt(),
		ApprovedAt:     optionalTime(o.ApprovedAt()),
		InTransitAt:    optionalTime(o.InTransitAt()),
		DeliveredAt:    optionalTime(o.DeliveredAt()),
		PaidAt:         optionalTime(o.PaidAt()),
		CancelledAt:    optionalTime(o.CancelledAt()),
	}
	if c, ok := terms.PriceCommitment(); ok {
		resp.PriceCommitment = c.String()
	}
	if c, ok := terms.QuantityCommitment(); ok {
		resp.QuantityCommitment = c.String()
	}
	if loc, ok := o.CurrentLocation(); ok {
		l := toLocation(loc)
		resp.CurrentLocation = &l
	}
	if p, ok := o.Progress(); ok {
		resp.Progress = &p
	}
	return resp
}

func toOrders(orders []*order.Order) []Order {
	resp := make([]Order, len(orders))
	for i, o := range orders {
		resp[i] = toOrder(o)
	}
	return resp
}

func toEvent(e event.Event) Event {
	resp := Event{
		ID:        e.ID().String(),
		Seq:       e.Sequence(),
		Type:      string(e.Type()),
		Payload:   e.Payload(),
		CreatedAt: e.CreatedAt(),
	}
	if e.HasOrder() {
		resp.OrderID = e.OrderID().String()
	}
	return resp
}

func toEvents(events []event.Event) []Event {
	resp := make([]Event, len(events))
	for i, e := range events {
		resp[i] = toEvent(e)
	}
	return resp
}

func toSchedulerStatus(s jobs.Status) SchedulerStatus {
	return SchedulerStatus{
		Running:            s.Running,
		TickPeriod:         s.TickPeriod.String(),
		ActiveSessionCount: s.ActiveSessionCount,
	}
}
