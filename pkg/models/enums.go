package models

import (
	"encoding/json"
	"fmt"
)

type Condition string

const (
	ConditionNew         Condition = "new"
	ConditionRefurbished Condition = "refurbished"
	ConditionUsed        Condition = "used"
)

func (c Condition) Valid() bool {
	switch c {
	case ConditionNew, ConditionRefurbished, ConditionUsed:
		return true
	}
	return false
}

func (c *Condition) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, c, "condition")
}

type Marketplace string

const (
	MarketplaceAmazon Marketplace = "amazon"
	MarketplaceEbay   Marketplace = "ebay"
	MarketplaceDirect Marketplace = "direct"
)

func (m Marketplace) Valid() bool {
	switch m {
	case MarketplaceAmazon, MarketplaceEbay, MarketplaceDirect:
		return true
	}
	return false
}

func (m *Marketplace) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, m, "marketplace")
}

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

func (s *OrderStatus) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, s, "status")
}

type PaymentMethod string

const (
	PaymentCreditCard PaymentMethod = "credit_card"
	PaymentPayPal     PaymentMethod = "paypal"
	PaymentStripe     PaymentMethod = "stripe"
)

func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentCreditCard, PaymentPayPal, PaymentStripe:
		return true
	}
	return false
}

func (p *PaymentMethod) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, p, "paymentMethod")
}

type DeliveryMethod string

const (
	DeliveryStandard DeliveryMethod = "standard"
	DeliveryExpress  DeliveryMethod = "express"
	DeliveryNextDay  DeliveryMethod = "next_day"
)

func (d DeliveryMethod) Valid() bool {
	switch d {
	case DeliveryStandard, DeliveryExpress, DeliveryNextDay:
		return true
	}
	return false
}

func (d *DeliveryMethod) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, d, "deliveryMethod")
}

// EnumError is returned when a request carries a value outside a closed set.
type EnumError struct {
	Field string
	Value string
}

func (e *EnumError) Error() string {
	return fmt.Sprintf("invalid %s %q", e.Field, e.Value)
}

type enum interface {
	~string
	Valid() bool
}

func unmarshalEnum[T enum](data []byte, dst *T, field string) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%s must be a string: %w", field, err)
	}
	v := T(s)
	if !v.Valid() {
		return &EnumError{Field: field, Value: s}
	}
	*dst = v
	return nil
}

// ParseEnums keeps the valid values of raw and silently drops the rest.
func ParseEnums[T enum](raw []string) []T {
	var out []T
	for _, s := range raw {
		if v := T(s); v.Valid() {
			out = append(out, v)
		}
	}
	return out
}
