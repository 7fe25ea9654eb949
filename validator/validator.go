// Package validator validates request payloads. Each payload carries its
// own Validate method so handlers can check before touching any state.
package validator

import (
	"fmt"
	"strings"

	playground "github.com/go-playground/validator/v10"
)

var validate = playground.New(playground.WithRequiredStructEnabled())

// AddToCartPayload is the add-to-cart form.
type AddToCartPayload struct {
	ProductID string `json:"productId" validate:"required"`
	VariantID string `json:"variantId" validate:"required"`
	Quantity  int32  `json:"quantity" validate:"required,min=1"`
}

func (p AddToCartPayload) Validate() error { return check(p) }

// UpdateCartPayload is the quantity-change form.
type UpdateCartPayload struct {
	ProductID string `json:"productId" validate:"required"`
	VariantID string `json:"variantId" validate:"required"`
	Quantity  int32  `json:"quantity" validate:"required,min=1"`
}

func (p UpdateCartPayload) Validate() error { return check(p) }

// AddressPayload is the new-address form.
type AddressPayload struct {
	Street string `json:"street" validate:"required"`
	City   string `json:"city" validate:"required"`
}

func (p AddressPayload) Validate() error { return check(p) }

// PlaceOrderPayload is the checkout confirmation form.
type PlaceOrderPayload struct {
	AddressID     string `json:"addressId" validate:"required"`
	PaymentMethod string `json:"paymentMethod" validate:"required,oneof=cash momo vnpay"`
}

func (p PlaceOrderPayload) Validate() error { return check(p) }

// LoginPayload is the login form.
type LoginPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (p LoginPayload) Validate() error { return check(p) }

// RegisterPayload is the signup form.
type RegisterPayload struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

func (p RegisterPayload) Validate() error { return check(p) }

func check(payload interface{}) error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}
	fieldErrs, ok := err.(playground.ValidationErrors)
	if !ok {
		return err
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("validation failed: %s", strings.Join(msgs, "; "))
}
