// Package dto holds the form payloads posted by dashboard pages.
package dto

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/nyaruka/phonenumbers"

	"github.com/spec-kit/store-dashboard/internal/domain"
	"github.com/spec-kit/store-dashboard/internal/remote"
)

// DefaultPhoneRegion is assumed for phone numbers without a country code.
const DefaultPhoneRegion = "BR"

// LoginForm payload for POST /login.
type LoginForm struct {
	Email    string `form:"email"`
	Password string `form:"password"`
}

// Validate checks the form before any API call.
func (f LoginForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Email, validation.Required, is.Email),
		validation.Field(&f.Password, validation.Required),
	)
}

// RegisterForm payload for POST /register.
type RegisterForm struct {
	Name                 string `form:"name"`
	Email                string `form:"email"`
	Phone                string `form:"phone"`
	Password             string `form:"password"`
	PasswordConfirmation string `form:"password_confirmation"`
	Street               string `form:"street"`
	Number               string `form:"number"`
	City                 string `form:"city"`
	State                string `form:"state"`
}

// Validate checks the form before any API call.
func (f RegisterForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Name, validation.Required, validation.Length(2, 200)),
		validation.Field(&f.Email, validation.Required, is.Email),
		validation.Field(&f.Phone, validation.Required, validation.By(validPhone)),
		validation.Field(&f.Password, validation.Required, validation.Length(6, 100)),
		validation.Field(&f.PasswordConfirmation, validation.Required, validation.By(equals(f.Password))),
		validation.Field(&f.Street, validation.Required),
		validation.Field(&f.Number, validation.Required),
		validation.Field(&f.City, validation.Required),
		validation.Field(&f.State, validation.Required, validation.Length(2, 2), is.UpperCase),
	)
}

// Request converts a validated form into the API payload.
func (f RegisterForm) Request() remote.RegisterUserRequest {
	return remote.RegisterUserRequest{
		Name:                 strings.TrimSpace(f.Name),
		Email:                strings.TrimSpace(f.Email),
		Phone:                NormalizePhone(f.Phone),
		Password:             f.Password,
		PasswordConfirmation: f.PasswordConfirmation,
		Address: domain.Address{
			Street: strings.TrimSpace(f.Street),
			Number: strings.TrimSpace(f.Number),
			City:   strings.TrimSpace(f.City),
			State:  f.State,
		},
	}
}

// StoreForm payload for creating or updating a store.
type StoreForm struct {
	Name        string `form:"name"`
	Address     string `form:"address"`
	Description string `form:"description"`
}

// Validate checks the form before any API call.
func (f StoreForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Name, validation.Required, validation.Length(2, 120)),
		validation.Field(&f.Address, validation.Required),
		validation.Field(&f.Description, validation.Required, validation.Length(1, 500)),
	)
}

// Input converts the form into the API payload. ownerID is zero on updates.
func (f StoreForm) Input(ownerID int64) remote.StoreInput {
	return remote.StoreInput{
		Name:        strings.TrimSpace(f.Name),
		Address:     strings.TrimSpace(f.Address),
		Description: strings.TrimSpace(f.Description),
		OwnerID:     ownerID,
	}
}

// ProductForm payload for creating or updating a product.
type ProductForm struct {
	Name        string  `form:"name"`
	Description string  `form:"description"`
	Price       float64 `form:"price"`
	Category    string  `form:"category"`
	Quantity    int     `form:"quantity"`
}

// Validate checks the form before any API call.
func (f ProductForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Name, validation.Required),
		validation.Field(&f.Price, validation.Required, validation.Min(0.01)),
		validation.Field(&f.Category, validation.Required),
		validation.Field(&f.Quantity, validation.Min(0)),
	)
}

// Input converts the form into the API payload.
func (f ProductForm) Input(storeID int64) remote.ProductInput {
	return remote.ProductInput{
		Name:        strings.TrimSpace(f.Name),
		Description: strings.TrimSpace(f.Description),
		Price:       f.Price,
		Category:    strings.TrimSpace(f.Category),
		Quantity:    f.Quantity,
		StoreID:     storeID,
	}
}

// SellerForm payload for attaching a seller by email.
type SellerForm struct {
	Email string `form:"email"`
}

// Validate checks the form before any API call.
func (f SellerForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Email, validation.Required, is.Email),
	)
}

// SaleForm payload for recording a sale.
type SaleForm struct {
	ProductID int64 `form:"product_id"`
	SellerID  int64 `form:"seller_id"`
	Quantity  int   `form:"quantity"`
}

// Validate checks the form before any API call.
func (f SaleForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.ProductID, validation.Required),
		validation.Field(&f.SellerID, validation.Required),
		validation.Field(&f.Quantity, validation.Required, validation.Min(1)),
	)
}

// Input converts the form into the API payload.
func (f SaleForm) Input() remote.SaleInput {
	return remote.SaleInput{ProductID: f.ProductID, SellerID: f.SellerID, Quantity: f.Quantity}
}

// FieldErrors flattens validation errors into field name to message.
func FieldErrors(err error) map[string]string {
	out := map[string]string{}
	if err == nil {
		return out
	}
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		for field, ferr := range verrs {
			out[field] = ferr.Error()
		}
		return out
	}
	out["form"] = err.Error()
	return out
}

// NormalizePhone formats a valid number as E.164 and returns anything else
// unchanged.
func NormalizePhone(raw string) string {
	num, err := phonenumbers.Parse(strings.TrimSpace(raw), DefaultPhoneRegion)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return raw
	}
	return phonenumbers.Format(num, phonenumbers.E164)
}

func validPhone(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	num, err := phonenumbers.Parse(s, DefaultPhoneRegion)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return errors.New("must be a valid phone number")
	}
	return nil
}

func equals(other string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s != other {
			return errors.New("passwords do not match")
		}
		return nil
	}
}
