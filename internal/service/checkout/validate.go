package checkout

import (
	"regexp"

	"veggi-storefront/internal/domain"
)

// Messages shown to the shopper when the form is rejected.
const (
	MsgEmptyCart     = "Your cart is empty. Add items before checking out."
	MsgMissingFields = "Please fill in all fields"
	MsgInvalidPhone  = "Please enter a valid phone number"
	MsgInvalidPostal = "Please enter a valid postal code"
	MsgLoginRequired = "Please log in to checkout"
	MsgInvalidMethod = "Please choose a payment method"
)

var (
	phonePattern  = regexp.MustCompile(`^\d{10,}$`)
	postalPattern = regexp.MustCompile(`^\d{4,6}$`)
)

// ValidationError is a form problem the shopper can correct. No request
// reaches the backend when one is returned.
type ValidationError struct {
	Message  string
	Redirect string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validate applies the checks in the order the shopper sees them: cart,
// required fields, phone, postal code, login.
func Validate(itemCount int, shipping domain.ShippingInfo, user *domain.User) error {
	if itemCount == 0 {
		return &ValidationError{Message: MsgEmptyCart}
	}
	if shipping.Address == "" || shipping.City == "" || shipping.PhoneNo == "" ||
		shipping.PostalCode == "" || shipping.Country == "" {
		return &ValidationError{Message: MsgMissingFields}
	}
	if !phonePattern.MatchString(shipping.PhoneNo) {
		return &ValidationError{Message: MsgInvalidPhone}
	}
	if !postalPattern.MatchString(shipping.PostalCode) {
		return &ValidationError{Message: MsgInvalidPostal}
	}
	if user == nil {
		return &ValidationError{Message: MsgLoginRequired, Redirect: "/login"}
	}
	return nil
}
