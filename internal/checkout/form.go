package checkout

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fjod/go_storefront/internal/domain"
)

var ErrInvalidForm = errors.New("invalid checkout form")

// Form is the checkout form as posted by the shopper, either as JSON or as
// a urlencoded form.
type Form struct {
	FirstName      string `json:"firstName" schema:"firstName"`
	LastName       string `json:"lastName" schema:"lastName"`
	Email          string `json:"email" schema:"email"`
	Phone          string `json:"phone" schema:"phone"`
	Address        string `json:"address" schema:"address"`
	City           string `json:"city" schema:"city"`
	Province       string `json:"province" schema:"province"`
	ZipCode        string `json:"zipCode" schema:"zipCode"`
	Country        string `json:"country" schema:"country"`
	AdditionalInfo string `json:"additionalInfo" schema:"additionalInfo"`
	PaymentMethod  string `json:"paymentMethod" schema:"paymentMethod"`
}

// ValidationError lists the fields that are missing or invalid.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: missing or invalid %s", ErrInvalidForm, strings.Join(e.Fields, ", "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidForm
}

// Validate checks that every required field is present and the payment
// method is one we accept. Values are only checked for presence.
func (f Form) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"firstName", f.FirstName},
		{"lastName", f.LastName},
		{"email", f.Email},
		{"phone", f.Phone},
		{"address", f.Address},
		{"city", f.City},
		{"province", f.Province},
		{"zipCode", f.ZipCode},
		{"country", f.Country},
	}

	var missing []string
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.name)
		}
	}
	if !domain.PaymentMethod(f.PaymentMethod).Valid() {
		missing = append(missing, "paymentMethod")
	}

	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

func (f Form) Customer() domain.Customer {
	return domain.Customer{
		FirstName:      strings.TrimSpace(f.FirstName),
		LastName:       strings.TrimSpace(f.LastName),
		Email:          strings.TrimSpace(f.Email),
		Phone:          strings.TrimSpace(f.Phone),
		Address:        strings.TrimSpace(f.Address),
		City:           strings.TrimSpace(f.City),
		Province:       strings.TrimSpace(f.Province),
		ZipCode:        strings.TrimSpace(f.ZipCode),
		Country:        strings.TrimSpace(f.Country),
		AdditionalInfo: strings.TrimSpace(f.AdditionalInfo),
	}
}
