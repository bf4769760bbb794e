// Package validation holds the declarative rule sets applied to request
// payloads before they reach the services.
package validation

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Kilat-Pet-Delivery/service-coupon/internal/application"
)

// Rule pairs a validator tag with the message reported when it fails.
type Rule struct {
	Tag     string
	Message string
}

type field struct {
	value interface{}
	rules []Rule
}

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	return v
}

// check evaluates every rule of every field and returns the failed messages
// in declaration order.
func check(fields ...field) []string {
	var violations []string
	for _, f := range fields {
		for _, r := range f.rules {
			if err := validate.Var(f.value, r.Tag); err != nil {
				violations = append(violations, r.Message)
			}
		}
	}
	return violations
}

var (
	couponNameRules = []Rule{
		{"notblank", "Coupon name is required"},
		{"max=50", "Coupon name cannot exceed 50 characters"},
		{"alphanum", "Coupon name can only contain alphanumeric characters"},
	}
	couponPercentRules = []Rule{
		{"min=1,max=100", "Discount percentage must be between 1 and 100"},
	}
	couponIDRules = []Rule{
		{"required", "Coupon ID is required"},
		{"gt=0", "Coupon ID must be greater than 0"},
	}

	loginUsernameRules = []Rule{
		{"notblank", "Username is required"},
		{"min=3", "Username must be at least 3 characters long"},
		{"max=50", "Username cannot exceed 50 characters"},
	}
	loginPasswordRules = []Rule{
		{"notblank", "Password is required"},
		{"min=6", "Password must be at least 6 characters long"},
	}

	registrationUsernameRules = append(append([]Rule(nil), loginUsernameRules...),
		Rule{"username", "Username can only contain letters, numbers, and underscores"},
	)
	registrationNameRules = []Rule{
		{"notblank", "Name is required"},
		{"min=2", "Name must be at least 2 characters long"},
		{"max=100", "Name cannot exceed 100 characters"},
	}
	registrationPasswordRules = append(append([]Rule(nil), loginPasswordRules...),
		Rule{"max=100", "Password cannot exceed 100 characters"},
	)
)

// CreateCoupon validates a coupon creation payload.
func CreateCoupon(req *application.CreateCouponRequest) []string {
	return check(
		field{req.Name, couponNameRules},
		field{req.Percent, couponPercentRules},
	)
}

// UpdateCoupon validates a coupon update payload.
func UpdateCoupon(req *application.UpdateCouponRequest) []string {
	return check(
		field{req.ID, couponIDRules},
		field{req.Name, couponNameRules},
		field{req.Percent, couponPercentRules},
	)
}

// Login validates a login payload.
func Login(req *application.LoginRequest) []string {
	return check(
		field{req.Username, loginUsernameRules},
		field{req.Password, loginPasswordRules},
	)
}

// Registration validates a registration payload.
func Registration(req *application.RegistrationRequest) []string {
	return check(
		field{req.Username, registrationUsernameRules},
		field{req.Name, registrationNameRules},
		field{req.Password, registrationPasswordRules},
	)
}
