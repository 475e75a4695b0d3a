// Package brief validates and assembles campaign briefs from form input.
package brief

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Sentinel validation errors. ErrMissingField blocks submission silently in
// the TUI; ErrNoPlatform must surface as a visible warning.
var (
	ErrMissingField = errors.New("brief: required field is empty")
	ErrNoPlatform   = errors.New("brief: select at least one platform")
)

// DefaultTone is the tone preselected in the brief form.
const DefaultTone = "professional"

// Tones is the tone catalog offered by the brief form, in display order.
var Tones = []string{"professional", "casual", "luxury", "playful", "urgent", "emotional"}

// Platform is one targetable ad platform for the form's checkbox list.
type Platform struct {
	Key  string
	Name string
}

// Platforms is the platform catalog, in display order.
var Platforms = []Platform{
	{Key: "instagram", Name: "Instagram"},
	{Key: "facebook", Name: "Facebook"},
	{Key: "twitter", Name: "Twitter / X"},
	{Key: "linkedin", Name: "LinkedIn"},
	{Key: "google", Name: "Google Display"},
}

// Fields is the raw form input before validation.
type Fields struct {
	ProductName string `validate:"required"`
	Description string `validate:"required"`
	Audience    string `validate:"required"`
	Tone        string
	Platforms   []string `validate:"min=1"`
}

// Brief is an immutable campaign brief. JSON tags match the wire format.
type Brief struct {
	ProductName string   `json:"product_name"`
	Description string   `json:"description"`
	Audience    string   `json:"audience"`
	Tone        string   `json:"tone"`
	Platforms   []string `json:"platforms"`
}

var validate = validator.New()

// Build trims and validates fields and assembles a Brief. It is a pure
// transformation: no side effects, no network.
func Build(f Fields) (Brief, error) {
	f.ProductName = strings.TrimSpace(f.ProductName)
	f.Description = strings.TrimSpace(f.Description)
	f.Audience = strings.TrimSpace(f.Audience)
	if f.Tone == "" {
		f.Tone = DefaultTone
	}

	if err := validate.Struct(f); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			// Text-field errors take precedence over the platform check,
			// matching the submission flow's validation order.
			for _, fe := range verrs {
				if fe.Field() != "Platforms" {
					return Brief{}, ErrMissingField
				}
			}
			return Brief{}, ErrNoPlatform
		}
		return Brief{}, err
	}

	return Brief{
		ProductName: f.ProductName,
		Description: f.Description,
		Audience:    f.Audience,
		Tone:        f.Tone,
		Platforms:   append([]string(nil), f.Platforms...),
	}, nil
}
