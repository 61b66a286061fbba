package domain

import (
	"regexp"
	"strings"
)

// https://html.spec.whatwg.org/#valid-e-mail-address
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+/=?^_\x60{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)

var genders = map[string]struct{}{
	"":                  {},
	"female":            {},
	"male":              {},
	"other":             {},
	"prefer_not_to_say": {},
}

// MissingContactMessage is shown when name or email is absent at submit.
const MissingContactMessage = "Please fill in your name and email"

// ValidateName checks the intro-stage name.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Field: "name", Message: "Please enter your name"}
	}
	return nil
}

// ValidateContact checks the respondent fields required for submission.
func ValidateContact(r Respondent) error {
	if strings.TrimSpace(r.Name) == "" {
		return &ValidationError{Field: "name", Message: MissingContactMessage}
	}
	if strings.TrimSpace(r.Email) == "" {
		return &ValidationError{Field: "email", Message: MissingContactMessage}
	}
	if !emailRegex.MatchString(strings.TrimSpace(r.Email)) {
		return &ValidationError{Field: "email", Message: "Please enter a valid email address"}
	}
	if _, ok := genders[r.Gender]; !ok {
		return &ValidationError{Field: "gender", Message: "Please choose a gender from the list"}
	}
	return nil
}

// NormalizeRespondent trims every field. The email keeps its case.
func NormalizeRespondent(r Respondent) Respondent {
	return Respondent{
		Name:   strings.TrimSpace(r.Name),
		Email:  strings.TrimSpace(r.Email),
		Age:    strings.TrimSpace(r.Age),
		Gender: strings.TrimSpace(r.Gender),
	}
}
