package user

import (
	"regexp"
	"time"

	"cloud.google.com/go/civil"
)

const (
	emailPattern = `^[\w.-]+@([\w-]+\.)+[\w-]{2,}$`
	phonePattern = `^(\+380|0)[0-9]{9}$`
)

// Validator checks a fully populated user before it is admitted to the
// store. It has no dependencies and is safe for concurrent use.
type Validator struct {
	minAge int
	email  *regexp.Regexp
	phone  *regexp.Regexp
	now    func() time.Time
}

type ValidatorOption func(*Validator)

// WithClock overrides the wall clock used to determine "today".
func WithClock(now func() time.Time) ValidatorOption {
	return func(v *Validator) {
		v.now = now
	}
}

func NewValidator(minAge int, opts ...ValidatorOption) *Validator {
	v := &Validator{
		minAge: minAge,
		email:  regexp.MustCompile(emailPattern),
		phone:  regexp.MustCompile(phonePattern),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

func (v *Validator) MinAge() int {
	return v.minAge
}

// Validate runs the field checks in order and reports the first failure.
func (v *Validator) Validate(u User) error {
	switch {
	case u.FirstName == "":
		return invalidInput("First name cannot be empty.")
	case u.LastName == "":
		return invalidInput("Last name cannot be empty.")
	case u.Email == "":
		return invalidInput("Email cannot be empty.")
	case !v.email.MatchString(u.Email):
		return invalidInput("Invalid email format.")
	case !v.ValidPhone(u.PhoneNumber):
		return invalidInput("Invalid phone number format.")
	case u.DateOfBirth.IsZero():
		return invalidInput("Date of birth cannot be empty.")
	}

	today := v.Today()
	if u.DateOfBirth.After(today) {
		return invalidInput("The date of birth cannot be in the future.")
	}
	if AgeOn(u.DateOfBirth, today) < v.minAge {
		return invalidInput("To register, the user must be over %d years old.", v.minAge)
	}
	return nil
}

func (v *Validator) ValidEmail(email string) bool {
	return v.email.MatchString(email)
}

// ValidPhone accepts an empty number or one of the two local shapes.
func (v *Validator) ValidPhone(phone string) bool {
	return phone == "" || v.phone.MatchString(phone)
}

func (v *Validator) Today() civil.Date {
	return civil.DateOf(v.now())
}

// AgeOn returns the number of whole years between dob and day.
func AgeOn(dob, day civil.Date) int {
	years := day.Year - dob.Year
	if day.Month < dob.Month || (day.Month == dob.Month && day.Day < dob.Day) {
		years--
	}
	return years
}
