package auth

import (
	"errors"
	"fmt"
	"unicode"
)

// Policy is the configurable password policy: length bounds plus an
// optional restriction to letters and digits.
type Policy struct {
	MinLen       int
	MaxLen       int
	Alphanumeric bool
}

func (p Policy) Check(password string) error {
	if len(password) < p.MinLen {
		return fmt.Errorf("password must be at least %d characters long", p.MinLen)
	}
	if len(password) > p.MaxLen {
		return fmt.Errorf("password must be at most %d characters long", p.MaxLen)
	}

	if p.Alphanumeric {
		for _, r := range password {
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
				return errors.New("password may contain only letters and numbers")
			}
		}
	}

	return nil
}
