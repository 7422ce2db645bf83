package handover

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"

	"kayayo/internal/pkg/errs"
)

// CodeLength is the number of digits in a handover code.
const CodeLength = 6

var codeSpace = big.NewInt(1_000_000)

// Code is a fixed-length numeric pickup code.
type Code struct {
	digits string
}

// GenerateCode draws a uniformly random code from crypto/rand.
func GenerateCode() (Code, error) {
	n, err := rand.Int(rand.Reader, codeSpace)
	if err != nil {
		return Code{}, fmt.Errorf("failed to generate handover code: %w", err)
	}
	return Code{digits: fmt.Sprintf("%0*d", CodeLength, n.Int64())}, nil
}

// CodeFromString accepts exactly CodeLength ASCII digits.
func CodeFromString(s string) (Code, error) {
	if len(s) != CodeLength {
		return Code{}, errs.NewValueIsInvalidErrorWithCause("code", fmt.Errorf("must be %d digits", CodeLength))
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return Code{}, errs.NewValueIsInvalidErrorWithCause("code", fmt.Errorf("must be %d digits", CodeLength))
		}
	}
	return Code{digits: s}, nil
}

func (c Code) Validate() error {
	if c.digits == "" {
		return errs.NewValueIsRequiredError("code")
	}
	return nil
}

func (c Code) String() string {
	return c.digits
}

// Matches compares in constant time.
func (c Code) Matches(submitted Code) bool {
	return subtle.ConstantTimeCompare([]byte(c.digits), []byte(submitted.digits)) == 1
}
