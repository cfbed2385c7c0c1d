//
// Define the `Amount` type, the coin unit moved between ledger accounts.
//
// - `Add` / `Sub` do an addition / substraction and return an error object
// - `MustAdd` / `MustSub` call `Add` / `Sub` and turn any `error` into a `panic`.
//   Those are provided for testing and should not be used by the ledger itself.
// - Invariant `panic`s if the instance it's called on violates its invariant
//
package common

import (
	"fmt"
	"strconv"

	"boscoin.io/sctester/lib/errors"
)

const (
	// The largest balance a single account can hold
	MaximumBalance Amount = Amount(^uint64(0) >> 1)
	// An invalid value, used to make an instance unusable
	invalidValue = Amount(MaximumBalance + 1)
)

type Amount uint64

// Check this type's invariant, that is, its value is <= MaximumBalance
func (a Amount) Invariant() {
	if a > MaximumBalance {
		// `uint64` is necessary to avoid a recursive call to `String`
		panic(fmt.Errorf("Amount '%d' is higher than the maximum balance (%d)", uint64(a), uint64(MaximumBalance)))
	}
}

func (a Amount) String() string {
	a.Invariant()
	return strconv.FormatUint(uint64(a), 10)
}

//
// Add an `Amount` to this `Amount`
//
// If the resulting value would overflow MaximumBalance, an error is returned,
// along with an invalid value.
//
func (a Amount) Add(added Amount) (Amount, error) {
	a.Invariant()
	added.Invariant()
	if n := a + added; n <= MaximumBalance {
		return n, nil
	}

	return invalidValue, errors.MaximumBalanceReached
}

func (a Amount) MustAdd(added Amount) Amount {
	if v, err := a.Add(added); err != nil {
		panic(err)
	} else {
		return v
	}
}

//
// Substract an `Amount` from this `Amount`
//
// If the resulting value would underflow, `InsufficientFunds` is returned,
// along with an invalid value.
//
func (a Amount) Sub(sub Amount) (Amount, error) {
	a.Invariant()
	sub.Invariant()
	if a < sub {
		return invalidValue, errors.InsufficientFunds
	}
	return a - sub, nil
}

func (a Amount) MustSub(sub Amount) Amount {
	if v, err := a.Sub(sub); err != nil {
		panic(err)
	} else {
		return v
	}
}

// Implement JSON's Marshaler interface
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("\"%s\"", a.String())), nil
}

// Implement JSON's Unmarshaler interface. Both the quoted form written by
// `MarshalJSON` and a bare number are accepted.
func (a *Amount) UnmarshalJSON(b []byte) (err error) {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	*a, err = AmountFromString(s)
	return
}

// Parse an `Amount` from a string input
//
// Params:
//   str = a string consisting only of numbers
//
// Returns:
//  A valid `Amount` and a `nil` error, or an invalid amount and an `error`
func AmountFromString(str string) (Amount, error) {
	value, err := strconv.ParseUint(str, 10, 64)
	if err != nil {
		return invalidValue, err
	}
	if Amount(value) > MaximumBalance {
		return invalidValue, errors.MaximumBalanceReached
	}

	return Amount(value), nil
}

func MustAmountFromString(str string) Amount {
	if value, err := AmountFromString(str); err != nil {
		panic(err)
	} else {
		return value
	}
}
