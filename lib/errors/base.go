package errors

import (
	"encoding/json"
	stderrors "errors"
)

type Error struct {
	Code    uint                   `json:"code"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data,omitempty"`

	cause error
}

func (o *Error) Serialize() (b []byte, err error) {
	b, err = json.Marshal(o)
	return
}

func (o *Error) Error() string {
	b, _ := o.Serialize()
	return string(b)
}

func (o *Error) SetData(k string, v interface{}) *Error {
	o.Data[k] = v

	return o
}

func (o *Error) Clone() *Error {
	var new Error
	new = *o

	new.Data = map[string]interface{}{}
	if o.Data != nil && len(o.Data) > 0 {
		for k, v := range o.Data {
			new.Data[k] = v
		}
	}

	return &new
}

// Wrap returns a copy of the error carrying `cause`; the cause message is
// kept in `Data` so it survives serialization.
func (o *Error) Wrap(cause error) *Error {
	new := o.Clone()
	if cause == nil {
		return new
	}

	new.cause = cause
	new.Data["cause"] = cause.Error()

	return new
}

func (o *Error) Unwrap() error {
	return o.cause
}

// Is matches by code, so cloned errors with extra data still compare equal to
// the catalog value.
func (o *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || o == nil || t == nil {
		return false
	}

	return o.Code == t.Code
}

func NewError(code uint, message string) *Error {
	return &Error{Code: code, Message: message, Data: map[string]interface{}{}}
}

// Find returns the outermost `*Error` in the chain of err.
func Find(err error) (*Error, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e, true
	}

	return nil, false
}
