package code

import (
	"fmt"
	"net/http"
)

// Code carries an API status code, its success flag and an optional payload.
type Code struct {
	code int
	// success or failure
	status bool
	msg    string
	data   interface{}
	// error detail lines
	details []string

	haveData    bool
	haveDetails bool
}

var codes = map[int]string{}

func NewError(code int, msg string) *Code {
	if _, ok := codes[code]; ok {
		panic(fmt.Sprintf("error code %d already exists, pick another one", code))
	}
	codes[code] = msg
	return &Code{code: code, status: false, msg: msg}
}

var sussCodes = map[int]string{}

func NewSuss(code int, msg string) *Code {
	if _, ok := sussCodes[code]; ok {
		panic(fmt.Sprintf("success code %d already exists, pick another one", code))
	}
	sussCodes[code] = msg
	return &Code{code: code, status: true, msg: msg}
}

// Clone returns a copy without the optional payload, so that WithData and
// WithDetails never mutate the shared registry value.
func (e *Code) Clone() *Code {
	return &Code{
		code:   e.code,
		status: e.status,
		msg:    e.msg,
	}
}

func (e *Code) Error() string {
	return e.Msg()
}

func (e *Code) Code() int {
	return e.code
}

func (e *Code) Status() bool {
	return e.status
}

func (e *Code) Msg() string {
	return e.msg
}

func (e *Code) Msgf(args ...interface{}) string {
	return fmt.Sprintf(e.msg, args...)
}

func (e *Code) Data() interface{} {
	return e.data
}

func (e *Code) Details() []string {
	return e.details
}

func (e *Code) HaveData() bool {
	return e.haveData
}

func (e *Code) HaveDetails() bool {
	return e.haveDetails
}

func (e *Code) WithData(data interface{}) *Code {
	c := e.Clone()
	c.haveData = true
	c.data = data
	return c
}

func (e *Code) WithDetails(details ...string) *Code {
	c := e.Clone()
	c.haveDetails = true
	c.details = append([]string{}, details...)
	return c
}

func (e *Code) StatusCode() int {
	return http.StatusOK
}
