package errs

import (
	"github.com/spacemonkeygo/errors"
)

// 通过 SetData 附加的诱因错误，Contains 沿此链向下判断
var causeKey = errors.GenSym()

// Class is a hierarchical error category. Errors created from a Class are
// matched by Contains against the class itself and all of its ancestors.
type Class struct {
	ec *errors.ErrorClass
}

func newClass(name string, parent *Class) *Class {
	if parent == nil {
		return &Class{ec: errors.NewClass(name, errors.NoCaptureStack())}
	}
	return &Class{ec: parent.ec.NewClass(name, errors.NoCaptureStack())}
}

// New creates an error of this class, the args are formatted by fmt.Sprintf.
func (c *Class) New(format string, args ...interface{}) error {
	return c.ec.New(format, args...)
}

// Wrap creates an error of this class keeping err as its cause, so
// classifications of the cause still hold through Contains.
// Wrap of a nil error is nil.
func (c *Class) Wrap(err error) error {
	if err == nil {
		return nil
	}
	return c.ec.NewWith(err.Error(), errors.SetData(causeKey, err))
}

// Contains reports whether err belongs to this class, directly, through a
// subclass, or through a wrapped cause.
func (c *Class) Contains(err error) bool {
	for err != nil {
		if c.ec.Contains(err) {
			return true
		}
		se, ok := err.(*errors.Error)
		if !ok {
			return false
		}
		cause, _ := se.GetData(causeKey).(error)
		err = cause
	}
	return false
}

// Is reports whether this class equals parent or descends from it.
func (c *Class) Is(parent *Class) bool {
	return c.ec.Is(parent.ec)
}

func (c *Class) String() string {
	return c.ec.String()
}

// Is reports whether err belongs to class c.
func Is(err error, c *Class) bool {
	return c.Contains(err)
}

// Cause returns the wrapped cause of err, or nil if err carries none.
func Cause(err error) error {
	se, ok := err.(*errors.Error)
	if !ok {
		return nil
	}
	cause, _ := se.GetData(causeKey).(error)
	return cause
}
