package snapshot

import (
	"github.com/wecisecode/collections/errs"
)

// Store keeps named snapshot payloads in a durable place.
//
// Save replaces the payload stored under name. Load returns the stored
// payload, an error satisfying IsNotFound reports that nothing was ever
// stored. Watch invokes fn after every observed change of name until the
// returned cancel is called, fn runs on the store's watch goroutine.
type Store interface {
	Save(name string, data []byte) error
	Load(name string) ([]byte, error)
	Watch(name string, fn func()) (cancel func(), err error)
	Close() error
}

type notFoundError struct {
	name string
}

func (e *notFoundError) Error() string {
	return "no snapshot stored under " + e.name
}

// IsNotFound reports whether err means the named snapshot does not exist
// in the store, directly or as the cause of a wrapping error.
func IsNotFound(err error) bool {
	for err != nil {
		if _, ok := err.(*notFoundError); ok {
			return true
		}
		err = errs.Cause(err)
	}
	return false
}
