package pattern

import "github.com/google/uuid"

// NewID returns a collision-resistant opaque pattern id.
//
// Ids are random UUIDs with a short prefix so they read well in logs
// and store files. There is no shared counter and no ordering between
// ids generated by concurrent callers.
func NewID() string {
	return "pat-" + uuid.NewString()
}

// ResetIDCounter exists for compatibility with callers that reset the
// legacy sequential id generator between runs. Random ids need no
// reset; this is a no-op.
func ResetIDCounter() {}
