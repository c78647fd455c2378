// Package wireformat defines how updater results cross a process boundary.
// A Result is flattened into a Bundle, a small string/int key-value
// container, and read back from one. The keys below form the contract with
// the Control Hub Updater and must remain stable.
package wireformat

// Bundle keys.
const (
	// KeyCategory holds the Category enum name.
	KeyCategory = "category"
	// KeyPresentationType holds the PresentationType enum name.
	KeyPresentationType = "presentationType"
	// KeyDetailMessageType holds the DetailMessageType enum name.
	KeyDetailMessageType = "detailMessageType"
	// KeyCode holds the result code as an int.
	KeyCode = "code"
	// KeyMessage holds the rendered message. It can be ignored if you know
	// what the result code means.
	KeyMessage = "message"
	// KeyDetailMessage holds either nothing or a string. Should be logged if present.
	KeyDetailMessage = "detailMessage"
	// KeyCause holds either nothing or a serialized error. Should be logged if present.
	KeyCause = "cause"
)

// Keys lists every key written by EncodeResult.
var Keys = []string{
	KeyCategory,
	KeyPresentationType,
	KeyDetailMessageType,
	KeyCode,
	KeyMessage,
	KeyDetailMessage,
	KeyCause,
}

// Bundle is the transport container a Result is flattened into.
// Implementations may be a map, a struct or an IPC parcel.
type Bundle interface {
	// GetString returns the string stored under key and whether one is present.
	GetString(key string) (string, bool)
	// GetInt returns the int stored under key, or 0 when absent.
	GetInt(key string) int
	PutString(key, value string)
	PutInt(key string, value int)
	// PutCause stores an error in whatever serializable form the container
	// supports. A nil cause is stored as an explicit null.
	PutCause(key string, cause error)
	// GetCause returns the error stored under key, or nil.
	GetCause(key string) error
}
