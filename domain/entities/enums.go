package entities

// Category groups results by the part of the updater that produced them.
type Category string

const (
	CategoryCommon    Category = "COMMON"
	CategoryOTAUpdate Category = "OTA_UPDATE"
	CategoryAppUpdate Category = "APP_UPDATE"
)

var categories = []Category{CategoryCommon, CategoryOTAUpdate, CategoryAppUpdate}

// ParseCategory maps an exact enum name to its Category.
// Unknown names return the zero Category and false.
func ParseCategory(s string) (Category, bool) {
	for _, c := range categories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	_, ok := ParseCategory(string(c))
	return ok
}

func (c Category) String() string {
	return string(c)
}

// PresentationType describes how a result is surfaced to the user.
type PresentationType string

const (
	PresentationSuccess PresentationType = "SUCCESS"
	PresentationError   PresentationType = "ERROR"
	// PresentationStatus results are meant to be non-dismissable.
	PresentationStatus PresentationType = "STATUS"
	PresentationPrompt PresentationType = "PROMPT"
)

var presentationTypes = []PresentationType{
	PresentationSuccess,
	PresentationError,
	PresentationStatus,
	PresentationPrompt,
}

// ParsePresentationType maps an exact enum name to its PresentationType.
// Unknown names return the zero PresentationType and false.
func ParsePresentationType(s string) (PresentationType, bool) {
	for _, p := range presentationTypes {
		if string(p) == s {
			return p, true
		}
	}
	return "", false
}

// Valid reports whether p is one of the known presentation types.
func (p PresentationType) Valid() bool {
	_, ok := ParsePresentationType(string(p))
	return ok
}

func (p PresentationType) String() string {
	return string(p)
}

// DetailMessageType is the policy applied to a result's detail message.
type DetailMessageType string

const (
	// DetailLogged detail messages are only logged, if present.
	DetailLogged DetailMessageType = "LOGGED"
	// DetailDisplayed detail messages are shown to the user, if present.
	DetailDisplayed DetailMessageType = "DISPLAYED"
	// DetailSubstituted detail messages are injected into the message
	// template. A missing detail message injects an empty string.
	DetailSubstituted DetailMessageType = "SUBSTITUTED"
)

var detailMessageTypes = []DetailMessageType{DetailLogged, DetailDisplayed, DetailSubstituted}

// ParseDetailMessageType maps an exact enum name to its DetailMessageType.
// Unknown names return the zero DetailMessageType and false.
func ParseDetailMessageType(s string) (DetailMessageType, bool) {
	for _, d := range detailMessageTypes {
		if string(d) == s {
			return d, true
		}
	}
	return "", false
}

// Valid reports whether d is one of the known detail message types.
func (d DetailMessageType) Valid() bool {
	_, ok := ParseDetailMessageType(string(d))
	return ok
}

func (d DetailMessageType) String() string {
	return string(d)
}
