package entities

// ResultType is built at runtime from the information sent by the updater.
// It fully determines how a Result is displayed. Two ResultTypes are the same
// when their fields are equal.
type ResultType struct {
	category          Category
	code              int
	presentationType  PresentationType
	detailMessageType DetailMessageType
	messageTemplate   string
}

// NewResultType creates a ResultType. No validation is performed; absent
// enum values are carried as their zero value.
func NewResultType(
	category Category,
	code int,
	presentationType PresentationType,
	detailMessageType DetailMessageType,
	messageTemplate string,
) ResultType {
	return ResultType{
		category:          category,
		code:              code,
		presentationType:  presentationType,
		detailMessageType: detailMessageType,
		messageTemplate:   messageTemplate,
	}
}

func (t ResultType) Category() Category {
	return t.category
}

func (t ResultType) Code() int {
	return t.code
}

func (t ResultType) PresentationType() PresentationType {
	return t.presentationType
}

func (t ResultType) DetailMessageType() DetailMessageType {
	return t.detailMessageType
}

// MessageTemplate returns the raw message, placeholder included.
func (t ResultType) MessageTemplate() string {
	return t.messageTemplate
}
