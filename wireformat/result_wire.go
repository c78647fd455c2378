package wireformat

// ResultWire is the serialized form of a result bundle, used when a bundle
// has to leave the process as JSON or YAML. It implements Bundle over its
// own fields; keys outside the result contract are dropped.
type ResultWire struct {
	Category          string       `json:"category" yaml:"category"`
	PresentationType  string       `json:"presentationType" yaml:"presentationType"`
	DetailMessageType string       `json:"detailMessageType" yaml:"detailMessageType"`
	Code              int          `json:"code" yaml:"code"`
	Message           string       `json:"message" yaml:"message"`
	DetailMessage     *string      `json:"detailMessage" yaml:"detailMessage"`
	Cause             *ErrorDetail `json:"cause" yaml:"cause"`
}

var _ Bundle = (*ResultWire)(nil)

// GetString reports empty enum and message fields as absent.
func (w *ResultWire) GetString(key string) (string, bool) {
	switch key {
	case KeyCategory:
		return w.Category, w.Category != ""
	case KeyPresentationType:
		return w.PresentationType, w.PresentationType != ""
	case KeyDetailMessageType:
		return w.DetailMessageType, w.DetailMessageType != ""
	case KeyMessage:
		return w.Message, w.Message != ""
	case KeyDetailMessage:
		if w.DetailMessage == nil {
			return "", false
		}
		return *w.DetailMessage, true
	default:
		return "", false
	}
}

func (w *ResultWire) GetInt(key string) int {
	if key == KeyCode {
		return w.Code
	}
	return 0
}

func (w *ResultWire) PutString(key, value string) {
	switch key {
	case KeyCategory:
		w.Category = value
	case KeyPresentationType:
		w.PresentationType = value
	case KeyDetailMessageType:
		w.DetailMessageType = value
	case KeyMessage:
		w.Message = value
	case KeyDetailMessage:
		w.DetailMessage = &value
	}
}

func (w *ResultWire) PutInt(key string, value int) {
	if key == KeyCode {
		w.Code = value
	}
}

// PutCause converts cause with ToErrorDetail.
func (w *ResultWire) PutCause(key string, cause error) {
	if key == KeyCause {
		w.Cause = ToErrorDetail(cause)
	}
}

func (w *ResultWire) GetCause(key string) error {
	if key != KeyCause || w.Cause == nil {
		return nil
	}
	return w.Cause
}
