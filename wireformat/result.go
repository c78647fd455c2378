package wireformat

import "github.com/revrobotics/chupdater/domain/entities"

// EncodeResult flattens r into b. The message key receives the rendered
// message, not the template, and the code key is always written.
// The detail message is only written when DetailMessage returns one.
func EncodeResult(r entities.Result, b Bundle) {
	b.PutString(KeyCategory, r.Category().String())
	b.PutString(KeyPresentationType, r.PresentationType().String())
	b.PutString(KeyDetailMessageType, r.DetailMessageType().String())
	b.PutInt(KeyCode, r.Code())
	b.PutString(KeyMessage, r.Message())
	if detail := r.DetailMessage(); detail != nil {
		b.PutString(KeyDetailMessage, *detail)
	}
	b.PutCause(KeyCause, r.Cause())
}

// NewBundle returns a MapBundle holding r.
func NewBundle(r entities.Result) MapBundle {
	b := NewMapBundle()
	EncodeResult(r, b)
	return b
}

// DecodeResult rebuilds a Result from b. The stored message becomes the new
// template as is; it is never re-templated, so a SUBSTITUTED result read back
// renders the already substituted text. Unknown enum names decode as absent.
func DecodeResult(b Bundle) entities.Result {
	category, _ := entities.ParseCategory(stringOrEmpty(b, KeyCategory))
	presentationType, _ := entities.ParsePresentationType(stringOrEmpty(b, KeyPresentationType))
	detailMessageType, _ := entities.ParseDetailMessageType(stringOrEmpty(b, KeyDetailMessageType))

	resultType := entities.NewResultType(
		category,
		b.GetInt(KeyCode),
		presentationType,
		detailMessageType,
		stringOrEmpty(b, KeyMessage),
	)

	opts := []entities.ResultOption{entities.WithCause(b.GetCause(KeyCause))}
	if detail, ok := b.GetString(KeyDetailMessage); ok {
		opts = append(opts, entities.WithDetailMessage(detail))
	}
	return entities.NewResult(resultType, opts...)
}

func stringOrEmpty(b Bundle, key string) string {
	s, _ := b.GetString(key)
	return s
}
