package wireformat_test

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/revrobotics/chupdater/domain/entities"
	"github.com/revrobotics/chupdater/wireformat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func sampleResults() map[string]entities.Result {
	return map[string]entities.Result{
		"status logged": entities.NewResult(
			entities.NewResultType(entities.CategoryOTAUpdate, 0, entities.PresentationStatus, entities.DetailLogged, "Extracting OS update"),
			entities.WithDetailMessage("ota.zip"),
		),
		"error substituted": entities.NewResult(
			entities.NewResultType(entities.CategoryAppUpdate, 12, entities.PresentationError, entities.DetailSubstituted, "Error: %s"),
			entities.WithDetailMessage("disk full"),
			entities.WithCause(&wireformat.ErrorDetail{Message: "ENOSPC", Type: "internal"}),
		),
		"substituted without detail": entities.NewResult(
			entities.NewResultType(entities.CategoryCommon, 3, entities.PresentationError, entities.DetailSubstituted, "Failed: %s"),
		),
		"prompt displayed": entities.NewResult(
			entities.NewResultType(entities.CategoryCommon, 7, entities.PresentationPrompt, entities.DetailDisplayed, "Reboot required"),
			entities.WithDetailMessage(""),
		),
		"success without detail": entities.NewResult(
			entities.NewResultType(entities.CategoryAppUpdate, 1, entities.PresentationSuccess, entities.DetailLogged, "Installed"),
		),
	}
}

func TestEncodeResult_Keys(t *testing.T) {
	r := entities.NewResult(
		entities.NewResultType(entities.CategoryAppUpdate, 2, entities.PresentationStatus, entities.DetailDisplayed, "Installing"),
		entities.WithDetailMessage("50%"),
	)
	b := wireformat.NewBundle(r)

	assert.ElementsMatch(t, wireformat.Keys, b.Keys())

	category, ok := b.GetString(wireformat.KeyCategory)
	require.True(t, ok)
	assert.Equal(t, "APP_UPDATE", category)

	presentation, _ := b.GetString(wireformat.KeyPresentationType)
	assert.Equal(t, "STATUS", presentation)

	detailType, _ := b.GetString(wireformat.KeyDetailMessageType)
	assert.Equal(t, "DISPLAYED", detailType)

	assert.Equal(t, 2, b.GetInt(wireformat.KeyCode))

	detail, ok := b.GetString(wireformat.KeyDetailMessage)
	require.True(t, ok)
	assert.Equal(t, "50%", detail)

	assert.True(t, b.Has(wireformat.KeyCause))
	assert.Nil(t, b.GetCause(wireformat.KeyCause))
}

func TestEncodeResult_AlwaysWritesCode(t *testing.T) {
	r := entities.NewResult(entities.NewResultType(entities.CategoryCommon, 0, entities.PresentationSuccess, entities.DetailLogged, "done"))
	b := wireformat.NewBundle(r)

	assert.True(t, b.Has(wireformat.KeyCode))
	assert.Equal(t, 0, b[wireformat.KeyCode])
}

func TestEncodeResult_RendersMessage(t *testing.T) {
	r := entities.NewResult(
		entities.NewResultType(entities.CategoryAppUpdate, 12, entities.PresentationError, entities.DetailSubstituted, "Error: %s"),
		entities.WithDetailMessage("disk full"),
	)
	b := wireformat.NewBundle(r)

	msg, _ := b.GetString(wireformat.KeyMessage)
	assert.Equal(t, "Error: disk full", msg)
	assert.False(t, b.Has(wireformat.KeyDetailMessage), "substituted detail must not be written twice")
}

func TestEncodeResult_AbsentEnums(t *testing.T) {
	r := entities.NewResult(entities.NewResultType("", 4, "", "", "raw"))
	b := wireformat.NewBundle(r)

	category, ok := b.GetString(wireformat.KeyCategory)
	assert.True(t, ok)
	assert.Empty(t, category)

	back := wireformat.DecodeResult(b)
	assert.False(t, back.Category().Valid())
	assert.False(t, back.PresentationType().Valid())
	assert.Equal(t, "raw", back.Message())
}

func TestRoundTrip_MapBundle(t *testing.T) {
	for name, original := range sampleResults() {
		t.Run(name, func(t *testing.T) {
			back := wireformat.DecodeResult(wireformat.NewBundle(original))

			assert.Equal(t, original.Category(), back.Category())
			assert.Equal(t, original.Code(), back.Code())
			assert.Equal(t, original.PresentationType(), back.PresentationType())
			assert.Equal(t, original.DetailMessageType(), back.DetailMessageType())
			assert.Equal(t, original.Cause(), back.Cause())
			assert.Equal(t, original.DetailMessage(), back.DetailMessage())
			assert.Equal(t, original.Message(), back.Message())
		})
	}
}

func TestRoundTrip_ResultWire(t *testing.T) {
	for name, original := range sampleResults() {
		t.Run(name, func(t *testing.T) {
			back := wireformat.DecodeResult(wireformat.Wire(original))

			assert.Equal(t, original.Category(), back.Category())
			assert.Equal(t, original.Code(), back.Code())
			assert.Equal(t, original.PresentationType(), back.PresentationType())
			assert.Equal(t, original.DetailMessage(), back.DetailMessage())
			assert.Equal(t, original.Message(), back.Message())
			assert.Equal(t, original.Cause(), back.Cause())
		})
	}
}

func TestRoundTrip_SubstitutedTemplateIsNotRestored(t *testing.T) {
	original := entities.NewResult(
		entities.NewResultType(entities.CategoryAppUpdate, 12, entities.PresentationError, entities.DetailSubstituted, "Error: %s"),
		entities.WithDetailMessage("disk full"),
	)

	once := wireformat.DecodeResult(wireformat.NewBundle(original))
	assert.Equal(t, "Error: disk full", once.ResultType().MessageTemplate())
	assert.NotEqual(t, original.ResultType(), once.ResultType())
	assert.Equal(t, entities.DetailSubstituted, once.DetailMessageType())

	twice := wireformat.DecodeResult(wireformat.NewBundle(once))
	assert.Equal(t, "Error: disk full", twice.Message())
	assert.Equal(t, once.ResultType(), twice.ResultType())
}

func TestDecodeResult_Defaults(t *testing.T) {
	r := wireformat.DecodeResult(wireformat.NewMapBundle())

	assert.Equal(t, 0, r.Code())
	assert.Empty(t, r.Message())
	assert.Nil(t, r.DetailMessage())
	assert.Nil(t, r.Cause())
	assert.False(t, r.Category().Valid())
}

func TestDecodeResult_UnknownEnums(t *testing.T) {
	b := wireformat.MapBundle{
		wireformat.KeyCategory:          "FIRMWARE",
		wireformat.KeyPresentationType:  "TOAST",
		wireformat.KeyDetailMessageType: "SUBSTITUTED",
		wireformat.KeyMessage:           "Hello %s",
		wireformat.KeyDetailMessage:     "world",
	}
	r := wireformat.DecodeResult(b)

	assert.Equal(t, entities.Category(""), r.Category())
	assert.Equal(t, entities.PresentationType(""), r.PresentationType())
	assert.Equal(t, "Hello world", r.Message())
	assert.Nil(t, r.DetailMessage())
}

func TestMapBundle_GetInt(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  int
	}{
		{"int", 5, 5},
		{"int64", int64(6), 6},
		{"int32", int32(7), 7},
		{"int8", int8(-3), -3},
		{"int16", int16(300), 300},
		{"uint", uint(11), 11},
		{"uint8", uint8(12), 12},
		{"uint16", uint16(13), 13},
		{"uint32", uint32(14), 14},
		{"uint64", uint64(15), 15},
		{"uint64 overflow", uint64(math.MaxUint64), 0},
		{"float64 whole", float64(8), 8},
		{"float64 fraction", 8.5, 0},
		{"json number", json.Number("9"), 9},
		{"string", "10", 0},
		{"nil", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := wireformat.MapBundle{"n": tt.value}
			assert.Equal(t, tt.want, b.GetInt("n"))
		})
	}

	assert.Equal(t, 0, wireformat.NewMapBundle().GetInt("missing"))
}

func TestMapBundle_Cause(t *testing.T) {
	cause := errors.New("boom")
	b := wireformat.NewMapBundle()
	b.PutCause(wireformat.KeyCause, cause)
	assert.Same(t, cause, b.GetCause(wireformat.KeyCause))

	b.PutString("other", "not an error")
	assert.Nil(t, b.GetCause("other"))
}

func TestResultWire_Bundle(t *testing.T) {
	w := &wireformat.ResultWire{}

	_, ok := w.GetString(wireformat.KeyDetailMessage)
	assert.False(t, ok)

	w.PutString(wireformat.KeyDetailMessage, "")
	detail, ok := w.GetString(wireformat.KeyDetailMessage)
	assert.True(t, ok)
	assert.Empty(t, detail)

	w.PutString("unrelated", "dropped")
	_, ok = w.GetString("unrelated")
	assert.False(t, ok)

	w.PutInt(wireformat.KeyCode, 11)
	w.PutInt("unrelated", 99)
	assert.Equal(t, 11, w.GetInt(wireformat.KeyCode))
	assert.Equal(t, 0, w.GetInt("unrelated"))

	assert.Nil(t, w.GetCause(wireformat.KeyCause))
	w.PutCause(wireformat.KeyCause, errors.New("plain"))
	require.NotNil(t, w.Cause)
	assert.Equal(t, "plain", w.GetCause(wireformat.KeyCause).Error())

	w.PutCause(wireformat.KeyCause, nil)
	assert.Nil(t, w.Cause)
	assert.NoError(t, w.GetCause(wireformat.KeyCause))
}

func TestResultWire_PlainCauseText(t *testing.T) {
	original := entities.NewResult(
		entities.NewResultType(entities.CategoryOTAUpdate, 9, entities.PresentationError, entities.DetailLogged, "OTA failed"),
		entities.WithCause(errors.New("checksum mismatch")),
	)
	back := wireformat.DecodeResult(wireformat.Wire(original))

	require.Error(t, back.Cause())
	assert.Equal(t, "checksum mismatch", back.Cause().Error())
}

func TestDetailPointerEquality(t *testing.T) {
	r := entities.NewResult(
		entities.NewResultType(entities.CategoryCommon, 0, entities.PresentationStatus, entities.DetailDisplayed, "x"),
		entities.WithDetailMessage("shown"),
	)
	assert.Equal(t, strPtr("shown"), wireformat.DecodeResult(wireformat.NewBundle(r)).DetailMessage())
}
