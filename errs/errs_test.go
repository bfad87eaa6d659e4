package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentinelsMatchByKind(t *testing.T) {
	err := fmt.Errorf("run: %w", &Error{Kind: KindMeasurementFailure, Token: 3, Paragraph: 0, Line: 1, Word: 2, ID: "x"})

	assert.True(t, errors.Is(err, ErrMeasurementFailure))
	assert.False(t, errors.Is(err, ErrHostUnavailable))
	assert.Equal(t, KindMeasurementFailure, KindOf(err))
	assert.Contains(t, err.Error(), "token=3 paragraph=0 line=1 word=2 id=x")
}

func TestInvalidConfigurationNamesField(t *testing.T) {
	err := InvalidConfiguration("settings", "maxCharWidth", "must be > 0, got %d", 0)

	assert.True(t, errors.Is(err, ErrInvalidConfiguration))
	assert.Equal(t, "settings: InvalidConfiguration field=maxCharWidth: must be > 0, got 0", err.Error())
}

func TestKindOfForeignError(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(errors.New("boom")))
	assert.Equal(t, "Unknown", KindOf(nil).String())
}

func TestUnwrapKeepsCause(t *testing.T) {
	cause := errors.New("clipboard denied")
	err := InputUnavailable("input", cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrInputUnavailable)
}
