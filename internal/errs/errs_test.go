package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	err := E(KindNotFound, "resume not found", nil)
	assert.Equal(t, KindNotFound, KindOf(err))

	wrapped := fmt.Errorf("handler: %w", err)
	assert.Equal(t, KindNotFound, KindOf(wrapped))

	assert.Equal(t, KindUnexpected, KindOf(errors.New("plain")))
}

func TestMessageHidesCause(t *testing.T) {
	cause := errors.New("dial tcp 10.0.0.1:6379: connection refused")
	err := E(KindStorageFailure, "failed to store file", cause)

	assert.Equal(t, "failed to store file", Message(err))
	assert.Contains(t, err.Error(), "connection refused")
	assert.ErrorIs(t, err, cause)
}

func TestEf(t *testing.T) {
	err := Ef(KindInvalidInput, "unsupported file type: %s", ".docx")
	assert.Equal(t, KindInvalidInput, KindOf(err))
	assert.Equal(t, "unsupported file type: .docx", err.Error())
}
