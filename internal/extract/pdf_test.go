package extract

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/feichai0017/resume-screener/internal/errs"
	"github.com/feichai0017/resume-screener/pkg/logger"
	"github.com/feichai0017/resume-screener/pkg/storage"
)

type testStorage struct {
	docs map[string][]byte
}

func (m *testStorage) Store(ctx context.Context, reader io.Reader, key string) (string, error) {
	return key, nil
}

func (m *testStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	data, ok := m.docs[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *testStorage) Delete(ctx context.Context, key string) error { return nil }

func TestExtractMissingDocument(t *testing.T) {
	e := NewPDFExtractor(&testStorage{}, logger.NewNop())

	_, err := e.Extract(context.Background(), "gone.pdf")
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
}

func TestExtractCorruptDocument(t *testing.T) {
	e := NewPDFExtractor(&testStorage{docs: map[string][]byte{
		"broken.pdf": []byte("this is not a pdf"),
	}}, logger.NewNop())

	_, err := e.Extract(context.Background(), "broken.pdf")
	assert.Equal(t, errs.KindUpstreamFailure, errs.KindOf(err))
}

func TestNormalizeWhitespace(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"plain text", "plain text"},
		{"  leading and trailing  ", "leading and trailing"},
		{"tabs\tand   runs", "tabs and runs"},
		{"many\n\n\nnewlines", "many\nnewlines"},
		{"hard space", "hard space"},
		{"", ""},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, normalizeWhitespace(c.in))
	}
}
