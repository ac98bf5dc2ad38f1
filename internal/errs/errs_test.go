package errs

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Class
	}{
		{"nil", nil, ClassUnknown},
		{"config", &ConfigurationError{Reason: "no key"}, ClassConfiguration},
		{"upstream", &UpstreamError{Provider: "gemini", Err: errors.New("boom")}, ClassUpstream},
		{"wrapped upstream", errors.Wrap(&UpstreamError{Provider: "openai"}, "fetching ai_news"), ClassUpstream},
		{"malformed", &MalformedResponseError{Excerpt: "hello", Err: errors.New("bad")}, ClassData},
		{"schema", &SchemaViolationError{Kind: "comparison", Field: "specs", Reason: "missing"}, ClassData},
		{"other", errors.New("disk full"), ClassUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestUserMessageDistinguishesClasses(t *testing.T) {
	cfg := UserMessage(&ConfigurationError{Reason: "no key"})
	up := UserMessage(&UpstreamError{Provider: "gemini"})
	data := UserMessage(&SchemaViolationError{Kind: "stats", Field: "", Reason: "not an object"})

	assert.NotEqual(t, cfg, up)
	assert.NotEqual(t, up, data)
	assert.NotEqual(t, cfg, data)
	assert.Equal(t, data, UserMessage(&MalformedResponseError{Excerpt: "x"}))
	assert.Empty(t, UserMessage(nil))
}

func TestUpstreamErrorUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := errors.Wrap(&UpstreamError{Provider: "gemini", Err: cause}, "calling backend")
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "connection reset")
}
