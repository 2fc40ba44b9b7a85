package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestFrom_FallsBackToSingleton(t *testing.T) {
	assert.Same(t, L(), From(context.Background()))
	assert.Same(t, L(), From(nil))
}

func TestToContext_RoundTrip(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := zap.New(core)

	ctx := ToContext(context.Background(), l.With(RequestID("req-1")))
	From(ctx).Info("hello", ClientID("app_x"))

	entries := logs.All()
	assert.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "app_x", fields["client_id"])
}

func TestCodeRef_DoesNotLeakCode(t *testing.T) {
	code := "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"
	f := CodeRef(code)
	assert.Equal(t, "code_ref", f.Key)
	assert.Len(t, f.String, 12)
	assert.NotContains(t, code, f.String)
	assert.Equal(t, f.String, CodeRef(code).String)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zap.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zap.WarnLevel, parseLevel("WARN"))
	assert.Equal(t, zap.InfoLevel, parseLevel("bogus"))
}

func TestMaskEmail(t *testing.T) {
	cases := map[string]string{
		"":                    "",
		"ab":                  "***",
		"johndoe":             "j…e",
		"John@Example.com":    "j…@e….com",
		"a@b.io":              "a@b.io",
		"  jane@mail.co.uk  ": "j…@m….co.uk",
	}
	for in, want := range cases {
		assert.Equal(t, want, MaskEmail(in), in)
	}
}
