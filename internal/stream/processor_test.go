package stream

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/snonux/cargo-check-i18n/internal/metrics"
	"codeberg.org/snonux/cargo-check-i18n/internal/translation"
)

type mapResolver struct {
	mu    sync.Mutex
	texts map[string]string
	err   error
	keys  []string
}

func (r *mapResolver) Resolve(ctx context.Context, key string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys = append(r.keys, key)
	if r.err != nil {
		return translation.FailureText, r.err
	}
	if text, ok := r.texts[key]; ok {
		return text, nil
	}
	return "T(" + key + ")", nil
}

func TestProcessLine(t *testing.T) {
	resolver := &mapResolver{texts: map[string]string{
		"warning: unused variable: `x`": "警告：未使用的变量：`x`",
	}}
	p := New(resolver, NewLineWriter(io.Discard))
	ctx := context.Background()

	colored := "\x1b[0m\x1b[1m\x1b[33mwarning\x1b[0m\x1b[0m\x1b[1m: unused variable: `x`\x1b[0m"
	assert.Equal(t, colored+" (警告：未使用的变量：`x`)", p.ProcessLine(ctx, colored))

	gutter := "\x1b[0m\x1b[1m\x1b[38;5;12m10\x1b[0m \x1b[0m\x1b[1m\x1b[38;5;12m|\x1b[0m let x = 5;"
	assert.Equal(t, gutter, p.ProcessLine(ctx, gutter))

	assert.Equal(t, "  --> src/main.rs:10:5", p.ProcessLine(ctx, "  --> src/main.rs:10:5"))

	// Decoration and surrounding whitespace do not change the key
	resolver.keys = nil
	p.ProcessLine(ctx, "   warning: unused variable: `x`   ")
	p.ProcessLine(ctx, colored)
	assert.Equal(t, []string{"warning: unused variable: `x`", "warning: unused variable: `x`"}, resolver.keys)
}

func TestProcessLine_Failure(t *testing.T) {
	m := metrics.New()
	p := New(&mapResolver{err: errors.New("down")}, NewLineWriter(io.Discard), WithMetrics(m))

	got := p.ProcessLine(context.Background(), "error: cannot find value")
	assert.Equal(t, "error: cannot find value (Translation failed.)", got)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TranslationFailures))
}

func TestRun(t *testing.T) {
	input := strings.Join([]string{
		"    Checking demo v0.1.0 (/tmp/demo)",
		"warning: unused variable: `x`",
		" --> src/main.rs:2:9",
		"  |",
		"2 |     let x = 5;",
		"  |         ^ help: if this is intentional, prefix it with an underscore: `_x`",
		"",
		"    Finished `dev` profile [unoptimized + debuginfo] target(s) in 0.10s",
	}, "\r\n")

	var buf bytes.Buffer
	m := metrics.New()
	p := New(&mapResolver{}, NewLineWriter(&buf), WithMetrics(m))

	require.NoError(t, p.Run(context.Background(), "stderr", strings.NewReader(input)))

	want := strings.Join([]string{
		"    Checking demo v0.1.0 (/tmp/demo)",
		"warning: unused variable: `x` (T(warning: unused variable: `x`))",
		" --> src/main.rs:2:9",
		"  |",
		"2 |     let x = 5;",
		"  |         ^ help: if this is intentional, prefix it with an underscore: `_x` (T(|         ^ help: if this is intentional, prefix it with an underscore: `_x`))",
		"",
		"    Finished `dev` profile [unoptimized + debuginfo] target(s) in 0.10s",
	}, "\n") + "\n"
	assert.Equal(t, want, buf.String())
	assert.Equal(t, 8.0, testutil.ToFloat64(m.LinesRead.WithLabelValues("stderr")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.LinesTranslated))
}

func TestRun_LongLine(t *testing.T) {
	long := strings.Repeat("x", 200*1024)
	var buf bytes.Buffer
	p := New(&mapResolver{}, NewLineWriter(&buf))

	require.NoError(t, p.Run(context.Background(), "stdout", strings.NewReader(long+"\nshort\n")))
	assert.Equal(t, long+"\nshort\n", buf.String())
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	p := New(&mapResolver{}, NewLineWriter(&buf))
	err := p.Run(ctx, "stdout", strings.NewReader("error: a\n"))
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, buf.String())
}

func TestRun_ConcurrentStreamsShareWriter(t *testing.T) {
	var lines []string
	for i := 0; i < 200; i++ {
		lines = append(lines, "plain line")
	}
	input := strings.Join(lines, "\n") + "\n"

	var buf bytes.Buffer
	w := NewLineWriter(&buf)
	resolver := &mapResolver{}

	var wg sync.WaitGroup
	for _, name := range []string{"stdout", "stderr"} {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			p := New(resolver, w)
			if err := p.Run(context.Background(), name, strings.NewReader(input)); err != nil {
				t.Errorf("Run(%s) failed: %v", name, err)
			}
		}(name)
	}
	wg.Wait()

	got := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, got, 400)
	sort.Strings(got)
	for _, line := range got {
		assert.Equal(t, "plain line", line)
	}
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func TestRun_WriteError(t *testing.T) {
	p := New(&mapResolver{}, NewLineWriter(failingWriter{}))
	err := p.Run(context.Background(), "stdout", strings.NewReader("hello\n"))
	assert.Error(t, err)
}
