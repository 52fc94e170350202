package llm

import (
	"net/http"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncateKeepsRunesWhole(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"short", "abc", 5, "abc"},
		{"exact", "abcde", 5, "abcde"},
		{"ascii", "abcdef", 3, "abc..."},
		{"cut inside rune", "aé", 2, "a..."},
		{"cut before rune", "aé", 1, "a..."},
		{"cut after rune", "éa", 2, "é..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, truncate(tt.in, tt.n))
		})
	}
}

func TestClassifyStatusTruncatesMultibyteBody(t *testing.T) {
	// 199 ASCII bytes put the 200-byte cut inside the first "é".
	body := strings.Repeat("x", maxErrorBody-1) + strings.Repeat("é", 10)

	err := classifyStatus(http.StatusTooManyRequests, []byte(body))

	assert.True(t, utf8.ValidString(err.Error()))
	assert.True(t, strings.HasSuffix(err.Error(), strings.Repeat("x", maxErrorBody-1)+"..."))
	assert.True(t, IsTransient(err))
}

func TestClassifyStatus(t *testing.T) {
	for code, transientWant := range map[int]bool{
		http.StatusTooManyRequests:     true,
		http.StatusBadGateway:          true,
		http.StatusInternalServerError: true,
		http.StatusBadRequest:          false,
		http.StatusUnauthorized:        false,
		http.StatusNotFound:            false,
	} {
		err := classifyStatus(code, nil)
		assert.Equal(t, transientWant, IsTransient(err), "status %d", code)
		assert.Equal(t, !transientWant, IsFatal(err), "status %d", code)
	}
}

func TestBackoffIsCapped(t *testing.T) {
	cfg := RetryConfig{BackoffBase: time.Second, BackoffMultiplier: 10, MaxBackoff: 2 * time.Second}
	for attempt := 1; attempt <= 4; attempt++ {
		assert.LessOrEqual(t, cfg.backoff(attempt), 2*time.Second+time.Second/2)
	}
}
