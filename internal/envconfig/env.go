package envconfig

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

func envString(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

// parser keeps the first malformed value it sees so FromEnv can read every
// key and check once. Unset keys take their default; set but malformed keys
// are errors.
type parser struct {
	err error
}

func (p *parser) fail(key, value, want string) {
	if p.err == nil {
		p.err = fmt.Errorf("%w: %s=%q, want %s", ErrInvalidValue, key, value, want)
	}
}

func (p *parser) bool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.fail(key, v, "a boolean")
		return def
	}
	return b
}

// int reads a non-negative int.
func (p *parser) int(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		p.fail(key, v, "a non-negative integer")
		return def
	}
	return n
}

// seconds reads a positive whole number of seconds.
func (p *parser) seconds(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		p.fail(key, v, "a positive number of seconds")
		return def
	}
	return time.Duration(n) * time.Second
}
