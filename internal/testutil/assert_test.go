package testutil

import (
	"errors"
	"fmt"
	"testing"
)

// recorder captures failures instead of failing the enclosing test.
type recorder struct {
	testing.TB
	failed bool
	fatal  bool
	msg    string
}

func (r *recorder) Helper() {}

func (r *recorder) Errorf(format string, args ...interface{}) {
	r.failed = true
	r.msg = fmt.Sprintf(format, args...)
}

func (r *recorder) Error(args ...interface{}) {
	r.failed = true
	r.msg = fmt.Sprint(args...)
}

func (r *recorder) Fatalf(format string, args ...interface{}) {
	r.failed = true
	r.fatal = true
	r.msg = fmt.Sprintf(format, args...)
}

func TestAssertEqual(t *testing.T) {
	r := &recorder{TB: t}
	AssertEqual(r, map[string]string{"Event": "Rated Rapid game"}, map[string]string{"Event": "Rated Rapid game"})
	if r.failed {
		t.Errorf("equal maps reported as different: %s", r.msg)
	}

	r = &recorder{TB: t}
	AssertEqual(r, "1-0", "0-1", "result of game %d", 3)
	if !r.failed {
		t.Fatal("different values not reported")
	}
	AssertContains(t, r.msg, "result of game 3: mismatch")
}

func TestAssertNoError(t *testing.T) {
	r := &recorder{TB: t}
	AssertNoError(r, nil)
	AssertFalse(t, r.failed, "nil error reported")

	r = &recorder{TB: t}
	AssertNoError(r, errors.New("boom"))
	AssertTrue(t, r.fatal, "non-nil error must be fatal")
}

func TestAssertErrorIs(t *testing.T) {
	sentinel := errors.New("sentinel")

	r := &recorder{TB: t}
	AssertErrorIs(r, fmt.Errorf("wrapped: %w", sentinel), sentinel)
	AssertFalse(t, r.failed, "wrapped sentinel not matched")

	r = &recorder{TB: t}
	AssertErrorIs(r, nil, sentinel)
	AssertTrue(t, r.failed, "nil error accepted")

	r = &recorder{TB: t}
	AssertErrorIs(r, errors.New("other"), sentinel)
	AssertTrue(t, r.failed, "unrelated error accepted")
}

func TestPrefix(t *testing.T) {
	tests := []struct {
		name string
		args []interface{}
		want string
	}{
		{"none", nil, ""},
		{"plain", []interface{}{"scan"}, "scan: "},
		{"formatted", []interface{}{"record %d", 2}, "record 2: "},
		{"non-string", []interface{}{42}, "42: "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			AssertEqual(t, prefix(tt.args...), tt.want)
		})
	}
}
