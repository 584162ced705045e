// Package verify provides verification collaborators for the OTP entry
// controller.
//
// A verifier is an injected asynchronous function taking the entered code
// and reporting whether it is valid. The controller treats an error return
// exactly like a false result, so verifiers are free to fail loudly; the
// error is logged and surfaced as a normal verification failure.
package verify

import (
	"context"
	"crypto/subtle"
	"fmt"
	"regexp"
	"time"
)

// timeNow is swappable in tests that pin the TOTP clock.
var timeNow = time.Now

// Func checks a submitted code. Implementations must honor ctx cancellation
// and may be called at most once per submission attempt.
type Func func(ctx context.Context, code string) (bool, error)

// DemoCode is the code accepted by the default demo verifier.
const DemoCode = "123456"

// codePattern is the shape every submitted code must have. The controller
// only submits complete codes, but verifiers validate independently since
// the check subcommand feeds them directly.
var codePattern = regexp.MustCompile(`^[0-9]{6}$`)

// ValidCode reports whether code is exactly six decimal digits.
func ValidCode(code string) bool {
	return codePattern.MatchString(code)
}

// Static returns a verifier that compares the submitted code against a fixed
// expected code. The comparison is constant time; not because this demo
// needs it, but because string equality on secrets is a habit worth keeping.
func Static(expected string) (Func, error) {
	if !ValidCode(expected) {
		return nil, fmt.Errorf("expected code must be 6 digits, got %q", expected)
	}
	return func(ctx context.Context, code string) (bool, error) {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		if !ValidCode(code) {
			return false, nil
		}
		return subtle.ConstantTimeCompare([]byte(code), []byte(expected)) == 1, nil
	}, nil
}
