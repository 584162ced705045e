package verify

import (
	"context"
	"fmt"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// DemoTOTPSecret is the base32 secret used when no secret is configured.
// It exists so the prompt and the `otpgate totp` subcommand agree on a
// shared secret out of the box.
const DemoTOTPSecret = "JBSWY3DPEHPK3PXPJBSWY3DPEHPK3PXP"

// TOTP returns a verifier that validates the submitted code as a time-based
// one-time password for the given base32 secret.
func TOTP(secret string) (Func, error) {
	if secret == "" {
		return nil, fmt.Errorf("totp secret must not be empty")
	}
	// Probe the secret once up front so a malformed secret surfaces at
	// configuration time rather than on the first submission.
	if _, err := totp.GenerateCode(secret, timeNow()); err != nil {
		return nil, fmt.Errorf("invalid totp secret: %w", err)
	}

	return func(ctx context.Context, code string) (bool, error) {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		if !ValidCode(code) {
			return false, nil
		}
		// Same options totp.Validate uses, but against the injectable clock.
		ok, err := totp.ValidateCustom(code, secret, timeNow(), totp.ValidateOpts{
			Period:    30,
			Skew:      1,
			Digits:    otp.DigitsSix,
			Algorithm: otp.AlgorithmSHA1,
		})
		if err != nil {
			return false, fmt.Errorf("totp validation failed: %w", err)
		}
		return ok, nil
	}, nil
}

// CurrentTOTP returns the TOTP code that is valid right now for secret.
// Used by the `otpgate totp` subcommand to drive the demo flow.
func CurrentTOTP(secret string) (string, error) {
	code, err := totp.GenerateCode(secret, timeNow())
	if err != nil {
		return "", fmt.Errorf("failed to generate totp code: %w", err)
	}
	return code, nil
}
