package service

import (
	"errors"
	"fmt"
	"unicode"

	"github.com/astra-preschool/internal/config"
)

// ErrWeakPassword is matched by errors.Is against every policy violation.
var ErrWeakPassword = errors.New("password does not meet the policy")

type passwordPolicyError struct {
	msg string
}

func (e passwordPolicyError) Error() string {
	return e.msg
}

func (e passwordPolicyError) Is(target error) bool {
	return target == ErrWeakPassword
}

func validatePassword(policy config.PasswordPolicyConfig, password string) error {
	if policy.MinLength <= 0 && !policy.RequireNumber {
		return nil
	}

	if policy.MinLength > 0 {
		if len([]rune(password)) < policy.MinLength {
			return passwordPolicyError{msg: fmt.Sprintf("password must be at least %d characters", policy.MinLength)}
		}
	}

	if policy.RequireNumber {
		hasNumber := false
		for _, r := range password {
			if unicode.IsDigit(r) {
				hasNumber = true
				break
			}
		}
		if !hasNumber {
			return passwordPolicyError{msg: "password must contain a number"}
		}
	}

	return nil
}
