package utils

import "strings"

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 8

// IsValidEmail does a cheap structural check on an email address.
func IsValidEmail(email string) bool {
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 {
		return false
	}
	domain := email[at+1:]
	dot := strings.Index(domain, ".")
	return dot > 0 && dot < len(domain)-1 && !strings.ContainsAny(email, " \t")
}

// IsValidPassword checks the password policy.
func IsValidPassword(password string) bool {
	return len(password) >= MinPasswordLength
}
