package utils

import (
	"crypto/rand"
	"math/big"
)

const (
	otpMin = 100000
	otpMax = 999999
)

// GenerateOTP returns a 6-digit code drawn uniformly from [100000, 999999].
// crypto/rand.Int avoids the modulo bias a byte-per-digit scheme carries.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpMax-otpMin+1))
	if err != nil {
		return "", err
	}
	return n.Add(n, big.NewInt(otpMin)).String(), nil
}
