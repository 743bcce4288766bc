// utils/random.go
package utils

import (
	"crypto/rand"
	"math/big"
)

const codeAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// GenerateShopCode produces the short code barbers hand to colleagues so
// they can join the same barbershop.
func GenerateShopCode() string {
	code := make([]byte, 8)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeAlphabet))))
		if err != nil {
			panic("failed to generate shop code")
		}
		code[i] = codeAlphabet[n.Int64()]
	}
	return string(code)
}
