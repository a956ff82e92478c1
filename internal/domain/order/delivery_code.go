package order

import (
	"crypto/rand"
	"math/big"

	"github.com/orderdesk/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// DeliveryCodeLength is the number of digits in a delivery confirmation code
const DeliveryCodeLength = 6

// GenerateDeliveryCode produces a random numeric delivery code. Leading
// zeros are allowed, so the code space is the full 10^6.
func GenerateDeliveryCode() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < DeliveryCodeLength; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", shared.NewDomainError("INTERNAL_ERROR", "Failed to generate delivery code")
	}

	code := n.String()
	for len(code) < DeliveryCodeLength {
		code = "0" + code
	}
	return code, nil
}

// HashDeliveryCode returns the bcrypt hash of a delivery code. Only the hash
// is ever persisted.
func HashDeliveryCode(code string) (string, error) {
	if len(code) != DeliveryCodeLength {
		return "", shared.NewDomainError("VALIDATION_ERROR", "Delivery code must be 6 digits")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", shared.NewDomainError("INTERNAL_ERROR", "Failed to hash delivery code")
	}
	return string(hash), nil
}

// CompareDeliveryCode reports whether the presented code matches the stored
// hash. Comparison cost is bcrypt's, so brute forcing over the API is slow.
func CompareDeliveryCode(hash, code string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) == nil
}
