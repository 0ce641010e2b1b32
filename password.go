package chargeauth

import (
	"crypto/sha256"
	"encoding/hex"
)

// passwordSalt is the fixed salt appended to passwords before hashing. It is
// part of the stored credential format: changing it invalidates every stored
// hash.
const passwordSalt = "Qx9vLmChargePoint$2014"

// HashPassword returns the hex SHA-256 digest of password plus the fixed
// salt. The result is deterministic and is the stored credential form, used
// both at login verification and at credential update.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password + passwordSalt))
	return hex.EncodeToString(sum[:])
}
