/*
Package randx provides functions for generating cryptographically secure random identifiers.

It is primarily used to generate the Base62 connection identifiers that name live
WebSocket connections in the room registry. Persisted entities (users, rooms,
messages) use store-generated UUIDs instead.
*/
package randx

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

const (
	// Base62Chars defines the character set used for Base62 encoding (0-9, A-Z, a-z).
	Base62Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// Base62Len is the total number of characters in the Base62 character set (62).
	Base62Len = int64(len(Base62Chars))

	// ConnectionIDPrefix is the prefix for live connection identifiers.
	ConnectionIDPrefix = "conn_"

	// ConnectionIDRawLength is the fixed length of the Base62 part of a connection ID.
	ConnectionIDRawLength = 12
)

// base62String generates a random Base62 string of the given length using crypto/rand.
func base62String(length int) (string, error) {
	result := make([]byte, length)

	for i := 0; i < length; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(Base62Len))
		if err != nil {
			return "", fmt.Errorf("failed to generate random number: %v", err)
		}

		result[i] = Base62Chars[num.Int64()]
	}

	return string(result), nil
}

// ConnectionID generates a unique identifier for a live WebSocket connection.
// It returns a string of the form "conn_XXXXXXXXXXXX" and any error encountered.
func ConnectionID() (string, error) {
	raw, err := base62String(ConnectionIDRawLength)
	if err != nil {
		return "", err
	}

	return ConnectionIDPrefix + raw, nil
}

// IsValidConnectionID checks if the given string is a valid connection identifier.
// Validity criteria include: the "conn_" prefix and a Base62 body of the fixed length.
func IsValidConnectionID(id string) bool {
	if !strings.HasPrefix(id, ConnectionIDPrefix) {
		return false
	}

	rawID := id[len(ConnectionIDPrefix):]

	if len(rawID) != ConnectionIDRawLength {
		return false
	}

	for _, char := range rawID {
		if !strings.ContainsRune(Base62Chars, char) {
			return false
		}
	}

	return true
}
