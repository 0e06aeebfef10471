// Package resettoken genera y verifica tokens de un solo uso para reseteo de contraseña.
// Solo el digest SHA-256 se persiste; el valor plano viaja una vez en el enlace de reseteo.
package resettoken

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"time"
)

// Size bytes aleatorios del token; en hex son 64 caracteres.
const Size = 32

// TTL vigencia fija de un token de reseteo.
const TTL = time.Hour

// Generate devuelve un token aleatorio fuerte codificado en hex.
func Generate() (string, error) {
	b := make([]byte, Size)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("resettoken: generar: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Hash digest determinístico usado para almacenar y para buscar por igualdad.
func Hash(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Verify compara el digest de token con hashed.
func Verify(token, hashed string) bool {
	return subtle.ConstantTimeCompare([]byte(Hash(token)), []byte(hashed)) == 1
}

// WellFormed informa si s tiene la forma de un token emitido (64 hex).
func WellFormed(s string) bool {
	if len(s) != Size*2 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

// ExpiresAt vencimiento de un token emitido a la hora issued.
func ExpiresAt(issued time.Time) time.Time { return issued.Add(TTL) }
