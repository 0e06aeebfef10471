// Package password hashea y verifica credenciales con bcrypt (salt incluido, costo ajustable).
package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hasher hash unidireccional de contraseñas.
type Hasher struct {
	cost int
}

// NewHasher construye el hasher; un costo fuera de rango usa bcrypt.DefaultCost.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash devuelve el hash bcrypt de plaintext. Un error aquí es fatal para la operación que llama.
func (h *Hasher) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("password: hash: %w", err)
	}
	return string(hash), nil
}

// Verify compara en tiempo constante. Un hash malformado devuelve false, nunca error.
func (h *Hasher) Verify(plaintext, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plaintext)) == nil
}
