package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Resultados de Verify distinguibles solo para diagnóstico; la autorización trata ambos
// como "no autenticado".
var (
	ErrTokenInvalid = errors.New("jwt: token inválido")
	ErrTokenExpired = errors.New("jwt: token expirado")
)

// Claims incluye los claims estándar JWT más identidad y rol del usuario.
// El rol viaja en el token para que el middleware RBAC decida sin consultar la DB;
// un cambio de rol no se refleja hasta que se emite un token nuevo (no hay revocación).
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"id"`
	Email  string `json:"email"`
	Role   string `json:"role"` // "admin" | "manager" | "user"
}

// Identity datos que se firman en el token.
type Identity struct {
	UserID string
	Email  string
	Role   string
}

// Issuer firma y verifica tokens HS256 con un secreto de proceso, de solo lectura tras el arranque.
type Issuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// Option configura el Issuer.
type Option func(*Issuer)

// WithClock reemplaza el reloj (tests de expiración).
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) { i.now = now }
}

// NewIssuer construye el emisor. ttl es la vida por defecto de Issue.
func NewIssuer(secret, issuer string, ttl time.Duration, opts ...Option) (*Issuer, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt: secret vacío")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("jwt: ttl debe ser positivo")
	}
	i := &Issuer{secret: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}
	for _, o := range opts {
		o(i)
	}
	return i, nil
}

// TTL vida por defecto de los tokens emitidos.
func (i *Issuer) TTL() time.Duration { return i.ttl }

// Issue firma un token con la vida por defecto.
func (i *Issuer) Issue(id Identity) (string, error) {
	return i.IssueWithTTL(id, i.ttl)
}

// IssueWithTTL firma un token que vence en now+ttl.
func (i *Issuer) IssueWithTTL(id Identity, ttl time.Duration) (string, error) {
	now := i.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID: id.UserID,
		Email:  id.Email,
		Role:   id.Role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("jwt: firmar token: %w", err)
	}
	return signed, nil
}

// Verify valida firma y después expiración. Devuelve ErrTokenInvalid (malformado o
// firma incorrecta), ErrTokenExpired, o los claims si el token es válido.
func (i *Issuer) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		// La firma se comprueba antes que los claims temporales: un token expirado
		// con firma válida llega aquí como ErrTokenExpired.
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("%w: falta id", ErrTokenInvalid)
	}
	return claims, nil
}
