// Package ratelimit contador de ventana fija por clave (dirección del cliente).
// Estado en memoria del proceso: no se persiste ni se comparte entre instancias.
package ratelimit

import (
	"context"
	"math"
	"sync"
	"time"
)

// Decision resultado de Check.
type Decision struct {
	Allowed    bool
	RetryAfter int // segundos hasta que se abre la próxima ventana; > 0 solo si !Allowed
	Remaining  int
}

type window struct {
	count   int
	resetAt time.Time
}

// Limiter contador sincronizado. Se construye una vez por política (auth, api) y se inyecta.
type Limiter struct {
	mu      sync.Mutex
	windows map[string]*window
	max     int
	period  time.Duration
	now     func() time.Time
}

// Option configura el Limiter.
type Option func(*Limiter)

// WithClock reemplaza el reloj (tests).
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// New permite max peticiones por clave en cada ventana de duración period.
func New(max int, period time.Duration, opts ...Option) *Limiter {
	if max < 1 {
		max = 1
	}
	l := &Limiter{
		windows: make(map[string]*window),
		max:     max,
		period:  period,
		now:     time.Now,
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Max peticiones permitidas por ventana.
func (l *Limiter) Max() int { return l.max }

// Check cuenta una petición para key. La primera petición abre la ventana con count=1;
// con count >= max se deniega con el tiempo restante de la ventana; una petición que llega
// con la ventana vencida la reinicia.
func (l *Limiter) Check(key string) Decision {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || !now.Before(w.resetAt) {
		l.windows[key] = &window{count: 1, resetAt: now.Add(l.period)}
		return Decision{Allowed: true, Remaining: l.max - 1}
	}
	if w.count >= l.max {
		retry := int(math.Ceil(w.resetAt.Sub(now).Seconds()))
		if retry < 1 {
			retry = 1
		}
		return Decision{Allowed: false, RetryAfter: retry}
	}
	w.count++
	return Decision{Allowed: true, Remaining: l.max - w.count}
}

// Sweep descarta ventanas vencidas; devuelve cuántas quitó.
func (l *Limiter) Sweep() int {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for k, w := range l.windows {
		if !now.Before(w.resetAt) {
			delete(l.windows, k)
			n++
		}
	}
	return n
}

// Len claves con ventana abierta o pendiente de barrido.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

// RunSweeper ejecuta Sweep cada interval hasta que ctx se cancela.
func (l *Limiter) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Sweep()
		}
	}
}
