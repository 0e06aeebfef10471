package email_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/jhoicas/Auth-api/internal/infrastructure/email"
)

type fakeSender struct {
	sent []*gomail.Message
	err  error
}

func (f *fakeSender) DialAndSend(m ...*gomail.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, m...)
	return nil
}

const token = "aabbccddeeff00112233445566778899aabbccddeeff00112233445566778899"

func TestSendPasswordResetEmail_EnlaceEnElCuerpo(t *testing.T) {
	s := &fakeSender{}
	n := email.NewNotifier(s, "noreply@example.com", "https://app.example.com/")

	require.NoError(t, n.SendPasswordResetEmail(context.Background(), "ana@example.com", token, "ana"))
	require.Len(t, s.sent, 1)

	m := s.sent[0]
	assert.Equal(t, []string{"ana@example.com"}, m.GetHeader("To"))
	assert.Equal(t, []string{"Password Reset Request"}, m.GetHeader("Subject"))

	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Hello ana")
}

func TestSendPasswordResetEmail_FallaDelServidor(t *testing.T) {
	n := email.NewNotifier(&fakeSender{err: errors.New("smtp caído")}, "noreply@example.com", "http://localhost:3000")
	err := n.SendPasswordResetEmail(context.Background(), "ana@example.com", token, "")
	assert.ErrorContains(t, err, "smtp caído")
}

func TestResetLink(t *testing.T) {
	assert.Equal(t,
		"http://localhost:3000/reset-password?token="+token,
		email.ResetLink("http://localhost:3000/", token))
}
