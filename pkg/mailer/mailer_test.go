package mailer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"load-tracker/pkg/config"
)

func TestNew_Drivers(t *testing.T) {
	m, err := New(config.MailConfig{Driver: "log"}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &logMailer{}, m)

	m, err = New(config.MailConfig{Driver: "smtp", Host: "localhost", Port: 2525}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &smtpMailer{}, m)

	_, err = New(config.MailConfig{Driver: "pigeon"}, zap.NewNop())
	assert.Error(t, err)
}

func TestLogMailer_Send(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	m := NewLogMailer("loads@example.com", zap.New(core))

	err := m.Send(context.Background(), Message{To: []string{"a@x.com"}, Subject: "Load Created: 1 - Roof", Text: "body"})
	require.NoError(t, err)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "Load Created: 1 - Roof", logs.All()[0].ContextMap()["subject"])

	assert.Error(t, m.Send(context.Background(), Message{Subject: "nobody"}))
}
