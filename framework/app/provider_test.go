package app_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/km-arc/go-container/framework/app"
	"github.com/km-arc/go-container/framework/class"
	"github.com/km-arc/go-container/framework/container"
)

// ── stub providers ────────────────────────────────────────────────────────────

type mailProvider struct {
	app.BaseProvider
	registerCalls int
}

func (p *mailProvider) Register(b *app.Builder) error {
	p.registerCalls++
	if err := b.Classes().Register(class.MustNew("Mailer", NewMailer, class.Arg("host", class.Default("mx")))); err != nil {
		return err
	}
	b.Service("mailer", container.Definition{ClassName: "Mailer"})
	return nil
}

type bootProvider struct {
	app.BaseProvider
	booted  int
	mailer  *Mailer
	bootErr error
}

func (p *bootProvider) Register(*app.Builder) error { return nil }

func (p *bootProvider) Boot(c *container.Container) error {
	p.booted++
	if p.bootErr != nil {
		return p.bootErr
	}
	var err error
	p.mailer, err = container.Resolve[*Mailer](c, "mailer")
	return err
}

type failingProvider struct{ app.BaseProvider }

func (failingProvider) Register(*app.Builder) error { return errors.New("register failed") }

func newApp(t *testing.T, providers ...app.ServiceProvider) (*app.Application, error) {
	t.Helper()
	b := app.NewBuilder(nil).WithConfig(testConfig(t, "", "")).WithLogger(zap.NewNop())
	return app.New(b, providers...)
}

// ── ProviderRegistry ──────────────────────────────────────────────────────────

func TestProviders_RegisterBeforeBuildBootAfter(t *testing.T) {
	mail := &mailProvider{}
	boot := &bootProvider{}

	application, err := newApp(t, mail, boot)
	require.NoError(t, err)

	assert.Equal(t, 1, mail.registerCalls)
	assert.False(t, application.Providers.Booted())
	assert.Zero(t, boot.booted)

	require.NoError(t, application.Boot())
	require.NoError(t, application.Boot(), "second boot is a no-op")

	assert.True(t, application.Providers.Booted())
	assert.Equal(t, 1, boot.booted)
	assert.Equal(t, "mx", boot.mailer.Host)
}

func TestProviders_DuplicateAddIgnored(t *testing.T) {
	mail := &mailProvider{}
	application, err := newApp(t, mail, mail, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, mail.registerCalls)
	assert.Len(t, application.Providers.Providers(), 1)
}

func TestProviders_RegisterErrorAbortsBuild(t *testing.T) {
	_, err := newApp(t, failingProvider{})
	assert.ErrorContains(t, err, "register failed")
}

func TestProviders_BootErrorsAreCombined(t *testing.T) {
	first := &bootProvider{bootErr: errors.New("first")}
	second := &bootProvider{bootErr: errors.New("second")}

	application, err := newApp(t, first, second)
	require.NoError(t, err)

	err = application.Boot()
	assert.ErrorContains(t, err, "first")
	assert.ErrorContains(t, err, "second")
	assert.Equal(t, 1, second.booted, "every provider boots")
}

func TestProviders_RegistryRunsOnce(t *testing.T) {
	mail := &mailProvider{}
	reg := app.NewProviderRegistry()
	reg.Add(mail)
	b := app.NewBuilder(nil)

	require.NoError(t, reg.Register(b))
	require.NoError(t, reg.Register(b))
	assert.Equal(t, 1, mail.registerCalls)
}
