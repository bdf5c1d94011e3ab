package client_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheMichaelB/otpdesk/internal/client"
	"github.com/TheMichaelB/otpdesk/internal/services/otp"
	"github.com/TheMichaelB/otpdesk/internal/transport"
	"github.com/TheMichaelB/otpdesk/internal/workflow"
	"github.com/TheMichaelB/otpdesk/test/testutil"
)

func TestNewWiresPageToTransport(t *testing.T) {
	mock := transport.NewMockTransport()
	mock.AddResponse(otp.PathGenerate, testutil.SampleRecord("a@b.com"))
	clip := testutil.NewMockClipboard()

	c, err := client.New(testutil.TestConfig("http://api.test"), testutil.NewTestLogger(),
		client.WithTransport(mock),
		client.WithClipboard(clip),
		client.WithClock(workflow.NewManualClock()),
	)
	require.NoError(t, err)

	c.Page.SetRequestEmail("a@b.com")
	require.NoError(t, c.Page.RequestOTP(context.Background()))
	require.NoError(t, c.Page.CopyToken())

	assert.Equal(t, 1, mock.CallCount(otp.PathGenerate))
	assert.Equal(t, "123456", clip.Last())
	assert.Equal(t, "http://api.test", c.Config().API.BaseURL)

	require.NoError(t, c.Close())
	assert.True(t, mock.Closed())
}

func TestNewAppliesUIConfig(t *testing.T) {
	cfg := testutil.TestConfig("http://api.test")
	cfg.UI.EnableViewTab = true
	cfg.UI.CodeMaxLength = 4

	c, err := client.New(cfg, testutil.NewTestLogger(), client.WithTransport(transport.NewMockTransport()))
	require.NoError(t, err)

	assert.NoError(t, c.Page.SelectTab(workflow.TabView))
	c.Page.SetVerifyCode("123456")
	assert.Equal(t, "1234", c.Page.State().Fields.VerifyCode)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testutil.TestConfig("")

	_, err := client.New(cfg, testutil.NewTestLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api.base_url is required")
}
