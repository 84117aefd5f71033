package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/pixa/internal/adapter"
	"github.com/mmcdole/pixa/internal/httpclient"
)

func TestNewClient(t *testing.T) {
	httpc := httpclient.New(nil)
	defer httpc.Close()

	tests := []struct {
		name          string
		cfg           *SourceConfig
		httpc         *httpclient.Client
		notConfigured bool
		wantErr       bool
	}{
		{name: "nil config", cfg: nil, httpc: httpc, wantErr: true},
		{name: "no key", cfg: &SourceConfig{}, httpc: httpc, notConfigured: true, wantErr: true},
		{name: "blank key", cfg: &SourceConfig{Key: "  "}, httpc: httpc, notConfigured: true, wantErr: true},
		{name: "no http client", cfg: &SourceConfig{Key: "k"}, wantErr: true},
		{name: "bad base url", cfg: &SourceConfig{Key: "k", BaseURL: "not a url"}, httpc: httpc, wantErr: true},
		{name: "default base url", cfg: &SourceConfig{Key: "k"}, httpc: httpc},
		{name: "custom base url", cfg: &SourceConfig{Key: "k", BaseURL: "http://localhost:8080"}, httpc: httpc},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewClient(tt.cfg, tt.httpc, nil)
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, c)
				assert.Equal(t, tt.notConfigured, IsNotConfigured(err))
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, c)
		})
	}
}

func TestNewClientFromConfig(t *testing.T) {
	httpc := httpclient.New(nil)
	defer httpc.Close()

	cfg := adapter.DefaultConfig()
	c, err := NewClientFromConfig(cfg, httpc, nil)
	assert.True(t, IsNotConfigured(err))
	assert.Nil(t, AsImageSource(c), "nil client must become a nil interface")

	cfg.API.Key = "secret"
	c, err = NewClientFromConfig(cfg, httpc, nil)
	require.NoError(t, err)
	assert.NotNil(t, AsImageSource(c))
}
