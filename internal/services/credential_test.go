package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsLocal(t *testing.T) {
	assert.True(t, isLocal("http://127.0.0.1:10002/devstoreaccount1"))
	assert.False(t, isLocal("https://account.table.core.windows.net"))
	assert.False(t, isLocal("httpx://host"))
	assert.False(t, isLocal("://bad"))
}

func TestGetAzuriteCredentials(t *testing.T) {
	t.Setenv("AZURITE_ACCOUNT_NAME", "")
	t.Setenv("AZURITE_ACCOUNT_KEY", "")
	name, key := getAzuriteCredentials()
	assert.Equal(t, azuriteAccountName, name)
	assert.Equal(t, azuriteAccountKey, key)

	t.Setenv("AZURITE_ACCOUNT_NAME", "custom")
	t.Setenv("AZURITE_ACCOUNT_KEY", "a2V5")
	name, key = getAzuriteCredentials()
	assert.Equal(t, "custom", name)
	assert.Equal(t, "a2V5", key)
}

func TestNewDefaultAzureCredential_UserAssigned(t *testing.T) {
	t.Setenv("AZURE_CLIENT_ID", "00000000-0000-0000-0000-000000000001")

	cred, err := newDefaultAzureCredential()

	assert.NoError(t, err)
	assert.NotNil(t, cred)
}
