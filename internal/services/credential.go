package services

import (
	"log/slog"
	"net/url"
	"os"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
)

const (
	// Standard Azurite account name and key
	azuriteAccountName = "devstoreaccount1"
	azuriteAccountKey  = "Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw=="
)

// isLocal reports whether serviceURL points at a local emulator. Azurite is
// served over plain http; every real storage endpoint is https.
func isLocal(serviceURL string) bool {
	u, err := url.Parse(serviceURL)
	if err != nil {
		return false
	}
	return u.Scheme == "http"
}

// getAzuriteCredentials returns the Azurite shared key, overridable through
// AZURITE_ACCOUNT_NAME and AZURITE_ACCOUNT_KEY for custom emulator accounts.
func getAzuriteCredentials() (string, string) {
	name, key := azuriteAccountName, azuriteAccountKey
	if v := os.Getenv("AZURITE_ACCOUNT_NAME"); v != "" {
		name = v
	}
	if v := os.Getenv("AZURITE_ACCOUNT_KEY"); v != "" {
		key = v
	}
	return name, key
}

// newDefaultAzureCredential creates a DefaultAzureCredential. A
// user-assigned managed identity is selected through AZURE_CLIENT_ID, which
// the credential reads itself.
func newDefaultAzureCredential() (azcore.TokenCredential, error) {
	slog.Info("using default Azure credentials", "user_assigned", os.Getenv("AZURE_CLIENT_ID") != "")
	return azidentity.NewDefaultAzureCredential(nil)
}
