package oauth2

import (
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// RedirectURL is the callback the local server listens on. It must
// match the redirect URI registered with the provider.
const RedirectURL = "http://localhost:8085/oauth/callback"

// DriveAccountID names the token file for a configuration's Drive account
func DriveAccountID(configID string) string {
	return fmt.Sprintf("%s_drive", configID)
}

// GetGoogleConfig returns the OAuth2 config for Google Drive access.
// The drive.file scope only reaches files this application created.
func GetGoogleConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes: []string{
			"https://www.googleapis.com/auth/drive.file",
		},
		Endpoint: google.Endpoint,
	}
}

// GetProviderConfig returns the OAuth2 config for a specific provider
func GetProviderConfig(provider, clientID, clientSecret, redirectURL string) (*oauth2.Config, error) {
	switch provider {
	case "google", "":
		return GetGoogleConfig(clientID, clientSecret, redirectURL), nil
	default:
		return nil, fmt.Errorf("unsupported OAuth2 provider: %s", provider)
	}
}
