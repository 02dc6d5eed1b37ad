package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	goauth2 "golang.org/x/oauth2"

	"github.com/altomedia/gallery-bridge/internal/config"
	"github.com/altomedia/gallery-bridge/internal/gallery/writer"
	"github.com/altomedia/gallery-bridge/internal/oauth2"
	"github.com/altomedia/gallery-bridge/internal/types"
)

// createOAuth2Command creates and returns the OAuth2 command
func createOAuth2Command() *cobra.Command {
	oauth2Cmd := &cobra.Command{
		Use:   "oauth2",
		Short: "OAuth2 token management",
		Long:  `Manage OAuth2 tokens for Google Drive galleries`,
	}

	generateCmd := &cobra.Command{
		Use:   "generate [config-id]",
		Short: "Generate OAuth2 token",
		Long:  `Run the browser consent flow and store the resulting token`,
		Args:  cobra.ExactArgs(1),
		Run:   generateOAuth2Token,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List OAuth2 tokens",
		Long:  `List all stored OAuth2 tokens`,
		Run:   listOAuth2Tokens,
	}

	deleteCmd := &cobra.Command{
		Use:   "delete [config-id]",
		Short: "Delete OAuth2 token",
		Long:  `Delete the stored OAuth2 token for a configuration`,
		Args:  cobra.ExactArgs(1),
		Run:   deleteOAuth2Token,
	}

	oauth2Cmd.AddCommand(generateCmd)
	oauth2Cmd.AddCommand(listCmd)
	oauth2Cmd.AddCommand(deleteCmd)

	return oauth2Cmd
}

// driveConfig loads a configuration and checks it uses the Drive writer
// with token based auth
func driveConfig(configID string) *types.Config {
	cfg, err := config.GetConfig(configID)
	if err != nil {
		fmt.Printf("Error: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if cfg.Gallery.Writer.Type != writer.TypeGDrive {
		fmt.Printf("Error: Configuration %s does not use the Google Drive writer\n", configID)
		os.Exit(1)
	}

	if cfg.Gallery.Writer.GDrive.TokenDir == "" {
		fmt.Printf("Error: Configuration %s has no gdrive.token_dir, it authenticates with a credentials file\n", configID)
		os.Exit(1)
	}

	return cfg
}

func generateOAuth2Token(cmd *cobra.Command, args []string) {
	cfg := driveConfig(args[0])
	gdrive := cfg.Gallery.Writer.GDrive

	oauth2Config, err := oauth2.GetProviderConfig(
		"google",
		gdrive.ClientID,
		gdrive.ClientSecret,
		oauth2.RedirectURL,
	)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	// Generate authorization URL
	authURL := oauth2Config.AuthCodeURL("state", goauth2.AccessTypeOffline, goauth2.ApprovalForce)

	fmt.Printf("Please open the following URL in your browser:\n\n%s\n\n", authURL)
	fmt.Println("Waiting for authentication...")

	// Start the local server and wait for the authorization code
	authCode, err := oauth2.StartLocalServer(context.Background(), log)
	if err != nil {
		fmt.Printf("Error: Failed to get authorization code: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Authorization code received, exchanging for token...")

	// Exchange authorization code for token
	token, err := oauth2Config.Exchange(context.Background(), authCode)
	if err != nil {
		fmt.Printf("Error: Failed to exchange authorization code for token: %v\n", err)
		os.Exit(1)
	}

	accountID := oauth2.DriveAccountID(cfg.Meta.ID)

	tokenManager, err := oauth2.NewTokenManager(oauth2Config, gdrive.TokenDir, accountID, log)
	if err != nil {
		fmt.Printf("Error: Failed to create token manager: %v\n", err)
		os.Exit(1)
	}

	if err := tokenManager.SetToken(token); err != nil {
		fmt.Printf("Error: Failed to save token: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("OAuth2 token generated and saved for account %s\n", accountID)
	fmt.Printf("Token expires at: %s\n", token.Expiry.Format("2006-01-02 15:04:05"))
}

func listOAuth2Tokens(cmd *cobra.Command, args []string) {
	configs := config.ListConfigs()

	// Collect token directories from all Drive configurations
	tokenDirs := make(map[string]bool)
	for _, cfg := range configs {
		if cfg.Gallery.Writer.Type == writer.TypeGDrive && cfg.Gallery.Writer.GDrive.TokenDir != "" {
			tokenDirs[cfg.Gallery.Writer.GDrive.TokenDir] = true
		}
	}

	if len(tokenDirs) == 0 {
		fmt.Println("No OAuth2 tokens found")
		return
	}

	foundTokens := false
	for tokenDir := range tokenDirs {
		if _, err := os.Stat(tokenDir); os.IsNotExist(err) {
			continue
		}

		entries, err := os.ReadDir(tokenDir)
		if err != nil {
			fmt.Printf("Failed to read token directory %s: %v\n", tokenDir, err)
			continue
		}

		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
				continue
			}
			foundTokens = true
			accountID := strings.TrimSuffix(entry.Name(), ".json")

			// Try to load token to get expiry
			data, err := os.ReadFile(filepath.Join(tokenDir, entry.Name()))
			if err != nil {
				fmt.Printf("Account: %s (Error reading token: %v)\n", accountID, err)
				continue
			}

			var token goauth2.Token
			if err := json.Unmarshal(data, &token); err != nil {
				fmt.Printf("Account: %s (Error parsing token: %v)\n", accountID, err)
				continue
			}

			fmt.Printf("Account: %s\n", accountID)
			fmt.Printf("  Expires: %s\n", token.Expiry.Format("2006-01-02 15:04:05"))
			fmt.Printf("  Valid: %v\n", token.Valid())
			fmt.Println()
		}
	}

	if !foundTokens {
		fmt.Println("No OAuth2 tokens found")
	}
}

func deleteOAuth2Token(cmd *cobra.Command, args []string) {
	cfg := driveConfig(args[0])

	accountID := oauth2.DriveAccountID(cfg.Meta.ID)
	tokenFile := filepath.Join(cfg.Gallery.Writer.GDrive.TokenDir, fmt.Sprintf("%s.json", accountID))

	if _, err := os.Stat(tokenFile); os.IsNotExist(err) {
		fmt.Printf("No OAuth2 token found for account %s\n", accountID)
		return
	}

	if err := os.Remove(tokenFile); err != nil {
		fmt.Printf("Error: Failed to delete token file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("OAuth2 token deleted for account %s\n", accountID)
}
