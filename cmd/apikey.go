// cmd/apikey.go
package cmd

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strconv"
	"time"

	"github.com/IvanBrasilico/apirecintos/config"
	"github.com/IvanBrasilico/apirecintos/internal/database"
	"github.com/IvanBrasilico/apirecintos/internal/models"
	"github.com/IvanBrasilico/apirecintos/internal/repository"

	"github.com/spf13/cobra"
)

var (
	apiKeyName     string
	apiKeyFacility string
	authLevel      int
	expirationDays int
)

// apiKeyCmd represents the apikey command
var apiKeyCmd = &cobra.Command{
	Use:   "apikey",
	Short: "Manage API keys",
	Long:  `Create, list, and revoke API keys bound to reporting facilities.`,
}

// generateKeyCmd represents the generate command
var generateKeyCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new API key",
	Long: `Generate a new API key bound to a facility code, with an
authorization level:
  1: Viewer (read-only access)
  2: Writer (read/write access)`,
	Run: func(cmd *cobra.Command, args []string) {
		generateAPIKey()
	},
}

// listKeysCmd represents the list command
var listKeysCmd = &cobra.Command{
	Use:   "list",
	Short: "List all API keys",
	Long:  `List all API keys with their details`,
	Run: func(cmd *cobra.Command, args []string) {
		listAPIKeys()
	},
}

// revokeKeyCmd represents the revoke command
var revokeKeyCmd = &cobra.Command{
	Use:   "revoke [id]",
	Short: "Revoke an API key",
	Long:  `Revoke an API key by its ID`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			log.Fatalf("Invalid ID format: %v", err)
		}
		revokeAPIKey(uint(id))
	},
}

func init() {
	rootCmd.AddCommand(apiKeyCmd)
	apiKeyCmd.AddCommand(generateKeyCmd)
	apiKeyCmd.AddCommand(listKeysCmd)
	apiKeyCmd.AddCommand(revokeKeyCmd)

	// Flags for generate command
	generateKeyCmd.Flags().StringVarP(&apiKeyName, "name", "n", "", "Name for the API key (required)")
	generateKeyCmd.Flags().StringVarP(&apiKeyFacility, "facility", "f", "", "Facility code the key reports for (required)")
	generateKeyCmd.Flags().IntVarP(&authLevel, "level", "l", 1, "Authorization level (1-2)")
	generateKeyCmd.Flags().IntVarP(&expirationDays, "expiration", "e", 365, "Expiration in days (0 for never)")
	generateKeyCmd.MarkFlagRequired("name")
	generateKeyCmd.MarkFlagRequired("facility")
}

// generateSecureKey generates a secure random API key
func generateSecureKey(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(bytes), nil
}

func openRepository() (repository.Repository, func()) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Info("Connecting to database...")
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	repo, err := repository.NewRepository(db, nil)
	if err != nil {
		log.Fatalf("Failed to initialize repository: %v", err)
	}
	return repo, func() { db.Close() }
}

// generateAPIKey creates a new API key with the specified parameters
func generateAPIKey() {
	if authLevel != int(models.ViewerLevel) && authLevel != int(models.WriterLevel) {
		log.Fatalf("Invalid authorization level. Must be 1 or 2.")
	}

	repo, closeDB := openRepository()
	defer closeDB()

	key, err := generateSecureKey(32) // 32 bytes = 256 bits
	if err != nil {
		log.Fatalf("Failed to generate secure key: %v", err)
	}

	apiKey := &models.APIKey{
		Key:                key,
		Name:               apiKeyName,
		FacilityCode:       apiKeyFacility,
		AuthorizationLevel: models.AuthorizationLevel(authLevel),
		Active:             true,
	}

	if expirationDays > 0 {
		expiry := time.Now().AddDate(0, 0, expirationDays)
		apiKey.ExpiresAt = &expiry
	}

	if err := repo.CreateAPIKey(context.Background(), apiKey); err != nil {
		log.Fatalf("Failed to save API key: %v", err)
	}

	fmt.Println("=================================================================")
	fmt.Println("API Key generated successfully!")
	fmt.Println("=================================================================")
	fmt.Printf("ID: %d\n", apiKey.ID)
	fmt.Printf("Name: %s\n", apiKey.Name)
	fmt.Printf("Facility: %s\n", apiKey.FacilityCode)
	fmt.Printf("Authorization Level: %d\n", apiKey.AuthorizationLevel)
	if apiKey.ExpiresAt != nil {
		fmt.Printf("Expires At: %s\n", apiKey.ExpiresAt.Format(time.RFC3339))
	} else {
		fmt.Println("Expires At: never")
	}
	fmt.Printf("Key: %s\n", apiKey.Key)
	fmt.Println("=================================================================")
	fmt.Println("Store this key safely. It will not be displayed again.")
}

// listAPIKeys prints every API key
func listAPIKeys() {
	repo, closeDB := openRepository()
	defer closeDB()

	keys, err := repo.ListAPIKeys(context.Background())
	if err != nil {
		log.Fatalf("Failed to list API keys: %v", err)
	}

	fmt.Printf("%-5s %-20s %-10s %-6s %-8s %s\n",
		"ID", "Name", "Facility", "Level", "Active", "Expires")
	for _, k := range keys {
		expires := "never"
		if k.ExpiresAt != nil {
			expires = k.ExpiresAt.Format("2006-01-02")
		}
		fmt.Printf("%-5d %-20s %-10s %-6d %-8t %s\n",
			k.ID, k.Name, k.FacilityCode, k.AuthorizationLevel, k.Active, expires)
	}
}

// revokeAPIKey deactivates one API key
func revokeAPIKey(id uint) {
	repo, closeDB := openRepository()
	defer closeDB()

	if err := repo.RevokeAPIKey(context.Background(), id); err != nil {
		log.Fatalf("Failed to revoke API key: %v", err)
	}
	log.Infof("API key %d revoked", id)
}
