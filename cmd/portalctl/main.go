package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"vacation-rental-portal/internal/config"
	"vacation-rental-portal/internal/database"
	"vacation-rental-portal/internal/importer"
	"vacation-rental-portal/internal/search"
)

var (
	configPath string
	clearFirst bool
)

func main() {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	rootCmd := &cobra.Command{
		Use:   "portalctl",
		Short: "Management commands for the rental portal",
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config/config.yaml", "path to config file")

	importCmd := &cobra.Command{
		Use:   "import <csv-file>",
		Short: "Import properties from a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE:  runImport,
	}
	importCmd.Flags().BoolVar(&clearFirst, "clear", false, "delete existing properties and images before importing")

	reindexCmd := &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the Meilisearch index from the database",
		Args:  cobra.NoArgs,
		RunE:  runReindex,
	}

	rootCmd.AddCommand(importCmd, reindexCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func openStore() (*database.GormDB, *config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}

	switch cfg.Database.Type {
	case "mysql":
		mc := cfg.Database.MySQL
		gdb, err := database.NewGormDB(
			getEnv("DB_HOST", mc.Host),
			getEnv("DB_PORT", strconv.Itoa(mc.Port)),
			getEnv("DB_USER", mc.User),
			getEnv("DB_PASSWORD", mc.Password),
			getEnv("DB_NAME", mc.Database),
		)
		return gdb, cfg, err
	case "sqlite", "":
		gdb, err := database.NewSQLiteDB(cfg.Database.SQLite.Path)
		return gdb, cfg, err
	default:
		return nil, nil, fmt.Errorf("database type %q does not support management commands", cfg.Database.Type)
	}
}

func runImport(cmd *cobra.Command, args []string) error {
	csvPath := args[0]

	store, _, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.InitSchema(); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	result, err := importer.New(store.DB()).Run(csvPath, clearFirst)
	if errors.Is(err, importer.ErrFileNotFound) {
		return fmt.Errorf("no such file: %s", csvPath)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Import complete: %d locations, %d properties, %d images created\n",
		result.LocationsCreated, result.PropertiesCreated, result.ImagesCreated)
	return nil
}

func runReindex(cmd *cobra.Command, args []string) error {
	store, cfg, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if !cfg.Search.Enabled {
		return fmt.Errorf("search is disabled in %s", configPath)
	}

	client := search.NewSearchClient(
		getEnv("MEILISEARCH_HOST", cfg.Search.Meilisearch.Host),
		getEnv("MEILI_MASTER_KEY", cfg.Search.Meilisearch.APIKey),
	)
	if err := client.InitIndex(); err != nil {
		return fmt.Errorf("failed to initialize index: %w", err)
	}

	count, err := search.Reindex(store.DB(), client, cfg.Media.BaseURL)
	if err != nil {
		return err
	}

	fmt.Printf("Reindexed %d properties\n", count)
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
