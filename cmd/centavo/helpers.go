package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/mendoza-g/centavo/internal/classifier"
	"github.com/mendoza-g/centavo/internal/sigcache"
	"github.com/mendoza-g/centavo/internal/storage"
)

func databasePath() (string, error) {
	if path := viper.GetString("database.path"); path != "" {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "centavo", "centavo.db"), nil
}

func cachePath() (string, error) {
	if path := viper.GetString("cache.path"); path != "" {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "centavo", "cache.json"), nil
}

func loadCache() (*sigcache.Cache, string, error) {
	path, err := cachePath()
	if err != nil {
		return nil, "", err
	}
	cache := sigcache.New()
	if err := cache.Load(path); err != nil {
		return nil, "", err
	}
	return cache, path, nil
}

func openStorage() (*storage.SQLiteStorage, error) {
	path, err := databasePath()
	if err != nil {
		return nil, err
	}
	return storage.NewSQLiteStorage(path)
}

func classifierConfig() classifier.Config {
	return classifier.Config{
		Provider:   viper.GetString("ai.provider"),
		APIKey:     viper.GetString("ai.api_key"),
		Model:      viper.GetString("ai.model"),
		BatchSize:  viper.GetInt("ai.batch_size"),
		MaxRetries: viper.GetInt("ai.max_retries"),
		RetryDelay: viper.GetDuration("ai.retry_delay"),
	}
}

func init() {
	viper.SetDefault("ai.provider", "anthropic")
	viper.SetDefault("ai.retry_delay", time.Second)
}
