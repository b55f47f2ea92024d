// Package config loads the application configuration.
//
// It utilizes Viper for reading environment variables, after overlaying an optional
// .env file with godotenv. Defaults live next to each field in `default` struct tags
// and are registered by reflection, so every key is reachable through its
// SECTION_KEY environment variable.
//
// # Configuration Structure
//
//   - Server: history API port, API key and page size cap
//   - Database: version store driver (mysql or sqlite) and connection details
//   - Storage: S3/MinIO bundle archive settings
//   - Log: level, format and optional rotating file
//   - Engine: concurrency, retry and strategy defaults for runs
//   - Secrets: age identity used to seal profile credentials
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(cfg.Engine.Concurrency)
package config
