package cmd

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/yeremiapane/hospital-app/config"
	"github.com/yeremiapane/hospital-app/database"
	"github.com/yeremiapane/hospital-app/utils"
	"gorm.io/gorm"
)

var rootCmd = &cobra.Command{
	Use:           "hospital-app",
	Short:         "Hospital operations service",
	Long:          "Runs the hospital API and the admin commands that share its configuration",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("env-file", ".env", "dotenv file loaded before reading the environment")
	rootCmd.PersistentFlags().Bool("json", false, "print command output as JSON")
	_ = viper.BindPFlag("env-file", rootCmd.PersistentFlags().Lookup("env-file"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		utils.ErrorLogger.Error(err)
		os.Exit(1)
	}
}

// loadConfig resolves and validates configuration, then applies the
// process-wide settings every command relies on.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(viper.GetString("env-file"))
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	utils.InitLogger(cfg.LogLevel, cfg.LogFormat)
	utils.ConfigureJWT(cfg.JWTSecret, cfg.JWTTTL())
	return cfg, nil
}

// openDB connects the relational store and, when asked to, brings the
// schema up to date.
func openDB(cfg *config.Config, migrate bool) (*gorm.DB, error) {
	db, err := config.InitDB(cfg)
	if err != nil {
		return nil, err
	}
	if migrate {
		if err := database.Migrate(db, cfg.DBDriver); err != nil {
			closeDB(db)
			return nil, err
		}
	}
	return db, nil
}

func closeDB(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		utils.ErrorLogger.Warnf("Closing database: %v", err)
	}
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
