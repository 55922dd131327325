package main

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const adminKeyVar = "QUIP_STATUS_ADMIN_KEY"

var envFile string

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a status API admin key and store it in .env",
	RunE: func(cmd *cobra.Command, _ []string) error {
		adminKey, err := generateAdminKey()
		if err != nil {
			return fmt.Errorf("generate admin key: %w", err)
		}
		if err := writeAdminKey(envFile, adminKey); err != nil {
			return fmt.Errorf("write %s: %w", envFile, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "AdminKey: %s\nSaved to %s (%s).\n", adminKey, envFile, adminKeyVar)
		return nil
	},
}

func init() {
	initCmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file to update")
}

func generateAdminKey() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "admin_" + base64.RawURLEncoding.EncodeToString(b), nil
}

// writeAdminKey sets the admin key in path, keeping other variables.
func writeAdminKey(path, adminKey string) error {
	env, err := godotenv.Read(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		env = map[string]string{}
	}
	env[adminKeyVar] = adminKey
	return godotenv.Write(env, path)
}
