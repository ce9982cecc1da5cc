package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "photo-faces",
	Short: "Face-identity clustering engine for a photo-sharing application",
	Long: `Photo Faces detects faces in uploaded photos via an HTTP detection
service, clusters their embeddings into per-person identities, and keeps
each photo tagged with the people appearing in it.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
