package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"festival-media-center/internal/storage"
	"festival-media-center/internal/utils"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var uploadKey string

var uploadCmd = &cobra.Command{
	Use:   "upload [file]",
	Short: "Upload a catalog asset to the configured object storage",
	Long: `Stores a local file under an object key so catalog rows can reference it.

Example:
  festival upload ./invite.png --key uploads/festival-invitation.png`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}
		defer log.Sync()

		store, err := storage.New(cfg.Storage)
		if err != nil {
			return err
		}
		if store == nil {
			return fmt.Errorf("no storage provider configured, set STORAGE_PROVIDER")
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		key := uploadKey
		if key == "" {
			key = filepath.Base(args[0])
		}

		contentType := utils.ResolveContentType("", args[0], data)
		stored, err := store.Upload(cmd.Context(), bytes.NewReader(data), key, contentType)
		if err != nil {
			return err
		}
		log.Info("Uploaded catalog asset",
			zap.String("key", stored),
			zap.String("content_type", contentType),
			zap.String("url", store.GetPublicURL(stored)))
		return nil
	},
}

func init() {
	uploadCmd.Flags().StringVar(&uploadKey, "key", "", "object key (defaults to the file name)")
}
