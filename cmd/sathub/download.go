package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/eoforge/sathub/internal/config"
	"github.com/eoforge/sathub/internal/download"
	"github.com/eoforge/sathub/internal/storage"
	"github.com/eoforge/sathub/pkg/hub"
)

func downloadFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "hub",
			Value: "hub.scihub",
			Usage: "hub connector ID",
		},
		&cli.StringFlag{
			Name:     "uuid",
			Aliases:  []string{"u"},
			Required: true,
			Usage:    "provider product UUID (or scene entity ID)",
		},
		&cli.StringFlag{
			Name:  "dir",
			Usage: "target directory (default from SATHUB_DOWNLOAD_DIR)",
		},
		&cli.BoolFlag{
			Name:  "store",
			Usage: "upload the finished files to the configured object store",
		},
	}
}

func downloadCommand() *cli.Command {
	return &cli.Command{
		Name:   "download",
		Usage:  "Download a product archive by UUID",
		Flags:  downloadFlags(),
		Action: downloadAction,
	}
}

func quicklookCommand() *cli.Command {
	return &cli.Command{
		Name:   "quicklook",
		Usage:  "Download a product quicklook image and worldfile by UUID",
		Flags:  downloadFlags(),
		Action: quicklookAction,
	}
}

func downloadAction(c *cli.Context) error {
	cfg := config.FromEnv()
	hubID := c.String("hub")

	downloader, err := hub.CreateDownloader(hubID, cfg.HubConfig(hubID))
	if err != nil {
		return err
	}
	defer downloader.Close()

	res, err := downloader.DownloadImage(c.Context, &hub.DownloadRequest{
		ProductUUID: c.String("uuid"),
		TargetDir:   targetDir(c, cfg),
	})
	if err != nil {
		return err
	}

	switch {
	case res.Skipped:
		log.Info().Str("path", res.Path).Msg("product already complete, skipped")
	case res.Resumed:
		log.Info().Str("path", res.Path).Int64("bytes", res.Bytes).Msg("resumed and finished download")
	default:
		log.Info().Str("path", res.Path).Int64("bytes", res.Bytes).Msg("download finished")
	}
	fmt.Println(res.Path)

	if c.Bool("store") {
		return uploadToStore(c.Context, cfg, res.Path)
	}
	return nil
}

func quicklookAction(c *cli.Context) error {
	cfg := config.FromEnv()
	hubID := c.String("hub")

	downloader, err := hub.CreateDownloader(hubID, cfg.HubConfig(hubID))
	if err != nil {
		return err
	}
	defer downloader.Close()

	res, err := downloader.DownloadQuicklook(c.Context, &hub.QuicklookRequest{
		ProductUUID: c.String("uuid"),
		TargetDir:   targetDir(c, cfg),
	})
	if err != nil {
		return err
	}

	fmt.Println(res.ImagePath)
	if res.WorldfilePath != "" {
		fmt.Println(res.WorldfilePath)
	}

	if c.Bool("store") {
		paths := []string{res.ImagePath}
		if res.WorldfilePath != "" {
			paths = append(paths, res.WorldfilePath)
		}
		return uploadToStore(c.Context, cfg, paths...)
	}
	return nil
}

func targetDir(c *cli.Context, cfg *config.Config) string {
	if dir := c.String("dir"); dir != "" {
		return dir
	}
	return cfg.DownloadDir
}

// uploadToStore pushes finished downloads into the object store under a
// fresh run prefix.
func uploadToStore(ctx context.Context, cfg *config.Config, paths ...string) error {
	if !cfg.HasObjectStore() {
		return fmt.Errorf("no object store configured (set SATHUB_S3_ENDPOINT)")
	}
	store, err := storage.NewS3Client(cfg.S3Config())
	if err != nil {
		return err
	}

	sink := download.NewSink(store, cfg.S3Bucket, "downloads")
	runID := download.NewRunID()
	keys, err := sink.UploadAll(ctx, runID, paths...)
	if err != nil {
		return err
	}
	for _, key := range keys {
		fmt.Printf("s3://%s/%s\n", cfg.S3Bucket, key)
	}
	return nil
}
