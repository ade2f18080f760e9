// Command pricesheet renders the current catalog as a PDF into the public
// directory and, when MinIO is configured, uploads it.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/vostok-trade/backend/internal/config"
	"github.com/vostok-trade/backend/internal/logging"
	"github.com/vostok-trade/backend/internal/pricesheet"
	"github.com/vostok-trade/backend/internal/store"
)

func main() {
	upload := flag.Bool("upload", true, "upload the sheet to MinIO when MINIO_ENDPOINT is set")
	flag.Parse()

	cfg, err := config.LoadPartial("MongoURI", "PublicDir")
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	logging.Setup(os.Stderr, cfg.Env, "vostok-pricesheet")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := run(ctx, cfg, *upload); err != nil {
		slog.Error("price sheet", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, upload bool) error {
	client, db, err := store.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return err
	}
	defer client.Disconnect(ctx)

	products, err := store.NewProductStore(db).List(ctx)
	if err != nil {
		return err
	}

	path, err := pricesheet.WriteFile(cfg.PublicDir, products, time.Now())
	if err != nil {
		return err
	}
	slog.Info("price sheet written", "path", path, "products", len(products))

	if !upload || cfg.MinioEndpoint == "" {
		return nil
	}
	objects, err := store.NewMinioStore(ctx, cfg.MinioEndpoint, cfg.MinioAccessKey,
		cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
	if err != nil {
		return err
	}
	url, err := pricesheet.Publish(ctx, objects, path)
	if err != nil {
		return err
	}
	slog.Info("price sheet published", "url", url)
	return nil
}
