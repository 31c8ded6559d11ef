package app

import (
	"fmt"
	"log"

	"changelogd/internal/gateway/config"
	"changelogd/internal/gateway/repository/artifact"
	"changelogd/internal/gateway/repository/changelogstore"
)

type gatewayStores struct {
	changelog *changelogstore.Store
	artifact  artifact.Store
}

func initStores(cfg *config.Config) (*gatewayStores, error) {
	stores := &gatewayStores{}

	if cfg.DatabaseURL != "" {
		store, err := changelogstore.NewPostgres(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open changelog store: %w", err)
		}
		log.Printf("changelog store: postgres")
		stores.changelog = store
	} else {
		log.Printf("changelog store: in-memory (no DATABASE_URL)")
		stores.changelog = changelogstore.New()
	}

	if cfg.Artifact.CanUseS3() {
		s3Store, err := artifact.NewS3Store(artifact.S3Config{
			Endpoint:  cfg.Artifact.Endpoint,
			Region:    cfg.Artifact.Region,
			AccessKey: cfg.Artifact.AccessKey,
			SecretKey: cfg.Artifact.SecretKey,
			Bucket:    cfg.Artifact.Bucket,
			UseSSL:    cfg.Artifact.UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize artifact s3 store: %w", err)
		}
		log.Printf("artifact store: s3 bucket=%s endpoint=%s", cfg.Artifact.Bucket, cfg.Artifact.Endpoint)
		stores.artifact = s3Store
	} else {
		if cfg.Artifact.Enabled {
			log.Printf("artifact store: disabled (s3 config incomplete)")
		}
		stores.artifact = artifact.NopStore{}
	}

	return stores, nil
}
