// Package bootstrap builds the process-wide collaborators shared by the binaries.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"

	"user-registry/internal/config"
	"user-registry/internal/repository"
	"user-registry/internal/repository/mongo"
	"user-registry/internal/repository/sqlite"
	"user-registry/internal/storage"
)

// NewLogger returns a text logger at the configured level.
func NewLogger(level string) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	logger.SetLevel(lvl)
	return logger, nil
}

// OpenUsers connects the configured backend and initialises the user store.
// The returned close function releases the underlying connection.
func OpenUsers(ctx context.Context, cfg config.Config, logger *logrus.Logger) (repository.UserRepository, func(), error) {
	var (
		repo    repository.UserRepository
		closeFn func()
	)

	switch cfg.Database.Driver {
	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.Database.Path)
		if err != nil {
			return nil, nil, err
		}
		repo = sqlite.NewUserRepository(db)
		closeFn = func() { _ = db.Close() }
		logger.Infof("using sqlite store at %s", cfg.Database.Path)

	case config.DriverMongo:
		connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()
		client, err := mongo.Connect(connectCtx, cfg.Mongo.URI)
		if err != nil {
			return nil, nil, err
		}
		repo = mongo.NewUserRepository(client.Database(cfg.Mongo.Database), cfg.Mongo.Collection)
		closeFn = func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Disconnect(disconnectCtx); err != nil {
				logger.Warnf("mongo disconnect: %v", err)
			}
		}
		logger.Infof("using mongo store %s/%s", cfg.Mongo.Database, cfg.Mongo.Collection)

	default:
		return nil, nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}

	if err := repo.Init(ctx); err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("init user repository: %w", err)
	}
	return repo, closeFn, nil
}

// NewSnapshotStore builds the S3 snapshot store from configuration.
func NewSnapshotStore(ctx context.Context, cfg config.Config, logger *logrus.Logger) (*storage.S3Snapshots, error) {
	if cfg.Snapshot.Bucket == "" {
		return nil, fmt.Errorf("snapshot bucket is required")
	}

	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Snapshot.Region),
	}
	if cfg.AWS.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.AWS.Profile))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Snapshot.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Snapshot.Endpoint)
			o.UsePathStyle = true
		}
	})
	logger.Infof("using s3 bucket %s (region %s)", cfg.Snapshot.Bucket, cfg.Snapshot.Region)
	return storage.NewS3Snapshots(client, cfg.Snapshot.Bucket, cfg.Snapshot.KeyPrefix)
}
