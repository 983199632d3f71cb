package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"user-registry/internal/domain"
	"user-registry/internal/repository"
	"user-registry/internal/storage"
)

// SnapshotService backs up the whole user collection to object storage.
type SnapshotService interface {
	Take(ctx context.Context) (location string, count int, err error)
	List(ctx context.Context) ([]storage.ObjectInfo, error)
}

type snapshotService struct {
	users repository.UserRepository
	store storage.SnapshotStore
	now   func() time.Time
	log   *logrus.Logger
}

func NewSnapshotService(users repository.UserRepository, store storage.SnapshotStore, logger *logrus.Logger) SnapshotService {
	if logger == nil {
		logger = logrus.New()
	}
	return &snapshotService{
		users: users,
		store: store,
		now:   time.Now,
		log:   logger,
	}
}

// Take reads every user including the password hash so the snapshot can restore a store.
func (s *snapshotService) Take(ctx context.Context) (string, int, error) {
	users, err := s.users.FindAll(ctx, domain.FullProjection())
	if err != nil {
		return "", 0, err
	}

	takenAt := s.now()
	body, err := storage.EncodeSnapshot(users, takenAt)
	if err != nil {
		return "", 0, err
	}

	location, err := s.store.Put(ctx, storage.SnapshotName(takenAt), body)
	if err != nil {
		return "", 0, err
	}
	s.log.WithFields(logrus.Fields{"location": location, "count": len(users)}).Info("snapshot stored")
	return location, len(users), nil
}

func (s *snapshotService) List(ctx context.Context) ([]storage.ObjectInfo, error) {
	return s.store.List(ctx)
}
