package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"user-registry/internal/domain"
)

type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified *time.Time
}

// SnapshotStore persists user-collection snapshots to remote object storage.
type SnapshotStore interface {
	Put(ctx context.Context, name string, body []byte) (string, error)
	List(ctx context.Context) ([]ObjectInfo, error)
}

// Snapshot is the serialized form of the user collection.
type Snapshot struct {
	TakenAt time.Time      `json:"takenAt"`
	Count   int            `json:"count"`
	Users   []SnapshotUser `json:"users"`
}

type SnapshotUser struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// EncodeSnapshot serializes users taken at the given instant.
func EncodeSnapshot(users []domain.User, takenAt time.Time) ([]byte, error) {
	snap := Snapshot{
		TakenAt: takenAt.UTC(),
		Count:   len(users),
		Users:   make([]SnapshotUser, len(users)),
	}
	for i, u := range users {
		snap.Users[i] = SnapshotUser{
			FullName: u.FullName,
			Email:    u.Email,
			Password: u.PasswordHash,
		}
	}
	body, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return body, nil
}

// DecodeSnapshot parses a snapshot produced by EncodeSnapshot.
func DecodeSnapshot(body []byte) (Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}

// SnapshotName returns the object name for a snapshot taken at t.
func SnapshotName(t time.Time) string {
	return "users-" + t.UTC().Format("20060102T150405Z") + ".json"
}
