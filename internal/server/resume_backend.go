package server

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jonathan/cvmaker/internal/db"
	"github.com/jonathan/cvmaker/internal/resumesync"
	"github.com/jonathan/cvmaker/internal/types"
)

// ResumeRepository is the persistence the server needs. *db.DB implements it.
type ResumeRepository interface {
	ListResumes(ctx context.Context, ownerID uuid.UUID) ([]types.ResumeRecord, error)
	GetResume(ctx context.Context, ownerID uuid.UUID, id int64) (*types.ResumeRecord, error)
	UpsertResume(ctx context.Context, ownerID uuid.UUID, templateID, data string) (*types.ResumeRecord, error)
	DeleteResume(ctx context.Context, ownerID uuid.UUID, id int64) error
}

var _ ResumeRepository = (*db.DB)(nil)

// repositoryBackend exposes one owner's resumes to an editor session.
type repositoryBackend struct {
	repo  ResumeRepository
	owner uuid.UUID
}

var _ resumesync.Backend = (*repositoryBackend)(nil)

func (b *repositoryBackend) List(ctx context.Context) ([]types.ResumeRecord, error) {
	return b.repo.ListResumes(ctx, b.owner)
}

func (b *repositoryBackend) Get(ctx context.Context, id int64) (*types.ResumeRecord, error) {
	rec, err := b.repo.GetResume(ctx, b.owner, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, &resumesync.NotFoundError{ID: id}
	}
	return rec, nil
}

func (b *repositoryBackend) Upsert(ctx context.Context, templateID, data string) (*types.ResumeRecord, error) {
	return b.repo.UpsertResume(ctx, b.owner, templateID, data)
}

func (b *repositoryBackend) Delete(ctx context.Context, id int64) error {
	err := b.repo.DeleteResume(ctx, b.owner, id)
	var notFound *db.ResumeNotFoundError
	if errors.As(err, &notFound) {
		return &resumesync.NotFoundError{ID: id}
	}
	return err
}

// offlineBackend serves sessions that cannot persist: the server has no database
// or the token has no user subject. It has no records and refuses writes.
type offlineBackend struct{}

var _ resumesync.Backend = offlineBackend{}

func (offlineBackend) List(context.Context) ([]types.ResumeRecord, error) {
	return []types.ResumeRecord{}, nil
}

func (offlineBackend) Get(_ context.Context, id int64) (*types.ResumeRecord, error) {
	return nil, &resumesync.NotFoundError{ID: id}
}

func (offlineBackend) Upsert(context.Context, string, string) (*types.ResumeRecord, error) {
	return nil, ErrPersistenceDisabled
}

func (offlineBackend) Delete(context.Context, int64) error {
	return ErrPersistenceDisabled
}
