package memory

import (
	"context"

	"webstore/internal/models"
	"webstore/internal/repository"
)

type clientRepository struct{ *Store }

func (r *clientRepository) GetByEmail(ctx context.Context, email string) (*models.Client, error) {
	defer r.lock()()
	return r.byEmail(email)
}

func (r *clientRepository) FirstOrCreate(ctx context.Context, client *models.Client) (*models.Client, error) {
	defer r.lock()()

	if existing, err := r.byEmail(client.Email); err == nil {
		return existing, nil
	}
	if client.CreatedAt.IsZero() {
		client.CreatedAt = r.now()
	}
	client.ID = r.data.next("clients")
	r.data.clients[client.ID] = *client
	stored := *client
	return &stored, nil
}

func (r *clientRepository) byEmail(email string) (*models.Client, error) {
	for _, id := range sortedKeys(r.data.clients) {
		if c := r.data.clients[id]; c.Email == email {
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}
