package memory

import (
	"context"

	"webstore/internal/models"
	"webstore/internal/repository"
)

type userRepository struct{ *Store }

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	defer r.lock()()

	for _, existing := range r.data.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = r.now()
	}
	user.UpdatedAt = user.CreatedAt
	user.ID = r.data.next("users")
	r.data.users[user.ID] = *user
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	defer r.lock()()
	return lookup(r.data.users, id)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	defer r.lock()()

	for _, id := range sortedKeys(r.data.users) {
		if u := r.data.users[id]; u.Username == username {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepository) GetAll(ctx context.Context) ([]models.User, error) {
	defer r.lock()()
	return values(r.data.users), nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	defer r.lock()()

	current, ok := r.data.users[user.ID]
	if !ok {
		return repository.ErrNotFound
	}
	for id, existing := range r.data.users {
		if id != user.ID && (existing.Username == user.Username || existing.Email == user.Email) {
			return repository.ErrDuplicate
		}
	}
	user.CreatedAt = current.CreatedAt
	user.UpdatedAt = r.now()
	r.data.users[user.ID] = *user
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id uint) error {
	defer r.lock()()

	if _, ok := r.data.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.data.users, id)
	return nil
}
