package repository

import (
	"context"

	"webstore/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ClientRepository interface {
	GetByEmail(ctx context.Context, email string) (*models.Client, error)
	// FirstOrCreate returns the client with client.Email, inserting client
	// when no such row exists. An existing client is returned unchanged.
	FirstOrCreate(ctx context.Context, client *models.Client) (*models.Client, error)
}

type clientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) GetByEmail(ctx context.Context, email string) (*models.Client, error) {
	var client models.Client
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&client).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &client, nil
}

func (r *clientRepository) FirstOrCreate(ctx context.Context, client *models.Client) (*models.Client, error) {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "email"}}, DoNothing: true}).
		Create(client).Error
	if err != nil {
		return nil, err
	}
	return r.GetByEmail(ctx, client.Email)
}
