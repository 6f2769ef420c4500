package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"otprelay/internal/database"
	"otprelay/internal/models"
	"otprelay/internal/utils"
)

// ResetTokenRepository tracks issued reset tokens so each can only be
// redeemed once, whatever the JWT expiry says.
type ResetTokenRepository interface {
	Create(ctx context.Context, token *models.ResetToken) (*models.ResetToken, error)
	Consume(ctx context.Context, tokenID string) (bool, error)
	DeleteExpired(ctx context.Context) error
}

type resetTokenRepository struct {
	db database.Service
}

func NewResetTokenRepository(db database.Service) ResetTokenRepository {
	return &resetTokenRepository{db: db}
}

func (r *resetTokenRepository) collection() *mongo.Collection {
	return r.db.Client().Database("otprelay").Collection("reset_tokens")
}

func (r *resetTokenRepository) Create(ctx context.Context, token *models.ResetToken) (*models.ResetToken, error) {
	queryType := "create"
	repository := "resetToken"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	token.ID = primitive.NewObjectID()
	token.CreatedAt = time.Now()
	_, err := r.collection().InsertOne(ctx, token)
	if err != nil {
		status = "error"
		utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		return nil, fmt.Errorf("failed to create reset token: %w", err)
	}
	return token, nil
}

// Consume marks the token used. Returns false when the token is unknown,
// expired, or already consumed.
func (r *resetTokenRepository) Consume(ctx context.Context, tokenID string) (bool, error) {
	queryType := "consume"
	repository := "resetToken"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	filter := bson.M{"token_id": tokenID, "consumed": false, "expires_at": bson.M{"$gt": time.Now()}}
	update := bson.M{"$set": bson.M{"consumed": true}}
	result, err := r.collection().UpdateOne(ctx, filter, update)
	if err != nil {
		status = "error"
		utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		return false, err
	}
	return result.ModifiedCount > 0, nil
}

func (r *resetTokenRepository) DeleteExpired(ctx context.Context) error {
	queryType := "deleteExpired"
	repository := "resetToken"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	filter := bson.M{"$or": []bson.M{
		{"expires_at": bson.M{"$lt": time.Now()}},
		{"consumed": true},
	}}
	_, err := r.collection().DeleteMany(ctx, filter)
	if err != nil {
		status = "error"
		utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
	}
	return err
}
