// Package pages manages the fixed set of editable static pages (about,
// contact, and so on) addressed by key.
package pages

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Togather-Foundation/gallery/internal/domain"
	"github.com/Togather-Foundation/gallery/internal/domain/media"
)

var ErrNotFound = errors.New("page not found")

type Page struct {
	Key         string     `json:"key"`
	Title       string     `json:"title"`
	BodyMD      *string    `json:"body_md"`
	HeroMediaID *uuid.UUID `json:"hero_media_id"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type WithHero struct {
	Page
	Hero *media.Media `json:"hero"`
}

type Fields struct {
	Title       *string
	BodyMD      *string
	HeroMediaID *uuid.UUID
}

type Repository interface {
	List(ctx context.Context) ([]WithHero, error)
	Get(ctx context.Context, key string) (*WithHero, error)
	Update(ctx context.Context, key string, fields Fields) (*Page, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]WithHero, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, key string) (*WithHero, error) {
	return s.repo.Get(ctx, key)
}

func (s *Service) Update(ctx context.Context, key string, fields Fields) (*Page, error) {
	if fields.Title != nil && *fields.Title == "" {
		return nil, domain.ValidationError{Field: "title", Message: "title is required"}
	}
	return s.repo.Update(ctx, key, fields)
}
