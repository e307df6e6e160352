// Package messages stores contact-form submissions and their triage status.
package messages

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Togather-Foundation/gallery/internal/api/pagination"
	"github.com/Togather-Foundation/gallery/internal/domain"
)

var ErrNotFound = errors.New("message not found")

const (
	StatusNew      = "new"
	StatusRead     = "read"
	StatusArchived = "archived"
	StatusSpam     = "spam"
)

type Message struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateParams struct {
	Name    string
	Email   string
	Message string
}

type Repository interface {
	Create(ctx context.Context, params CreateParams) (*Message, error)
	List(ctx context.Context, page pagination.Page) ([]Message, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*Message, error)
}

// Notifier is told about each new message. Failures are logged, never
// returned to the visitor.
type Notifier interface {
	NotifyContactMessage(ctx context.Context, msg Message) error
}

type Service struct {
	repo     Repository
	notifier Notifier
	logger   zerolog.Logger
}

func NewService(repo Repository, notifier Notifier, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		notifier: notifier,
		logger:   logger.With().Str("component", "messages").Logger(),
	}
}

// Create stores the message, then notifies staff before returning. The
// notification is detached from ctx so a visitor who disconnects does not
// cancel it; the caller still waits for the send, bounded by the notifier's
// own timeout.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Message, error) {
	msg, err := s.repo.Create(ctx, params)
	if err != nil {
		return nil, err
	}
	if s.notifier != nil {
		if err := s.notifier.NotifyContactMessage(context.WithoutCancel(ctx), *msg); err != nil {
			s.logger.Warn().Err(err).Str("message_id", msg.ID.String()).Msg("contact notification failed")
		}
	}
	return msg, nil
}

func (s *Service) List(ctx context.Context, page pagination.Page) ([]Message, error) {
	return s.repo.List(ctx, page)
}

func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*Message, error) {
	if !ValidStatus(status) {
		return nil, domain.ValidationError{Field: "status", Message: "status must be one of: new read archived spam"}
	}
	return s.repo.UpdateStatus(ctx, id, status)
}

func ValidStatus(status string) bool {
	switch status {
	case StatusNew, StatusRead, StatusArchived, StatusSpam:
		return true
	}
	return false
}
