package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/2beens/wodhub/internal/apperr"
)

//go:generate mockgen -source=$GOFILE -destination=notifications_mocks_test.go -package=notifications_test

type notificationsRepo interface {
	Insert(ctx context.Context, n NewNotification, now time.Time) (*Notification, error)
	ListByUser(ctx context.Context, userID, limit int) ([]Notification, error)
	CountUnread(ctx context.Context, userID int) (int, error)
	MarkRead(ctx context.Context, userID, id int) (bool, error)
	MarkAllRead(ctx context.Context, userID int) (int64, error)
}

type enqueuer interface {
	Enqueue(ev Event) bool
}

type Service struct {
	repo       notificationsRepo
	dispatcher enqueuer
	now        func() time.Time
}

func NewService(repo notificationsRepo, dispatcher enqueuer) *Service {
	return &Service{
		repo:       repo,
		dispatcher: dispatcher,
		now:        time.Now,
	}
}

// Notify stores the notification and queues it for real-time delivery.
// A failed push never fails the call.
func (s *Service) Notify(ctx context.Context, n NewNotification) (*Notification, error) {
	created, err := s.repo.Insert(ctx, n, s.now())
	if err != nil {
		return nil, fmt.Errorf("notify user %d: %w", n.UserID, err)
	}

	s.dispatcher.Enqueue(Event{
		Kind:         EventUser,
		UserID:       created.UserID,
		Notification: created,
	})
	return created, nil
}

// Broadcast queues an ephemeral event for every connected client.
func (s *Service) Broadcast(_ context.Context, b Broadcast) {
	s.dispatcher.Enqueue(Event{
		Kind:      EventBroadcast,
		Broadcast: &b,
	})
}

func (s *Service) List(ctx context.Context, userID int) ([]Notification, error) {
	list, err := s.repo.ListByUser(ctx, userID, listLimit)
	if err != nil {
		return nil, fmt.Errorf("list notifications of %d: %w", userID, err)
	}
	if list == nil {
		list = []Notification{}
	}
	return list, nil
}

func (s *Service) UnreadCount(ctx context.Context, userID int) (int, error) {
	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("count unread of %d: %w", userID, err)
	}
	return count, nil
}

func (s *Service) MarkRead(ctx context.Context, userID, id int) error {
	found, err := s.repo.MarkRead(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("mark notification %d read: %w", id, err)
	}
	if !found {
		return apperr.New(apperr.KindNotFound, ErrNotificationNotFound)
	}
	return nil
}

func (s *Service) MarkAllRead(ctx context.Context, userID int) (int64, error) {
	updated, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("mark all read of %d: %w", userID, err)
	}
	return updated, nil
}
