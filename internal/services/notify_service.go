package services

import (
	"context"

	"github.com/asaskevich/EventBus"
	"github.com/harbourapp/harbour-scraper/internal/domain/models"
	"github.com/harbourapp/harbour-scraper/internal/events"
	"github.com/harbourapp/harbour-scraper/internal/logger"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type pushClient interface {
	NotifyJob(ctx context.Context, job models.Job) error
}

// NotifyService pushes a notification for every admitted job. It listens on
// the event bus, so a failed or slow push can never roll back the insert or
// keep the URL from being marked as processed.
type NotifyService struct {
	push pushClient
}

func NewNotifyService(bus EventBus.Bus, push pushClient) (*NotifyService, error) {

	if bus == nil {
		return nil, errors.New("bus is nil")
	}
	if push == nil {
		return nil, errors.New("push client is nil")
	}

	service := &NotifyService{push: push}
	if err := bus.Subscribe(events.JobAdmittedTopic, service.onJobAdmitted); err != nil {
		return nil, err
	}
	return service, nil
}

func (n *NotifyService) onJobAdmitted(event events.JobAdmitted) {

	if err := n.push.NotifyJob(context.Background(), event.Job); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypePushApi).
			Errorf("failed to send notification for job %v: %v", event.Job.Title, err)
		return
	}

	log.Infof("notification sent for job %v", event.Job.Title)
}
