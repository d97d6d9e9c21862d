package events

import "github.com/harbourapp/harbour-scraper/internal/domain/models"

var JobAdmittedTopic = "JobAdmittedEvent"

type JobAdmitted struct {
	Job models.Job
}
