package services

import (
	"context"
	"testing"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/harbourapp/harbour-scraper/internal/domain/models"
	"github.com/harbourapp/harbour-scraper/internal/events"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) GetBySourceLink(ctx context.Context, link string) ([]models.Job, error) {
	args := m.Called(ctx, link)
	jobs, _ := args.Get(0).([]models.Job)
	return jobs, args.Error(1)
}

func (m *mockStore) Insert(ctx context.Context, job *models.Job) error {
	return m.Called(ctx, job).Error(0)
}

type mockScraper struct {
	mock.Mock
}

func (m *mockScraper) GetJob(url string) (*models.Job, error) {
	args := m.Called(url)
	job, _ := args.Get(0).(*models.Job)
	return job, args.Error(1)
}

type fakeSeenSet struct {
	seen   map[string]struct{}
	addErr error
}

func newFakeSeenSet(urls ...string) *fakeSeenSet {
	set := &fakeSeenSet{seen: make(map[string]struct{})}
	for _, url := range urls {
		set.seen[url] = struct{}{}
	}
	return set
}

func (s *fakeSeenSet) Contains(url string) bool {
	_, ok := s.seen[url]
	return ok
}

func (s *fakeSeenSet) Add(url string) error {
	if s.addErr != nil {
		return s.addErr
	}
	s.seen[url] = struct{}{}
	return nil
}

type fakeSource struct {
	urls []string
}

func (s fakeSource) CandidateURLs() ([]string, error) {
	return s.urls, nil
}

const testURL = "https://fresheropenings.com/acme-hiring-software-engineer/"

func validJob() *models.Job {
	return &models.Job{
		Company:    "Acme",
		JobTitle:   "Software Engineer",
		SourceLink: testURL,
		DatePosted: "2024-03-05",
	}
}

func newTestIngestor(t *testing.T, store *mockStore, scraper *mockScraper, seen *fakeSeenSet) *Ingestor {
	ingestor, err := NewIngestor(EventBus.New(), fakeSource{}, scraper, store, seen, time.Hour)
	assert.NoError(t, err)
	return ingestor
}

func Test_ProcessURL_WhenAlreadySeen_ShouldNotTouchStoreOrScraper(t *testing.T) {

	store, scraper := &mockStore{}, &mockScraper{}
	seen := newFakeSeenSet(testURL)

	ingestor := newTestIngestor(t, store, scraper, seen)
	admitted := ingestor.ProcessURL(context.Background(), testURL)

	assert.False(t, admitted)
	store.AssertNotCalled(t, "GetBySourceLink", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
	scraper.AssertNotCalled(t, "GetJob", mock.Anything)
}

func Test_ProcessURL_WhenRecordAlreadyInStore_ShouldMarkSeenWithoutScraping(t *testing.T) {

	store, scraper := &mockStore{}, &mockScraper{}
	store.On("GetBySourceLink", mock.Anything, testURL).
		Return([]models.Job{{ID: 1, SourceLink: testURL}}, nil)

	seen := newFakeSeenSet()
	ingestor := newTestIngestor(t, store, scraper, seen)

	admitted := ingestor.ProcessURL(context.Background(), testURL)

	assert.False(t, admitted)
	assert.True(t, seen.Contains(testURL))
	scraper.AssertNotCalled(t, "GetJob", mock.Anything)
	store.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func Test_ProcessURL_WhenExistenceCheckFails_ShouldStillAdmit(t *testing.T) {

	store, scraper := &mockStore{}, &mockScraper{}
	store.On("GetBySourceLink", mock.Anything, testURL).
		Return(nil, errors.New("store unreachable"))
	store.On("Insert", mock.Anything, mock.Anything).Return(nil)
	scraper.On("GetJob", testURL).Return(validJob(), nil)

	seen := newFakeSeenSet()
	ingestor := newTestIngestor(t, store, scraper, seen)

	admitted := ingestor.ProcessURL(context.Background(), testURL)

	assert.True(t, admitted)
	assert.True(t, seen.Contains(testURL))
	store.AssertExpectations(t)
}

func Test_ProcessURL_WhenScrapeFails_ShouldMarkSeenAndNotInsert(t *testing.T) {

	store, scraper := &mockStore{}, &mockScraper{}
	store.On("GetBySourceLink", mock.Anything, testURL).Return([]models.Job{}, nil)
	scraper.On("GetJob", testURL).Return(nil, errors.New("page unreachable"))

	seen := newFakeSeenSet()
	ingestor := newTestIngestor(t, store, scraper, seen)

	admitted := ingestor.ProcessURL(context.Background(), testURL)

	assert.False(t, admitted)
	assert.True(t, seen.Contains(testURL))
	store.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func Test_ProcessURL_WhenCompanyIsPlaceholder_ShouldReject(t *testing.T) {

	store, scraper := &mockStore{}, &mockScraper{}
	store.On("GetBySourceLink", mock.Anything, testURL).Return([]models.Job{}, nil)

	job := validJob()
	job.Company = models.NotAvailable
	scraper.On("GetJob", testURL).Return(job, nil)

	seen := newFakeSeenSet()
	ingestor := newTestIngestor(t, store, scraper, seen)

	admitted := ingestor.ProcessURL(context.Background(), testURL)

	assert.False(t, admitted)
	assert.True(t, seen.Contains(testURL))
	store.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func Test_ProcessURL_WhenInsertSucceeds_ShouldPublishEventThenMarkSeen(t *testing.T) {

	store, scraper := &mockStore{}, &mockScraper{}
	store.On("GetBySourceLink", mock.Anything, testURL).Return([]models.Job{}, nil)
	scraper.On("GetJob", testURL).Return(validJob(), nil)

	seenAtInsert := false
	seen := newFakeSeenSet()
	store.On("Insert", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			seenAtInsert = seen.Contains(testURL)
		}).
		Return(nil)

	bus := EventBus.New()
	var published *events.JobAdmitted
	err := bus.Subscribe(events.JobAdmittedTopic, func(event events.JobAdmitted) {
		published = &event
	})
	assert.NoError(t, err)

	ingestor, err := NewIngestor(bus, fakeSource{}, scraper, store, seen, time.Hour)
	assert.NoError(t, err)

	admitted := ingestor.ProcessURL(context.Background(), testURL)

	assert.True(t, admitted)
	assert.False(t, seenAtInsert, "url must not be marked seen before the store write")
	assert.True(t, seen.Contains(testURL))
	assert.NotNil(t, published)
	assert.Equal(t, "Acme", published.Job.Company)
}

func Test_ProcessURL_WhenInsertFails_ShouldMarkSeen(t *testing.T) {

	store, scraper := &mockStore{}, &mockScraper{}
	store.On("GetBySourceLink", mock.Anything, testURL).Return([]models.Job{}, nil)
	store.On("Insert", mock.Anything, mock.Anything).Return(errors.New("write failed"))
	scraper.On("GetJob", testURL).Return(validJob(), nil)

	seen := newFakeSeenSet()
	ingestor := newTestIngestor(t, store, scraper, seen)

	admitted := ingestor.ProcessURL(context.Background(), testURL)

	assert.False(t, admitted)
	assert.True(t, seen.Contains(testURL))
}

func Test_RunOnce_ProcessesEverySourceURLOnce(t *testing.T) {

	urls := []string{
		"https://fresheropenings.com/a/",
		"https://fresheropenings.com/b/",
	}

	store, scraper := &mockStore{}, &mockScraper{}
	store.On("GetBySourceLink", mock.Anything, mock.Anything).Return([]models.Job{}, nil)
	store.On("Insert", mock.Anything, mock.Anything).Return(nil)

	for _, url := range urls {
		job := validJob()
		job.SourceLink = url
		scraper.On("GetJob", url).Return(job, nil).Once()
	}

	seen := newFakeSeenSet()
	ingestor, err := NewIngestor(EventBus.New(), fakeSource{urls: urls}, scraper, store, seen, time.Hour)
	assert.NoError(t, err)

	ingestor.RunOnce(context.Background())
	scraper.AssertExpectations(t)

	// the second sweep finds everything in the seen-set
	ingestor.RunOnce(context.Background())
	scraper.AssertNumberOfCalls(t, "GetJob", len(urls))
}
