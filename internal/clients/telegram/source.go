package telegram

import (
	"net/url"
	"regexp"
	"strings"

	botApi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

var urlRegex = regexp.MustCompile(`https?://[^\s]+`)

// Source reads job posting announcements from the Telegram channel the bot
// is subscribed to and turns them into candidate URLs for ingestion.
type Source struct {
	api            *botApi.BotAPI
	allowedDomains []string
	offset         int
}

func NewSource(token string, allowedDomains []string) (*Source, error) {

	if len(allowedDomains) == 0 {
		return nil, errors.New("no allowed domains configured")
	}

	api, err := botApi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	log.Infof("Authorized on account %s", api.Self.UserName)

	err = botApi.SetLogger(log.StandardLogger())
	if err != nil {
		return nil, err
	}

	return &Source{api: api, allowedDomains: allowedDomains}, nil
}

// CandidateURLs drains the pending channel posts and returns the
// deduplicated allow-listed URLs found in them. The update offset advances
// past every drained post, so a URL is offered to the pipeline once even
// when its ingestion fails; the seen-set and the store keep their own
// records.
func (s *Source) CandidateURLs() ([]string, error) {

	updateConfig := botApi.NewUpdate(s.offset)
	updateConfig.Timeout = 0

	updates, err := s.api.GetUpdates(updateConfig)
	if err != nil {
		return nil, err
	}

	var texts []string
	for _, update := range updates {
		if update.UpdateID >= s.offset {
			s.offset = update.UpdateID + 1
		}

		message := update.ChannelPost
		if message == nil {
			message = update.Message
		}
		if message == nil || message.Text == "" {
			continue
		}
		texts = append(texts, message.Text)
	}

	urls := ExtractURLs(texts, s.allowedDomains)
	log.Infof("found %v candidate URLs in %v channel messages", len(urls), len(texts))
	return urls, nil
}

// ExtractURLs pulls URLs out of message texts, keeping only hosts on the
// allow-list and dropping repeats.
func ExtractURLs(texts []string, allowedDomains []string) []string {

	var urls []string
	seen := make(map[string]struct{})

	for _, text := range texts {
		for _, match := range urlRegex.FindAllString(text, -1) {
			candidate := strings.TrimRight(match, ".,;)!?")
			if _, ok := seen[candidate]; ok {
				continue
			}
			if !hostAllowed(candidate, allowedDomains) {
				continue
			}
			seen[candidate] = struct{}{}
			urls = append(urls, candidate)
		}
	}

	return urls
}

func hostAllowed(candidate string, allowedDomains []string) bool {

	parsed, err := url.Parse(candidate)
	if err != nil {
		return false
	}

	host := strings.TrimPrefix(parsed.Hostname(), "www.")
	return lo.SomeBy(allowedDomains, func(domain string) bool {
		return host == domain || strings.HasSuffix(host, "."+domain)
	})
}
