// Package health tracks provider health from the outcomes of scraper
// requests. All state is in-memory and resets on restart.
package health

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/slipstream/metascrape/internal/scraper"
)

// ErrorThreshold is the number of consecutive failed requests that turns a
// warning into an error.
const ErrorThreshold = 3

// EventHealthUpdated is broadcast with the changed Item.
const EventHealthUpdated = "health:updated"

// Broadcaster sends events to connected clients.
type Broadcaster interface {
	Broadcast(msgType string, payload any) error
}

// Service manages the health state of all tracked providers.
type Service struct {
	items       map[string]*Item
	mu          sync.RWMutex
	now         func() time.Time
	broadcaster Broadcaster
	logger      zerolog.Logger
}

// NewService creates a new health service.
func NewService(logger zerolog.Logger) *Service {
	return &Service{
		items:  make(map[string]*Item),
		now:    time.Now,
		logger: logger.With().Str("component", "health").Logger(),
	}
}

// SetBroadcaster sets where status changes are pushed.
func (s *Service) SetBroadcaster(b Broadcaster) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.broadcaster = b
}

// Register adds a provider with OK status. Registering twice keeps the
// existing state.
func (s *Service) Register(provider string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.register(provider)
}

func (s *Service) register(provider string) *Item {
	if item, ok := s.items[provider]; ok {
		return item
	}
	item := &Item{Provider: provider, Status: StatusOK}
	s.items[provider] = item
	s.logger.Debug().Str("provider", provider).Msg("Registered health item")
	return item
}

// Unregister removes a provider from health tracking.
func (s *Service) Unregister(provider string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, provider)
}

// SetWarning sets a provider to Warning status.
func (s *Service) SetWarning(provider, message string) {
	s.setStatus(provider, StatusWarning, message)
}

// SetError sets a provider to Error status.
func (s *Service) SetError(provider, message string) {
	s.setStatus(provider, StatusError, message)
}

// ClearStatus resets a provider to OK and forgets its failures.
func (s *Service) ClearStatus(provider string) {
	s.setStatus(provider, StatusOK, "")
}

func (s *Service) setStatus(provider string, status Status, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[provider]
	if !ok {
		s.logger.Warn().Str("provider", provider).Msg("Attempted to update status for unregistered provider")
		return
	}
	if status == StatusOK {
		item.Failures = 0
	}
	s.apply(item, status, message)
}

// apply changes the status of item. Callers hold s.mu.
func (s *Service) apply(item *Item, status Status, message string) {
	if item.Status == status && item.Message == message {
		return
	}

	oldStatus := item.Status
	item.Status = status
	item.Message = message
	if status != StatusOK {
		now := s.now()
		item.Timestamp = &now
	} else {
		item.Timestamp = nil
	}

	s.logger.Info().
		Str("provider", item.Provider).
		Str("oldStatus", string(oldStatus)).
		Str("newStatus", string(status)).
		Str("message", message).
		Msg("Health status changed")

	if s.broadcaster != nil {
		if err := s.broadcaster.Broadcast(EventHealthUpdated, *item); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to broadcast health update")
		}
	}
}

// observe records one request outcome for provider. Unknown providers are
// registered on first sight.
func (s *Service) observe(provider string, errType scraper.ErrorType, what string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := s.register(provider)
	if errType == scraper.ErrorNone {
		item.Failures = 0
		s.apply(item, StatusOK, "")
		return
	}

	item.Failures++
	message := fmt.Sprintf("%s failed: %s", what, errType)
	switch {
	case errType == scraper.ErrorRateLimit:
		s.apply(item, StatusWarning, message)
	case item.Failures >= ErrorThreshold:
		s.apply(item, StatusError, fmt.Sprintf("%s (%d consecutive failures)", message, item.Failures))
	default:
		s.apply(item, StatusWarning, message)
	}
}

// ObserveRequest implements scraper.Recorder.
func (s *Service) ObserveRequest(provider string, kind scraper.RequestKind, errType scraper.ErrorType, _ time.Duration) {
	s.observe(provider, errType, kind.String()+" request")
}

// ObserveLoad implements scraper.Recorder. Loads are judged by their
// individual requests.
func (s *Service) ObserveLoad(string, scraper.MediaType, int, time.Duration) {}

// ObserveSearchPage implements scraper.Recorder.
func (s *Service) ObserveSearchPage(provider string, errType scraper.ErrorType) {
	s.observe(provider, errType, "search")
}

// Get returns a copy of the provider's item, or nil when untracked.
func (s *Service) Get(provider string) *Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if item, ok := s.items[provider]; ok {
		cp := *item
		return &cp
	}
	return nil
}

// IsHealthy reports whether the provider is tracked and not in Error status.
func (s *Service) IsHealthy(provider string) bool {
	item := s.Get(provider)
	return item != nil && item.Status != StatusError
}

// GetAll returns every tracked provider sorted by name, with a summary.
func (s *Service) GetAll() *Response {
	s.mu.RLock()
	defer s.mu.RUnlock()

	resp := &Response{Providers: make([]Item, 0, len(s.items))}
	for _, item := range s.items {
		resp.Providers = append(resp.Providers, *item)
		switch item.Status {
		case StatusOK:
			resp.Summary.OK++
		case StatusWarning:
			resp.Summary.Warning++
		case StatusError:
			resp.Summary.Error++
		}
	}
	sort.Slice(resp.Providers, func(i, j int) bool {
		return resp.Providers[i].Provider < resp.Providers[j].Provider
	})
	resp.Summary.HasIssues = resp.Summary.Warning > 0 || resp.Summary.Error > 0
	return resp
}
