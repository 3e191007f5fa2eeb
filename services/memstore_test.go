package services

import (
	"context"
	"errors"
	"sort"
	"sync"

	"gitalong_server/models"
)

// In-memory store fakes with the same compare-and-set semantics as the
// DynamoDB implementations. The mutex stands in for the store's write
// serialization; conditional outcomes are decided under it, exactly as
// the remote store decides them at write time.

type memSwipeStore struct {
	mu     sync.Mutex
	events map[models.SwipeKey]models.SwipeEvent

	failUpserts int
	failGets    int
}

func newMemSwipeStore() *memSwipeStore {
	return &memSwipeStore{events: make(map[models.SwipeKey]models.SwipeEvent)}
}

func (s *memSwipeStore) Upsert(_ context.Context, event models.SwipeEvent) (*models.SwipeEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failUpserts > 0 {
		s.failUpserts--
		return nil, Transient(errors.New("store unavailable"))
	}

	key := event.Key()
	if previous, ok := s.events[key]; ok {
		s.events[key] = event
		return &previous, nil
	}
	s.events[key] = event
	return nil, nil
}

func (s *memSwipeStore) Get(_ context.Context, key models.SwipeKey) (*models.SwipeEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failGets > 0 {
		s.failGets--
		return nil, Transient(errors.New("store unavailable"))
	}

	event, ok := s.events[key]
	if !ok {
		return nil, nil
	}
	return &event, nil
}

type memMatchStore struct {
	mu     sync.Mutex
	byPair map[string]models.Match

	failCreates int
	creates     int
}

func newMemMatchStore() *memMatchStore {
	return &memMatchStore{byPair: make(map[string]models.Match)}
}

func (s *memMatchStore) CreateIfAbsent(_ context.Context, match models.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failCreates > 0 {
		s.failCreates--
		return Transient(errors.New("store unavailable"))
	}

	if _, ok := s.byPair[match.PairKey]; ok {
		return ErrConflict
	}
	s.byPair[match.PairKey] = match
	s.creates++
	return nil
}

func (s *memMatchStore) GetByID(_ context.Context, matchID string) (*models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, match := range s.byPair {
		if match.MatchID == matchID {
			m := match
			return &m, nil
		}
	}
	return nil, nil
}

func (s *memMatchStore) SetStatus(_ context.Context, pairKey string, status models.MatchStatus, at string) (*models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	match, ok := s.byPair[pairKey]
	if !ok {
		return nil, ErrNotFound
	}
	match.Status = status
	match.UpdatedAt = at
	s.byPair[pairKey] = match
	return &match, nil
}

func (s *memMatchStore) ListForActor(_ context.Context, actorID string) ([]models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	matches := []models.Match{}
	for _, match := range s.byPair {
		if match.HasParticipant(actorID) {
			matches = append(matches, match)
		}
	}
	return matches, nil
}

type memMessageStore struct {
	mu            sync.Mutex
	conversations map[string][]models.Message
}

func newMemMessageStore() *memMessageStore {
	return &memMessageStore{conversations: make(map[string][]models.Message)}
}

func (s *memMessageStore) Append(_ context.Context, msg models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.conversations[msg.ConversationID] {
		if existing.MessageKey == msg.MessageKey {
			return ErrConflict
		}
	}
	msgs := append(s.conversations[msg.ConversationID], msg)
	sort.Slice(msgs, func(i, j int) bool { return msgs[i].MessageKey < msgs[j].MessageKey })
	s.conversations[msg.ConversationID] = msgs
	return nil
}

func (s *memMessageStore) ListAfter(_ context.Context, conversationID, afterKey string, limit int) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit <= 0 {
		limit = 500
	}
	result := []models.Message{}
	for _, msg := range s.conversations[conversationID] {
		if msg.MessageKey > afterKey {
			result = append(result, msg)
			if len(result) == limit {
				break
			}
		}
	}
	return result, nil
}

func (s *memMessageStore) MarkRead(_ context.Context, conversationID, receiverID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	updated := 0
	msgs := s.conversations[conversationID]
	for i, msg := range msgs {
		if msg.ReceiverID == receiverID && !msg.Read {
			msgs[i].Read = true
			updated++
		}
	}
	return updated, nil
}

type memProfileStore struct {
	mu       sync.Mutex
	profiles map[string]models.Profile
	projects map[string]models.Project
}

func newMemProfileStore() *memProfileStore {
	return &memProfileStore{
		profiles: make(map[string]models.Profile),
		projects: make(map[string]models.Project),
	}
}

func (s *memProfileStore) GetProfile(_ context.Context, actorID string) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	profile, ok := s.profiles[actorID]
	if !ok {
		return nil, nil
	}
	return &profile, nil
}

func (s *memProfileStore) PutProfile(_ context.Context, profile models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[profile.ActorID] = profile
	return nil
}

func (s *memProfileStore) DeleteProfile(_ context.Context, actorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.profiles, actorID)
	return nil
}

func (s *memProfileStore) GetProject(_ context.Context, projectID string) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	project, ok := s.projects[projectID]
	if !ok {
		return nil, nil
	}
	return &project, nil
}

func (s *memProfileStore) PutProject(_ context.Context, project models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects[project.ProjectID] = project
	return nil
}

func (s *memProfileStore) ListProjects(_ context.Context) ([]models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	projects := make([]models.Project, 0, len(s.projects))
	for _, project := range s.projects {
		projects = append(projects, project)
	}
	return projects, nil
}
