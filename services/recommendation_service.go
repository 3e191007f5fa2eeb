package services

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"gitalong_server/models"
)

const (
	defaultRecommendationLimit = 20
	maxRecommendationLimit     = 50
)

// techWeights biases the overlap score toward the stack's most
// sought-after technologies; unknown entries count at the base weight.
var techWeights = map[string]float64{
	"javascript": 0.9, "typescript": 0.9, "python": 0.9,
	"react": 0.8, "flutter": 0.8, "node.js": 0.8,
	"docker": 0.7, "kubernetes": 0.7, "aws": 0.7,
	"go": 0.6, "rust": 0.6, "swift": 0.6,
}

const baseTechWeight = 0.5

// Recommendation pairs a candidate project with its ranking score.
type Recommendation struct {
	Project models.Project `json:"project"`
	Score   float64        `json:"score"`
}

// RecommendationService ranks projects for a contributor by
// tech-stack overlap. Projects the contributor owns or has already
// swiped are excluded; the rest are ordered by descending score.
type RecommendationService struct {
	Profiles ProfileStore
	Swipes   SwipeEventStore
	Log      *zap.Logger
}

// NewRecommendationService wires the ranking over its stores.
func NewRecommendationService(profiles ProfileStore, swipes SwipeEventStore, log *zap.Logger) *RecommendationService {
	return &RecommendationService{Profiles: profiles, Swipes: swipes, Log: log}
}

// RecommendProjects returns up to limit projects for the session's
// actor, best overlap first. A non-positive limit falls back to the
// default; the cap bounds the response either way.
func (s *RecommendationService) RecommendProjects(ctx context.Context, session models.Session, limit int) ([]Recommendation, error) {
	if session.ActorID == "" {
		return nil, ErrUnauthenticated
	}
	if limit <= 0 {
		limit = defaultRecommendationLimit
	}
	if limit > maxRecommendationLimit {
		limit = maxRecommendationLimit
	}

	profile, err := s.Profiles.GetProfile(ctx, session.ActorID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrNotFound
	}

	projects, err := s.Profiles.ListProjects(ctx)
	if err != nil {
		return nil, err
	}

	recommendations := []Recommendation{}
	for _, project := range projects {
		if project.OwnerID == session.ActorID {
			continue
		}

		swiped, err := s.Swipes.Get(ctx, models.SwipeKey{
			ActorID:  session.ActorID,
			TargetID: project.ProjectID,
			Kind:     models.TargetKindProject,
		})
		if err != nil {
			return nil, err
		}
		if swiped != nil {
			continue
		}

		recommendations = append(recommendations, Recommendation{
			Project: project,
			Score:   techOverlap(profile.TechStack, project.TechStack),
		})
	}

	sort.Slice(recommendations, func(i, j int) bool {
		if recommendations[i].Score != recommendations[j].Score {
			return recommendations[i].Score > recommendations[j].Score
		}
		return recommendations[i].Project.ProjectID < recommendations[j].Project.ProjectID
	})

	if len(recommendations) > limit {
		recommendations = recommendations[:limit]
	}
	return recommendations, nil
}

// techOverlap scores the shared technologies of two stacks, weighted
// and normalized against the larger stack. Case-insensitive; 0 when
// either stack is empty or nothing overlaps, at most 1.
func techOverlap(userStack, targetStack []string) float64 {
	if len(userStack) == 0 || len(targetStack) == 0 {
		return 0
	}

	userSet := normalizeStack(userStack)
	targetSet := normalizeStack(targetStack)

	weighted := 0.0
	for tech := range userSet {
		if _, shared := targetSet[tech]; !shared {
			continue
		}
		weight, ok := techWeights[tech]
		if !ok {
			weight = baseTechWeight
		}
		weighted += weight
	}
	if weighted == 0 {
		return 0
	}

	maxPossible := float64(max(len(userSet), len(targetSet))) * 0.9
	if weighted > maxPossible {
		return 1
	}
	return weighted / maxPossible
}

func normalizeStack(stack []string) map[string]struct{} {
	set := make(map[string]struct{}, len(stack))
	for _, tech := range stack {
		tech = strings.ToLower(strings.TrimSpace(tech))
		if tech != "" {
			set[tech] = struct{}{}
		}
	}
	return set
}
