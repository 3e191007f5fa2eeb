package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"gitalong_server/models"
	"gitalong_server/utils"
)

// DynamoSwipeStore stores swipe events in the SwipeEvents table under
// PK=ACTOR#<actor>, SK=SWIPE#<kind>#<target>.
type DynamoSwipeStore struct {
	Dynamo *DynamoService
}

func (s *DynamoSwipeStore) Upsert(ctx context.Context, event models.SwipeEvent) (*models.SwipeEvent, error) {
	old, err := s.Dynamo.PutItemReturnOld(ctx, models.SwipeEventsTable, event)
	if err != nil {
		return nil, Transient(err)
	}
	if len(old) == 0 {
		return nil, nil
	}

	var previous models.SwipeEvent
	if err := attributevalue.UnmarshalMap(old, &previous); err != nil {
		return nil, fmt.Errorf("unmarshal replaced swipe event: %w", err)
	}
	return &previous, nil
}

func (s *DynamoSwipeStore) Get(ctx context.Context, key models.SwipeKey) (*models.SwipeEvent, error) {
	item, err := s.Dynamo.GetItem(ctx, models.SwipeEventsTable, map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: key.PartitionKey()},
		"SK": &types.AttributeValueMemberS{Value: key.SortKey()},
	})
	if err != nil {
		return nil, Transient(err)
	}
	if len(item) == 0 {
		return nil, nil
	}

	var event models.SwipeEvent
	if err := attributevalue.UnmarshalMap(item, &event); err != nil {
		return nil, fmt.Errorf("unmarshal swipe event: %w", err)
	}
	return &event, nil
}

// DynamoMatchStore stores matches keyed by canonical pair key, with a
// matchId GSI for id lookups and actor GSIs for listing.
type DynamoMatchStore struct {
	Dynamo *DynamoService
}

func (s *DynamoMatchStore) CreateIfAbsent(ctx context.Context, match models.Match) error {
	err := s.Dynamo.PutItemIfAbsent(ctx, models.MatchesTable, match, "pairKey")
	if err == nil {
		return nil
	}
	if errors.Is(err, errConditionFailed) {
		return ErrConflict
	}
	return Transient(err)
}

func (s *DynamoMatchStore) GetByID(ctx context.Context, matchID string) (*models.Match, error) {
	keyCondition := "matchId = :matchId"
	expressionValues := map[string]types.AttributeValue{
		":matchId": &types.AttributeValueMemberS{Value: matchID},
	}

	items, err := s.Dynamo.QueryItemsWithIndex(ctx, models.MatchesTable, models.MatchIDIndex, keyCondition, expressionValues, nil, 1)
	if err != nil {
		return nil, Transient(err)
	}
	if len(items) == 0 {
		return nil, nil
	}

	// The GSI projection may be partial; re-read the full item through
	// its primary key so status checks see current data.
	pairKey := utils.ExtractString(items[0], "pairKey")
	if pairKey == "" {
		return nil, fmt.Errorf("match %s has no pairKey attribute", matchID)
	}
	item, err := s.Dynamo.GetItem(ctx, models.MatchesTable, map[string]types.AttributeValue{
		"pairKey": &types.AttributeValueMemberS{Value: pairKey},
	})
	if err != nil {
		return nil, Transient(err)
	}
	if len(item) == 0 {
		return nil, nil
	}

	var match models.Match
	if err := attributevalue.UnmarshalMap(item, &match); err != nil {
		return nil, fmt.Errorf("unmarshal match: %w", err)
	}
	return &match, nil
}

func (s *DynamoMatchStore) SetStatus(ctx context.Context, pairKey string, status models.MatchStatus, at string) (*models.Match, error) {
	key := map[string]types.AttributeValue{
		"pairKey": &types.AttributeValueMemberS{Value: pairKey},
	}
	updateExpression := "SET #status = :status, #updatedAt = :updatedAt"
	conditionExpression := "attribute_exists(pairKey)"
	expressionValues := map[string]types.AttributeValue{
		":status":    &types.AttributeValueMemberS{Value: string(status)},
		":updatedAt": &types.AttributeValueMemberS{Value: at},
	}
	expressionNames := map[string]string{
		"#status":    "status",
		"#updatedAt": "updatedAt",
	}

	attrs, err := s.Dynamo.UpdateItemWithCondition(ctx, models.MatchesTable, key, updateExpression, conditionExpression, expressionValues, expressionNames)
	if err != nil {
		if errors.Is(err, errConditionFailed) {
			return nil, ErrNotFound
		}
		return nil, Transient(err)
	}

	var match models.Match
	if err := attributevalue.UnmarshalMap(attrs, &match); err != nil {
		return nil, fmt.Errorf("unmarshal updated match: %w", err)
	}
	return &match, nil
}

func (s *DynamoMatchStore) ListForActor(ctx context.Context, actorID string) ([]models.Match, error) {
	matches := []models.Match{}
	for _, index := range []string{"actorA-index", "actorB-index"} {
		attribute := "actorA"
		if index == "actorB-index" {
			attribute = "actorB"
		}
		keyCondition := fmt.Sprintf("%s = :actor", attribute)
		expressionValues := map[string]types.AttributeValue{
			":actor": &types.AttributeValueMemberS{Value: actorID},
		}

		items, err := s.Dynamo.QueryItemsWithIndex(ctx, models.MatchesTable, index, keyCondition, expressionValues, nil, 100)
		if err != nil {
			return nil, Transient(err)
		}

		var page []models.Match
		if err := attributevalue.UnmarshalListOfMaps(items, &page); err != nil {
			return nil, fmt.Errorf("unmarshal matches: %w", err)
		}
		matches = append(matches, page...)
	}
	return matches, nil
}

// DynamoMessageStore stores conversation messages under
// PK=conversationId, SK=messageKey (timestamp#messageId) so a range
// read replays them in timestamp order.
type DynamoMessageStore struct {
	Dynamo *DynamoService
}

func (s *DynamoMessageStore) Append(ctx context.Context, msg models.Message) error {
	err := s.Dynamo.PutItemIfAbsent(ctx, models.MessagesTable, msg, "messageKey")
	if err == nil {
		return nil
	}
	if errors.Is(err, errConditionFailed) {
		return ErrConflict
	}
	return Transient(err)
}

func (s *DynamoMessageStore) ListAfter(ctx context.Context, conversationID, afterKey string, limit int) ([]models.Message, error) {
	keyCondition := "conversationId = :conversationId"
	expressionValues := map[string]types.AttributeValue{
		":conversationId": &types.AttributeValueMemberS{Value: conversationID},
	}
	if afterKey != "" {
		keyCondition += " AND messageKey > :after"
		expressionValues[":after"] = &types.AttributeValueMemberS{Value: afterKey}
	}

	if limit <= 0 {
		limit = 500
	}
	items, err := s.Dynamo.QueryItemsAscending(ctx, models.MessagesTable, keyCondition, expressionValues, nil, int32(limit))
	if err != nil {
		return nil, Transient(err)
	}

	var messages []models.Message
	if err := attributevalue.UnmarshalListOfMaps(items, &messages); err != nil {
		return nil, fmt.Errorf("unmarshal messages: %w", err)
	}
	return messages, nil
}

func (s *DynamoMessageStore) MarkRead(ctx context.Context, conversationID, receiverID string) (int, error) {
	messages, err := s.ListAfter(ctx, conversationID, "", 0)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, msg := range messages {
		if msg.ReceiverID != receiverID || msg.Read {
			continue
		}

		key := map[string]types.AttributeValue{
			"conversationId": &types.AttributeValueMemberS{Value: conversationID},
			"messageKey":     &types.AttributeValueMemberS{Value: msg.MessageKey},
		}
		updateExpression := "SET #read = :read"
		expressionValues := map[string]types.AttributeValue{
			":read": &types.AttributeValueMemberBOOL{Value: true},
		}
		expressionNames := map[string]string{"#read": "read"}

		if _, err := s.Dynamo.UpdateItemWithCondition(ctx, models.MessagesTable, key, updateExpression, "", expressionValues, expressionNames); err != nil {
			return updated, Transient(err)
		}
		updated++
	}
	return updated, nil
}

// DynamoProfileStore stores profile and project documents.
type DynamoProfileStore struct {
	Dynamo *DynamoService
}

func (s *DynamoProfileStore) GetProfile(ctx context.Context, actorID string) (*models.Profile, error) {
	item, err := s.Dynamo.GetItem(ctx, models.ProfilesTable, map[string]types.AttributeValue{
		"actorId": &types.AttributeValueMemberS{Value: actorID},
	})
	if err != nil {
		return nil, Transient(err)
	}
	if len(item) == 0 {
		return nil, nil
	}

	var profile models.Profile
	if err := attributevalue.UnmarshalMap(item, &profile); err != nil {
		return nil, fmt.Errorf("unmarshal profile: %w", err)
	}
	return &profile, nil
}

func (s *DynamoProfileStore) PutProfile(ctx context.Context, profile models.Profile) error {
	if _, err := s.Dynamo.PutItemReturnOld(ctx, models.ProfilesTable, profile); err != nil {
		return Transient(err)
	}
	return nil
}

func (s *DynamoProfileStore) DeleteProfile(ctx context.Context, actorID string) error {
	err := s.Dynamo.DeleteItem(ctx, models.ProfilesTable, map[string]types.AttributeValue{
		"actorId": &types.AttributeValueMemberS{Value: actorID},
	})
	if err != nil {
		return Transient(err)
	}
	return nil
}

func (s *DynamoProfileStore) GetProject(ctx context.Context, projectID string) (*models.Project, error) {
	item, err := s.Dynamo.GetItem(ctx, models.ProjectsTable, map[string]types.AttributeValue{
		"projectId": &types.AttributeValueMemberS{Value: projectID},
	})
	if err != nil {
		return nil, Transient(err)
	}
	if len(item) == 0 {
		return nil, nil
	}

	var project models.Project
	if err := attributevalue.UnmarshalMap(item, &project); err != nil {
		return nil, fmt.Errorf("unmarshal project: %w", err)
	}
	return &project, nil
}

func (s *DynamoProfileStore) PutProject(ctx context.Context, project models.Project) error {
	if _, err := s.Dynamo.PutItemReturnOld(ctx, models.ProjectsTable, project); err != nil {
		return Transient(err)
	}
	return nil
}

func (s *DynamoProfileStore) ListProjects(ctx context.Context) ([]models.Project, error) {
	items, err := s.Dynamo.ScanItems(ctx, models.ProjectsTable)
	if err != nil {
		return nil, Transient(err)
	}

	var projects []models.Project
	if err := attributevalue.UnmarshalListOfMaps(items, &projects); err != nil {
		return nil, fmt.Errorf("unmarshal projects: %w", err)
	}
	return projects, nil
}
