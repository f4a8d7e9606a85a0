package chatlog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type dynamoAPI interface {
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(context.Context, *dynamodb.UpdateItemInput, ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}

// chatItemKey is the sort key of the per-phone summary item.
const chatItemKey = "CHAT"

type messageItem struct {
	Phone     string    `dynamodbav:"phone"`
	SortKey   string    `dynamodbav:"sk"`
	ID        string    `dynamodbav:"id"`
	Text      string    `dynamodbav:"text"`
	Sender    Sender    `dynamodbav:"sender"`
	Direction Direction `dynamodbav:"direction"`
	Intent    string    `dynamodbav:"intent,omitempty"`
	Slots     *Slots    `dynamodbav:"slots,omitempty"`
	Action    string    `dynamodbav:"action,omitempty"`
	Timestamp string    `dynamodbav:"timestamp"`
}

// DynamoStore keeps each chat under a phone partition: a summary item carrying
// last_updated plus one item per message, sorted by time.
type DynamoStore struct {
	client    dynamoAPI
	tableName string
	now       func() time.Time
}

func NewDynamoStore(client dynamoAPI, tableName string) *DynamoStore {
	if client == nil {
		panic("chatlog: dynamodb client cannot be nil")
	}
	if tableName == "" {
		panic("chatlog: table name cannot be empty")
	}
	return &DynamoStore{client: client, tableName: tableName, now: time.Now}
}

func (s *DynamoStore) Append(ctx context.Context, rec Record) error {
	if rec.Phone == "" {
		return errors.New("chatlog: phone required")
	}
	rec = normalize(rec, s.now)
	ts := rec.CreatedAt.Format(time.RFC3339Nano)

	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"phone": &types.AttributeValueMemberS{Value: rec.Phone},
			"sk":    &types.AttributeValueMemberS{Value: chatItemKey},
		},
		UpdateExpression: aws.String("SET last_updated = :ts"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":ts": &types.AttributeValueMemberS{Value: ts},
		},
	})
	if err != nil {
		return fmt.Errorf("chatlog: touch chat: %w", err)
	}

	item, err := attributevalue.MarshalMap(messageItem{
		Phone:     rec.Phone,
		SortKey:   "MSG#" + ts + "#" + rec.ID,
		ID:        rec.ID,
		Text:      rec.Text,
		Sender:    rec.Sender,
		Direction: rec.Direction,
		Intent:    rec.Intent,
		Slots:     rec.Slots,
		Action:    rec.Action,
		Timestamp: ts,
	})
	if err != nil {
		return fmt.Errorf("chatlog: marshal message: %w", err)
	}
	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	}); err != nil {
		return fmt.Errorf("chatlog: put message: %w", err)
	}
	return nil
}
