package chatlog

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDynamo struct {
	puts    []*dynamodb.PutItemInput
	updates []*dynamodb.UpdateItemInput
	putErr  error
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	f.puts = append(f.puts, in)
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) UpdateItem(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.updates = append(f.updates, in)
	return &dynamodb.UpdateItemOutput{}, nil
}

func TestDynamoStoreAppend(t *testing.T) {
	fake := &fakeDynamo{}
	store := NewDynamoStore(fake, "chat_messages")
	created := time.Date(2025, 3, 4, 15, 0, 0, 0, time.UTC)

	err := store.Append(context.Background(), Record{
		ID:        "msg-1",
		Phone:     "5215550001111",
		Text:      "¡Listo!",
		Sender:    SenderBot,
		Direction: DirectionOutbound,
		Intent:    "book_appointment",
		Slots:     &Slots{Servicio: "manicure", Fecha: "Martes, 4 de marzo", Hora: "4pm"},
		Action:    "create_booking",
		CreatedAt: created,
	})
	require.NoError(t, err)

	require.Len(t, fake.updates, 1)
	key := fake.updates[0].Key["sk"].(*types.AttributeValueMemberS)
	assert.Equal(t, chatItemKey, key.Value)

	require.Len(t, fake.puts, 1)
	var item messageItem
	require.NoError(t, attributevalue.UnmarshalMap(fake.puts[0].Item, &item))
	assert.Equal(t, "5215550001111", item.Phone)
	assert.True(t, strings.HasPrefix(item.SortKey, "MSG#2025-03-04T15:00:00Z#"))
	assert.Equal(t, "create_booking", item.Action)
	require.NotNil(t, item.Slots)
	assert.Equal(t, "4pm", item.Slots.Hora)
}

func TestDynamoStoreOmitsEmptySlots(t *testing.T) {
	fake := &fakeDynamo{}
	store := NewDynamoStore(fake, "chat_messages")

	require.NoError(t, store.Append(context.Background(), Record{
		Phone:     "5215550001111",
		Text:      "hola",
		Sender:    SenderUser,
		Direction: DirectionInbound,
		Slots:     &Slots{},
	}))
	require.Len(t, fake.puts, 1)
	_, ok := fake.puts[0].Item["slots"]
	assert.False(t, ok)
	_, ok = fake.puts[0].Item["id"]
	assert.True(t, ok)
}

func TestDynamoStorePropagatesErrors(t *testing.T) {
	fake := &fakeDynamo{putErr: errors.New("throttled")}
	err := NewDynamoStore(fake, "chat_messages").Append(context.Background(), Record{Phone: "1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "throttled")
}
