package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"

	"consultant-chat/internal/domain"
)

type fakeDynamo struct {
	putErr       error
	lastPutInput *dynamodb.PutItemInput
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.lastPutInput = in
	return &dynamodb.PutItemOutput{}, f.putErr
}

var fixedNow = time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)

func mustNewLog(t *testing.T, db *fakeDynamo, ttl time.Duration) *ExchangeLog {
	t.Helper()
	l, err := New(db, "chat-log", ttl)
	require.NoError(t, err)
	l.now = func() time.Time { return fixedNow }
	l.newID = func() string { return "id-1" }
	return l
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil, "chat-log", 0)
	require.Error(t, err)

	_, err = New(&fakeDynamo{}, "  ", 0)
	require.Error(t, err)

	l, err := New(&fakeDynamo{}, "chat-log", 0)
	require.NoError(t, err)
	require.Equal(t, defaultTTL, l.ttl)
}

func TestNewExchange(t *testing.T) {
	l := mustNewLog(t, &fakeDynamo{}, 24*time.Hour)
	ex := l.NewExchange("вопрос", "ответ")
	require.Equal(t, domain.Exchange{
		PK:        "DAY#2026-10-17",
		SK:        "2026-10-17T09:30:00Z#id-1",
		ID:        "id-1",
		Message:   "вопрос",
		Response:  "ответ",
		CreatedAt: "2026-10-17T09:30:00Z",
		TTL:       fixedNow.Add(24 * time.Hour).Unix(),
	}, ex)
}

func TestRecord_WritesItem(t *testing.T) {
	db := &fakeDynamo{}
	l := mustNewLog(t, db, 0)

	require.NoError(t, l.Record(context.Background(), "вопрос", "ответ"))
	require.NotNil(t, db.lastPutInput)
	require.Equal(t, "chat-log", *db.lastPutInput.TableName)
	require.Contains(t, *db.lastPutInput.ConditionExpression, "attribute_not_exists")

	item := db.lastPutInput.Item
	require.Equal(t, &types.AttributeValueMemberS{Value: "DAY#2026-10-17"}, item["PK"])
	require.Equal(t, &types.AttributeValueMemberS{Value: "вопрос"}, item["message"])
	require.Equal(t, &types.AttributeValueMemberS{Value: "ответ"}, item["response"])

	var got domain.Exchange
	require.NoError(t, attributevalue.UnmarshalMap(item, &got))
	require.Equal(t, fixedNow.Add(defaultTTL).Unix(), got.TTL)
	require.Equal(t, "id-1", got.ID)
}

func TestRecord_PutError(t *testing.T) {
	l := mustNewLog(t, &fakeDynamo{putErr: errors.New("throttled")}, 0)
	err := l.Record(context.Background(), "q", "a")
	require.ErrorContains(t, err, "throttled")
	require.ErrorContains(t, err, "repository: Record")
}
