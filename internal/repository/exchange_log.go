package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/google/uuid"

	"consultant-chat/internal/domain"
)

const (
	pkPrefixDay = "DAY#"
	defaultTTL  = 30 * 24 * time.Hour
)

// dynamodbAPI is the minimal DynamoDB interface required by ExchangeLog.
type dynamodbAPI interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// ExchangeLog appends answered requests to a DynamoDB table. Items are
// partitioned by UTC day and sorted by time, and expire through the ttl
// attribute.
type ExchangeLog struct {
	api       dynamodbAPI
	tableName string
	ttl       time.Duration

	now   func() time.Time
	newID func() string
}

// New creates an ExchangeLog. A non-positive ttl selects the 30-day default.
func New(api dynamodbAPI, tableName string, ttl time.Duration) (*ExchangeLog, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &ExchangeLog{
		api:       api,
		tableName: tableName,
		ttl:       ttl,
		now:       time.Now,
		newID:     uuid.NewString,
	}, nil
}

// dayPK returns the partition key for the UTC day of ts.
func dayPK(ts time.Time) string {
	return pkPrefixDay + ts.UTC().Format(time.DateOnly)
}

// NewExchange builds the record for one answered request.
func (c *ExchangeLog) NewExchange(message, response string) domain.Exchange {
	now := c.now().UTC()
	id := c.newID()
	return domain.Exchange{
		PK:        dayPK(now),
		SK:        now.Format(time.RFC3339Nano) + "#" + id,
		ID:        id,
		Message:   message,
		Response:  response,
		CreatedAt: now.Format(time.RFC3339),
		TTL:       now.Add(c.ttl).Unix(),
	}
}

// Record writes one exchange. Existing items are never overwritten.
func (c *ExchangeLog) Record(ctx context.Context, message, response string) error {
	item, err := attributevalue.MarshalMap(c.NewExchange(message, response))
	if err != nil {
		return fmt.Errorf("repository: marshal exchange: %w", err)
	}
	_, err = c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(c.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
	})
	if err != nil {
		return fmt.Errorf("repository: Record: %w", err)
	}
	return nil
}
