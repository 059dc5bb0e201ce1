package domain

// Exchange is one answered chat request as written to the exchange log.
// It is never read back into a prompt.
type Exchange struct {
	PK        string `dynamodbav:"PK"`
	SK        string `dynamodbav:"SK"`
	ID        string `dynamodbav:"id"`
	Message   string `dynamodbav:"message"`
	Response  string `dynamodbav:"response"`
	CreatedAt string `dynamodbav:"createdAt"`
	TTL       int64  `dynamodbav:"ttl"`
}
