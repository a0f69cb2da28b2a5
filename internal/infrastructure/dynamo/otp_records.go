package dynamo

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-otp-auth/internal/domain"
)

// pendingPageSize bounds each page read while looking for the newest unconsumed record.
const pendingPageSize = 10

// OTPRepo stores issued passcodes.
// PK: identity, SK: record_id (ULID, so the newest record sorts last).
type OTPRepo struct {
	client    API
	tableName string
}

func NewOTPRepo(client API, tableName string) *OTPRepo {
	return &OTPRepo{client: client, tableName: tableName}
}

// Create writes a new record. It never overwrites an existing one.
func (r *OTPRepo) Create(ctx context.Context, rec *domain.OTPRecord) error {
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("marshal otp record: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(r.tableName),
		Item:                     item,
		ConditionExpression:      aws.String("attribute_not_exists(#rid)"),
		ExpressionAttributeNames: map[string]string{"#rid": fieldRecordID},
	})
	if isConditionFailed(err) {
		return fmt.Errorf("otp record %s already exists: %w", rec.RecordID, domain.ErrConflict)
	}
	return err
}

// MostRecent returns the newest record for identity regardless of state.
func (r *OTPRepo) MostRecent(ctx context.Context, identity string) (*domain.OTPRecord, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    aws.String("#id = :id"),
		ExpressionAttributeNames:  map[string]string{"#id": fieldIdentity},
		ExpressionAttributeValues: map[string]types.AttributeValue{":id": &types.AttributeValueMemberS{Value: identity}},
		ScanIndexForward:          aws.Bool(false),
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("otp record not found: %w", domain.ErrNotFound)
	}
	var rec domain.OTPRecord
	if err := attributevalue.UnmarshalMap(out.Items[0], &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// MostRecentPending returns the newest record for identity with consumed=false.
// Limit applies before the filter, so pages are walked until a match appears.
func (r *OTPRepo) MostRecentPending(ctx context.Context, identity string) (*domain.OTPRecord, error) {
	p := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("#id = :id"),
		FilterExpression:       aws.String("#c = :f"),
		ExpressionAttributeNames: map[string]string{
			"#id": fieldIdentity,
			"#c":  fieldConsumed,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":id": &types.AttributeValueMemberS{Value: identity},
			":f":  &types.AttributeValueMemberBOOL{Value: false},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(pendingPageSize),
	})
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		if len(out.Items) == 0 {
			continue
		}
		var rec domain.OTPRecord
		if err := attributevalue.UnmarshalMap(out.Items[0], &rec); err != nil {
			return nil, err
		}
		return &rec, nil
	}
	return nil, fmt.Errorf("pending otp record not found: %w", domain.ErrNotFound)
}

// MarkConsumed flips consumed false->true. The write is conditional on the record
// still being unconsumed, so of two concurrent verifications only one succeeds;
// the loser gets domain.ErrConflict.
func (r *OTPRepo) MarkConsumed(ctx context.Context, rec *domain.OTPRecord, at time.Time) error {
	atAV, err := attributevalue.Marshal(at)
	if err != nil {
		return fmt.Errorf("marshal consumed_at: %w", err)
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 compositeKey(fieldIdentity, rec.Identity, fieldRecordID, rec.RecordID),
		UpdateExpression:    aws.String("SET #c = :t, #ca = :at"),
		ConditionExpression: aws.String("#c = :f"),
		ExpressionAttributeNames: map[string]string{
			"#c":  fieldConsumed,
			"#ca": fieldConsumedAt,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":t":  &types.AttributeValueMemberBOOL{Value: true},
			":f":  &types.AttributeValueMemberBOOL{Value: false},
			":at": atAV,
		},
	})
	if isConditionFailed(err) {
		return fmt.Errorf("otp record %s already consumed: %w", rec.RecordID, domain.ErrConflict)
	}
	if err != nil {
		return err
	}
	rec.Consumed = true
	rec.ConsumedAt = &at
	return nil
}

// IncrementAttempts records a failed verification and returns the new count.
// It refuses (domain.ErrConflict) once the record is consumed or already at max.
func (r *OTPRepo) IncrementAttempts(ctx context.Context, rec *domain.OTPRecord, max int) (int, error) {
	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 compositeKey(fieldIdentity, rec.Identity, fieldRecordID, rec.RecordID),
		UpdateExpression:    aws.String("ADD #a :one"),
		ConditionExpression: aws.String("#c = :f AND (attribute_not_exists(#a) OR #a < :max)"),
		ExpressionAttributeNames: map[string]string{
			"#a": fieldAttempts,
			"#c": fieldConsumed,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
			":max": &types.AttributeValueMemberN{Value: strconv.Itoa(max)},
			":f":   &types.AttributeValueMemberBOOL{Value: false},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	})
	if isConditionFailed(err) {
		return max, fmt.Errorf("otp record %s not open for attempts: %w", rec.RecordID, domain.ErrConflict)
	}
	if err != nil {
		return 0, err
	}
	n, ok := out.Attributes[fieldAttempts].(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("update attempts: missing %s in response", fieldAttempts)
	}
	attempts, err := strconv.Atoi(n.Value)
	if err != nil {
		return 0, fmt.Errorf("update attempts: %w", err)
	}
	rec.Attempts = attempts
	return attempts, nil
}
