package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/go-otp-auth/internal/domain"
)

// UserRepo provides typed DynamoDB operations for the users table. PK: email.
type UserRepo struct {
	client    API
	tableName string
}

func NewUserRepo(client API, tableName string) *UserRepo {
	return &UserRepo{client: client, tableName: tableName}
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey(fieldEmail, email),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	var u domain.User
	if err := attributevalue.UnmarshalMap(out.Item, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateIfAbsent inserts u unless a user with the same email exists, and returns
// whichever user is stored. Two first logins racing for one email end up with the same user.
func (r *UserRepo) CreateIfAbsent(ctx context.Context, u *domain.User) (*domain.User, error) {
	item, err := attributevalue.MarshalMap(u)
	if err != nil {
		return nil, fmt.Errorf("marshal user: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(r.tableName),
		Item:                     item,
		ConditionExpression:      aws.String("attribute_not_exists(#e)"),
		ExpressionAttributeNames: map[string]string{"#e": fieldEmail},
	})
	if isConditionFailed(err) {
		existing, getErr := r.GetByEmail(ctx, u.Email)
		if getErr != nil {
			return nil, errors.Join(err, getErr)
		}
		return existing, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *UserRepo) Update(ctx context.Context, email string, updates map[string]interface{}) error {
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	ue.Names["#pk"] = fieldEmail
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey(fieldEmail, email),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(#pk)"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	if isConditionFailed(err) {
		return fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	return err
}

// TouchLogin records a successful login time.
func (r *UserRepo) TouchLogin(ctx context.Context, email string, at time.Time) error {
	return r.Update(ctx, email, map[string]interface{}{fieldLastLoginAt: at})
}
