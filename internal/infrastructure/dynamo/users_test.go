package dynamo

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-otp-auth/internal/config"
	"github.com/go-otp-auth/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUserRepo_GetByEmail_NotFound(t *testing.T) {
	api := &mockAPI{}
	api.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{}, nil)

	_, err := NewUserRepo(api, "users").GetByEmail(context.Background(), "a@x.com")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestUserRepo_CreateIfAbsent_New(t *testing.T) {
	api := &mockAPI{}
	api.On("PutItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.PutItemInput) bool {
		return *in.ConditionExpression == "attribute_not_exists(#e)"
	})).Return(&dynamodb.PutItemOutput{}, nil)

	u := &domain.User{UserID: "u1", Email: "a@x.com", CreatedAt: t0}
	got, err := NewUserRepo(api, "users").CreateIfAbsent(context.Background(), u)
	require.NoError(t, err)
	assert.Same(t, u, got)
}

func TestUserRepo_CreateIfAbsent_ReturnsExisting(t *testing.T) {
	api := &mockAPI{}
	existing := &domain.User{UserID: "u-old", Email: "a@x.com", CreatedAt: t0}
	item, err := attributevalue.MarshalMap(existing)
	require.NoError(t, err)

	api.On("PutItem", mock.Anything, mock.Anything).Return(nil, &types.ConditionalCheckFailedException{})
	api.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{Item: item}, nil)

	got, err := NewUserRepo(api, "users").CreateIfAbsent(context.Background(), &domain.User{UserID: "u-new", Email: "a@x.com"})
	require.NoError(t, err)
	assert.Equal(t, "u-old", got.UserID)
}

func TestUserRepo_TouchLogin_Missing(t *testing.T) {
	api := &mockAPI{}
	api.On("UpdateItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.UpdateItemInput) bool {
		return in.ExpressionAttributeNames["#f0"] == "last_login_at" && in.ExpressionAttributeNames["#pk"] == "email"
	})).Return(nil, &types.ConditionalCheckFailedException{})

	err := NewUserRepo(api, "users").TouchLogin(context.Background(), "a@x.com", t0)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestBootstrap_ToleratesExistingTables(t *testing.T) {
	api := &mockAPI{}
	api.On("CreateTable", mock.Anything, mock.Anything).Return(nil, &types.ResourceInUseException{}).Twice()
	api.On("UpdateTimeToLive", mock.Anything, mock.MatchedBy(func(in *dynamodb.UpdateTimeToLiveInput) bool {
		return *in.TableName == "otp" && *in.TimeToLiveSpecification.AttributeName == "purge_at"
	})).Return(&dynamodb.UpdateTimeToLiveOutput{}, nil).Once()

	Bootstrap(context.Background(), api, config.DynamoTables{OTPRecords: "otp", Users: "users"})
	api.AssertExpectations(t)
}
