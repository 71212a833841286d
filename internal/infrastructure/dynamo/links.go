package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/go-dataroom-api/internal/domain"
)

// LinkRepo provides typed DynamoDB operations for the links table.
// The access gate only ever reads links; writes happen in the management API.
type LinkRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewLinkRepo(client *dynamodb.Client, tableName string) *LinkRepo {
	return &LinkRepo{client: client, tableName: tableName}
}

func (r *LinkRepo) Get(ctx context.Context, linkID string) (*domain.Link, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("link_id", linkID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("link not found: %w", domain.ErrNotFound)
	}
	var l domain.Link
	if err := attributevalue.UnmarshalMap(out.Item, &l); err != nil {
		return nil, err
	}
	return &l, nil
}
