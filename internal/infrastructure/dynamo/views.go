package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/go-dataroom-api/internal/domain"
)

// ViewRepo provides typed DynamoDB operations for the views table.
// Views are append-only; no update or delete paths exist.
type ViewRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewViewRepo(client *dynamodb.Client, tableName string) *ViewRepo {
	return &ViewRepo{client: client, tableName: tableName}
}

func (r *ViewRepo) Put(ctx context.Context, v *domain.View) error {
	item, err := attributevalue.MarshalMap(v)
	if err != nil {
		return fmt.Errorf("marshal view: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}
