package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-dataroom-api/internal/domain"
)

// ViewerRepo provides typed DynamoDB operations for the viewers table.
// PK: team_id, SK: email.
type ViewerRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewViewerRepo(client *dynamodb.Client, tableName string) *ViewerRepo {
	return &ViewerRepo{client: client, tableName: tableName}
}

func (r *ViewerRepo) Get(ctx context.Context, teamID, email string) (*domain.Viewer, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       compositeKey("team_id", teamID, "email", email),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("viewer not found: %w", domain.ErrNotFound)
	}
	var v domain.Viewer
	if err := attributevalue.UnmarshalMap(out.Item, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// Create writes a viewer only if no row exists for its (team_id, email) key.
// A concurrent create of the same pair surfaces as domain.ErrConflict so the
// caller can re-fetch the winner's row instead of failing the request.
func (r *ViewerRepo) Create(ctx context.Context, v *domain.Viewer) error {
	item, err := attributevalue.MarshalMap(v)
	if err != nil {
		return fmt.Errorf("marshal viewer: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(team_id) AND attribute_not_exists(email)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return fmt.Errorf("viewer exists: %w", domain.ErrConflict)
		}
		return err
	}
	return nil
}

// MarkVerified promotes the viewer's verified flag. Promotion only — the flag
// is never set back to false.
func (r *ViewerRepo) MarkVerified(ctx context.Context, teamID, email string) error {
	ue, err := buildUpdateExpr(map[string]interface{}{
		"verified":   true,
		"updated_at": time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       compositeKey("team_id", teamID, "email", email),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}
