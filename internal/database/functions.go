package database

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

func (db *Database) PutItem(ctx context.Context, tableName string, item any) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal item for table %s: %w", tableName, err)
	}

	_, err = db.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(tableName),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("failed to put item into table %s: %w", tableName, err)
	}
	return nil
}

// GetItem loads the item with the given partition key into out. It returns
// false when no item exists.
func (db *Database) GetItem(ctx context.Context, tableName string, pk string, out any) (bool, error) {
	result, err := db.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(tableName),
		Key: map[string]types.AttributeValue{
			"pk": &types.AttributeValueMemberS{Value: pk},
		},
	})
	if err != nil {
		return false, fmt.Errorf("failed to get item from table %s: %w", tableName, err)
	}
	if result.Item == nil {
		return false, nil
	}

	if err := attributevalue.UnmarshalMap(result.Item, out); err != nil {
		return false, fmt.Errorf("failed to unmarshal item from table %s: %w", tableName, err)
	}
	return true, nil
}

func (db *Database) UpdateItem(ctx context.Context, tableName string, pk string, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}

	exprNames := make(map[string]string, len(updates))
	exprValues := make(map[string]types.AttributeValue, len(updates))
	expr := "SET "
	i := 0
	for name, value := range updates {
		av, err := attributevalue.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to marshal update value %s: %w", name, err)
		}
		placeholder := fmt.Sprintf("#f%d", i)
		valuePlaceholder := fmt.Sprintf(":v%d", i)
		if i > 0 {
			expr += ", "
		}
		expr += placeholder + " = " + valuePlaceholder
		exprNames[placeholder] = name
		exprValues[valuePlaceholder] = av
		i++
	}

	_, err := db.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(tableName),
		Key: map[string]types.AttributeValue{
			"pk": &types.AttributeValueMemberS{Value: pk},
		},
		UpdateExpression:          aws.String(expr),
		ExpressionAttributeNames:  exprNames,
		ExpressionAttributeValues: exprValues,
	})
	if err != nil {
		return fmt.Errorf("failed to update item in table %s: %w", tableName, err)
	}
	return nil
}

func (db *Database) DeleteItem(ctx context.Context, tableName string, pk string) error {
	_, err := db.Client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(tableName),
		Key: map[string]types.AttributeValue{
			"pk": &types.AttributeValueMemberS{Value: pk},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete item from table %s: %w", tableName, err)
	}
	return nil
}

// ScanItemsByField scans tableName for items whose field equals value and
// unmarshals the full result set into out, following pagination.
func (db *Database) ScanItemsByField(ctx context.Context, tableName string, field string, value any, out any) error {
	av, err := attributevalue.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal scan value: %w", err)
	}

	var items []map[string]types.AttributeValue
	var lastKey map[string]types.AttributeValue
	for {
		result, err := db.Client.Scan(ctx, &dynamodb.ScanInput{
			TableName:        aws.String(tableName),
			FilterExpression: aws.String("#f = :v"),
			ExpressionAttributeNames: map[string]string{
				"#f": field,
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":v": av,
			},
			ExclusiveStartKey: lastKey,
		})
		if err != nil {
			return fmt.Errorf("failed to scan table %s: %w", tableName, err)
		}
		items = append(items, result.Items...)
		if result.LastEvaluatedKey == nil {
			break
		}
		lastKey = result.LastEvaluatedKey
	}

	if err := attributevalue.UnmarshalListOfMaps(items, out); err != nil {
		return fmt.Errorf("failed to unmarshal scan result from table %s: %w", tableName, err)
	}
	return nil
}

// TransactWriteItems executes the given write items atomically.
func (db *Database) TransactWriteItems(ctx context.Context, items []types.TransactWriteItem) error {
	_, err := db.Client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	})
	if err != nil {
		return fmt.Errorf("failed to execute transaction: %w", err)
	}
	return nil
}
