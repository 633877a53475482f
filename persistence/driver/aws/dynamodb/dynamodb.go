// Package dynamodb provides journal and key/value stores backed by Amazon
// DynamoDB tables.
package dynamodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// attr returns the attribute called name from item, which must be of type T.
func attr[T types.AttributeValue](item map[string]types.AttributeValue, name string) (T, error) {
	var zero T

	a, ok := item[name]
	if !ok {
		return zero, fmt.Errorf("item is corrupt: missing %q attribute", name)
	}

	v, ok := a.(T)
	if !ok {
		return zero, fmt.Errorf("item is corrupt: %q attribute is %T, expected %T", name, a, zero)
	}

	return v, nil
}

// queryAll calls fn for each item that matches in, following pagination,
// until fn returns false or an error.
func queryAll(
	ctx context.Context,
	client *dynamodb.Client,
	in *dynamodb.QueryInput,
	options []func(*dynamodb.Options),
	fn func(item map[string]types.AttributeValue) (bool, error),
) error {
	for {
		out, err := client.Query(ctx, in, options...)
		if err != nil {
			return err
		}

		for _, item := range out.Items {
			ok, err := fn(item)
			if !ok || err != nil {
				return err
			}
		}

		if out.LastEvaluatedKey == nil {
			return nil
		}

		in.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

// createTable creates an on-demand table with a composite primary key. It
// succeeds if the table already exists.
func createTable(
	ctx context.Context,
	client *dynamodb.Client,
	table string,
	hash, sort string,
	sortType types.ScalarAttributeType,
	options ...func(*dynamodb.Options),
) error {
	_, err := client.CreateTable(
		ctx,
		&dynamodb.CreateTableInput{
			TableName: aws.String(table),
			AttributeDefinitions: []types.AttributeDefinition{
				{AttributeName: aws.String(hash), AttributeType: types.ScalarAttributeTypeS},
				{AttributeName: aws.String(sort), AttributeType: sortType},
			},
			KeySchema: []types.KeySchemaElement{
				{AttributeName: aws.String(hash), KeyType: types.KeyTypeHash},
				{AttributeName: aws.String(sort), KeyType: types.KeyTypeRange},
			},
			BillingMode: types.BillingModePayPerRequest,
		},
		options...,
	)

	if errors.As(err, new(*types.ResourceInUseException)) {
		return nil
	}

	return err
}
