package dynamodb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/saastack/eventing/persistence/kv"
)

// KeyValueStore is an implementation of [kv.Store] that keeps every keyspace
// in a single DynamoDB table, partitioned by keyspace name.
type KeyValueStore struct {
	Client *dynamodb.Client
	Table  string

	// RequestOptions are applied to every DynamoDB request.
	RequestOptions []func(*dynamodb.Options)
}

const (
	kvKeyspaceAttr = "Keyspace"
	kvKeyAttr      = "Key"
	kvValueAttr    = "Value"
)

// Open returns the keyspace with the given name.
func (s *KeyValueStore) Open(ctx context.Context, name string) (kv.Keyspace, error) {
	return &keyspace{
		store: s,
		name:  &types.AttributeValueMemberS{Value: name},
	}, ctx.Err()
}

// CreateKeyValueStoreTable creates a DynamoDB table for use with
// [KeyValueStore].
func CreateKeyValueStoreTable(
	ctx context.Context,
	client *dynamodb.Client,
	table string,
	options ...func(*dynamodb.Options),
) error {
	return createTable(ctx, client, table, kvKeyspaceAttr, kvKeyAttr, types.ScalarAttributeTypeB, options...)
}

// keyspace is safe for concurrent use; each request is built from scratch.
type keyspace struct {
	store *KeyValueStore
	name  *types.AttributeValueMemberS
}

func (ks *keyspace) key(k []byte) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		kvKeyspaceAttr: ks.name,
		kvKeyAttr:      &types.AttributeValueMemberB{Value: k},
	}
}

func (ks *keyspace) Get(ctx context.Context, k []byte) ([]byte, error) {
	out, err := ks.store.Client.GetItem(
		ctx,
		&dynamodb.GetItemInput{
			TableName:                aws.String(ks.store.Table),
			Key:                      ks.key(k),
			ProjectionExpression:     aws.String("#V"),
			ExpressionAttributeNames: map[string]string{"#V": kvValueAttr},
		},
		ks.store.RequestOptions...,
	)
	if err != nil || out.Item == nil {
		return nil, err
	}

	v, err := attr[*types.AttributeValueMemberB](out.Item, kvValueAttr)
	if err != nil {
		return nil, err
	}

	return v.Value, nil
}

func (ks *keyspace) Has(ctx context.Context, k []byte) (bool, error) {
	out, err := ks.store.Client.GetItem(
		ctx,
		&dynamodb.GetItemInput{
			TableName: aws.String(ks.store.Table),
			Key:       ks.key(k),
			// Projecting only the key avoids transferring the value.
			ProjectionExpression:     aws.String("#K"),
			ExpressionAttributeNames: map[string]string{"#K": kvKeyAttr},
		},
		ks.store.RequestOptions...,
	)
	if err != nil {
		return false, err
	}

	return out.Item != nil, nil
}

func (ks *keyspace) Set(ctx context.Context, k, v []byte) error {
	if len(v) == 0 {
		_, err := ks.store.Client.DeleteItem(
			ctx,
			&dynamodb.DeleteItemInput{
				TableName: aws.String(ks.store.Table),
				Key:       ks.key(k),
			},
			ks.store.RequestOptions...,
		)
		return err
	}

	item := ks.key(k)
	item[kvValueAttr] = &types.AttributeValueMemberB{Value: v}

	_, err := ks.store.Client.PutItem(
		ctx,
		&dynamodb.PutItemInput{
			TableName: aws.String(ks.store.Table),
			Item:      item,
		},
		ks.store.RequestOptions...,
	)
	return err
}

func (ks *keyspace) Range(ctx context.Context, fn kv.RangeFunc) error {
	return queryAll(
		ctx,
		ks.store.Client,
		&dynamodb.QueryInput{
			TableName:              aws.String(ks.store.Table),
			KeyConditionExpression: aws.String("#S = :S"),
			ProjectionExpression:   aws.String("#K, #V"),
			ExpressionAttributeNames: map[string]string{
				"#S": kvKeyspaceAttr,
				"#K": kvKeyAttr,
				"#V": kvValueAttr,
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":S": ks.name,
			},
		},
		ks.store.RequestOptions,
		func(item map[string]types.AttributeValue) (bool, error) {
			k, err := attr[*types.AttributeValueMemberB](item, kvKeyAttr)
			if err != nil {
				return false, err
			}

			v, err := attr[*types.AttributeValueMemberB](item, kvValueAttr)
			if err != nil {
				return false, err
			}

			return fn(ctx, k.Value, v.Value)
		},
	)
}

func (ks *keyspace) Close() error {
	return nil
}
