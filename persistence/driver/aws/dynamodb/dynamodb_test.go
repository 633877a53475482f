package dynamodb_test

import (
	"context"
	"errors"
	"net/url"
	"os"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/saastack/eventing/internal/engineconfig"
)

// newClient returns a client for the DynamoDB-compatible endpoint named by
// EVENTING_TEST_DYNAMODB_ENDPOINT, such as DynamoDB Local.
func newClient(t *testing.T) *dynamodb.Client {
	endpoint := os.Getenv("EVENTING_TEST_DYNAMODB_ENDPOINT")
	if endpoint == "" {
		t.Skip("EVENTING_TEST_DYNAMODB_ENDPOINT is not set")
	}

	dsn := &url.URL{
		Scheme:   "dynamodb",
		User:     url.UserPassword("id", "secret"),
		Host:     "unused",
		RawQuery: url.Values{"region": {"us-east-1"}, "endpoint": {endpoint}}.Encode(),
	}

	client, _, err := engineconfig.OpenDynamoDB(context.Background(), dsn)
	if err != nil {
		t.Fatal(err)
	}

	return client
}

func deleteTable(ctx context.Context, client *dynamodb.Client, table string) error {
	_, err := client.DeleteTable(ctx, &dynamodb.DeleteTableInput{
		TableName: aws.String(table),
	})

	if errors.As(err, new(*types.ResourceNotFoundException)) {
		return nil
	}

	return err
}
