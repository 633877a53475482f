package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/saastack/eventing/persistence/journal"
)

// JournalStore is an implementation of [journal.Store] that keeps every
// journal in a single DynamoDB table. Each record is an item keyed by the
// journal's path and the record's position.
type JournalStore struct {
	Client *dynamodb.Client
	Table  string

	// RequestOptions are applied to every DynamoDB request.
	RequestOptions []func(*dynamodb.Options)
}

const (
	journalPathAttr     = "Path"
	journalPositionAttr = "Position"
	journalRecordAttr   = "Record"
)

// Open returns the journal at the given path.
func (s *JournalStore) Open(ctx context.Context, path ...string) (journal.Journal, error) {
	return &dynamoJournal{
		store: s,
		path:  &types.AttributeValueMemberS{Value: journal.PathKey(path)},
	}, ctx.Err()
}

// CreateJournalTable creates a DynamoDB table for use with [JournalStore].
func CreateJournalTable(
	ctx context.Context,
	client *dynamodb.Client,
	table string,
	options ...func(*dynamodb.Options),
) error {
	return createTable(ctx, client, table, journalPathAttr, journalPositionAttr, types.ScalarAttributeTypeN, options...)
}

type dynamoJournal struct {
	store *JournalStore
	path  *types.AttributeValueMemberS
}

func (j *dynamoJournal) key(pos journal.Position) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		journalPathAttr:     j.path,
		journalPositionAttr: position(pos),
	}
}

// query returns a query for the records at or after pos, in the given
// direction.
func (j *dynamoJournal) query(pos journal.Position, forward bool, projection string) *dynamodb.QueryInput {
	return &dynamodb.QueryInput{
		TableName:              aws.String(j.store.Table),
		KeyConditionExpression: aws.String("#P = :P AND #O >= :O"),
		ProjectionExpression:   aws.String(projection),
		ScanIndexForward:       aws.Bool(forward),
		ExpressionAttributeNames: map[string]string{
			"#P": journalPathAttr,
			"#O": journalPositionAttr,
			"#R": journalRecordAttr,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":P": j.path,
			":O": position(pos),
		},
	}
}

func (j *dynamoJournal) Bounds(ctx context.Context) (begin, end journal.Position, err error) {
	last, ok, err := j.edge(ctx, false)
	if !ok || err != nil {
		return 0, 0, err
	}
	end = last + 1

	begin, ok, err = j.edge(ctx, true)
	if err != nil {
		return 0, 0, err
	}
	if !ok {
		// Truncated between the two queries.
		return end, end, nil
	}

	return begin, end, nil
}

// edge returns the position of the first or last record.
func (j *dynamoJournal) edge(ctx context.Context, first bool) (journal.Position, bool, error) {
	in := j.query(0, first, "#O")
	in.Limit = aws.Int32(1)
	delete(in.ExpressionAttributeNames, "#R")

	out, err := j.store.Client.Query(ctx, in, j.store.RequestOptions...)
	if err != nil || len(out.Items) == 0 {
		return 0, false, err
	}

	pos, err := parsePosition(out.Items[0])
	return pos, err == nil, err
}

func (j *dynamoJournal) Get(ctx context.Context, pos journal.Position) ([]byte, bool, error) {
	out, err := j.store.Client.GetItem(
		ctx,
		&dynamodb.GetItemInput{
			TableName:                aws.String(j.store.Table),
			Key:                      j.key(pos),
			ProjectionExpression:     aws.String("#R"),
			ExpressionAttributeNames: map[string]string{"#R": journalRecordAttr},
		},
		j.store.RequestOptions...,
	)
	if err != nil || out.Item == nil {
		return nil, false, err
	}

	rec, err := attr[*types.AttributeValueMemberB](out.Item, journalRecordAttr)
	if err != nil {
		return nil, false, err
	}

	return rec.Value, true, nil
}

func (j *dynamoJournal) Range(ctx context.Context, begin journal.Position, fn journal.RangeFunc) error {
	next := begin

	if err := queryAll(
		ctx,
		j.store.Client,
		j.query(begin, true, "#O, #R"),
		j.store.RequestOptions,
		func(item map[string]types.AttributeValue) (bool, error) {
			pos, err := parsePosition(item)
			if err != nil {
				return false, err
			}
			if pos != next {
				return false, fmt.Errorf("cannot range from position %d, the record has been truncated", next)
			}
			next++

			rec, err := attr[*types.AttributeValueMemberB](item, journalRecordAttr)
			if err != nil {
				return false, err
			}

			return fn(ctx, pos, rec.Value)
		},
	); err != nil {
		return err
	}

	if next != begin {
		return nil
	}

	// Nothing was read, distinguish an empty tail from a truncated one.
	first, _, err := j.Bounds(ctx)
	if err != nil {
		return err
	}
	if begin < first {
		return fmt.Errorf("cannot range from position %d, records before %d have been truncated", begin, first)
	}

	return nil
}

func (j *dynamoJournal) Append(ctx context.Context, end journal.Position, rec []byte) error {
	item := j.key(end)
	item[journalRecordAttr] = &types.AttributeValueMemberB{Value: rec}

	_, err := j.store.Client.PutItem(
		ctx,
		&dynamodb.PutItemInput{
			TableName:                aws.String(j.store.Table),
			Item:                     item,
			ConditionExpression:      aws.String("attribute_not_exists(#P)"),
			ExpressionAttributeNames: map[string]string{"#P": journalPathAttr},
		},
		j.store.RequestOptions...,
	)

	if errors.As(err, new(*types.ConditionalCheckFailedException)) {
		return journal.ErrConflict
	}

	return err
}

func (j *dynamoJournal) Truncate(ctx context.Context, end journal.Position) error {
	begin, _, err := j.Bounds(ctx)
	if err != nil {
		return err
	}

	for pos := begin; pos < end; pos++ {
		if _, err := j.store.Client.DeleteItem(
			ctx,
			&dynamodb.DeleteItemInput{
				TableName: aws.String(j.store.Table),
				Key:       j.key(pos),
			},
			j.store.RequestOptions...,
		); err != nil {
			return err
		}
	}

	return nil
}

func (j *dynamoJournal) Close() error {
	return nil
}

func position(pos journal.Position) *types.AttributeValueMemberN {
	return &types.AttributeValueMemberN{Value: strconv.FormatUint(uint64(pos), 10)}
}

func parsePosition(item map[string]types.AttributeValue) (journal.Position, error) {
	a, err := attr[*types.AttributeValueMemberN](item, journalPositionAttr)
	if err != nil {
		return 0, err
	}

	pos, err := strconv.ParseUint(a.Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("item is corrupt: invalid position: %w", err)
	}

	return journal.Position(pos), nil
}
