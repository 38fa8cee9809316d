package storage

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog/log"

	"github.com/bbernstein/evlocator/backend-go/internal/models"
)

// DynamoDBAPI is the subset of the DynamoDB client used by DynamoStationStore.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// DynamoStationStore reads stations from a DynamoDB table keyed by numeric "id".
type DynamoStationStore struct {
	client    DynamoDBAPI
	tableName string
}

var _ StationStore = (*DynamoStationStore)(nil)

func NewDynamoStationStore(client DynamoDBAPI, tableName string) *DynamoStationStore {
	return &DynamoStationStore{
		client:    client,
		tableName: tableName,
	}
}

func (d *DynamoStationStore) ListStations(ctx context.Context) ([]models.Station, error) {
	stations := make([]models.Station, 0)
	var startKey map[string]types.AttributeValue
	pages := 0

	for {
		out, err := d.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(d.tableName),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("scanning stations table: %w", err)
		}
		pages++

		var page []models.Station
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("unmarshaling stations: %w", err)
		}
		stations = append(stations, page...)

		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		startKey = out.LastEvaluatedKey
	}

	// Scan order is arbitrary; callers rely on a stable order for tie-breaking.
	sort.SliceStable(stations, func(i, j int) bool {
		return stations[i].ID < stations[j].ID
	})

	log.Debug().
		Str("table", d.tableName).
		Int("pages", pages).
		Int("station_count", len(stations)).
		Msg("Scanned stations from DynamoDB")
	return stations, nil
}

func (d *DynamoStationStore) GetStation(ctx context.Context, id int64) (*models.Station, error) {
	out, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberN{Value: strconv.FormatInt(id, 10)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("getting station %d: %w", id, err)
	}
	if out.Item == nil {
		return nil, fmt.Errorf("station %d: %w", id, ErrStationNotFound)
	}

	var station models.Station
	if err := attributevalue.UnmarshalMap(out.Item, &station); err != nil {
		return nil, fmt.Errorf("unmarshaling station %d: %w", id, err)
	}
	return &station, nil
}
