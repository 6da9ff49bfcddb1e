package archive

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jamila-bank/backoffice-api/internal/core/domain"
	"github.com/jamila-bank/backoffice-api/internal/core/ports"
)

// MongoStore writes weekly archive documents to MongoDB. Each ISO week gets
// its own collection, named transactions_week_<week>_<year>; the document
// inside is upserted on the week/year pair so a retried export replaces the
// previous attempt instead of duplicating it.
type MongoStore struct {
	db *mongo.Database
}

// NewMongoStore connects to MongoDB and returns the archive store.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}
	return &MongoStore{db: client.Database(database)}, nil
}

// NewMongoStoreFromDatabase wraps an existing database handle (tests).
func NewMongoStoreFromDatabase(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

var _ ports.ArchiveStore = (*MongoStore)(nil)

// Close disconnects the underlying client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.db.Client().Disconnect(ctx)
}

// CollectionName returns the per-week collection an archive lands in.
func CollectionName(weekNumber, year int) string {
	return fmt.Sprintf("transactions_week_%d_%d", weekNumber, year)
}

// Write upserts the weekly summary document, returning its id. Decimal
// amounts are stored as strings; the archive is a read-mostly audit record
// and string decimals round-trip without precision loss.
func (s *MongoStore) Write(ctx context.Context, archive domain.WeeklyArchive) (string, error) {
	txnDocs := make(bson.A, 0, len(archive.Transactions))
	for _, txn := range archive.Transactions {
		doc := bson.M{
			"transaction_id":     txn.TransactionID,
			"transaction_number": txn.TransactionNumber,
			"account_id":         txn.AccountID,
			"kind":               string(txn.Kind),
			"amount":             txn.Amount.String(),
			"description":        txn.Description,
			"status":             string(txn.Status),
			"transacted_at":      txn.TransactedAt,
		}
		if txn.DestinationAccountID != nil {
			doc["destination_account_id"] = *txn.DestinationAccountID
		}
		txnDocs = append(txnDocs, doc)
	}

	doc := bson.M{
		"week_number":        archive.WeekNumber,
		"year":               archive.Year,
		"period_start":       archive.PeriodStart,
		"period_end":         archive.PeriodEnd,
		"total_transactions": archive.TotalTransactions,
		"total_deposits":     archive.TotalDeposits.String(),
		"total_debits":       archive.TotalDebits.String(),
		"net_balance":        archive.NetBalance.String(),
		"transactions":       txnDocs,
		"archived_at":        archive.ArchivedAt,
		"source":             archive.Source,
	}

	coll := s.db.Collection(CollectionName(archive.WeekNumber, archive.Year))
	filter := bson.M{"week_number": archive.WeekNumber, "year": archive.Year}
	res, err := coll.ReplaceOne(ctx, filter, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return "", fmt.Errorf("failed to write weekly archive: %w", err)
	}
	if res.UpsertedID != nil {
		return fmt.Sprintf("%v", res.UpsertedID), nil
	}
	return CollectionName(archive.WeekNumber, archive.Year), nil
}
