package mirror

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/atkhates/BANK-LOMITA/internal/logging"
	"github.com/atkhates/BANK-LOMITA/pkg/entities"
)

// ElasticsearchConfig holds configuration options for the Elasticsearch sink
type ElasticsearchConfig struct {
	URL         string
	Username    string
	Password    string
	IndexPrefix string
	Timeout     time.Duration // per-request timeout
}

// DefaultElasticsearchConfig returns a default configuration for the sink
func DefaultElasticsearchConfig() *ElasticsearchConfig {
	return &ElasticsearchConfig{
		URL:         "http://localhost:9200",
		IndexPrefix: "bank-lomita",
		Timeout:     5 * time.Second,
	}
}

// ElasticsearchSink replicates account snapshots and transaction records to
// Elasticsearch for reporting. Indexing failures are logged and swallowed:
// the mirror is never a correctness dependency.
type ElasticsearchSink struct {
	client      *elasticsearch.Client
	indexPrefix string
	timeout     time.Duration
	logger      *logging.Logger
}

// NewElasticsearchSink creates a new Elasticsearch sink
func NewElasticsearchSink(config *ElasticsearchConfig) (*ElasticsearchSink, error) {
	if config == nil {
		config = DefaultElasticsearchConfig()
	}

	cfg := elasticsearch.Config{
		Addresses: []string{config.URL},
	}

	// Add authentication if provided
	if config.Username != "" && config.Password != "" {
		cfg.Username = config.Username
		cfg.Password = config.Password
	}

	client, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("error creating Elasticsearch client: %w", err)
	}

	if config.IndexPrefix == "" {
		config.IndexPrefix = "bank-lomita"
	}
	if config.Timeout == 0 {
		config.Timeout = 5 * time.Second
	}

	return &ElasticsearchSink{
		client:      client,
		indexPrefix: config.IndexPrefix,
		timeout:     config.Timeout,
		logger:      logging.Default,
	}, nil
}

func (s *ElasticsearchSink) index(indexSuffix, docID string, doc interface{}) {
	body, err := json.Marshal(doc)
	if err != nil {
		s.logger.Error("Mirror: error encoding document %s: %v", docID, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	req := esapi.IndexRequest{
		Index:      fmt.Sprintf("%s-%s", s.indexPrefix, indexSuffix),
		DocumentID: docID,
		Body:       bytes.NewReader(body),
	}

	res, err := req.Do(ctx, s.client)
	if err != nil {
		s.logger.Error("Mirror: error indexing document %s: %v", docID, err)
		return
	}
	defer res.Body.Close()

	if res.IsError() {
		s.logger.Error("Mirror: index request for %s returned %s", docID, res.Status())
	}
}

// OnAccountChanged replicates the latest account snapshot
func (s *ElasticsearchSink) OnAccountChanged(account *entities.Account) {
	docID := fmt.Sprintf("%s-%s", account.ScopeID, account.HolderID)
	s.index("accounts", docID, account)
}

// OnTransaction replicates an appended transaction record
func (s *ElasticsearchSink) OnTransaction(record *entities.TransactionRecord) {
	s.index("transactions", record.ID, record)
}
