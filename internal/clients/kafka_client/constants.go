package kafka_client

import "time"

const KAFKA_TOPIC_SENTIMENT_RESULTS = "review-sentiment-results" // analysis events and their detail rows

const (
	DETAIL_BATCH_SIZE  = 50
	MAX_RETRIES        = 3
	RETRY_DELAY        = 2 * time.Second
	FLUSH_TIMEOUT_MS   = 5000
	MESSAGE_TIMEOUT_MS = 10000 // librdkafka gives up on undelivered messages after this
)
