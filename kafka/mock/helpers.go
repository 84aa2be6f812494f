package mockkafka

import (
	"fmt"
	"time"

	"github.com/kbridge-io/kbridge/kafka"
)

// SimpleRecord builds a record with a string key and value. Topic, partition
// and offset are filled in by AddRecords.
func SimpleRecord(key, value string) kafka.ConsumerRecord {
	return kafka.ConsumerRecord{
		Key:       []byte(key),
		Value:     []byte(value),
		Timestamp: time.Now(),
	}
}

// SimpleRecords builds n records with generated keys and values.
func SimpleRecords(n int) []kafka.ConsumerRecord {
	records := make([]kafka.ConsumerRecord, n)
	for i := range records {
		records[i] = SimpleRecord(
			fmt.Sprintf("key-%d", i),
			fmt.Sprintf("value-%d", i),
		)
	}
	return records
}

// TP is shorthand for constructing a topic-partition in tests.
func TP(topic string, partition int32) kafka.TopicPartition {
	return kafka.TopicPartition{Topic: topic, Partition: partition}
}
