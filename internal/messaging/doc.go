// Package messaging moves integration events between the dashboard and the
// integration platform.
//
// Two topics are used. The events topic carries IntegrationEvent JSON keyed
// by order id; the retry topic carries RetryEventMessage JSON produced when
// an operator resends a failed event. KafkaBus talks to a Kafka cluster via
// segmentio/kafka-go. MemoryBus keeps everything in process.
package messaging
