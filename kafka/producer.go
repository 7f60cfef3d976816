package kafka

import (
	"encoding/json"
	"log"
	"time"

	"github.com/IBM/sarama"
)

// Producer publishes domain events. A nil *Producer is valid and drops
// every event, so the API runs without a broker in dev and tests.
type Producer struct {
	sync sarama.SyncProducer
}

// NewProducer connects a SyncProducer to the given broker, retrying a
// few times since Kafka tends to come up after the API in compose
// setups. An empty broker address disables event publishing.
func NewProducer(broker string) *Producer {
	if broker == "" {
		log.Println("KAFKA_BROKER not set, event publishing disabled")
		return nil
	}

	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5

	for i := 1; i <= 5; i++ {
		sp, err := sarama.NewSyncProducer([]string{broker}, config)
		if err == nil {
			log.Printf("Kafka producer connected to %s", broker)
			return &Producer{sync: sp}
		}
		log.Printf("Failed to connect to Kafka (try %d/5): %v", i, err)
		time.Sleep(3 * time.Second)
	}

	log.Println("Could not connect to Kafka, event publishing disabled")
	return nil
}

// Close releases the underlying producer.
func (p *Producer) Close() error {
	if p == nil {
		return nil
	}
	return p.sync.Close()
}

// PublishRaffleCreated emits raffle.created after a raffle and its
// tickets have been committed.
func (p *Producer) PublishRaffleCreated(data interface{}) {
	p.publish("raffle.created", data)
}

// PublishInvoiceCreated emits invoice.created after a reconciliation
// transaction has been committed.
func (p *Producer) PublishInvoiceCreated(data interface{}) {
	p.publish("invoice.created", data)
}

func (p *Producer) publish(topic string, data interface{}) {
	if p == nil {
		return
	}

	event := map[string]interface{}{
		"event_type": topic,
		"data":       data,
	}

	messageBytes, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", topic, err)
		return
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Value: sarama.ByteEncoder(messageBytes),
	}

	if _, _, err := p.sync.SendMessage(msg); err != nil {
		log.Printf("Failed to send %s event: %v", topic, err)
	}
}
