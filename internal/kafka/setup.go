package kafka

import (
	"errors"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/pat1one/faceit-ai-bot/pkg/logger"
)

// EnsureTopics проверяет и создает необходимые топики Kafka
func EnsureTopics(brokers []string, topics []string, saramaConfig *sarama.Config, log *logger.Logger) error {
	if len(brokers) == 0 || brokers[0] == "" {
		return errors.New("kafka broker address is empty")
	}

	admin, err := sarama.NewClusterAdmin(brokers, saramaConfig)
	if err != nil {
		log.Errorw("Failed to connect to Kafka for topic creation", "brokers", brokers, "error", err)
		return fmt.Errorf("kafka admin connection failed: %w", err)
	}
	defer admin.Close()

	existing, err := admin.ListTopics()
	if err != nil {
		log.Errorw("Failed to list Kafka topics", "error", err)
		return fmt.Errorf("kafka list topics failed: %w", err)
	}

	detail := &sarama.TopicDetail{
		NumPartitions:     3,
		ReplicationFactor: 1,
	}

	for _, topic := range topics {
		if _, ok := existing[topic]; ok {
			log.Debugw("Topic already exists", "topic", topic)
			continue
		}

		if err := admin.CreateTopic(topic, detail, false); err != nil {
			var topicErr *sarama.TopicError
			if errors.As(err, &topicErr) && topicErr.Err == sarama.ErrTopicAlreadyExists {
				log.Warnw("Topic already existed during creation attempt", "topic", topic)
				continue
			}
			log.Errorw("Failed to create topic", "topic", topic, "error", err)
			return fmt.Errorf("kafka create topic %s failed: %w", topic, err)
		}

		log.Infow("Created Kafka topic", "topic", topic)
	}

	return nil
}
