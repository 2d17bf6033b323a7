package storage

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultPurgeInterval is how often RunExpiryPurge sweeps the archive
const DefaultPurgeInterval = time.Hour

// RunExpiryPurge periodically removes expired messages until ctx is done
func (db *MessageDB) RunExpiryPurge(ctx context.Context, interval time.Duration, log logrus.FieldLogger) {
	if interval <= 0 {
		interval = DefaultPurgeInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.C:
			count, err := db.PurgeExpired(uint64(t.Unix()))
			if err != nil {
				log.WithError(err).Warn("Failed to purge expired messages")
				continue
			}
			if count > 0 {
				log.WithField("count", count).Info("Purged expired messages")
			}
		}
	}
}

// Stats returns archive statistics
func (db *MessageDB) Stats() (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	// Total messages
	total, err := db.CountMessages()
	if err != nil {
		return nil, err
	}
	stats["total_messages"] = total

	// Messages by type
	query := `
		SELECT message_type, COUNT(*) as count
		FROM messages
		GROUP BY message_type
	`

	rows, err := db.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	typeCounts := make(map[string]int)
	for rows.Next() {
		var typ string
		var count int
		if err := rows.Scan(&typ, &count); err != nil {
			return nil, err
		}
		typeCounts[typ] = count
	}
	stats["by_type"] = typeCounts

	return stats, rows.Err()
}
