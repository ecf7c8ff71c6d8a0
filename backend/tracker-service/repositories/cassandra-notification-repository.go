package repositories

import (
	"context"
	"fmt"

	"github.com/gocql/gocql"
	"github.com/sirupsen/logrus"

	"github.com/yyhhenry/sdu--neu-bug/models"
)

// CassandraNotificationRepo partitions notifications by username and
// clusters them by time-based id, newest first.
type CassandraNotificationRepo struct {
	session *gocql.Session
	logger  logrus.FieldLogger
}

func NewCassandraNotificationRepo(host string, logger logrus.FieldLogger) (*CassandraNotificationRepo, error) {
	cluster := gocql.NewCluster(host)
	cluster.Keyspace = "system"
	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to cassandra at %s: %w", host, err)
	}

	err = session.Query(
		`CREATE KEYSPACE IF NOT EXISTS tracker
         WITH replication = {
             'class': 'SimpleStrategy',
             'replication_factor': 1
         }`).Exec()
	session.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to create keyspace: %w", err)
	}

	cluster.Keyspace = "tracker"
	cluster.Consistency = gocql.One
	session, err = cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to tracker keyspace: %w", err)
	}

	logger.Info("Event ID: CASSANDRA_CONNECTED, Description: Connected to Cassandra tracker keyspace")
	return &CassandraNotificationRepo{session: session, logger: logger}, nil
}

func (nr *CassandraNotificationRepo) CloseSession() {
	nr.session.Close()
	nr.logger.Info("Event ID: CASSANDRA_CLOSED, Description: Cassandra session closed")
}

func (nr *CassandraNotificationRepo) CreateTable(ctx context.Context) error {
	err := nr.session.Query(
		`CREATE TABLE IF NOT EXISTS notifications (
			username TEXT,
			id TIMEUUID,
			message TEXT,
			is_read BOOLEAN,
			PRIMARY KEY ((username), id)
		) WITH CLUSTERING ORDER BY (id DESC)`).WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("failed to create notifications table: %w", err)
	}
	return nil
}

func (nr *CassandraNotificationRepo) CreateNotification(ctx context.Context, notification *models.Notification) error {
	id := gocql.TimeUUID()
	if notification.ID != "" {
		parsed, err := gocql.ParseUUID(notification.ID)
		if err != nil {
			return fmt.Errorf("invalid notification id %q: %w", notification.ID, err)
		}
		id = parsed
	}
	notification.ID = id.String()
	notification.CreatedAt = id.Time()

	err := nr.session.Query(
		`INSERT INTO notifications (username, id, message, is_read) VALUES (?, ?, ?, ?)`,
		notification.Username, id, notification.Message, notification.IsRead,
	).WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (nr *CassandraNotificationRepo) GetNotificationsByUsername(ctx context.Context, username string) ([]models.Notification, error) {
	iter := nr.session.Query(
		`SELECT id, message, is_read FROM notifications WHERE username = ?`, username,
	).WithContext(ctx).Iter()

	notifications := []models.Notification{}
	var (
		id      gocql.UUID
		message string
		isRead  bool
	)
	for iter.Scan(&id, &message, &isRead) {
		notifications = append(notifications, models.Notification{
			ID:        id.String(),
			Username:  username,
			Message:   message,
			CreatedAt: id.Time(),
			IsRead:    isRead,
		})
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("failed to read notifications of %q: %w", username, err)
	}
	return notifications, nil
}

func (nr *CassandraNotificationRepo) MarkNotificationAsRead(ctx context.Context, username, id string) error {
	parsed, err := gocql.ParseUUID(id)
	if err != nil {
		return fmt.Errorf("notification %q: %w", id, ErrNotFound)
	}

	var found gocql.UUID
	err = nr.session.Query(
		`SELECT id FROM notifications WHERE username = ? AND id = ?`, username, parsed,
	).WithContext(ctx).Scan(&found)
	if err == gocql.ErrNotFound {
		return fmt.Errorf("notification %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to look up notification %q: %w", id, err)
	}

	err = nr.session.Query(
		`UPDATE notifications SET is_read = true WHERE username = ? AND id = ?`, username, parsed,
	).WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("failed to mark notification %q as read: %w", id, err)
	}
	return nil
}

// MoveNotifications copies the partition of from into the partition of to,
// then drops the old partition.
func (nr *CassandraNotificationRepo) MoveNotifications(ctx context.Context, from, to string) error {
	iter := nr.session.Query(
		`SELECT id, message, is_read FROM notifications WHERE username = ?`, from,
	).WithContext(ctx).Iter()

	batch := nr.session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	var (
		id      gocql.UUID
		message string
		isRead  bool
	)
	for iter.Scan(&id, &message, &isRead) {
		batch.Query(`INSERT INTO notifications (username, id, message, is_read) VALUES (?, ?, ?, ?)`,
			to, id, message, isRead)
	}
	if err := iter.Close(); err != nil {
		return fmt.Errorf("failed to read notifications of %q: %w", from, err)
	}
	if batch.Size() == 0 {
		return nil
	}
	batch.Query(`DELETE FROM notifications WHERE username = ?`, from)
	if err := nr.session.ExecuteBatch(batch); err != nil {
		return fmt.Errorf("failed to move notifications from %q to %q: %w", from, to, err)
	}
	nr.logger.Infof("Event ID: NOTIFICATIONS_MOVED, Description: Moved %d notifications from %s to %s", batch.Size()-1, from, to)
	return nil
}
