package store

import (
	"context"
	"database/sql"

	"bdmatch-workers/internal/common/errors"
	"bdmatch-workers/internal/common/logger"
	"bdmatch-workers/internal/models"
)

// CommunicationStore appends immutable EOI communication records. There is
// no update path: response messages live forever as written.
type CommunicationStore struct {
	db  *sql.DB
	log logger.Logger
}

func NewCommunicationStore(db *sql.DB, log logger.Logger) *CommunicationStore {
	return &CommunicationStore{db: db, log: log}
}

// Append inserts one communication row.
func (s *CommunicationStore) Append(ctx context.Context, comm *models.EoiCommunication) error {
	query := `
		INSERT INTO eoi_communications (
			id, eoi_id, from_user_id, to_user_id, message_type, subject,
			content, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := s.db.ExecContext(ctx, query,
		comm.ID,
		comm.EoiID,
		comm.FromUserID,
		comm.ToUserID,
		comm.MessageType,
		comm.Subject,
		comm.Content,
		comm.CreatedAt,
	)
	if err != nil {
		return errors.NewDatabaseInsertFailedError(err)
	}
	return nil
}

// ListForEoi returns the communications of one EOI, oldest first.
func (s *CommunicationStore) ListForEoi(ctx context.Context, eoiID string) ([]models.EoiCommunication, error) {
	query := `
		SELECT id, eoi_id, from_user_id, to_user_id, message_type,
		       COALESCE(subject, ''), content, created_at
		FROM eoi_communications
		WHERE eoi_id = $1
		ORDER BY created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, eoiID)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("list_eoi_communications", err)
	}
	defer rows.Close()

	var comms []models.EoiCommunication
	for rows.Next() {
		var c models.EoiCommunication
		if err := rows.Scan(
			&c.ID, &c.EoiID, &c.FromUserID, &c.ToUserID,
			&c.MessageType, &c.Subject, &c.Content, &c.CreatedAt,
		); err != nil {
			return nil, errors.NewQueryExecutionFailedError("scan_eoi_communication", err)
		}
		comms = append(comms, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewQueryExecutionFailedError("iterate_eoi_communications", err)
	}
	return comms, nil
}
