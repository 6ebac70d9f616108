package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/chat-relay/internal/models"
)

const maxErrorMessageLength = 2000

type RequestLogRepository struct {
	db *pgxpool.Pool
}

type RequestLogFilter struct {
	Vendor  *string
	Model   *string
	Subject *string
	Success *bool
}

// NewRequestLogRepository создает репозиторий журнала запросов к вендорам.
func NewRequestLogRepository(db *pgxpool.Pool) *RequestLogRepository {
	return &RequestLogRepository{db: db}
}

// Record сохраняет запись о вызове вендора.
func (r *RequestLogRepository) Record(ctx context.Context, log models.RequestLog) error {
	if log.Vendor == "" || log.Model == "" {
		return ErrInvalid
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO chat_requests
		 (id, request_id, subject, vendor, model, history_length, input_tokens, output_tokens, latency_ms, success, error_kind, error_message, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		log.ID,
		log.RequestID,
		log.Subject,
		log.Vendor,
		log.Model,
		log.HistoryLength,
		log.InputTokens,
		log.OutputTokens,
		log.LatencyMS,
		log.Success,
		log.ErrorKind,
		truncateMessage(log.ErrorMessage),
		log.CreatedAt,
	)
	return err
}

// List возвращает записи журнала с фильтрами, новые первыми.
func (r *RequestLogRepository) List(ctx context.Context, filter RequestLogFilter, limit, offset int) ([]models.RequestLog, error) {
	where, args := buildRequestLogWhere(filter)
	args = append(args, limit, offset)

	query := fmt.Sprintf(
		`SELECT id, request_id, subject, vendor, model, history_length, input_tokens, output_tokens, latency_ms, success, error_kind, error_message, created_at
		 FROM chat_requests
		 %s
		 ORDER BY created_at DESC
		 LIMIT $%d OFFSET $%d`,
		where, len(args)-1, len(args),
	)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]models.RequestLog, 0)
	for rows.Next() {
		var log models.RequestLog
		if err := rows.Scan(
			&log.ID,
			&log.RequestID,
			&log.Subject,
			&log.Vendor,
			&log.Model,
			&log.HistoryLength,
			&log.InputTokens,
			&log.OutputTokens,
			&log.LatencyMS,
			&log.Success,
			&log.ErrorKind,
			&log.ErrorMessage,
			&log.CreatedAt,
		); err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}

	return logs, rows.Err()
}

// Count возвращает количество записей по фильтру.
func (r *RequestLogRepository) Count(ctx context.Context, filter RequestLogFilter) (int, error) {
	where, args := buildRequestLogWhere(filter)

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM chat_requests "+where, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func buildRequestLogWhere(filter RequestLogFilter) (string, []interface{}) {
	conditions := make([]string, 0, 4)
	args := make([]interface{}, 0, 4)

	add := func(column string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if filter.Vendor != nil {
		add("vendor", *filter.Vendor)
	}
	if filter.Model != nil {
		add("model", *filter.Model)
	}
	if filter.Subject != nil {
		add("subject", *filter.Subject)
	}
	if filter.Success != nil {
		add("success", *filter.Success)
	}

	if len(conditions) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

func truncateMessage(message *string) *string {
	if message == nil {
		return nil
	}
	runes := []rune(*message)
	if len(runes) <= maxErrorMessageLength {
		return message
	}
	truncated := string(runes[:maxErrorMessageLength])
	return &truncated
}
