package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/xaenox/web-agent/internal/models"
)

//go:embed migrations.sql
var migrations embed.FS

type DatabaseConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	UseInMemory bool
}

type PostgresStorage struct {
	db *sql.DB
}

func NewPostgresStorage(config DatabaseConfig) (*PostgresStorage, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %v", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to the database: %v", err)
	}

	storage := &PostgresStorage{db: db}

	// Initialize database schema
	if err := storage.initializeSchema(); err != nil {
		return nil, fmt.Errorf("error initializing database schema: %v", err)
	}

	return storage, nil
}

func (s *PostgresStorage) initializeSchema() error {
	migrationSQL, err := migrations.ReadFile("migrations.sql")
	if err != nil {
		return fmt.Errorf("error reading migrations file: %v", err)
	}

	_, err = s.db.Exec(string(migrationSQL))
	if err != nil {
		return fmt.Errorf("error executing migrations: %v", err)
	}

	return nil
}

func (s *PostgresStorage) CreateConversation(ctx context.Context, conversation *models.Conversation) error {
	query := `
		INSERT INTO conversations (id, user_id, project_id, title)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`

	err := s.db.QueryRowContext(
		ctx,
		query,
		conversation.ID,
		conversation.UserID,
		conversation.ProjectID,
		conversation.Title,
	).Scan(&conversation.CreatedAt, &conversation.UpdatedAt)

	if err != nil {
		return fmt.Errorf("error creating conversation: %v", err)
	}

	return nil
}

func (s *PostgresStorage) GetConversation(ctx context.Context, id string) (*models.Conversation, error) {
	query := `
		SELECT id, user_id, project_id, title, created_at, updated_at
		FROM conversations
		WHERE id = $1`

	conversation := &models.Conversation{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&conversation.ID,
		&conversation.UserID,
		&conversation.ProjectID,
		&conversation.Title,
		&conversation.CreatedAt,
		&conversation.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error getting conversation: %v", err)
	}

	return conversation, nil
}

func (s *PostgresStorage) TouchConversation(ctx context.Context, id string) error {
	query := `
		UPDATE conversations
		SET updated_at = now()
		WHERE id = $1`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("error updating conversation: %v", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting rows affected: %v", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *PostgresStorage) GetConversationsByUser(ctx context.Context, userID string) ([]*models.Conversation, error) {
	query := `
		SELECT id, user_id, project_id, title, created_at, updated_at
		FROM conversations
		WHERE user_id = $1
		ORDER BY updated_at DESC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("error querying conversations: %v", err)
	}
	defer rows.Close()

	var conversations []*models.Conversation
	for rows.Next() {
		conversation := &models.Conversation{}
		err := rows.Scan(
			&conversation.ID,
			&conversation.UserID,
			&conversation.ProjectID,
			&conversation.Title,
			&conversation.CreatedAt,
			&conversation.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning conversation: %v", err)
		}
		conversations = append(conversations, conversation)
	}

	return conversations, rows.Err()
}

func (s *PostgresStorage) CreateMessage(ctx context.Context, message *models.Message) error {
	if !message.Role.Valid() {
		return fmt.Errorf("invalid role: %q", message.Role)
	}

	query := `
		INSERT INTO messages (id, conversation_id, role, content)
		VALUES ($1, $2, $3, $4)
		RETURNING seq, created_at`

	err := s.db.QueryRowContext(
		ctx,
		query,
		message.ID,
		message.ConversationID,
		message.Role,
		message.Content,
	).Scan(&message.Seq, &message.CreatedAt)

	if err != nil {
		return fmt.Errorf("error creating message: %v", err)
	}

	return nil
}

func (s *PostgresStorage) GetMessages(ctx context.Context, conversationID string) ([]*models.Message, error) {
	query := `
		SELECT id, conversation_id, role, content, seq, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY seq ASC`

	rows, err := s.db.QueryContext(ctx, query, conversationID)
	if err != nil {
		return nil, fmt.Errorf("error querying messages: %v", err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

func (s *PostgresStorage) GetRecentMessages(ctx context.Context, conversationID string, limit int) ([]*models.Message, error) {
	query := `
		SELECT id, conversation_id, role, content, seq, created_at
		FROM (
			SELECT id, conversation_id, role, content, seq, created_at
			FROM messages
			WHERE conversation_id = $1
			ORDER BY seq DESC
			LIMIT $2
		) recent
		ORDER BY seq ASC`

	rows, err := s.db.QueryContext(ctx, query, conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying recent messages: %v", err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

func scanMessages(rows *sql.Rows) ([]*models.Message, error) {
	var messages []*models.Message
	for rows.Next() {
		message := &models.Message{}
		err := rows.Scan(
			&message.ID,
			&message.ConversationID,
			&message.Role,
			&message.Content,
			&message.Seq,
			&message.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning message: %v", err)
		}
		messages = append(messages, message)
	}

	return messages, rows.Err()
}

func (s *PostgresStorage) CreateCodeSnippet(ctx context.Context, snippet *models.CodeSnippet) error {
	query := `
		INSERT INTO code_snippets (id, conversation_id, project_id, language, code, title)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	err := s.db.QueryRowContext(
		ctx,
		query,
		snippet.ID,
		snippet.ConversationID,
		snippet.ProjectID,
		snippet.Language,
		snippet.Code,
		snippet.Title,
	).Scan(&snippet.CreatedAt)

	if err != nil {
		return fmt.Errorf("error creating code snippet: %v", err)
	}

	return nil
}

func (s *PostgresStorage) GetCodeSnippets(ctx context.Context, conversationID string) ([]*models.CodeSnippet, error) {
	query := `
		SELECT id, conversation_id, project_id, language, code, title, created_at
		FROM code_snippets
		WHERE conversation_id = $1
		ORDER BY created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, conversationID)
	if err != nil {
		return nil, fmt.Errorf("error querying code snippets: %v", err)
	}
	defer rows.Close()

	var snippets []*models.CodeSnippet
	for rows.Next() {
		snippet := &models.CodeSnippet{}
		err := rows.Scan(
			&snippet.ID,
			&snippet.ConversationID,
			&snippet.ProjectID,
			&snippet.Language,
			&snippet.Code,
			&snippet.Title,
			&snippet.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning code snippet: %v", err)
		}
		snippets = append(snippets, snippet)
	}

	return snippets, rows.Err()
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}
