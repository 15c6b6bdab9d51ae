// file: repository/token_repository.go

package repository

import (
	"database/sql"
	"go-auth-api/logger"
	"go-auth-api/model"

	"github.com/sirupsen/logrus"
)

// ITokenRepository defines the contract for refresh token database operations.
// Methods taking *sql.Tx participate in the rotation transaction owned by the
// refresh service.
type ITokenRepository interface {
	Create(token *model.RefreshToken) error
	CreateTx(tx *sql.Tx, token *model.RefreshToken) error
	GetByTokenHash(tokenHash string) (*model.RefreshToken, error)
	GetBySessionID(sessionID string) (*model.RefreshToken, error)
	GetByUserID(userID int) ([]*model.RefreshToken, error)
	Consume(tx *sql.Tx, id int) (bool, error)
	UpdateUsage(tx *sql.Tx, id int, ipAddress *string) error
	Revoke(id int) (bool, error)
}

// TokenRepository implements ITokenRepository.
type TokenRepository struct {
	DB *sql.DB
}

// NewTokenRepository creates a new TokenRepository.
func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{DB: db}
}

const insertTokenQuery = `INSERT INTO refresh_tokens (user_id, token_hash, session_id, issued_at, expires_at, last_used_at, device_info, ip_address)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`

const selectTokenColumns = `id, user_id, token_hash, session_id, issued_at, expires_at, last_used_at, revoked, device_info, ip_address`

// Create inserts a new refresh token record outside of any transaction.
func (r *TokenRepository) Create(token *model.RefreshToken) error {
	log := logger.Log.WithFields(logrus.Fields{
		"user_id":    token.UserID,
		"session_id": token.SessionID,
		"expires_at": token.ExpiresAt,
	})
	log.Info("Executing query to create a new refresh token")

	err := r.DB.QueryRow(insertTokenQuery,
		token.UserID, token.TokenHash, token.SessionID,
		token.IssuedAt, token.ExpiresAt, token.LastUsedAt,
		token.DeviceInfo, token.IPAddress,
	).Scan(&token.ID)
	if err != nil {
		log.WithError(err).Error("Failed to execute create refresh token query")
		return err
	}
	return nil
}

// CreateTx inserts a new refresh token record inside the given transaction.
func (r *TokenRepository) CreateTx(tx *sql.Tx, token *model.RefreshToken) error {
	log := logger.Log.WithFields(logrus.Fields{
		"user_id":    token.UserID,
		"session_id": token.SessionID,
	})

	err := tx.QueryRow(insertTokenQuery,
		token.UserID, token.TokenHash, token.SessionID,
		token.IssuedAt, token.ExpiresAt, token.LastUsedAt,
		token.DeviceInfo, token.IPAddress,
	).Scan(&token.ID)
	if err != nil {
		log.WithError(err).Error("Failed to execute create refresh token query in transaction")
		return err
	}
	return nil
}

// GetByTokenHash retrieves a refresh token by its hashed value.
func (r *TokenRepository) GetByTokenHash(tokenHash string) (*model.RefreshToken, error) {
	token := &model.RefreshToken{}
	query := `SELECT ` + selectTokenColumns + ` FROM refresh_tokens WHERE token_hash = $1`
	err := r.DB.QueryRow(query, tokenHash).Scan(
		&token.ID, &token.UserID, &token.TokenHash, &token.SessionID,
		&token.IssuedAt, &token.ExpiresAt, &token.LastUsedAt, &token.Revoked,
		&token.DeviceInfo, &token.IPAddress,
	)
	if err != nil {
		if err != sql.ErrNoRows {
			logger.Log.WithError(err).Error("Failed to execute get refresh token by hash query")
		}
		return nil, err // Return sql.ErrNoRows if not found
	}
	return token, nil
}

// GetBySessionID retrieves a refresh token by its session identifier.
func (r *TokenRepository) GetBySessionID(sessionID string) (*model.RefreshToken, error) {
	token := &model.RefreshToken{}
	query := `SELECT ` + selectTokenColumns + ` FROM refresh_tokens WHERE session_id = $1 ORDER BY issued_at DESC LIMIT 1`
	err := r.DB.QueryRow(query, sessionID).Scan(
		&token.ID, &token.UserID, &token.TokenHash, &token.SessionID,
		&token.IssuedAt, &token.ExpiresAt, &token.LastUsedAt, &token.Revoked,
		&token.DeviceInfo, &token.IPAddress,
	)
	if err != nil {
		if err != sql.ErrNoRows {
			logger.Log.WithError(err).WithField("session_id", sessionID).Error("Failed to execute get refresh token by session id query")
		}
		return nil, err
	}
	return token, nil
}

// GetByUserID retrieves all refresh tokens for a specific user, newest first.
func (r *TokenRepository) GetByUserID(userID int) ([]*model.RefreshToken, error) {
	log := logger.Log.WithField("user_id", userID)

	query := `SELECT ` + selectTokenColumns + ` FROM refresh_tokens WHERE user_id = $1 ORDER BY issued_at DESC`
	rows, err := r.DB.Query(query, userID)
	if err != nil {
		log.WithError(err).Error("Failed to execute query for refresh tokens by user ID")
		return nil, err
	}
	defer rows.Close()

	var tokens []*model.RefreshToken
	for rows.Next() {
		var t model.RefreshToken
		if err := rows.Scan(
			&t.ID, &t.UserID, &t.TokenHash, &t.SessionID,
			&t.IssuedAt, &t.ExpiresAt, &t.LastUsedAt, &t.Revoked,
			&t.DeviceInfo, &t.IPAddress,
		); err != nil {
			log.WithError(err).Error("Failed to scan refresh token row")
			return nil, err
		}
		tokens = append(tokens, &t)
	}
	return tokens, rows.Err()
}

// Consume flips the revoked flag exactly once. The WHERE clause on the old
// flag value is the single-writer gate: of two concurrent rotations, only one
// sees a row to update.
func (r *TokenRepository) Consume(tx *sql.Tx, id int) (bool, error) {
	log := logger.Log.WithField("token_id", id)

	query := `UPDATE refresh_tokens SET revoked = TRUE WHERE id = $1 AND revoked = FALSE`
	res, err := tx.Exec(query, id)
	if err != nil {
		log.WithError(err).Error("Failed to execute consume refresh token query")
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

// UpdateUsage stamps last_used_at and records the caller's current address.
func (r *TokenRepository) UpdateUsage(tx *sql.Tx, id int, ipAddress *string) error {
	query := `UPDATE refresh_tokens SET last_used_at = NOW(), ip_address = COALESCE($2, ip_address) WHERE id = $1`
	if _, err := tx.Exec(query, id, ipAddress); err != nil {
		logger.Log.WithError(err).WithField("token_id", id).Error("Failed to execute update refresh token usage query")
		return err
	}
	return nil
}

// Revoke flips the revoked flag outside a transaction (explicit revoke and
// session deletion paths). Returns whether this call performed the transition.
func (r *TokenRepository) Revoke(id int) (bool, error) {
	log := logger.Log.WithField("token_id", id)
	log.Info("Executing query to revoke refresh token")

	query := `UPDATE refresh_tokens SET revoked = TRUE WHERE id = $1 AND revoked = FALSE`
	res, err := r.DB.Exec(query, id)
	if err != nil {
		log.WithError(err).Error("Failed to execute revoke refresh token query")
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}
