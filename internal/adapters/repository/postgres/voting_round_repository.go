package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/drips-network/multiplayer/internal/core/domain"
	"github.com/drips-network/multiplayer/internal/core/ports"
)

type votingRoundRepository struct {
	db *sql.DB
}

func NewVotingRoundRepository(db *sql.DB) ports.VotingRoundRepository {
	return &votingRoundRepository{
		db: db,
	}
}

// Save writes the aggregate atomically. The round row is upserted, votes
// are insert-only (the vote log is append-only), nominations and the link
// are upserted. Serializing concurrent read-modify-write cycles on one
// round is this layer's job: the whole aggregate goes out in a single
// transaction.
func (r *votingRoundRepository) Save(ctx context.Context, round *domain.VotingRound) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	collaborators := make([]string, len(round.Collaborators))
	for i, c := range round.Collaborators {
		collaborators[i] = string(c.Address)
	}

	allowedReceivers, err := json.Marshal(round.AllowedReceivers)
	if err != nil {
		return fmt.Errorf("failed to marshal allowed receivers: %w", err)
	}

	queryRound := `
		INSERT INTO voting_rounds (
			id, chain_id, publisher, voting_starts_at, voting_ends_at,
			nomination_starts_at, nomination_ends_at, drip_list_id, name, description,
			are_votes_private, collaborators, allowed_receivers, created_at, updated_at, deleted_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (id) DO UPDATE SET
			drip_list_id = EXCLUDED.drip_list_id,
			updated_at = EXCLUDED.updated_at,
			deleted_at = EXCLUDED.deleted_at
	`
	_, err = tx.ExecContext(ctx, queryRound,
		round.ID, round.ChainID, string(round.Publisher.Address),
		round.VotingStartsAt, round.VotingEndsAt,
		round.NominationStartsAt, round.NominationEndsAt,
		round.DripListID, round.Name, round.Description,
		round.AreVotesPrivate, pq.Array(collaborators), allowedReceivers,
		round.CreatedAt, round.UpdatedAt, round.DeletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert voting round: %w", err)
	}

	queryVote := `
		INSERT INTO votes (id, voting_round_id, collaborator_address, receivers, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
	`
	voteStmt, err := tx.PrepareContext(ctx, queryVote)
	if err != nil {
		return fmt.Errorf("failed to prepare vote statement: %w", err)
	}
	defer voteStmt.Close()

	for _, v := range round.Votes {
		receivers, err := json.Marshal(v.Receivers)
		if err != nil {
			return fmt.Errorf("failed to marshal vote receivers: %w", err)
		}
		_, err = voteStmt.ExecContext(ctx, v.ID, v.VotingRoundID, string(v.CollaboratorAddress), receivers, v.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert vote: %w", err)
		}
	}

	queryNomination := `
		INSERT INTO nominations (
			id, voting_round_id, account_id, receiver, status,
			nominated_by, description, impact_metrics, nominated_at, status_changed_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			account_id = EXCLUDED.account_id,
			receiver = EXCLUDED.receiver,
			status = EXCLUDED.status,
			nominated_by = EXCLUDED.nominated_by,
			description = EXCLUDED.description,
			impact_metrics = EXCLUDED.impact_metrics,
			nominated_at = EXCLUDED.nominated_at,
			status_changed_at = EXCLUDED.status_changed_at
	`
	nominationStmt, err := tx.PrepareContext(ctx, queryNomination)
	if err != nil {
		return fmt.Errorf("failed to prepare nomination statement: %w", err)
	}
	defer nominationStmt.Close()

	for _, n := range round.Nominations {
		receiver, err := json.Marshal(n.Receiver)
		if err != nil {
			return fmt.Errorf("failed to marshal nomination receiver: %w", err)
		}
		impactMetrics, err := json.Marshal(n.ImpactMetrics)
		if err != nil {
			return fmt.Errorf("failed to marshal impact metrics: %w", err)
		}
		_, err = nominationStmt.ExecContext(ctx,
			n.ID, n.VotingRoundID, n.Receiver.AccountID, receiver, string(n.Status),
			string(n.NominatedBy), n.Description, impactMetrics, n.NominatedAt, n.StatusChangedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert nomination: %w", err)
		}
	}

	if round.Link != nil {
		queryLink := `
			INSERT INTO links (
				id, voting_round_id, drip_list_id, safe_transaction_hash,
				is_safe_transaction_executed, created_at, updated_at
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (voting_round_id) DO UPDATE SET
				is_safe_transaction_executed = EXCLUDED.is_safe_transaction_executed,
				updated_at = EXCLUDED.updated_at
		`
		_, err = tx.ExecContext(ctx, queryLink,
			round.Link.ID, round.Link.VotingRoundID, round.Link.DripListID,
			round.Link.SafeTransactionHash, round.Link.IsSafeTransactionExecuted,
			round.Link.CreatedAt, round.Link.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert link: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *votingRoundRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.VotingRound, error) {
	queryRound := `
		SELECT id, chain_id, publisher, voting_starts_at, voting_ends_at,
			nomination_starts_at, nomination_ends_at, drip_list_id, name, description,
			are_votes_private, collaborators, allowed_receivers, created_at, updated_at, deleted_at
		FROM voting_rounds
		WHERE id = $1
	`
	return r.fetchRound(ctx, queryRound, id)
}

func (r *votingRoundRepository) GetByDripListID(ctx context.Context, chainID int64, dripListID string) (*domain.VotingRound, error) {
	queryRound := `
		SELECT id, chain_id, publisher, voting_starts_at, voting_ends_at,
			nomination_starts_at, nomination_ends_at, drip_list_id, name, description,
			are_votes_private, collaborators, allowed_receivers, created_at, updated_at, deleted_at
		FROM voting_rounds
		WHERE chain_id = $1 AND drip_list_id = $2 AND deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT 1
	`
	return r.fetchRound(ctx, queryRound, chainID, dripListID)
}

func (r *votingRoundRepository) fetchRound(ctx context.Context, query string, args ...any) (*domain.VotingRound, error) {
	var (
		round            domain.VotingRound
		publisher        string
		collaborators    pq.StringArray
		allowedReceivers []byte
	)
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&round.ID, &round.ChainID, &publisher, &round.VotingStartsAt, &round.VotingEndsAt,
		&round.NominationStartsAt, &round.NominationEndsAt, &round.DripListID, &round.Name, &round.Description,
		&round.AreVotesPrivate, &collaborators, &allowedReceivers,
		&round.CreatedAt, &round.UpdatedAt, &round.DeletedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get voting round: %w", err)
	}

	round.Publisher = domain.Publisher{Address: domain.Address(publisher)}
	round.Collaborators = make([]domain.Collaborator, len(collaborators))
	for i, c := range collaborators {
		round.Collaborators[i] = domain.Collaborator{Address: domain.Address(c)}
	}
	if err := json.Unmarshal(allowedReceivers, &round.AllowedReceivers); err != nil {
		return nil, fmt.Errorf("failed to unmarshal allowed receivers: %w", err)
	}

	if round.Votes, err = r.fetchVotes(ctx, round.ID); err != nil {
		return nil, err
	}
	if round.Nominations, err = r.fetchNominations(ctx, round.ID); err != nil {
		return nil, err
	}
	if round.Link, err = r.fetchLink(ctx, round.ID); err != nil {
		return nil, err
	}

	return &round, nil
}

func (r *votingRoundRepository) fetchVotes(ctx context.Context, roundID uuid.UUID) ([]domain.Vote, error) {
	query := `
		SELECT id, voting_round_id, collaborator_address, receivers, updated_at
		FROM votes
		WHERE voting_round_id = $1
		ORDER BY updated_at ASC, id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch votes: %w", err)
	}
	defer rows.Close()

	var votes []domain.Vote
	for rows.Next() {
		var (
			vote         domain.Vote
			collaborator string
			receivers    []byte
		)
		if err := rows.Scan(&vote.ID, &vote.VotingRoundID, &collaborator, &receivers, &vote.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		vote.CollaboratorAddress = domain.Address(collaborator)
		if err := json.Unmarshal(receivers, &vote.Receivers); err != nil {
			return nil, fmt.Errorf("failed to unmarshal vote receivers: %w", err)
		}
		votes = append(votes, vote)
	}

	return votes, rows.Err()
}

func (r *votingRoundRepository) fetchNominations(ctx context.Context, roundID uuid.UUID) ([]domain.Nomination, error) {
	query := `
		SELECT id, voting_round_id, receiver, status, nominated_by,
			description, impact_metrics, nominated_at, status_changed_at
		FROM nominations
		WHERE voting_round_id = $1
		ORDER BY nominated_at ASC, id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch nominations: %w", err)
	}
	defer rows.Close()

	var nominations []domain.Nomination
	for rows.Next() {
		var (
			nomination    domain.Nomination
			receiver      []byte
			status        string
			nominatedBy   string
			impactMetrics []byte
		)
		if err := rows.Scan(
			&nomination.ID, &nomination.VotingRoundID, &receiver, &status, &nominatedBy,
			&nomination.Description, &impactMetrics, &nomination.NominatedAt, &nomination.StatusChangedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan nomination: %w", err)
		}
		nomination.Status = domain.NominationStatus(status)
		nomination.NominatedBy = domain.Address(nominatedBy)
		if err := json.Unmarshal(receiver, &nomination.Receiver); err != nil {
			return nil, fmt.Errorf("failed to unmarshal nomination receiver: %w", err)
		}
		if err := json.Unmarshal(impactMetrics, &nomination.ImpactMetrics); err != nil {
			return nil, fmt.Errorf("failed to unmarshal impact metrics: %w", err)
		}
		nominations = append(nominations, nomination)
	}

	return nominations, rows.Err()
}

func (r *votingRoundRepository) fetchLink(ctx context.Context, roundID uuid.UUID) (*domain.Link, error) {
	query := `
		SELECT id, voting_round_id, drip_list_id, safe_transaction_hash,
			is_safe_transaction_executed, created_at, updated_at
		FROM links
		WHERE voting_round_id = $1
	`
	var link domain.Link
	err := r.db.QueryRowContext(ctx, query, roundID).Scan(
		&link.ID, &link.VotingRoundID, &link.DripListID, &link.SafeTransactionHash,
		&link.IsSafeTransactionExecuted, &link.CreatedAt, &link.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch link: %w", err)
	}
	return &link, nil
}
