package repository

import (
	"context"
	"errors"
	"fmt"
	"interviewroom/internal/model"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresInitTimeout = 15 * time.Second

// NewPostgresStore opens a pgx pool, runs the migrations and returns the
// Postgres backed repositories
func NewPostgresStore(ctx context.Context, databaseURL string) (*Store, error) {
	initCtx, cancel := context.WithTimeout(ctx, postgresInitTimeout)
	defer cancel()

	pool, err := pgxpool.New(initCtx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	if err := pool.Ping(initCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := RunMigration(initCtx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to run migration: %w", err)
	}

	return &Store{
		Rooms:        &pgRoomRepo{pool: pool},
		Participants: &pgParticipantRepo{pool: pool},
		Users:        &pgUserRepo{pool: pool},
		Ping:         pool.Ping,
		Close: func(context.Context) error {
			pool.Close()
			return nil
		},
	}, nil
}

type pgRoomRepo struct {
	pool *pgxpool.Pool
}

func (r *pgRoomRepo) Create(ctx context.Context, room *model.Room) error {
	if room.Interviewers == nil {
		room.Interviewers = []string{}
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO rooms (id, created_by, status, assigned_problem_id, interviewers, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		room.ID, room.CreatedBy, string(room.Status), room.AssignedProblemID, room.Interviewers, room.CreatedAt, room.UpdatedAt)
	return err
}

func (r *pgRoomRepo) GetByID(ctx context.Context, id string) (*model.Room, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, created_by, status, assigned_problem_id, interviewers, created_at, updated_at
		 FROM rooms WHERE id = $1`, id)

	var room model.Room
	var status string
	err := row.Scan(&room.ID, &room.CreatedBy, &status, &room.AssignedProblemID, &room.Interviewers, &room.CreatedAt, &room.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	room.Status = model.RoomStatus(status)
	return &room, nil
}

func (r *pgRoomRepo) SetAssignedProblem(ctx context.Context, id, problemID string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE rooms SET assigned_problem_id = $2, updated_at = NOW() WHERE id = $1`,
		id, problemID)
	return err
}

func (r *pgRoomRepo) AddInterviewer(ctx context.Context, id, userID string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE rooms SET interviewers = array_append(interviewers, $2), updated_at = NOW()
		 WHERE id = $1 AND NOT ($2 = ANY(interviewers))`,
		id, userID)
	return err
}

func (r *pgRoomRepo) SetStatus(ctx context.Context, id string, from []model.RoomStatus, to model.RoomStatus) (bool, error) {
	fromStrs := make([]string, len(from))
	for i, s := range from {
		fromStrs[i] = string(s)
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE rooms SET status = $2, updated_at = NOW() WHERE id = $1 AND status = ANY($3)`,
		id, string(to), fromStrs)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

type pgParticipantRepo struct {
	pool *pgxpool.Pool
}

const participantColumns = `id, room_id, user_id, role, status, joined_at, updated_at`

func scanParticipant(row pgx.Row, extra ...any) (*model.Participant, error) {
	var p model.Participant
	var role, status string
	dest := append([]any{&p.ID, &p.RoomID, &p.UserID, &role, &status, &p.JoinedAt, &p.UpdatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	p.Role = model.Role(role)
	p.Status = model.ParticipantStatus(status)
	return &p, nil
}

func (r *pgParticipantRepo) Find(ctx context.Context, roomID, userID string) (*model.Participant, error) {
	p, err := scanParticipant(r.pool.QueryRow(ctx,
		`SELECT `+participantColumns+` FROM participants WHERE room_id = $1 AND user_id = $2`,
		roomID, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

func (r *pgParticipantRepo) Upsert(ctx context.Context, roomID, userID string, role model.Role, status model.ParticipantStatus) (*model.Participant, error) {
	now := time.Now().UTC()
	return scanParticipant(r.pool.QueryRow(ctx,
		`INSERT INTO participants (id, room_id, user_id, role, status, joined_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $6)
		 ON CONFLICT (room_id, user_id)
		 DO UPDATE SET role = EXCLUDED.role, status = EXCLUDED.status, updated_at = EXCLUDED.updated_at
		 RETURNING `+participantColumns,
		uuid.NewString(), roomID, userID, string(role), string(status), now))
}

func (r *pgParticipantRepo) CreatePendingIfAbsent(ctx context.Context, roomID, userID string, role model.Role) (*model.Participant, bool, error) {
	// The fallback SELECT reads the statement snapshot, so a row committed by
	// a concurrent insert after it began is invisible; one retry sees it.
	var lastErr error
	for attempt := 0; attempt < upsertAttempts; attempt++ {
		var created bool
		now := time.Now().UTC()
		p, err := scanParticipant(r.pool.QueryRow(ctx,
			`WITH ins AS (
				INSERT INTO participants (id, room_id, user_id, role, status, joined_at, updated_at)
				VALUES ($1, $2, $3, $4, 'pending', $5, $5)
				ON CONFLICT (room_id, user_id) DO NOTHING
				RETURNING `+participantColumns+`
			)
			SELECT `+participantColumns+`, true FROM ins
			UNION ALL
			SELECT `+participantColumns+`, false FROM participants
			WHERE room_id = $2 AND user_id = $3 AND NOT EXISTS (SELECT 1 FROM ins)`,
			uuid.NewString(), roomID, userID, string(role), now), &created)
		if err == nil {
			return p, created, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, false, err
		}
		lastErr = err
	}
	return nil, false, lastErr
}

func (r *pgParticipantRepo) Approve(ctx context.Context, roomID, userID string) (*model.Participant, error) {
	p, err := scanParticipant(r.pool.QueryRow(ctx,
		`UPDATE participants SET status = 'approved', updated_at = NOW()
		 WHERE room_id = $1 AND user_id = $2
		 RETURNING `+participantColumns,
		roomID, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

func (r *pgParticipantRepo) DeletePending(ctx context.Context, roomID, userID string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM participants WHERE room_id = $1 AND user_id = $2 AND status = 'pending'`,
		roomID, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *pgParticipantRepo) ListPending(ctx context.Context, roomID string) ([]*model.Participant, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+participantColumns+` FROM participants
		 WHERE room_id = $1 AND status = 'pending'
		 ORDER BY joined_at ASC, seq ASC`,
		roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []*model.Participant{}
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func (r *pgParticipantRepo) HasApprovedInterviewer(ctx context.Context, roomID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM participants WHERE room_id = $1 AND status = 'approved' AND role = 'interviewer')`,
		roomID).Scan(&exists)
	return exists, err
}

type pgUserRepo struct {
	pool *pgxpool.Pool
}

func (r *pgUserRepo) GetSummaries(ctx context.Context, ids []string) (map[string]model.UserSummary, error) {
	out := make(map[string]model.UserSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT id, name, email FROM users WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var u model.UserSummary
		if err := rows.Scan(&u.ID, &u.Name, &u.Email); err != nil {
			return nil, err
		}
		out[u.ID] = u
	}
	return out, rows.Err()
}

func (r *pgUserRepo) Upsert(ctx context.Context, user model.UserSummary) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO users (id, name, email) VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, email = EXCLUDED.email`,
		user.ID, user.Name, user.Email)
	return err
}
