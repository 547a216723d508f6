package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
)

// Auth & users

func (s *Store) CreateUser(ctx context.Context, email, passwordHash, name string) (User, error) {
	var u User
	err := s.db.QueryRowContext(ctx, `insert into users(email, password_hash, name) values($1,$2,$3)
		returning id, email, name, created_at`, email, passwordHash, name).
		Scan(&u.ID, &u.Email, &u.Name, &u.CreatedAt)
	if err != nil {
		return User{}, err
	}
	return u, nil
}

func (s *Store) userCredsByEmail(ctx context.Context, email string) (User, string, error) {
	var u User
	var hash string
	err := s.db.QueryRowContext(ctx, `select id, email, name, created_at, password_hash from users where lower(email)=lower($1)`, email).
		Scan(&u.ID, &u.Email, &u.Name, &u.CreatedAt, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, "", ErrNotFound
	}
	return u, hash, err
}

// Authenticate verifies the password and returns the user on success.
func (s *Store) Authenticate(ctx context.Context, email, password string) (User, error) {
	u, hash, err := s.userCredsByEmail(ctx, email)
	if err != nil {
		return User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (User, error) {
	var u User
	err := s.db.QueryRowContext(ctx, `select id, email, name, created_at from users where lower(email)=lower($1)`, email).
		Scan(&u.ID, &u.Email, &u.Name, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

// SearchUsers matches name or email against q, excluding the caller.
func (s *Store) SearchUsers(ctx context.Context, q string, excludeID int64, limit int) ([]User, error) {
	rows, err := s.db.QueryContext(ctx, `select id, email, name, created_at from users
		where (name ilike $1 or email ilike $1) and id <> $2 order by name limit $3`,
		"%"+q+"%", excludeID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// CreateToken issues an opaque bearer token for the user. Multiple live
// tokens per user are allowed.
func (s *Store) CreateToken(ctx context.Context, userID int64, ttl time.Duration) (string, time.Time, error) {
	// 32 random bytes, base64 URL encoded
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", time.Time{}, err
	}
	token := base64.RawURLEncoding.EncodeToString(b)
	expires := time.Now().Add(ttl)
	_, err := s.db.ExecContext(ctx, `insert into user_tokens(user_id, token, expires_at) values($1,$2,$3)`, userID, token, expires)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expires, nil
}

func (s *Store) UserByToken(ctx context.Context, token string) (User, error) {
	var u User
	err := s.db.QueryRowContext(ctx, `select u.id, u.email, u.name, u.created_at
		from user_tokens t join users u on u.id=t.user_id
		where t.token=$1 and t.expires_at > now()`, token).
		Scan(&u.ID, &u.Email, &u.Name, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

func (s *Store) DeleteToken(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `delete from user_tokens where token=$1`, token)
	return err
}

const schema = `
create table if not exists users(
	id bigserial primary key,
	email text unique not null,
	password_hash text not null default '',
	name text not null default '',
	created_at timestamptz not null default now()
);

create table if not exists user_tokens(
	id bigserial primary key,
	user_id bigint not null references users(id) on delete cascade,
	token text unique not null,
	created_at timestamptz not null default now(),
	expires_at timestamptz not null
);
create index if not exists user_tokens_user_idx on user_tokens(user_id);

create table if not exists calendars(
	id bigserial primary key,
	user_id bigint not null references users(id) on delete cascade,
	name text not null check (length(name) > 0),
	start_month text not null default '',
	description text not null default '',
	color text not null default '#3B82F6',
	unique_url text unique not null,
	created_at timestamptz not null default now(),
	updated_at timestamptz not null default now()
);
create index if not exists calendars_user_idx on calendars(user_id);

create table if not exists calendar_shares(
	id bigserial primary key,
	calendar_id bigint not null references calendars(id) on delete cascade,
	owner_id bigint not null references users(id) on delete cascade,
	shared_with_id bigint not null references users(id) on delete cascade,
	can_edit boolean not null default true,
	can_delete boolean not null default true,
	can_share boolean not null default false,
	shared_at timestamptz not null default now(),
	unique(calendar_id, shared_with_id)
);
create index if not exists calendar_shares_shared_with_idx on calendar_shares(shared_with_id);

create table if not exists tasks(
	id bigserial primary key,
	calendar_id bigint not null references calendars(id) on delete cascade,
	title text not null check (length(title) > 0),
	description text not null default '',
	content_type text not null default 'text',
	platforms jsonb not null default '[]',
	status text not null default 'pending',
	scheduled_date date,
	display_date date,
	created_at timestamptz not null default now(),
	updated_at timestamptz not null default now()
);
create index if not exists tasks_calendar_idx on tasks(calendar_id);
create index if not exists tasks_scheduled_idx on tasks(scheduled_date);

create table if not exists notes(
	id bigserial primary key,
	user_id bigint not null references users(id) on delete cascade,
	calendar_id bigint not null references calendars(id) on delete cascade,
	task_id bigint references tasks(id) on delete cascade,
	title text not null check (length(title) > 0),
	content text not null default '',
	date date,
	is_general boolean not null default false,
	created_at timestamptz not null default now(),
	updated_at timestamptz not null default now()
);
create index if not exists notes_calendar_idx on notes(calendar_id);
create index if not exists notes_task_idx on notes(task_id);
`
