package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vitalmap/pkg/domain/model"
	"github.com/secmon-lab/vitalmap/pkg/domain/types"
)

type userRepository struct {
	db *DB
}

const userColumns = "id, name, email, status, location, bio, last_seen"

func (r *userRepository) Upsert(ctx context.Context, user *model.User) error {
	loc, err := model.MarshalLocation(user.Location)
	if err != nil {
		return goerr.Wrap(err, "failed to encode location", goerr.V("id", user.ID))
	}

	_, err = r.db.exec(ctx, `INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			status = excluded.status,
			location = excluded.location,
			bio = excluded.bio,
			last_seen = excluded.last_seen`,
		user.ID.String(), user.Name, user.Email, user.Status.String(), loc, user.Bio, user.LastSeen.UnixMilli(),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to upsert user", goerr.V("id", user.ID))
	}
	return nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, user *model.User) error {
	loc, err := model.MarshalLocation(user.Location)
	if err != nil {
		return goerr.Wrap(err, "failed to encode location", goerr.V("id", user.ID))
	}

	_, err = r.db.exec(ctx, `UPDATE users SET name = ?, email = ?, status = ?, location = ?, bio = ?, last_seen = ? WHERE id = ?`,
		user.Name, user.Email, user.Status.String(), loc, user.Bio, user.LastSeen.UnixMilli(), user.ID.String(),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to update user profile", goerr.V("id", user.ID))
	}
	return nil
}

func (r *userRepository) SetLocation(ctx context.Context, id model.UserID, location *model.Location, seenAt time.Time) error {
	loc, err := model.MarshalLocation(location)
	if err != nil {
		return goerr.Wrap(err, "failed to encode location", goerr.V("id", id))
	}

	if _, err := r.db.exec(ctx, `UPDATE users SET location = ?, last_seen = ? WHERE id = ?`, loc, seenAt.UnixMilli(), id.String()); err != nil {
		return goerr.Wrap(err, "failed to set location", goerr.V("id", id))
	}
	return nil
}

func (r *userRepository) SetStatus(ctx context.Context, id model.UserID, status types.UserStatus) error {
	if _, err := r.db.exec(ctx, `UPDATE users SET status = ? WHERE id = ?`, status.String(), id.String()); err != nil {
		return goerr.Wrap(err, "failed to set status", goerr.V("id", id), goerr.V("status", status))
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id model.UserID) error {
	if _, err := r.db.exec(ctx, `DELETE FROM users WHERE id = ?`, id.String()); err != nil {
		return goerr.Wrap(err, "failed to delete user", goerr.V("id", id))
	}
	return nil
}

func (r *userRepository) Get(ctx context.Context, id model.UserID) (*model.User, error) {
	row := r.db.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id.String())
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(ErrNotFound, "user not found", goerr.V("id", id))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get user", goerr.V("id", id))
	}
	return user, nil
}

func (r *userRepository) ListActive(ctx context.Context, since time.Time) ([]*model.User, error) {
	rows, err := r.db.query(ctx, `SELECT `+userColumns+` FROM users WHERE last_seen > ?`, since.UnixMilli())
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list active users", goerr.V("since", since))
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan user")
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate users")
	}
	return users, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (*model.User, error) {
	var (
		user     model.User
		id       string
		status   string
		location string
		lastSeen int64
	)
	if err := s.Scan(&id, &user.Name, &user.Email, &status, &location, &user.Bio, &lastSeen); err != nil {
		return nil, err
	}

	user.ID = model.UserID(id)
	user.Status = types.UserStatus(status)
	user.Location = model.ParseLocation([]byte(location))
	user.LastSeen = time.UnixMilli(lastSeen).UTC()
	return &user, nil
}
