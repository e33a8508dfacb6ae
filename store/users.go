package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type (
	User struct {
		ID           int64
		Email        string
		PasswordHash string
		CreatedAt    time.Time
	}

	// Users is the credential store, one row per email.
	Users struct {
		db  *sql.DB
		now func() time.Time
	}
)

func NewUsers(db *sql.DB) *Users {
	return &Users{db: db, now: time.Now}
}

// FindByEmail returns false when no user owns email, absence is not an error.
func (u *Users) FindByEmail(ctx context.Context, email string) (User, bool, error) {
	var usr User
	var created int64
	err := u.db.QueryRowContext(ctx, `select user_id, email, password_hash, created_at from users
	where email_hash64 = ? and email = ?`, hashKey(email), email).Scan(&usr.ID, &usr.Email, &usr.PasswordHash, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, false, nil
	} else if err != nil {
		return User{}, false, fmt.Errorf("unable to lookup user %v, cause %w", email, err)
	}
	usr.CreatedAt = fromMillis(created)
	return usr, true, nil
}

// Create stores a new user, a concurrent insert of the same email
// ends up as DuplicateKey.
func (u *Users) Create(ctx context.Context, email, passwordHash string) (User, error) {
	usr := User{
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    u.now().UTC().Truncate(time.Millisecond),
	}
	err := u.db.QueryRowContext(ctx, `insert into users(email, email_hash64, password_hash, created_at)
	values (?, ?, ?, ?) returning user_id`,
		email, hashKey(email), passwordHash, usr.CreatedAt.UnixMilli()).Scan(&usr.ID)
	if isUniqueViolation(err) {
		return User{}, DuplicateKey{Table: "users", Key: email}
	} else if err != nil {
		return User{}, fmt.Errorf("unable to store user %v, cause %w", email, err)
	}
	return usr, nil
}

// DeleteByEmail removes the user and returns what was removed.
func (u *Users) DeleteByEmail(ctx context.Context, email string) (User, bool, error) {
	var usr User
	var created int64
	err := u.db.QueryRowContext(ctx, `delete from users where email_hash64 = ? and email = ?
	returning user_id, email, password_hash, created_at`, hashKey(email), email).Scan(&usr.ID, &usr.Email, &usr.PasswordHash, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, false, nil
	} else if err != nil {
		return User{}, false, fmt.Errorf("unable to delete user %v, cause %w", email, err)
	}
	usr.CreatedAt = fromMillis(created)
	return usr, true, nil
}

func (u *Users) ListAll(ctx context.Context) ([]User, error) {
	rows, err := u.db.QueryContext(ctx, `select user_id, email, password_hash, created_at from users order by email asc`)
	if err != nil {
		return nil, fmt.Errorf("unable to list users, cause %w", err)
	}
	defer rows.Close()
	out := []User{}
	for rows.Next() {
		var usr User
		var created int64
		err = rows.Scan(&usr.ID, &usr.Email, &usr.PasswordHash, &created)
		if err != nil {
			return nil, fmt.Errorf("unable to scan user, cause %w", err)
		}
		usr.CreatedAt = fromMillis(created)
		out = append(out, usr)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("unable to list users, cause %w", err)
	}
	return out, nil
}
