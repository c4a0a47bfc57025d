package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"git.nurpath.academy/nurpath/portal/src/db"
	"git.nurpath.academy/nurpath/portal/src/models"
	"git.nurpath.academy/nurpath/portal/src/oops"
	"golang.org/x/crypto/argon2"
)

type HashAlgorithm string

const (
	Argon2id HashAlgorithm = "argon2id"
)

const saltLength = 16
const keyLength = 64

type HashedPassword struct {
	Algorithm  HashAlgorithm
	AlgoConfig string // arbitrary info describing the hash parameters (e.g. work factor)

	// Salt and Hash are stored exactly as they appear in the database
	// (base64 for argon2id).
	Salt string
	Hash string
}

// Parses the `algorithm$config$salt$hash` form stored in portal_user.password.
func ParsePasswordString(s string) (HashedPassword, error) {
	pieces := strings.SplitN(s, "$", 4)
	if len(pieces) < 4 {
		return HashedPassword{}, oops.New(nil, "unrecognized password string format")
	}

	return HashedPassword{
		Algorithm:  HashAlgorithm(pieces[0]),
		AlgoConfig: pieces[1],
		Salt:       pieces[2],
		Hash:       pieces[3],
	}, nil
}

func (p HashedPassword) String() string {
	return fmt.Sprintf("%s$%s$%s$%s", p.Algorithm, p.AlgoConfig, p.Salt, p.Hash)
}

type Argon2idConfig struct {
	Time      uint32
	Memory    uint32
	Threads   uint8
	KeyLength uint32
}

func ParseArgon2idConfig(cfg string) (Argon2idConfig, error) {
	parts := strings.Split(cfg, ",")
	if len(parts) != 4 {
		return Argon2idConfig{}, oops.New(nil, "expected 4 parts in Argon2id config, got %d", len(parts))
	}

	values := make([]uint64, 4)
	for i, part := range parts {
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			return Argon2idConfig{}, oops.New(nil, "malformed Argon2id config part %q", part)
		}
		bits := 32
		if key == "p" {
			bits = 8
		}
		n, err := strconv.ParseUint(value, 10, bits)
		if err != nil {
			return Argon2idConfig{}, oops.New(err, "failed to parse %s in Argon2id config", key)
		}
		values[i] = n
	}

	return Argon2idConfig{
		Time:      uint32(values[0]),
		Memory:    uint32(values[1]),
		Threads:   uint8(values[2]),
		KeyLength: uint32(values[3]),
	}, nil
}

func (c Argon2idConfig) String() string {
	return fmt.Sprintf("t=%v,m=%v,p=%v,l=%v", c.Time, c.Memory, c.Threads, c.KeyLength)
}

func CheckPassword(password string, hashedPassword HashedPassword) (bool, error) {
	switch hashedPassword.Algorithm {
	case Argon2id:
		cfg, err := ParseArgon2idConfig(hashedPassword.AlgoConfig)
		if err != nil {
			return false, err
		}

		salt, err := base64.StdEncoding.DecodeString(hashedPassword.Salt)
		if err != nil {
			return false, oops.New(err, "failed to decode salt")
		}

		newHash := argon2.IDKey([]byte(password), salt, cfg.Time, cfg.Memory, cfg.Threads, cfg.KeyLength)
		newHashEnc := base64.StdEncoding.EncodeToString(newHash)

		return subtle.ConstantTimeCompare([]byte(newHashEnc), []byte(hashedPassword.Hash)) == 1, nil
	default:
		return false, oops.New(nil, "unrecognized password hash algorithm: %s", hashedPassword.Algorithm)
	}
}

func HashPassword(password string) HashedPassword {
	// OWASP password storage recommendations for argon2id.
	salt := make([]byte, saltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		panic(err)
	}
	saltEnc := base64.StdEncoding.EncodeToString(salt)

	cfg := Argon2idConfig{
		Time:      1,
		Memory:    40 * 1024, // KiB
		Threads:   1,
		KeyLength: keyLength,
	}

	key := argon2.IDKey([]byte(password), salt, cfg.Time, cfg.Memory, cfg.Threads, cfg.KeyLength)
	keyEnc := base64.StdEncoding.EncodeToString(key)

	return HashedPassword{
		Algorithm:  Argon2id,
		AlgoConfig: cfg.String(),
		Salt:       saltEnc,
		Hash:       keyEnc,
	}
}

var ErrUserDoesNotExist = errors.New("user does not exist")
var ErrWrongPassword = errors.New("wrong password")

func UpdatePassword(ctx context.Context, conn db.ConnOrTx, username string, hp HashedPassword) error {
	tag, err := conn.Exec(ctx, "UPDATE portal_user SET password = $1 WHERE LOWER(username) = LOWER($2)", hp.String(), username)
	if err != nil {
		return oops.New(err, "failed to update password")
	} else if tag.RowsAffected() < 1 {
		return ErrUserDoesNotExist
	}

	return nil
}

func SetPassword(ctx context.Context, conn db.ConnOrTx, username string, password string) error {
	hp := HashPassword(password)
	return UpdatePassword(ctx, conn, username, hp)
}

// Looks up a user by username and checks their password. Returns
// ErrUserDoesNotExist or ErrWrongPassword for the two ways a login can fail.
func Authenticate(ctx context.Context, conn db.ConnOrTx, username, password string) (*models.User, error) {
	user, err := db.QueryOne[models.User](ctx, conn,
		`
		---- Fetch user for login
		SELECT $columns
		FROM portal_user
		WHERE LOWER(username) = LOWER($1)
		`,
		username,
	)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return nil, ErrUserDoesNotExist
		}
		return nil, oops.New(err, "failed to look up user for login")
	}

	hashed, err := ParsePasswordString(user.Password)
	if err != nil {
		return nil, oops.New(err, "failed to parse password string for %s", user.Username)
	}
	ok, err := CheckPassword(password, hashed)
	if err != nil {
		return nil, oops.New(err, "failed to check password for %s", user.Username)
	}
	if !ok {
		return nil, ErrWrongPassword
	}

	_, err = conn.Exec(ctx, "UPDATE portal_user SET last_login = NOW() WHERE id = $1", user.ID)
	if err != nil {
		return nil, oops.New(err, "failed to update last login")
	}

	return user, nil
}
