package domain

import (
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 8
	maxAge            = 130
)

// Profile is a registered user. Only the bcrypt hash of the password is kept.
type Profile struct {
	Username     string            `yaml:"username"`
	Email        string            `yaml:"email"`
	Age          int               `yaml:"age,omitempty"` // 0 means not provided
	PasswordHash string            `yaml:"password_hash"`
	Preferences  map[string]string `yaml:"preferences,omitempty"`
	CreatedAt    time.Time         `yaml:"created_at"`
	UpdatedAt    time.Time         `yaml:"updated_at"`
}

// ProfileUpdate carries optional profile changes; nil fields are left alone.
type ProfileUpdate struct {
	Email       *string
	Age         *int
	Preferences map[string]string
}

// NewProfile validates the fields and hashes the password.
func NewProfile(username, email, password string, age int, now time.Time) (*Profile, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrInvalidUsername
	}
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if err := validateAge(age); err != nil {
		return nil, err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	return &Profile{
		Username:     username,
		Email:        email,
		Age:          age,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// CheckPassword reports whether password matches the stored hash.
func (p *Profile) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)) == nil
}

// ChangePassword requires the current password. The hash is untouched on error.
func (p *Profile) ChangePassword(oldPassword, newPassword string, now time.Time) error {
	if !p.CheckPassword(oldPassword) {
		return ErrInvalidCredentials
	}
	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	p.PasswordHash = hash
	p.UpdatedAt = now
	return nil
}

// Apply validates every field of u before changing anything.
func (p *Profile) Apply(u ProfileUpdate, now time.Time) error {
	email := p.Email
	if u.Email != nil {
		normalized, err := normalizeEmail(*u.Email)
		if err != nil {
			return err
		}
		email = normalized
	}
	age := p.Age
	if u.Age != nil {
		if err := validateAge(*u.Age); err != nil {
			return err
		}
		age = *u.Age
	}

	p.Email = email
	p.Age = age
	if len(u.Preferences) > 0 {
		if p.Preferences == nil {
			p.Preferences = make(map[string]string, len(u.Preferences))
		}
		for k, v := range u.Preferences {
			p.Preferences[k] = v
		}
	}
	p.UpdatedAt = now
	return nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}

func validateAge(age int) error {
	if age < 0 || age > maxAge {
		return ErrInvalidAge
	}
	return nil
}

func hashPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
