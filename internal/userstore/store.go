// Package userstore persists accounts as one directory per user containing a
// plain-text user record, saved health profiles and an emergency contact.
package userstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var usernamePattern = regexp.MustCompile(`[^a-z0-9_-]`)

// User is one stored account. The password is kept only as a bcrypt hash.
type User struct {
	ID           string
	Email        string
	Username     string
	Name         string
	PasswordHash string
	CreatedAt    string
}

// ProfileRecord wraps a saved health profile with its identity.
type ProfileRecord struct {
	ID        string          `json:"id"`
	CreatedAt string          `json:"createdAt"`
	Profile   json.RawMessage `json:"profile"`
}

// EmergencyContact is the single contact stored per account.
type EmergencyContact struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
	Phone        string `json:"phone"`
	Email        string `json:"email,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

// Store reads and writes user directories under a root folder.
type Store struct {
	root string
}

// New creates a store rooted at dir.
func New(dir string) *Store {
	return &Store{root: dir}
}

// UsernameFromEmail derives the directory name from the email local part,
// lowercased with unsupported characters removed.
func UsernameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return usernamePattern.ReplaceAllString(strings.ToLower(local), "")
}

func (s *Store) userDir(username string) string {
	return filepath.Join(s.root, username)
}

func (s *Store) ensureUserDirs(username string) (string, error) {
	dir := s.userDir(username)
	if err := os.MkdirAll(filepath.Join(dir, "profiles"), 0o755); err != nil {
		return "", fmt.Errorf("failed to create user directory for %s: %w", username, err)
	}
	return dir, nil
}

// Exists reports whether a user directory is already taken.
func (s *Store) Exists(username string) bool {
	info, err := os.Stat(s.userDir(username))
	return err == nil && info.IsDir()
}

// Read returns the user record, or (nil, nil) when the user does not exist.
func (s *Store) Read(username string) (*User, error) {
	data, err := os.ReadFile(filepath.Join(s.userDir(username), "user.txt"))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read user %s: %w", username, err)
	}
	return parseUser(string(data)), nil
}

// ReadByEmail scans user directories for a matching email. Returns (nil, nil)
// when no account matches.
func (s *Store) ReadByEmail(email string) (*User, error) {
	entries, err := os.ReadDir(s.root)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		user, err := s.Read(entry.Name())
		if err != nil || user == nil {
			continue
		}
		if user.Email == email {
			return user, nil
		}
	}
	return nil, nil
}

// Write persists the user record, creating the directory layout if needed.
func (s *Store) Write(user *User) error {
	dir, err := s.ensureUserDirs(user.Username)
	if err != nil {
		return err
	}
	if user.CreatedAt == "" {
		user.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	if err := os.WriteFile(filepath.Join(dir, "user.txt"), []byte(formatUser(user)), 0o644); err != nil {
		return fmt.Errorf("failed to write user %s: %w", user.Username, err)
	}
	return nil
}

// Profiles lists every saved profile record for a user.
func (s *Store) Profiles(username string) ([]ProfileRecord, error) {
	dir := filepath.Join(s.userDir(username), "profiles")
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles for %s: %w", username, err)
	}

	var records []ProfileRecord
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}
		var record ProfileRecord
		if err := json.Unmarshal(data, &record); err != nil {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

// SaveProfile stores a new profile record under a fresh UUID.
func (s *Store) SaveProfile(username string, profile json.RawMessage) (*ProfileRecord, error) {
	dir, err := s.ensureUserDirs(username)
	if err != nil {
		return nil, err
	}

	record := ProfileRecord{
		ID:        uuid.New().String(),
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Profile:   profile,
	}
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode profile: %w", err)
	}

	path := filepath.Join(dir, "profiles", record.ID+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write profile for %s: %w", username, err)
	}
	return &record, nil
}

// EmergencyContact returns the stored contact, zero-valued when none exists.
func (s *Store) EmergencyContact(username string) (EmergencyContact, error) {
	data, err := os.ReadFile(filepath.Join(s.userDir(username), "emergency-contact.json"))
	if os.IsNotExist(err) {
		return EmergencyContact{}, nil
	}
	if err != nil {
		return EmergencyContact{}, fmt.Errorf("failed to read emergency contact for %s: %w", username, err)
	}

	var contact EmergencyContact
	if err := json.Unmarshal(data, &contact); err != nil {
		return EmergencyContact{}, nil
	}
	return contact, nil
}

// SaveEmergencyContact replaces the stored contact.
func (s *Store) SaveEmergencyContact(username string, contact EmergencyContact) error {
	dir, err := s.ensureUserDirs(username)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(contact, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode emergency contact: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "emergency-contact.json"), data, 0o644); err != nil {
		return fmt.Errorf("failed to write emergency contact for %s: %w", username, err)
	}
	return nil
}

func parseUser(content string) *User {
	user := &User{}
	for _, line := range strings.Split(content, "\n") {
		switch {
		case strings.HasPrefix(line, "ID: "):
			user.ID = strings.TrimSpace(line[len("ID: "):])
		case strings.HasPrefix(line, "Email: "):
			user.Email = strings.TrimSpace(line[len("Email: "):])
		case strings.HasPrefix(line, "Username: "):
			user.Username = strings.TrimSpace(line[len("Username: "):])
		case strings.HasPrefix(line, "Name: "):
			user.Name = strings.TrimSpace(line[len("Name: "):])
		case strings.HasPrefix(line, "PasswordHash: "):
			user.PasswordHash = strings.TrimSpace(line[len("PasswordHash: "):])
		case strings.HasPrefix(line, "CreatedAt: "):
			user.CreatedAt = strings.TrimSpace(line[len("CreatedAt: "):])
		}
	}
	return user
}

func formatUser(user *User) string {
	return strings.Join([]string{
		"ID: " + user.ID,
		"Email: " + user.Email,
		"Username: " + user.Username,
		"Name: " + user.Name,
		"PasswordHash: " + user.PasswordHash,
		"CreatedAt: " + user.CreatedAt,
	}, "\n")
}
