// internal/pkg/auth/password.go
package auth

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/your-org/production-backend/internal/config"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 8
	maxPasswordLength = 72 // bcrypt ignores anything longer
)

// Words that make a shop-floor password guessable
var guessableWords = []string{"password", "qwerty", "admin", "foreman", "worker", "production", "liquid"}

// characterClass is one class a password must contain
type characterClass struct {
	name  string
	match func(rune) bool
}

var requiredClasses = []characterClass{
	{"an uppercase letter", unicode.IsUpper},
	{"a lowercase letter", unicode.IsLower},
	{"a number", unicode.IsDigit},
	{"a special character", func(r rune) bool { return unicode.IsPunct(r) || unicode.IsSymbol(r) }},
}

// PasswordManager hashes and checks operator passwords
type PasswordManager struct {
	cost int
}

// NewPasswordManager creates a password manager using the configured bcrypt cost
func NewPasswordManager(cfg *config.Config) *PasswordManager {
	cost := cfg.Security.BcryptCost
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordManager{cost: cost}
}

// HashPassword validates and hashes a password
func (p *PasswordManager) HashPassword(password string) (string, error) {
	if err := ValidatePassword(password); err != nil {
		return "", fmt.Errorf("password validation failed: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// VerifyPassword verifies a password against its hash
func (p *PasswordManager) VerifyPassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// ValidatePassword enforces length, character classes and a few weak patterns
func ValidatePassword(password string) error {
	if len(password) < minPasswordLength || len(password) > maxPasswordLength {
		return fmt.Errorf("password must be %d to %d characters long", minPasswordLength, maxPasswordLength)
	}

	var missing []string
	for _, class := range requiredClasses {
		if !strings.ContainsFunc(password, class.match) {
			missing = append(missing, class.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("password must contain %s", strings.Join(missing, ", "))
	}

	if longestRun(password) > 2 {
		return errors.New("password cannot repeat a character more than twice in a row")
	}
	if hasAscendingRun(password, 3) {
		return errors.New("password cannot contain sequences such as abc or 123")
	}

	lower := strings.ToLower(password)
	for _, word := range guessableWords {
		if strings.Contains(lower, word) {
			return errors.New("password is too easy to guess")
		}
	}
	return nil
}

func longestRun(s string) int {
	longest, run := 0, 0
	var prev rune = -1
	for _, r := range s {
		if r == prev {
			run++
		} else {
			run = 1
			prev = r
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}

// hasAscendingRun reports n consecutive letters or digits in alphabet order
func hasAscendingRun(s string, n int) bool {
	run := 1
	var prev rune = -1
	for _, r := range strings.ToLower(s) {
		alnum := unicode.IsLetter(r) || unicode.IsDigit(r)
		if alnum && prev >= 0 && r == prev+1 {
			run++
			if run >= n {
				return true
			}
		} else {
			run = 1
		}
		if alnum {
			prev = r
		} else {
			prev = -1
		}
	}
	return false
}
